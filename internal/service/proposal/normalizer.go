// Package proposal implements the talk-proposal generation pipeline:
// request normalization, cached lookup, upstream or template generation,
// and post-generation validation.
package proposal

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"cfp-backend/internal/domain"
	appErrors "cfp-backend/pkg/errors"
)

// RawRequest is the loosely-typed request shape accepted at the boundary.
// Only Normalize turns one of these into a domain.ProposalRequest.
type RawRequest struct {
	Subject       string   `json:"subject"`
	Audience      string   `json:"audience"`
	Kind          string   `json:"kind"`
	ExpertiseTags []string `json:"expertise_tags"`
}

// Normalize validates a raw request and produces its canonical form:
// subject trimmed, audience and kind checked against their enumerations,
// expertise tags lower-cased, deduplicated and sorted. Deterministic, so two
// semantically equal raw requests always normalize to the same value.
func Normalize(raw RawRequest) (domain.ProposalRequest, error) {
	subject := strings.TrimSpace(raw.Subject)
	if subject == "" {
		return domain.ProposalRequest{}, appErrors.NewValidation("subject must not be empty")
	}

	audience := domain.Audience(strings.ToLower(strings.TrimSpace(raw.Audience)))
	if !audience.Valid() {
		return domain.ProposalRequest{}, appErrors.NewValidation("audience must be one of beginner, intermediate, advanced")
	}

	kind := domain.TalkKind(strings.ToLower(strings.TrimSpace(raw.Kind)))
	if !kind.Valid() {
		return domain.ProposalRequest{}, appErrors.NewValidation("kind must be one of session, workshop, lightning")
	}

	return domain.ProposalRequest{
		Subject:       subject,
		Audience:      audience,
		Kind:          kind,
		ExpertiseTags: normalizeTags(raw.ExpertiseTags),
	}, nil
}

// CacheKey derives a stable cache key from a normalized request. The key is
// a hash of lower-cased subject, audience, kind and the sorted expertise
// tags, so it survives process restarts and collides for semantically equal
// requests regardless of tag order or subject casing.
func CacheKey(req domain.ProposalRequest) string {
	parts := []string{
		strings.ToLower(req.Subject),
		string(req.Audience),
		string(req.Kind),
	}
	parts = append(parts, req.ExpertiseTags...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// normalizeTags lower-cases, trims, deduplicates and sorts tags.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}

	sort.Strings(out)
	return out
}
