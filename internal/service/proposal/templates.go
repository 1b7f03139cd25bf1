package proposal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cfp-backend/internal/domain"
)

// Template fallback synthesis. Everything in this file is deterministic:
// the same request always produces the same artifact, so the fallback path
// is cacheable and testable like the model path.

var titleFormats = map[domain.TalkKind]string{
	domain.KindSession:   "%s in Production: Lessons from the Field",
	domain.KindWorkshop:  "Hands-on %s: From Zero to Production",
	domain.KindLightning: "%s in Ten Minutes",
}

var audienceDescriptions = map[domain.Audience]string{
	domain.AudienceBeginner:     "newcomers looking for a practical on-ramp",
	domain.AudienceIntermediate: "practitioners who want to go beyond the basics",
	domain.AudienceAdvanced:     "experienced engineers operating at scale",
}

// commonTags mirrors the track tag vocabulary conference CFP forms use.
var commonTags = []string{
	"kubernetes", "cloud-native", "containers", "microservices", "devops",
	"gitops", "observability", "security", "networking", "storage",
	"machine-learning", "operators", "service-mesh", "serverless", "platform-engineering",
}

// fallbackProposal synthesizes a deterministic artifact from static templates
// keyed by kind and audience. It never fails for a normalized request.
func fallbackProposal(req domain.ProposalRequest, now time.Time) *domain.Proposal {
	subject := titleCase(req.Subject)

	p := &domain.Proposal{
		Title:              fmt.Sprintf(titleFormats[req.Kind], subject),
		Abstract:           fallbackAbstract(req, subject),
		LearningObjectives: fallbackObjectives(req, subject),
		Outline:            fallbackOutline(req, subject),
		Tags:               deriveTags(req),
		TotalMinutes:       req.Kind.TotalMinutes(),
		Source:             domain.SourceTemplate,
		CreatedAt:          now,
	}
	return p
}

func fallbackAbstract(req domain.ProposalRequest, subject string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "This %s takes a practical look at %s, aimed at %s. ",
		req.Kind, subject, audienceDescriptions[req.Audience])
	fmt.Fprintf(&sb, "We will walk through real-world patterns, common pitfalls, and the trade-offs that only show up after the first deployment. ")
	if len(req.ExpertiseTags) > 0 {
		fmt.Fprintf(&sb, "Drawing on experience with %s, ", strings.Join(req.ExpertiseTags, ", "))
	}
	sb.WriteString("attendees will leave with concrete next steps they can apply to their own systems.")
	return sb.String()
}

func fallbackObjectives(req domain.ProposalRequest, subject string) []string {
	objectives := []string{
		fmt.Sprintf("Explain the core concepts behind %s", subject),
		fmt.Sprintf("Identify common pitfalls when adopting %s", subject),
		fmt.Sprintf("Apply production-ready patterns for %s", subject),
	}
	if req.Audience == domain.AudienceAdvanced {
		objectives = append(objectives, fmt.Sprintf("Evaluate scaling and operational trade-offs of %s", subject))
	}
	return objectives
}

func fallbackOutline(req domain.ProposalRequest, subject string) []domain.OutlineSection {
	switch req.Kind {
	case domain.KindWorkshop:
		return []domain.OutlineSection{
			{Title: "Welcome and Environment Setup", Minutes: 20, KeyPoints: []string{"Prerequisites check", "Lab environment access"}},
			{Title: "Fundamentals", Minutes: 40, KeyPoints: []string{subject + " building blocks", "Terminology and mental model"}},
			{Title: "Hands-on Lab: First Steps", Minutes: 50, KeyPoints: []string{"Guided exercise", "Checkpoint review"}},
			{Title: "Hands-on Lab: Production Scenarios", Minutes: 50, KeyPoints: []string{"Failure injection", "Debugging workflow"}},
			{Title: "Wrap-up and Next Steps", Minutes: 20, KeyPoints: []string{"Recap", "Resources for continued learning"}},
		}
	case domain.KindLightning:
		return []domain.OutlineSection{
			{Title: "The Hook", Minutes: 2, KeyPoints: []string{"Why " + subject + " matters right now"}},
			{Title: "The One Idea", Minutes: 6, KeyPoints: []string{"A single concrete technique", "Live example"}},
			{Title: "Takeaways", Minutes: 2, KeyPoints: []string{"What to try tomorrow"}},
		}
	default:
		return []domain.OutlineSection{
			{Title: "Introduction", Minutes: 5, KeyPoints: []string{"Problem framing", "Who this talk is for"}},
			{Title: "Core Concepts", Minutes: 10, KeyPoints: []string{subject + " fundamentals", "Architecture overview"}},
			{Title: subject + " in Practice", Minutes: 15, KeyPoints: []string{"Real-world walkthrough", "Common pitfalls"}},
			{Title: "Lessons Learned", Minutes: 5, KeyPoints: []string{"What we would do differently"}},
			{Title: "Conclusion and Q&A", Minutes: 5, KeyPoints: []string{"Recap", "Audience questions"}},
		}
	}
}

// deriveTags combines subject keywords that match the common tag vocabulary
// with the request's expertise tags, deduplicated and sorted.
func deriveTags(req domain.ProposalRequest) []string {
	subject := strings.ToLower(req.Subject)
	seen := make(map[string]struct{})
	var tags []string

	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, tag := range commonTags {
		if strings.Contains(subject, strings.ReplaceAll(tag, "-", " ")) || strings.Contains(subject, tag) {
			add(tag)
		}
	}
	for _, tag := range req.ExpertiseTags {
		add(tag)
	}

	sort.Strings(tags)
	if len(tags) > 10 {
		tags = tags[:10]
	}
	return tags
}

// titleCase upper-cases the first letter of each word. Good enough for
// template titles; the model path produces its own titles.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
