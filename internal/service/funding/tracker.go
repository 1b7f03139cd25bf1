package funding

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cfp-backend/internal/domain"
	appErrors "cfp-backend/pkg/errors"
)

// Tracker persists funding applications to a local JSON file. The file is
// read once at construction and rewritten on every mutation; expected volume
// is a handful of applications per user, so rewrite-on-mutation is fine.
type Tracker struct {
	mu           sync.Mutex
	path         string
	applications map[string]*domain.FundingApplication
	logger       *zap.Logger
}

// NewTracker loads (or initializes) the tracker file at path.
func NewTracker(path string, logger *zap.Logger) (*Tracker, error) {
	t := &Tracker{
		path:         path,
		applications: make(map[string]*domain.FundingApplication),
		logger:       logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, appErrors.NewInternal("failed to read tracker file", err)
	}

	var apps []*domain.FundingApplication
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, appErrors.NewInternal("tracker file is corrupt", err)
	}
	for _, app := range apps {
		t.applications[app.ID] = app
	}
	logger.Info("funding tracker loaded",
		zap.String("path", path),
		zap.Int("applications", len(apps)),
	)
	return t, nil
}

// Create adds a new draft application and persists it.
func (t *Tracker) Create(app domain.FundingApplication) (*domain.FundingApplication, error) {
	if app.Status == "" {
		app.Status = domain.StatusDraft
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app.ID = uuid.New().String()
	app.CreatedAt = now
	app.UpdatedAt = now

	t.mu.Lock()
	defer t.mu.Unlock()
	t.applications[app.ID] = &app
	if err := t.save(); err != nil {
		delete(t.applications, app.ID)
		return nil, err
	}
	return &app, nil
}

// Get returns the application with the given id.
func (t *Tracker) Get(id string) (*domain.FundingApplication, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	app, ok := t.applications[id]
	if !ok {
		return nil, appErrors.NewNotFound("application not found: " + id)
	}
	clone := *app
	return &clone, nil
}

// TrackedApplication is an application annotated with deadline proximity.
type TrackedApplication struct {
	domain.FundingApplication
	DeadlineSoon bool `json:"deadline_soon"`
}

// List returns all applications newest-first, flagging deadlines within the
// next two weeks.
func (t *Tracker) List() []TrackedApplication {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	out := make([]TrackedApplication, 0, len(t.applications))
	for _, app := range t.applications {
		out = append(out, TrackedApplication{
			FundingApplication: *app,
			DeadlineSoon:       app.DeadlineSoon(now, 14*24*time.Hour),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UpdateStatus transitions an application to the given status.
func (t *Tracker) UpdateStatus(id string, status domain.ApplicationStatus) (*domain.FundingApplication, error) {
	if !status.Valid() {
		return nil, appErrors.NewValidation("invalid application status")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	app, ok := t.applications[id]
	if !ok {
		return nil, appErrors.NewNotFound("application not found: " + id)
	}

	previous := *app
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	if status == domain.StatusSubmitted && app.SubmittedAt.IsZero() {
		app.SubmittedAt = app.UpdatedAt
	}

	if err := t.save(); err != nil {
		*app = previous
		return nil, err
	}
	clone := *app
	return &clone, nil
}

// save must be called with the lock held. Writes to a temp file then renames
// so a crash mid-write cannot corrupt the tracker.
func (t *Tracker) save() error {
	apps := make([]*domain.FundingApplication, 0, len(t.applications))
	for _, app := range t.applications {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.Before(apps[j].CreatedAt) })

	data, err := json.MarshalIndent(apps, "", "  ")
	if err != nil {
		return appErrors.NewInternal("failed to encode tracker file", err)
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return appErrors.NewInternal("failed to create tracker directory", err)
		}
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return appErrors.NewInternal("failed to write tracker file", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return appErrors.NewInternal("failed to replace tracker file", err)
	}
	return nil
}
