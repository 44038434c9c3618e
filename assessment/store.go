// Package assessment stores scored onboarding submissions.
package assessment

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liamcoop/riskscore/classifier"
	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/rules"
)

var (
	ErrNotFound  = errors.New("assessment not found")
	ErrDuplicate = errors.New("assessment already exists")
)

// Assessment is one scored submission.
type Assessment struct {
	ID             uuid.UUID               `json:"id"`
	SubmittedAt    time.Time               `json:"submitted_at"`
	Profile        rules.Profile           `json:"profile"`
	Documents      rules.DocumentChecklist `json:"documents"`
	OCRAddressText string                  `json:"ocr_address_text,omitempty"`
	Result         engine.RiskResult       `json:"result"`
}

// Filter narrows List. A zero Filter returns everything.
type Filter struct {
	Band  classifier.Band
	Limit int
}

// Store persists assessments.
type Store interface {
	// Add stores a new assessment. A zero ID or SubmittedAt is filled in.
	Add(ctx context.Context, a *Assessment) error

	// Get returns the assessment with id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Assessment, error)

	// List returns assessments matching f, newest first.
	List(ctx context.Context, f Filter) ([]*Assessment, error)
}

func prepare(a *Assessment) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().UTC()
	}
}

// InMemoryStore implements Store with a map. It is safe for concurrent use.
type InMemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*Assessment
	order []uuid.UUID
}

// NewInMemoryStore creates an empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[uuid.UUID]*Assessment)}
}

func (s *InMemoryStore) Add(ctx context.Context, a *Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prepare(a)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[a.ID]; exists {
		return ErrDuplicate
	}
	s.byID[a.ID] = clone(a)
	s.order = append(s.order, a.ID)
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.byID[id]
	if !exists {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (s *InMemoryStore) List(ctx context.Context, f Filter) ([]*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Assessment{}
	for _, id := range s.order {
		a := s.byID[id]
		if f.Band != "" && a.Result.Band != f.Band {
			continue
		}
		out = append(out, clone(a))
	}

	// newest first; insertion order breaks ties
	slices.Reverse(out)
	slices.SortStableFunc(out, func(x, y *Assessment) int {
		return y.SubmittedAt.Compare(x.SubmittedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func clone(a *Assessment) *Assessment {
	c := *a
	c.Result.Contributions = slices.Clone(a.Result.Contributions)
	return &c
}
