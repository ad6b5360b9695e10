package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

// memoryTournamentRepository keeps documents in process. Every value going
// in or out is a deep copy, so callers never share a graph with the store.
type memoryTournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[string]*models.Tournament
	now         func() time.Time
}

func NewMemoryTournamentRepository() TournamentRepository {
	return &memoryTournamentRepository{
		tournaments: make(map[string]*models.Tournament),
		now:         time.Now,
	}
}

func (r *memoryTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; ok {
		return ErrTournamentIDConflict
	}
	now := r.now().UTC()
	t.Version, t.CreatedAt, t.UpdatedAt = 1, now, now
	r.tournaments[t.ID] = t.Clone()
	return nil
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (r *memoryTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, t.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tournaments[t.ID]
	if !ok {
		return ErrTournamentNotFound
	}
	if stored.Version != t.Version {
		return fmt.Errorf("%w: tournament %s is no longer at version %d", ErrVersionConflict, t.ID, t.Version)
	}
	t.Version++
	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = r.now().UTC()
	r.tournaments[t.ID] = t.Clone()
	return nil
}

func (r *memoryTournamentRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}
