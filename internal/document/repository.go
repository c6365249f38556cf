// Package document coordinates read-modify-write cycles on the single shared
// application document. Every write runs under a store-level lease so two
// concurrent mutations can never read the same snapshot and silently drop each
// other's changes (whole-document last-writer-wins would lose registrations).
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/engine"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/store"
)

// DataKey is where the document lives; the lock record sits beside it.
const DataKey = "zone-inscriptions-data"

type Repository struct {
	store store.Store
	lock  *store.Lock
}

func NewRepository(s store.Store) *Repository {
	return &Repository{
		store: s,
		lock:  store.NewLock(s, DataKey+":lock"),
	}
}

// Get returns the current document, seeding a default one if the key is
// absent or structurally incomplete. Readers skip the lock: a slightly stale
// document is fine, clients revalidate on a short interval anyway.
func (r *Repository) Get(ctx context.Context) (*models.AppData, error) {
	return r.load(ctx)
}

// Apply runs one operation transactionally: lease, read, apply to a deep
// copy, persist, release. Either the whole operation is persisted or nothing
// is.
func (r *Repository) Apply(ctx context.Context, op engine.Operation) (*models.AppData, error) {
	release, err := r.lock.Acquire(ctx)
	if err != nil {
		if errors.Is(err, store.ErrLockContention) {
			return nil, fmt.Errorf("document busy, please retry: %w", err)
		}
		return nil, err
	}
	defer release()

	data, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	next := data.Clone()
	if err := engine.Apply(next, op); err != nil {
		return nil, err
	}
	if err := r.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (r *Repository) load(ctx context.Context) (*models.AppData, error) {
	raw, err := r.store.Get(ctx, DataKey)
	if errors.Is(err, store.ErrNotFound) {
		return r.seed(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var data models.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if !data.Complete() {
		return r.seed(ctx)
	}
	return &data, nil
}

func (r *Repository) seed(ctx context.Context) (*models.AppData, error) {
	data := models.Default()
	if err := r.save(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Repository) save(ctx context.Context, data *models.AppData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := r.store.Set(ctx, DataKey, raw); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
