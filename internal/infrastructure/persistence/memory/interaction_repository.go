package memory

import (
	"context"
	"sync"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// InteractionRepository is an append-only in-memory interaction log
type InteractionRepository struct {
	mu  sync.RWMutex
	log []*interaction.Interaction
}

// NewInteractionRepository creates an empty log
func NewInteractionRepository() *InteractionRepository {
	return &InteractionRepository{}
}

var _ outbound.InteractionRepository = (*InteractionRepository)(nil)

// Append stores a copy of in
func (r *InteractionRepository) Append(ctx context.Context, in *interaction.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *in
	r.log = append(r.log, &stored)
	return nil
}

// FindByUserID walks the log backwards so the newest entries come first
func (r *InteractionRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]*interaction.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*interaction.Interaction, 0)
	for i := len(r.log) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if r.log[i].UserID == userID {
			found := *r.log[i]
			out = append(out, &found)
		}
	}
	return out, nil
}
