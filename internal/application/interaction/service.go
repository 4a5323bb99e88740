// Package interaction records user interactions with recipes and announces
// them on the message bus.
package interaction

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/ports/inbound"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
)

// DefaultListLimit caps ListForUser when the caller passes no limit.
const DefaultListLimit = 50

// Service implements the interaction use cases
type Service struct {
	repo      outbound.InteractionRepository
	bus       outbound.MessageBus
	validator *validator.Validate
	logger    *zap.Logger
}

// NewService creates a new interaction service. bus may be nil.
func NewService(repo outbound.InteractionRepository, bus outbound.MessageBus, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		bus:       bus,
		validator: validator.New(),
		logger:    logger.Named("interaction-service"),
	}
}

// Record stores the interaction and publishes it. A failed publish is logged
// and does not fail the request: the log entry is already durable.
func (s *Service) Record(ctx context.Context, cmd inbound.RecordInteractionCommand) (*interaction.Interaction, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, apperrors.FromValidator(err)
	}

	in := interaction.New(cmd.UserID.String(), cmd.RecipeID, interaction.Type(cmd.Type))
	if err := s.repo.Append(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to save interaction: %w", err)
	}

	s.logger.Info("Interaction recorded",
		zap.String("interaction_id", in.ID.String()),
		zap.String("user_id", in.UserID),
		zap.Int("recipe_id", in.RecipeID),
		zap.String("type", string(in.Type)))

	s.publish(ctx, in)
	return in, nil
}

// ListForUser returns the user's most recent interactions first
func (s *Service) ListForUser(ctx context.Context, userID string, limit int) ([]*interaction.Interaction, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	found, err := s.repo.FindByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	if found == nil {
		found = []*interaction.Interaction{}
	}
	return found, nil
}

func (s *Service) publish(ctx context.Context, in *interaction.Interaction) {
	if s.bus == nil {
		return
	}

	payload, err := json.Marshal(in)
	if err != nil {
		s.logger.Error("Failed to encode interaction event", zap.Error(err))
		return
	}

	msg := outbound.Message{
		ID:        in.ID.String(),
		Type:      interaction.EventRecorded,
		Payload:   payload,
		Metadata:  map[string]string{"user_id": in.UserID},
		Timestamp: in.CreatedAt,
	}
	if err := s.bus.Publish(ctx, interaction.EventRecorded, msg); err != nil {
		s.logger.Warn("Failed to publish interaction event",
			zap.String("interaction_id", in.ID.String()),
			zap.Error(err))
	}
}
