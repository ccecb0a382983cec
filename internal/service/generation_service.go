package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/config"
	"stilltime/api/internal/generation"
	"stilltime/api/internal/ids"
	"stilltime/api/internal/models"
	"stilltime/api/internal/repository"
	"stilltime/api/internal/subscription"
)

var (
	ErrGenerationLocked = errors.New("custom hourglass generation requires a paid plan")
	ErrNoImageCredits   = errors.New("monthly image credit limit reached")
	ErrNotRequestOwner  = errors.New("request belongs to another user")
)

type GenerationService struct {
	requests *repository.RequestRepository
	subs     *SubscriptionService
	queue    *redis.Client
	cfg      *config.AppConfig
	clk      clock.Clock
	log      zerolog.Logger
}

func NewGenerationService(
	requests *repository.RequestRepository,
	subs *SubscriptionService,
	queue *redis.Client,
	cfg *config.AppConfig,
	clk clock.Clock,
	log zerolog.Logger,
) *GenerationService {
	return &GenerationService{
		requests: requests,
		subs:     subs,
		queue:    queue,
		cfg:      cfg,
		clk:      clk,
		log:      log,
	}
}

type GenerateInput struct {
	UserID      string
	Prompt      string
	Style       string
	AspectRatio string
}

// Request validates and queues a custom hourglass generation. The credit is
// charged before enqueueing; a failed generation is not refunded, matching
// the provider's own billing.
func (s *GenerationService) Request(ctx context.Context, input GenerateInput) (models.HourglassRequest, error) {
	if err := generation.ValidatePrompt(input.Prompt); err != nil {
		return models.HourglassRequest{}, err
	}

	now := s.clk.Now()
	sub, err := s.subs.Lookup(ctx, input.UserID)
	if err != nil {
		return models.HourglassRequest{}, err
	}
	if !subscription.HasAccess(sub, subscription.FeatureCustomImages, now) {
		return models.HourglassRequest{}, ErrGenerationLocked
	}
	if _, ok := subscription.RemainingImageCredits(sub, now); !ok {
		return models.HourglassRequest{}, ErrNoImageCredits
	}

	aspectRatio := input.AspectRatio
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	req := models.HourglassRequest{
		ID:          ids.New(),
		UserID:      input.UserID,
		Prompt:      generation.EnhancePrompt(input.Prompt, input.Style),
		AspectRatio: aspectRatio,
		Status:      models.GenerationStatusPending,
		CreatedAt:   now,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return models.HourglassRequest{}, fmt.Errorf("create request: %w", err)
	}

	if err := s.subs.ChargeImageCredit(ctx, input.UserID); err != nil {
		s.log.Warn().Err(err).Str("user_id", input.UserID).Msg("charge image credit failed")
	}

	if err := s.enqueue(ctx, req); err != nil {
		if markErr := s.requests.MarkFailed(ctx, req.ID, "queue unavailable"); markErr != nil {
			s.log.Error().Err(markErr).Str("request_id", req.ID).Msg("mark failed after enqueue error")
		}
		return models.HourglassRequest{}, fmt.Errorf("enqueue generation: %w", err)
	}

	return req, nil
}

func (s *GenerationService) enqueue(ctx context.Context, req models.HourglassRequest) error {
	payload := map[string]any{
		"type":        "generate",
		"requestId":   req.ID,
		"userId":      req.UserID,
		"prompt":      req.Prompt,
		"aspectRatio": req.AspectRatio,
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.cfg.Redis.Stream,
		Values: payload,
	}).Result()
	return err
}

func (s *GenerationService) Status(ctx context.Context, userID string, requestID string) (models.HourglassRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return models.HourglassRequest{}, err
	}
	if req.UserID != userID {
		return models.HourglassRequest{}, ErrNotRequestOwner
	}
	return req, nil
}

// Latest returns the user's most recent completed generation, or nil when
// none exists.
func (s *GenerationService) Latest(ctx context.Context, userID string) (*models.HourglassRequest, error) {
	req, err := s.requests.LatestCompletedByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}
