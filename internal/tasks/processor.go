package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stilltime/api/internal/config"
	"stilltime/api/internal/generation"
	"stilltime/api/internal/metrics"
	"stilltime/api/internal/models"
	"stilltime/api/internal/repository"
	"stilltime/api/internal/storage"
)

type Processor struct {
	requests *repository.RequestRepository
	provider generation.Provider
	store    *storage.ObjectStore
	cfg      *config.AppConfig
	logger   zerolog.Logger
}

type TaskPayload struct {
	Type        string `json:"type"`
	RequestID   string `json:"requestId"`
	UserID      string `json:"userId"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
}

func NewProcessor(
	requests *repository.RequestRepository,
	provider generation.Provider,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		requests: requests,
		provider: provider,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case "generate":
		return p.handleGenerate(ctx, payload)
	case "cleanup":
		return p.handleCleanup(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

// handleGenerate runs one image generation end to end: call the provider,
// archive the output into our own bucket, and mark the request done. Any
// failure marks the request failed; the message is still acked so the
// stream does not wedge on a poisoned request.
func (p *Processor) handleGenerate(ctx context.Context, payload TaskPayload) error {
	started := time.Now()
	log := p.logger.With().Str("request_id", payload.RequestID).Logger()

	req, err := p.requests.GetByID(ctx, payload.RequestID)
	if err != nil {
		log.Error().Err(err).Msg("load request failed")
		return nil
	}
	if req.Status != models.GenerationStatusPending && req.Status != models.GenerationStatusProcessing {
		log.Info().Str("status", string(req.Status)).Msg("request already settled")
		return nil
	}

	if err := p.requests.MarkProcessing(ctx, req.ID); err != nil {
		log.Warn().Err(err).Msg("mark processing failed")
	}

	providerURL, err := p.provider.Generate(ctx, req.Prompt, req.AspectRatio)
	if err != nil {
		p.fail(ctx, req.ID, "generation failed", err)
		return nil
	}

	objectKey := fmt.Sprintf("hourglasses/%s/%s.webp", req.UserID, req.ID)
	if err := p.store.Archive(ctx, objectKey, providerURL); err != nil {
		p.fail(ctx, req.ID, "archive failed", err)
		return nil
	}

	if err := p.requests.MarkCompleted(ctx, req.ID, p.store.PublicURL(objectKey)); err != nil {
		log.Error().Err(err).Msg("mark completed failed")
		return nil
	}

	metrics.GenerationsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.GenerationDurationSeconds.Observe(time.Since(started).Seconds())
	log.Info().Dur("took", time.Since(started)).Msg("generation completed")
	return nil
}

func (p *Processor) fail(ctx context.Context, requestID string, message string, cause error) {
	metrics.GenerationsProcessedTotal.WithLabelValues("failed").Inc()
	p.logger.Error().Err(cause).Str("request_id", requestID).Msg(message)
	if err := p.requests.MarkFailed(ctx, requestID, message); err != nil {
		p.logger.Error().Err(err).Str("request_id", requestID).Msg("mark failed errored")
	}
}

func (p *Processor) handleCleanup(ctx context.Context) error {
	failed, err := p.requests.FailStalePending(ctx, p.cfg.Generation.RequestTTL)
	if err != nil {
		return fmt.Errorf("fail stale requests: %w", err)
	}
	if failed > 0 {
		p.logger.Info().Int64("requests", failed).Msg("expired stale generation requests")
	}
	return nil
}
