package services

import (
	"context"
	"time"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/tracing"

	"go.uber.org/zap"
)

type engagementService struct {
	videos  ports.VideoRepository
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger
}

func NewEngagementService(videos ports.VideoRepository, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) ports.EngagementService {
	return &engagementService{
		videos:  videos,
		metrics: metricsOrNoop(metrics),
		logger:  logger,
	}
}

func (s *engagementService) Like(ctx context.Context, videoID domain.VideoID, userID domain.UserID) (*domain.Video, error) {
	return s.react(ctx, ports.ActionLike, videoID, userID, domain.ReactionLike)
}

func (s *engagementService) Dislike(ctx context.Context, videoID domain.VideoID, userID domain.UserID) (*domain.Video, error) {
	return s.react(ctx, ports.ActionDislike, videoID, userID, domain.ReactionDislike)
}

// react applies the reaction inside a single store mutation, so the
// membership sets and their counters are written together.
func (s *engagementService) react(ctx context.Context, action string, videoID domain.VideoID, userID domain.UserID, kind domain.Reaction) (video *domain.Video, err error) {
	ctx, span := tracing.TraceService(ctx, "engagement."+action,
		tracing.VideoIDKey.String(string(videoID)),
		tracing.UserIDKey.String(string(userID)),
		tracing.ReactionKey.String(string(kind)),
	)
	defer func() {
		s.metrics.RecordAction(action, outcomeOf(err))
		tracing.End(span, err)
	}()

	return s.videos.Update(ctx, videoID, func(v *domain.Video) error {
		if err := v.ApplyReaction(userID, kind); err != nil {
			return err
		}
		v.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// RecordView counts every call; viewers are not deduplicated.
func (s *engagementService) RecordView(ctx context.Context, videoID domain.VideoID) (video *domain.Video, err error) {
	ctx, span := tracing.TraceService(ctx, "engagement.view", tracing.VideoIDKey.String(string(videoID)))
	defer func() {
		s.metrics.RecordAction(ports.ActionView, outcomeOf(err))
		tracing.End(span, err)
	}()

	return s.videos.IncrementViews(ctx, videoID)
}
