package services

import (
	"context"
	"strings"
	"time"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/config"
	"vidhub/pkg/tracing"
	"vidhub/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type videoService struct {
	videos       ports.VideoRepository
	comments     ports.CommentRepository
	media        ports.MediaStore
	deletePolicy string
	metrics      ports.MetricsRecorder
	logger       *zap.SugaredLogger
}

// NewVideoService builds the video service. deletePolicy decides what happens
// to a deleted video's comments: config.DeleteCascade removes them,
// config.DeleteOrphan leaves them in place.
func NewVideoService(
	videos ports.VideoRepository,
	comments ports.CommentRepository,
	media ports.MediaStore,
	deletePolicy string,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.VideoService {
	if deletePolicy == "" {
		deletePolicy = config.DeleteCascade
	}
	return &videoService{
		videos:       videos,
		comments:     comments,
		media:        media,
		deletePolicy: deletePolicy,
		metrics:      metricsOrNoop(metrics),
		logger:       logger,
	}
}

func (s *videoService) Upload(ctx context.Context, owner domain.UserID, in ports.UploadVideoInput) (video *domain.Video, err error) {
	ctx, span := tracing.TraceService(ctx, "video.upload", tracing.UserIDKey.String(string(owner)))
	defer func() {
		s.metrics.RecordAction(ports.ActionUpload, outcomeOf(err))
		tracing.End(span, err)
	}()

	in.Title = strings.TrimSpace(in.Title)
	tags := domain.ParseTags(in.Tags)
	if err := validateMetadata(&in.Title, &in.Description, tags); err != nil {
		return nil, err
	}
	if in.Video == nil || in.Video.Body == nil {
		return nil, domain.NewValidationError("video", "video file is required")
	}
	if in.Thumbnail == nil || in.Thumbnail.Body == nil {
		return nil, domain.NewValidationError("thumbnail", "thumbnail file is required")
	}

	videoRef, err := s.media.Upload(ctx, domain.MediaVideo, *in.Video)
	if err != nil {
		return nil, err
	}
	thumbRef, err := s.media.Upload(ctx, domain.MediaImage, *in.Thumbnail)
	if err != nil {
		s.release(ctx, domain.MediaVideo, videoRef.Handle)
		return nil, err
	}

	now := time.Now().UTC()
	video = &domain.Video{
		ID:          domain.VideoID(uuid.NewString()),
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     owner,
		Video:       videoRef,
		Thumbnail:   thumbRef,
		Category:    strings.TrimSpace(in.Category),
		Tags:        tags,
		LikedBy:     []domain.UserID{},
		DislikedBy:  []domain.UserID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		s.release(ctx, domain.MediaVideo, videoRef.Handle)
		s.release(ctx, domain.MediaImage, thumbRef.Handle)
		return nil, err
	}

	s.logger.Infow("video uploaded", "video_id", video.ID, "owner_id", owner)
	return video, nil
}

func (s *videoService) Get(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	return s.videos.GetByID(ctx, id)
}

// Update applies the provided fields. A new thumbnail is stored first, the
// record is switched over, and only then is the old asset released.
func (s *videoService) Update(ctx context.Context, caller domain.UserID, id domain.VideoID, in ports.UpdateVideoInput) (video *domain.Video, err error) {
	ctx, span := tracing.TraceService(ctx, "video.update",
		tracing.VideoIDKey.String(string(id)),
		tracing.UserIDKey.String(string(caller)),
	)
	defer func() {
		s.metrics.RecordAction(ports.ActionUpdate, outcomeOf(err))
		tracing.End(span, err)
	}()

	current, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsOwnedBy(caller) {
		return nil, domain.ErrForbidden
	}

	var tags []string
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if in.Tags != nil {
		tags = domain.ParseTags(*in.Tags)
	}
	if err := validateMetadata(in.Title, in.Description, tags); err != nil {
		return nil, err
	}

	var newThumb domain.MediaRef
	if in.Thumbnail != nil && in.Thumbnail.Body != nil {
		if newThumb, err = s.media.Upload(ctx, domain.MediaImage, *in.Thumbnail); err != nil {
			return nil, err
		}
	}

	var oldThumb domain.MediaRef
	video, err = s.videos.Update(ctx, id, func(v *domain.Video) error {
		if !v.IsOwnedBy(caller) {
			return domain.ErrForbidden
		}
		if in.Title != nil {
			v.Title = *in.Title
		}
		if in.Description != nil {
			v.Description = *in.Description
		}
		if in.Category != nil {
			v.Category = strings.TrimSpace(*in.Category)
		}
		if in.Tags != nil {
			v.Tags = tags
		}
		if !newThumb.IsZero() {
			oldThumb = v.Thumbnail
			v.Thumbnail = newThumb
		}
		v.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		if !newThumb.IsZero() {
			s.release(ctx, domain.MediaImage, newThumb.Handle)
		}
		return nil, err
	}

	if !oldThumb.IsZero() {
		s.release(ctx, domain.MediaImage, oldThumb.Handle)
	}
	return video, nil
}

// Delete releases both assets before removing the record, so a failed
// release leaves the video in place and the call can be repeated.
func (s *videoService) Delete(ctx context.Context, caller domain.UserID, id domain.VideoID) (err error) {
	ctx, span := tracing.TraceService(ctx, "video.delete",
		tracing.VideoIDKey.String(string(id)),
		tracing.UserIDKey.String(string(caller)),
	)
	defer func() {
		s.metrics.RecordAction(ports.ActionDelete, outcomeOf(err))
		tracing.End(span, err)
	}()

	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !video.IsOwnedBy(caller) {
		return domain.ErrForbidden
	}

	if err := s.media.Release(ctx, domain.MediaVideo, video.Video.Handle); err != nil {
		return err
	}
	if err := s.media.Release(ctx, domain.MediaImage, video.Thumbnail.Handle); err != nil {
		return err
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		return err
	}

	if s.deletePolicy == config.DeleteCascade {
		removed, err := s.comments.DeleteByVideo(ctx, id)
		if err != nil {
			s.logger.Errorw("failed to delete comments of deleted video",
				"video_id", id,
				"error", err,
			)
		} else if removed > 0 {
			s.logger.Infow("deleted comments of deleted video", "video_id", id, "count", removed)
		}
	}
	return nil
}

// release is best effort; a leaked asset is logged, never surfaced.
func (s *videoService) release(ctx context.Context, kind domain.MediaKind, handle string) {
	if handle == "" {
		return
	}
	if err := s.media.Release(ctx, kind, handle); err != nil {
		s.logger.Warnw("failed to release media", "kind", kind, "handle", handle, "error", err)
	}
}

func validateMetadata(title, description *string, tags []string) error {
	if title != nil {
		if err := validation.ValidateTitle(*title); err != nil {
			return domain.NewValidationError("title", err.Error())
		}
	}
	if description != nil {
		if err := validation.ValidateDescription(*description); err != nil {
			return domain.NewValidationError("description", err.Error())
		}
	}
	if err := validation.ValidateTags(tags); err != nil {
		return domain.NewValidationError("tags", err.Error())
	}
	return nil
}
