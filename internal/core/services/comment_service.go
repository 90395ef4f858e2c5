package services

import (
	"context"
	"strings"
	"time"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/tracing"
	"vidhub/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type commentService struct {
	comments ports.CommentRepository
	videos   ports.VideoRepository
	users    ports.UserRepository
	metrics  ports.MetricsRecorder
	logger   *zap.SugaredLogger
}

func NewCommentService(
	comments ports.CommentRepository,
	videos ports.VideoRepository,
	users ports.UserRepository,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.CommentService {
	return &commentService{
		comments: comments,
		videos:   videos,
		users:    users,
		metrics:  metricsOrNoop(metrics),
		logger:   logger,
	}
}

func (s *commentService) Create(ctx context.Context, author domain.UserID, videoID domain.VideoID, text string) (comment *domain.Comment, err error) {
	ctx, span := tracing.TraceService(ctx, "comment.create",
		tracing.VideoIDKey.String(string(videoID)),
		tracing.UserIDKey.String(string(author)),
	)
	defer func() {
		s.metrics.RecordAction(ports.ActionComment, outcomeOf(err))
		tracing.End(span, err)
	}()

	text = strings.TrimSpace(text)
	if err := validation.ValidateCommentText(text); err != nil {
		return nil, domain.NewValidationError("commentText", err.Error())
	}
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment = &domain.Comment{
		ID:        domain.CommentID(uuid.NewString()),
		VideoID:   videoID,
		AuthorID:  author,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByVideo resolves authors in one batch. An author that no longer
// resolves keeps only its id.
func (s *commentService) ListByVideo(ctx context.Context, videoID domain.VideoID) ([]domain.CommentView, error) {
	ctx, span := tracing.TraceService(ctx, "comment.list", tracing.VideoIDKey.String(string(videoID)))
	defer span.End()

	comments, err := s.comments.ListByVideo(ctx, videoID)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	seen := make(map[domain.UserID]struct{}, len(comments))
	authorIDs := make([]domain.UserID, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.AuthorID]; !ok {
			seen[c.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}

	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	views := make([]domain.CommentView, 0, len(comments))
	for _, c := range comments {
		profile := domain.Profile{ID: c.AuthorID}
		if u, ok := authors[c.AuthorID]; ok {
			profile = u.Profile()
		}
		views = append(views, domain.CommentView{
			ID:        c.ID,
			VideoID:   c.VideoID,
			Author:    profile,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return views, nil
}

func (s *commentService) Update(ctx context.Context, caller domain.UserID, id domain.CommentID, text string) (comment *domain.Comment, err error) {
	ctx, span := tracing.TraceService(ctx, "comment.update",
		tracing.CommentIDKey.String(string(id)),
		tracing.UserIDKey.String(string(caller)),
	)
	defer func() {
		s.metrics.RecordAction(ports.ActionEditComment, outcomeOf(err))
		tracing.End(span, err)
	}()

	text = strings.TrimSpace(text)
	if err := validation.ValidateCommentText(text); err != nil {
		return nil, domain.NewValidationError("commentText", err.Error())
	}

	return s.comments.Update(ctx, id, func(c *domain.Comment) error {
		if !c.IsAuthoredBy(caller) {
			return domain.ErrForbidden
		}
		c.Text = text
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *commentService) Delete(ctx context.Context, caller domain.UserID, id domain.CommentID) (err error) {
	ctx, span := tracing.TraceService(ctx, "comment.delete",
		tracing.CommentIDKey.String(string(id)),
		tracing.UserIDKey.String(string(caller)),
	)
	defer func() {
		s.metrics.RecordAction(ports.ActionDelComment, outcomeOf(err))
		tracing.End(span, err)
	}()

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !comment.IsAuthoredBy(caller) {
		return domain.ErrForbidden
	}
	return s.comments.Delete(ctx, id)
}
