package mongo

import (
	"context"
	"errors"
	"fmt"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/retry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCommentRepository struct {
	comments *mongo.Collection
	retry    retry.Config
}

func NewMongoCommentRepository(db *mongo.Database, updateAttempts int) ports.CommentRepository {
	return &MongoCommentRepository{
		comments: db.Collection(commentsCollection),
		retry:    conflictRetry(updateAttempts),
	}
}

func (r *MongoCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	comment.Version = 1
	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *MongoCommentRepository) GetByID(ctx context.Context, id domain.CommentID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return &comment, nil
}

func (r *MongoCommentRepository) ListByVideo(ctx context.Context, videoID domain.VideoID) ([]*domain.Comment, error) {
	cursor, err := r.comments.Find(ctx,
		bson.M{"videoId": videoID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []*domain.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *MongoCommentRepository) Update(ctx context.Context, id domain.CommentID, fn ports.CommentMutation) (*domain.Comment, error) {
	return withConflictRetry(ctx, r.retry, func() (*domain.Comment, error) {
		comment, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(comment); err != nil {
			return nil, err
		}

		expected := comment.Version
		comment.Version++
		res, err := r.comments.ReplaceOne(ctx, bson.M{"_id": id, "version": expected}, comment)
		if err != nil {
			return nil, fmt.Errorf("failed to replace comment: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, errVersionMismatch
		}
		return comment, nil
	})
}

func (r *MongoCommentRepository) Delete(ctx context.Context, id domain.CommentID) error {
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *MongoCommentRepository) DeleteByVideo(ctx context.Context, videoID domain.VideoID) (int64, error) {
	res, err := r.comments.DeleteMany(ctx, bson.M{"videoId": videoID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return res.DeletedCount, nil
}
