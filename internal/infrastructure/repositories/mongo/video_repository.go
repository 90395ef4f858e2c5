package mongo

import (
	"context"
	"errors"
	"fmt"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/retry"
	"vidhub/pkg/tracing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoVideoRepository struct {
	videos *mongo.Collection
	retry  retry.Config
}

func NewMongoVideoRepository(db *mongo.Database, updateAttempts int) ports.VideoRepository {
	return &MongoVideoRepository{
		videos: db.Collection(videosCollection),
		retry:  conflictRetry(updateAttempts),
	}
}

func (r *MongoVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	video.Version = 1
	if _, err := r.videos.InsertOne(ctx, video); err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *MongoVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	var video domain.Video
	err := r.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find video: %w", err)
	}
	return &video, nil
}

// Update replaces the document only if its version is unchanged since it
// was read, repeating the read-modify-write on a mismatch.
func (r *MongoVideoRepository) Update(ctx context.Context, id domain.VideoID, fn ports.VideoMutation) (*domain.Video, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "mongodb", "update", videosCollection)
	defer span.End()

	video, err := withConflictRetry(ctx, r.retry, func() (*domain.Video, error) {
		video, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(video); err != nil {
			return nil, err
		}

		expected := video.Version
		video.Version++
		res, err := r.videos.ReplaceOne(ctx, bson.M{"_id": id, "version": expected}, video)
		if err != nil {
			return nil, fmt.Errorf("failed to replace video: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, errVersionMismatch
		}
		return video, nil
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return video, nil
}

// IncrementViews is a single server-side $inc.
func (r *MongoVideoRepository) IncrementViews(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	var video domain.Video
	err := r.videos.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1, "version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment views: %w", err)
	}
	return &video, nil
}

func (r *MongoVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	res, err := r.videos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}
