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
)

type MongoUserRepository struct {
	client *mongo.Client
	users  *mongo.Collection
	retry  retry.Config
}

func NewMongoUserRepository(client *mongo.Client, db *mongo.Database, updateAttempts int) ports.UserRepository {
	return &MongoUserRepository{
		client: client,
		users:  db.Collection(usersCollection),
		retry:  conflictRetry(updateAttempts),
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "mongodb", "insert", usersCollection)
	defer span.End()

	user.Version = 1
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return findUser(ctx, r.users, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findUser(ctx, r.users, bson.M{"email": email})
}

func (r *MongoUserRepository) GetByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]*domain.User, error) {
	found := make(map[domain.UserID]*domain.User, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, u := range users {
		found[u.ID] = u
	}
	return found, nil
}

// UpdatePair runs the mutation inside a multi-document transaction. Each
// replace is also guarded by the version that was read.
func (r *MongoUserRepository) UpdatePair(ctx context.Context, a, b domain.UserID, fn ports.UserMutation) (*domain.User, *domain.User, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "mongodb", "update_pair", usersCollection)
	defer span.End()

	type pair struct{ a, b *domain.User }

	result, err := withConflictRetry(ctx, r.retry, func() (pair, error) {
		session, err := r.client.StartSession()
		if err != nil {
			return pair{}, fmt.Errorf("failed to start session: %w", err)
		}
		defer session.EndSession(ctx)

		out, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			userA, err := findUser(sc, r.users, bson.M{"_id": a})
			if err != nil {
				return nil, err
			}
			userB := userA
			if a != b {
				if userB, err = findUser(sc, r.users, bson.M{"_id": b}); err != nil {
					return nil, err
				}
			}

			if err := fn(userA, userB); err != nil {
				return nil, err
			}

			if err := replaceUser(sc, r.users, userA); err != nil {
				return nil, err
			}
			if a != b {
				if err := replaceUser(sc, r.users, userB); err != nil {
					return nil, err
				}
			}
			return pair{userA, userB}, nil
		})
		if err != nil {
			return pair{}, err
		}
		return out.(pair), nil
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, nil, err
	}
	return result.a, result.b, nil
}

func findUser(ctx context.Context, coll *mongo.Collection, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func replaceUser(ctx context.Context, coll *mongo.Collection, user *domain.User) error {
	expected := user.Version
	user.Version++
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": user.ID, "version": expected}, user)
	if err != nil {
		return fmt.Errorf("failed to replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return errVersionMismatch
	}
	return nil
}
