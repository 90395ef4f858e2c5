package repositories

import (
	"context"
	"fmt"

	"vidhub/internal/core/ports"
	"vidhub/internal/infrastructure/repositories/memory"
	mongorepo "vidhub/internal/infrastructure/repositories/mongo"
	redisrepo "vidhub/internal/infrastructure/repositories/redis"
	"vidhub/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RepositoryFactory builds the user, video and comment stores for the
// configured storage driver.
type RepositoryFactory struct {
	driver         string
	updateAttempts int

	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory connects to the configured backend. A backend that
// cannot be reached is a startup error.
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		driver:         cfg.Storage.Driver,
		updateAttempts: cfg.Storage.UpdateAttempts,
		logger:         logger,
	}

	switch cfg.Storage.Driver {
	case config.StorageMongo:
		client, db, err := mongorepo.NewMongoClient(
			cfg.Storage.Mongo.URI,
			cfg.Storage.Mongo.Database,
			cfg.Storage.Mongo.Timeout,
			logger,
		)
		if err != nil {
			return nil, err
		}
		factory.mongoClient, factory.mongoDB = client, db
		logger.Info("using MongoDB repositories")

	case config.StorageRedis:
		client, err := redisrepo.NewRedisClient(
			cfg.Storage.Redis.Address,
			cfg.Storage.Redis.Password,
			cfg.Storage.Redis.DB,
			cfg.Storage.Redis.PoolSize,
			logger,
		)
		if err != nil {
			return nil, err
		}
		factory.redisClient = client
		logger.Info("using Redis repositories")

	case config.StorageMemory, "":
		factory.driver = config.StorageMemory
		logger.Info("using memory repositories")

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	return factory, nil
}

func (f *RepositoryFactory) Driver() string {
	return f.driver
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	switch {
	case f.mongoDB != nil:
		return mongorepo.NewMongoUserRepository(f.mongoClient, f.mongoDB, f.updateAttempts)
	case f.redisClient != nil:
		return redisrepo.NewRedisUserRepository(f.redisClient, f.updateAttempts)
	default:
		return memory.NewMemoryUserRepository()
	}
}

func (f *RepositoryFactory) CreateVideoRepository() ports.VideoRepository {
	switch {
	case f.mongoDB != nil:
		return mongorepo.NewMongoVideoRepository(f.mongoDB, f.updateAttempts)
	case f.redisClient != nil:
		return redisrepo.NewRedisVideoRepository(f.redisClient, f.updateAttempts)
	default:
		return memory.NewMemoryVideoRepository()
	}
}

func (f *RepositoryFactory) CreateCommentRepository() ports.CommentRepository {
	switch {
	case f.mongoDB != nil:
		return mongorepo.NewMongoCommentRepository(f.mongoDB, f.updateAttempts)
	case f.redisClient != nil:
		return redisrepo.NewRedisCommentRepository(f.redisClient, f.updateAttempts)
	default:
		return memory.NewMemoryCommentRepository()
	}
}

// Close releases backend connections
func (f *RepositoryFactory) Close() error {
	if f.mongoClient != nil {
		return mongorepo.CloseMongoClient(f.mongoClient)
	}
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck pings the backend
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.mongoClient != nil {
		return f.mongoClient.Ping(ctx, nil)
	}
	if f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
