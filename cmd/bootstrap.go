package cmd

import (
	"context"
	"fmt"

	"gridfs-manager/core/config"
	"gridfs-manager/core/database"
	"gridfs-manager/core/engine"
	"gridfs-manager/core/engine/memory"
	"gridfs-manager/core/engine/mongofs"
	"gridfs-manager/core/engine/objectstore"
	"gridfs-manager/core/gridfs"
	"gridfs-manager/core/logger"
	"gridfs-manager/core/storage"

	"go.uber.org/zap"
)

const (
	EngineMongo       = "mongo"
	EngineObjectStore = "objectstore"
	EngineMemory      = "memory"
)

// bootstrap loads configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logg, nil
}

// openService connects the configured engine and opens every bucket.
// The returned func releases the engine connections.
func openService(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*gridfs.Service, func(), error) {
	// Fail on a bad bucket list before dialing anything
	if err := cfg.GridFS.Validate(); err != nil {
		return nil, nil, err
	}

	eng, release, err := openEngine(ctx, cfg, logg)
	if err != nil {
		return nil, nil, err
	}

	svc, err := gridfs.Open(ctx, cfg.GridFS, eng, logg)
	if err != nil {
		release()
		return nil, nil, err
	}
	return svc, release, nil
}

func openEngine(ctx context.Context, cfg *config.Config, logg *zap.Logger) (engine.Engine, func(), error) {
	chunkSize := int32(cfg.GridFS.ChunkSizeBytes)

	switch cfg.GridFS.Engine {
	case EngineMongo:
		client, err := mongofs.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", gridfs.ErrStorageIO, err)
		}
		logg.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		release := func() { _ = client.Disconnect(context.Background()) }
		return mongofs.New(client.Database(cfg.Mongo.Database), chunkSize), release, nil

	case EngineObjectStore:
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", gridfs.ErrStorageIO, err)
		}
		release := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		eng, err := objectstore.New(ctx, store, db, cfg.Storage)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("%w: %w", gridfs.ErrStorageIO, err)
		}
		logg.Info("Connected to object storage",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("catalog", cfg.Database.Driver),
		)
		return eng, release, nil

	case EngineMemory:
		logg.Warn("Using the in-memory engine, files are lost on exit")
		return memory.New(chunkSize), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown engine %q (want %s, %s or %s)",
			gridfs.ErrConfiguration, cfg.GridFS.Engine, EngineMongo, EngineObjectStore, EngineMemory)
	}
}
