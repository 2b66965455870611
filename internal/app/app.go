package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	"github.com/abduss/filemeta/internal/config"
	"github.com/abduss/filemeta/internal/metadata"
	"github.com/abduss/filemeta/internal/objectstore"
	"github.com/abduss/filemeta/internal/storage"
	"github.com/abduss/filemeta/internal/upload"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type metadataStore interface {
	metadata.Store
	Ping(ctx context.Context) error
}

type objectStore interface {
	metadata.ObjectStore
	upload.Presigner
	Ping(ctx context.Context) error
}

// App holds the handlers' collaborators, wired from configuration.
type App struct {
	Config  config.Config
	Log     *zap.Logger
	Writer  *metadata.Writer
	Reader  *metadata.Reader
	Uploads *upload.Service
	Checks  []Check

	closers []func()
	awsCfg  *aws.Config
}

// New connects the configured metadata and object store backends.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log}

	store, err := a.metadataStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	objects, err := a.objectStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Writer = metadata.NewWriter(store, objects, log.Named("writer"))
	a.Reader = metadata.NewReader(store)
	a.Uploads = upload.NewService(objects, cfg.Bucket(), cfg.Upload.URLTTL)
	a.Checks = []Check{
		{Name: cfg.Backends.Metadata, Ping: store.Ping},
		{Name: cfg.Backends.ObjectStore, Ping: objects.Ping},
	}

	log.Info("backends ready",
		zap.String("stage", cfg.Stage),
		zap.String("metadata_backend", cfg.Backends.Metadata),
		zap.String("object_store_backend", cfg.Backends.ObjectStore),
		zap.String("bucket", cfg.Bucket()),
	)
	return a, nil
}

// Close releases connections opened by New.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) metadataStore(ctx context.Context) (metadataStore, error) {
	cfg := a.Config

	switch cfg.Backends.Metadata {
	case config.MetadataBackendPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		repo := metadata.NewPostgresRepository(pool, cfg.Postgres.PageSize)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case config.MetadataBackendDynamoDB:
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		repo := metadata.NewDynamoRepository(storage.NewDynamoDBClient(awsCfg, cfg.AWS), cfg.DynamoDB.Table, cfg.DynamoDB.PageSize)
		if cfg.DynamoDB.EnsureTable {
			if err := repo.EnsureTable(ctx); err != nil {
				return nil, err
			}
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unsupported metadata backend %q", cfg.Backends.Metadata)
}

func (a *App) objectStore(ctx context.Context) (objectStore, error) {
	cfg := a.Config

	switch cfg.Backends.ObjectStore {
	case config.ObjectStoreBackendMinIO:
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if cfg.Stage == "local" {
			if err := storage.EnsureBucket(ctx, client, cfg.MinIO); err != nil {
				return nil, fmt.Errorf("ensure bucket: %w", err)
			}
		}
		return objectstore.NewMinIO(client, cfg.MinIO.Bucket), nil

	case config.ObjectStoreBackendS3:
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		return objectstore.NewS3(storage.NewS3Client(awsCfg, cfg.AWS, cfg.S3), cfg.S3.Bucket), nil
	}
	return nil, fmt.Errorf("unsupported object store backend %q", cfg.Backends.ObjectStore)
}

func (a *App) aws(ctx context.Context) (aws.Config, error) {
	if a.awsCfg != nil {
		return *a.awsCfg, nil
	}
	awsCfg, err := storage.LoadAWSConfig(ctx, a.Config.AWS)
	if err != nil {
		return aws.Config{}, err
	}
	a.awsCfg = &awsCfg
	return awsCfg, nil
}
