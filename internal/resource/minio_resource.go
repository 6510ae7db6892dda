package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"compress-bot/pkg/config"
	"compress-bot/pkg/logger"
	"compress-bot/pkg/manager"
)

var (
	minioResourceOnce      sync.Once
	singletonMinioResource *MinioResource
)

// MinioResource manages the optional S3-compatible archive bucket. When the
// archive is disabled in configuration the resource stays closed and
// Enabled() reports false.
type MinioResource struct {
	client     *minio.Client
	bucketName string
	enabled    bool
}

// DefaultMinioResource returns the archive resource singleton.
func DefaultMinioResource() *MinioResource {
	minioResourceOnce.Do(func() {
		singletonMinioResource = &MinioResource{}
	})
	return singletonMinioResource
}

// MustOpen connects to the archive endpoint if archiving is enabled.
func (r *MinioResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MinioResource")
	}

	archiveCfg := cfg.Archive
	if !archiveCfg.Enabled {
		logger.Infof("Artifact archive disabled, skipping MinIO init")
		return
	}
	if archiveCfg.Endpoint == "" {
		panic("archive endpoint is required when archive is enabled")
	}
	if archiveCfg.BucketName == "" {
		panic("archive bucket_name is required when archive is enabled")
	}

	client, err := minio.New(archiveCfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(archiveCfg.AccessKeyID, archiveCfg.SecretAccessKey, ""),
		Secure: archiveCfg.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create minio client: %v", err))
	}

	r.client = client
	r.bucketName = archiveCfg.BucketName
	r.enabled = true

	r.ensureBucket()

	logger.Info("MinIO archive resource initialized", map[string]interface{}{
		"endpoint":    archiveCfg.Endpoint,
		"bucket_name": r.bucketName,
	})
}

func (r *MinioResource) ensureBucket() {
	ctx := context.Background()
	exists, err := r.client.BucketExists(ctx, r.bucketName)
	if err != nil {
		panic(fmt.Sprintf("failed to check minio bucket: %v", err))
	}
	if exists {
		return
	}
	if err := r.client.MakeBucket(ctx, r.bucketName, minio.MakeBucketOptions{}); err != nil {
		panic(fmt.Sprintf("failed to create minio bucket: %v", err))
	}
}

// Enabled reports whether the archive is configured and connected.
func (r *MinioResource) Enabled() bool {
	return r.enabled
}

// GetClient returns the MinIO client, nil when the archive is disabled.
func (r *MinioResource) GetClient() *minio.Client {
	return r.client
}

// GetBucketName returns the archive bucket.
func (r *MinioResource) GetBucketName() string {
	return r.bucketName
}

// Close releases the resource; the minio client holds no persistent
// connections.
func (r *MinioResource) Close() {}

// MinioResourcePlugin registers the archive resource with the manager.
type MinioResourcePlugin struct{}

func (p *MinioResourcePlugin) Name() string {
	return "minioResource"
}

func (p *MinioResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultMinioResource()
}
