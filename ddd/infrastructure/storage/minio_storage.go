package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"compress-bot/ddd/domain/gateway"
	"compress-bot/internal/resource"
	"compress-bot/pkg/logger"
)

// MinioArchive 产物归档存储实现
type MinioArchive struct {
	minioResource *resource.MinioResource
}

// NewMinioArchive 创建归档存储实例
func NewMinioArchive(minioResource *resource.MinioResource) gateway.ArchiveGateway {
	return &MinioArchive{
		minioResource: minioResource,
	}
}

// Enabled reports whether the archive bucket is configured.
func (s *MinioArchive) Enabled() bool {
	return s.minioResource != nil && s.minioResource.Enabled()
}

// ArchiveArtifact 上传产物到归档桶
func (s *MinioArchive) ArchiveArtifact(ctx context.Context, localPath, objectKey string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	file, err := os.Open(localPath)
	if err != nil {
		logger.Error("Failed to open local file", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		logger.Error("Failed to get file info", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return fmt.Errorf("get file info failed: %w", err)
	}

	contentType := getContentTypeFromExtension(objectKey)

	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to archive artifact to MinIO", map[string]interface{}{
			"local_path": localPath,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("archive artifact to minio failed: %w", err)
	}

	logger.Info("Artifact archived successfully", map[string]interface{}{
		"local_path": localPath,
		"object_key": objectKey,
		"size":       fileInfo.Size(),
	})

	return nil
}

// getContentTypeFromExtension 根据文件扩展名获取内容类型
func getContentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mov":
		return "video/quicktime"
	case ".aac":
		return "audio/aac"
	case ".opus", ".ogg":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".ac3", ".eac3", ".dts":
		return "application/octet-stream"
	default:
		return "application/octet-stream"
	}
}
