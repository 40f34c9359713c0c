package s3

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// PhotoStorage stores listing photos in a MinIO/S3 bucket.
type PhotoStorage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	logger   *logger.Logger
}

func NewPhotoStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*PhotoStorage, error) {
	log.Info("Initializing S3 photo storage", zap.String("endpoint", endpoint), zap.String("bucket", bucketName))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("Failed to create MinIO client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), bucketName)
		if errBucketExists != nil || !exists {
			log.Error("Failed to make or verify bucket", zap.String("bucket", bucketName), zap.Error(err))
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", bucketName, err)
		}
		log.Info("Bucket already exists", zap.String("bucket", bucketName))
	}

	return &PhotoStorage{
		client:   client,
		bucket:   bucketName,
		endpoint: endpoint,
		useSSL:   useSSL,
		logger:   log.Named("PhotoStorage"),
	}, nil
}

// Upload stores the photo under a generated object name and returns its
// public URL. The original filename only contributes its extension.
func (s *PhotoStorage) Upload(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	objectName := uuid.NewString() + filepath.Ext(fileName)

	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		s.logger.Error("Failed to upload photo", zap.String("object", objectName), zap.Error(err))
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", objectName, s.bucket, err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, objectName)
	s.logger.Info("Photo uploaded", zap.String("url", url))
	return url, nil
}
