// Package storage is the object-store collaborator, backed by MinIO.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Vitaee/books-api/internal/config"
	"github.com/Vitaee/books-api/internal/shared/apperrors"
	"github.com/Vitaee/books-api/internal/shared/utils"
)

// UploadResult describes a stored object.
type UploadResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	ETag string `json:"etag"`
	Size int64  `json:"size"`
}

// UploadOptions tunes a single upload. A zero value is valid.
type UploadOptions struct {
	// TargetKey overrides the generated key.
	TargetKey   string
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is a listed object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// MinIOStorage stores attachments in a single bucket, created on start when
// missing.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

func NewMinIOStorage(cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIOStorage{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores data under a sanitized, collision-resistant key derived from
// the original filename (unless opts.TargetKey pins one).
func (s *MinIOStorage) Upload(ctx context.Context, data []byte, originalName string, opts UploadOptions) (*UploadResult, error) {
	key := opts.TargetKey
	if key == "" {
		key = utils.StorageKey(originalName)
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: opts.Metadata,
		})
	if err != nil {
		return nil, apperrors.Upstream("storage.upload", err)
	}

	scheme := "http"
	if s.client.EndpointURL().Scheme == "https" {
		scheme = "https"
	}
	return &UploadResult{
		Key:  key,
		URL:  fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, key),
		ETag: info.ETag,
		Size: info.Size,
	}, nil
}

// Download reads the whole object into memory.
func (s *MinIOStorage) Download(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Upstream("storage.download", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, apperrors.Upstream("storage.download", err)
	}
	return data, nil
}

// Delete removes an object. Deleting an absent key succeeds.
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return apperrors.Upstream("storage.delete", err)
	}
	return nil
}

// Exists reports whether the key is present.
func (s *MinIOStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, apperrors.Upstream("storage.exists", err)
	}
	return true, nil
}

// List returns every object under the prefix.
func (s *MinIOStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, apperrors.Upstream("storage.list", object.Err)
		}
		objects = append(objects, ObjectInfo{Key: object.Key, Size: object.Size})
	}
	return objects, nil
}

// Presign issues a time-limited GET URL for the key.
func (s *MinIOStorage) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", apperrors.Upstream("storage.presign", err)
	}
	return u.String(), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
