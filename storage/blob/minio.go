// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/poiesic/glimpse/storage"
)

// MinIOConfig holds connection settings for an S3 compatible bucket.
type MinIOConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinIO stores screenshots as objects in a bucket.
type MinIO struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

var _ storage.ImageStore = (*MinIO)(nil)

// NewMinIO connects to the bucket, creating it when it doesn't exist.
//
// Returns storage.ImageStore interface to enforce abstraction.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (storage.ImageStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("minio endpoint and bucket are required")
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, storage.NewStoreError("connect minio", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, storage.NewStoreError("check bucket", err)
	}
	logger := slog.Default().With("component", "minio-images", "bucket", cfg.Bucket)
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, storage.NewStoreError("create bucket", err)
		}
		logger.Info("created image bucket")
	}

	return &MinIO{client: cli, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger}, nil
}

// Put uploads data and returns the object location as bucket/key.
func (s *MinIO) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.key(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", storage.NewStoreError("upload image", err)
	}
	s.logger.Debug("uploaded image", "key", key, "bytes", len(data))
	return s.bucket + "/" + key, nil
}

// Get downloads the object stored under name.
func (s *MinIO) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError("download image", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError("download image", err)
	}
	return data, nil
}

// Exists checks object metadata without downloading it.
func (s *MinIO) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, storage.NewStoreError("stat image", err)
}

func (s *MinIO) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *MinIO) mapError(op string, err error) error {
	if isNoSuchKey(err) {
		return storage.ErrNotFound
	}
	return storage.NewStoreError(op, err)
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == minio.NoSuchKey
}
