// Package storage relays uploaded media to a MinIO bucket and hands back
// public URLs. Deletion takes the same public URL, so callers never deal
// with object names.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type ObjectStore interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, publicURL string) error
}

type MinioStore struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
}

func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	return &MinioStore{
		client:   client,
		endpoint: endpoint,
		bucket:   bucket,
		useSSL:   useSSL,
	}, nil
}

func (s *MinioStore) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return s.publicURL(objectName), nil
}

func (s *MinioStore) Remove(ctx context.Context, publicURL string) error {
	objectName := strings.TrimPrefix(publicURL, s.publicURL(""))
	if objectName == "" || objectName == publicURL {
		return fmt.Errorf("not an object of bucket %s: %s", s.bucket, publicURL)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", objectName, err)
	}
	return nil
}

func (s *MinioStore) publicURL(objectName string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return scheme + "://" + s.endpoint + "/" + s.bucket + "/" + objectName
}

// ObjectName builds a unique object name keeping the upload's extension.
func ObjectName(filename string) string {
	return uuid.New().String() + filepath.Ext(filename)
}

// UploadFileHeader streams one multipart file into the store and returns
// its public URL.
func UploadFileHeader(ctx context.Context, store ObjectStore, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	return store.Upload(ctx, ObjectName(fh.Filename), src, fh.Size, fh.Header.Get("Content-Type"))
}
