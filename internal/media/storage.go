// Package media stores images and videos attached to posts.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tentkids/internal/metrics"
)

const (
	PresignExpiry = 15 * time.Minute
	MaxUploadSize = 50 << 20
)

var ErrContentType = errors.New("content type not allowed")

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// KindOf accepts image/* and video/* content types only.
func KindOf(contentType string) (Kind, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage, nil
	case strings.HasPrefix(ct, "video/"):
		return KindVideo, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrContentType, contentType)
	}
}

type Upload struct {
	Kind      Kind      `json:"kind"`
	ObjectKey string    `json:"objectKey"`
	UploadURL string    `json:"uploadUrl,omitempty"`
	ObjectURL string    `json:"objectUrl"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type Storage struct {
	client     *minio.Client
	bucketName string
}

func NewStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return NewStorageWithClient(client, bucketName), nil
}

// NewStorageWithClient skips the bucket check.
func NewStorageWithClient(client *minio.Client, bucketName string) *Storage {
	return &Storage{client: client, bucketName: bucketName}
}

// ObjectKey places an upload under its owner and keeps only the base name of fileName.
func ObjectKey(ownerID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == '?' || r == '#' || r == '%' {
			return '_'
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("uploads/%s/%s-%s", ownerID, uuid.NewString(), name)
}

// PresignUpload returns a short-lived PUT URL for a client-side upload.
func (s *Storage) PresignUpload(ctx context.Context, ownerID, fileName, contentType string) (Upload, error) {
	kind, err := KindOf(contentType)
	if err != nil {
		return Upload{}, err
	}
	key := ObjectKey(ownerID, fileName)

	presignedURL, err := s.client.PresignedPutObject(ctx, s.bucketName, key, PresignExpiry)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	metrics.MediaUploadsTotal.WithLabelValues(string(kind)).Inc()
	return Upload{
		Kind:      kind,
		ObjectKey: key,
		UploadURL: presignedURL.String(),
		ObjectURL: s.ObjectURL(key),
		ExpiresAt: time.Now().Add(PresignExpiry).UTC(),
	}, nil
}

// Put uploads r directly, for callers that hold the file themselves.
func (s *Storage) Put(ctx context.Context, ownerID, fileName, contentType string, r io.Reader, size int64) (Upload, error) {
	kind, err := KindOf(contentType)
	if err != nil {
		return Upload{}, err
	}
	if size > MaxUploadSize {
		return Upload{}, fmt.Errorf("file too large: %d bytes", size)
	}
	key := ObjectKey(ownerID, fileName)

	_, err = s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Upload{}, fmt.Errorf("failed to upload object: %w", err)
	}

	metrics.MediaUploadsTotal.WithLabelValues(string(kind)).Inc()
	return Upload{Kind: kind, ObjectKey: key, ObjectURL: s.ObjectURL(key)}, nil
}

func (s *Storage) ObjectURL(objectKey string) string {
	scheme := "http"
	if s.client.EndpointURL().Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucketName, objectKey)
}
