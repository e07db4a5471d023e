package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

// Bucket is the export file store: canonical roadmap exports are
// written here and served through short-lived signed URLs.
type Bucket interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, keys ...string) error
	SignedURL(key string, ttl time.Duration) (string, error)
}

type bucket struct {
	log        *logger.Logger
	client     *storage.Client
	bucketName string
}

func NewBucket(log *logger.Logger) (Bucket, error) {
	serviceLog := log.With("service", "Bucket")
	name := os.Getenv("GCS_BUCKET_NAME")
	if name == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET_NAME")
	}

	ctx := context.Background()
	saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	var client *storage.Client
	var err error
	if saPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
	} else {
		client, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	}
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &bucket{log: serviceLog, client: client, bucketName: name}, nil
}

func (b *bucket) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %q: %w", key, err)
	}
	return nil
}

func (b *bucket) Remove(ctx context.Context, keys ...string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := b.client.Bucket(b.bucketName).Object(key).Delete(ctx); err != nil {
			if err == storage.ErrObjectNotExist {
				continue
			}
			return fmt.Errorf("delete object %q: %w", key, err)
		}
	}
	return nil
}

func (b *bucket) SignedURL(key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	url, err := b.client.Bucket(b.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %q: %w", key, err)
	}
	return url, nil
}
