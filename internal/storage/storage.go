package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNoBucket is returned by stores constructed without a bucket.
var ErrNoBucket = errors.New("storage bucket is required")

// PhotoStore keeps recipe photos in remote object storage.
type PhotoStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
