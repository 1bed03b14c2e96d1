package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
}

func newTestStore(t *testing.T, handler http.HandlerFunc) *S3Store {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}, nil
		}),
	})

	store, err := NewS3Store(client, "photos", "recipes")
	require.NoError(t, err)
	return store
}

func recorder(status int) (http.HandlerFunc, func() []recordedRequest) {
	var (
		mu   sync.Mutex
		seen []recordedRequest
	)
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		seen = append(seen, recordedRequest{Method: r.Method, Path: r.URL.Path})
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(status)
	}
	return handler, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), seen...)
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(s3.New(s3.Options{Region: "us-east-1"}), " ", "")
	assert.ErrorIs(t, err, ErrNoBucket)
}

func TestS3StoreUpload(t *testing.T) {
	handler, requests := recorder(http.StatusOK)
	store := newTestStore(t, handler)

	err := store.Upload(context.Background(), "abc/photo.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPut, got[0].Method)
	assert.Equal(t, "/photos/recipes/abc/photo.jpg", got[0].Path)
}

func TestS3StoreDelete(t *testing.T) {
	handler, requests := recorder(http.StatusNoContent)
	store := newTestStore(t, handler)

	require.NoError(t, store.Delete(context.Background(), "abc/photo.jpg"))

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodDelete, got[0].Method)
	assert.Equal(t, "/photos/recipes/abc/photo.jpg", got[0].Path)
}

func TestS3StoreRejectsEmptyKeys(t *testing.T) {
	handler, requests := recorder(http.StatusOK)
	store := newTestStore(t, handler)
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "", "image/png", strings.NewReader("x")))
	assert.Error(t, store.Delete(ctx, " "))
	assert.Error(t, store.DeletePrefix(ctx, "/"))
	_, err := store.PresignGet(ctx, "", time.Minute)
	assert.Error(t, err)
	assert.Empty(t, requests())
}

func TestS3StorePresignGet(t *testing.T) {
	handler, requests := recorder(http.StatusOK)
	store := newTestStore(t, handler)

	url, err := store.PresignGet(context.Background(), "abc/photo.jpg", 10*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, url, "/photos/recipes/abc/photo.jpg")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.Empty(t, requests(), "presigning is offline")
}
