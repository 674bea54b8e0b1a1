package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type s3Request struct {
	method string
	path   string
	body   string
}

// fakeS3 records object requests and answers with status.
type fakeS3 struct {
	mu       sync.Mutex
	requests []s3Request
	status   int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, s3Request{method: r.Method, path: r.URL.Path, body: string(body)})
	status := f.status
	f.mu.Unlock()

	if status >= 300 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
		return
	}
	w.WriteHeader(status)
}

func (f *fakeS3) recorded() []s3Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]s3Request(nil), f.requests...)
}

func newTestS3(t *testing.T, status int) (*S3Client, *fakeS3) {
	t.Helper()
	fake := &fakeS3{status: status}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Client("us-east-1", "images", EndpointConfig(srv.URL), &aws.Config{
		Credentials: credentials.NewStaticCredentials("id", "secret", ""),
		MaxRetries:  aws.Int(0),
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3Upload(t *testing.T) {
	store, fake := newTestS3(t, http.StatusOK)

	url, err := store.UploadFile(context.Background(), multipartFile(t, "a.png", []byte("png")), "posts/a.png")
	require.NoError(t, err)
	assert.Equal(t, store.endpoint+"/images/posts/a.png", url)

	requests := fake.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPut, requests[0].method)
	assert.Equal(t, "/images/posts/a.png", requests[0].path)
	assert.Equal(t, "png", requests[0].body)
}

func TestS3UploadRejected(t *testing.T) {
	store, _ := newTestS3(t, http.StatusForbidden)

	url, err := store.UploadFile(context.Background(), multipartFile(t, "a.png", []byte("png")), "posts/a.png")
	assert.Error(t, err)
	assert.Empty(t, url)
}

func TestS3Delete(t *testing.T) {
	store, fake := newTestS3(t, http.StatusNoContent)

	require.NoError(t, store.Delete(context.Background(), "posts/a.png"))
	requests := fake.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodDelete, requests[0].method)
	assert.Equal(t, "/images/posts/a.png", requests[0].path)
}

func TestS3ObjectURL(t *testing.T) {
	store := &S3Client{bucket: "images"}
	assert.Equal(t, "https://images.s3.amazonaws.com/posts/a.png", store.objectURL("posts/a.png"))
}
