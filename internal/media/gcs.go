package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// Uploader stores an image and returns a URL clients can fetch it from.
type Uploader interface {
	Upload(ctx context.Context, prefix string, data []byte) (string, error)
}

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectWriter opens a writer for one object. It is satisfied by the GCS
// bucket handle and by in-memory doubles in tests.
type ObjectWriter interface {
	NewWriter(ctx context.Context, object, contentType string, metadata map[string]string) WriteCloser
}

type WriteCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

type GCSUploader struct {
	bucket string
	w      ObjectWriter
	now    func() time.Time
}

func NewGCSUploader(bucket string, w ObjectWriter) *GCSUploader {
	return &GCSUploader{bucket: bucket, w: w, now: time.Now}
}

// NewBucketWriter adapts a storage client to ObjectWriter.
func NewBucketWriter(client *storage.Client, bucket string) ObjectWriter {
	return bucketWriter{b: client.Bucket(bucket)}
}

type bucketWriter struct {
	b *storage.BucketHandle
}

func (bw bucketWriter) NewWriter(ctx context.Context, object, contentType string, metadata map[string]string) WriteCloser {
	w := bw.b.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata
	return w
}

// Upload sniffs the content type, writes the object under prefix with a
// download token and returns the token URL.
func (u *GCSUploader) Upload(ctx context.Context, prefix string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	token := uuid.NewString()
	objectPath := path.Join(strings.Trim(prefix, "/"), u.now().UTC().Format("20060102"), uuid.NewString()+ext)
	w := u.w.NewWriter(ctx, objectPath, contentType, map[string]string{
		"firebaseStorageDownloadTokens": token,
	})
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", objectPath, err)
	}
	return DownloadURL(u.bucket, objectPath, token), nil
}

func DownloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), token)
}
