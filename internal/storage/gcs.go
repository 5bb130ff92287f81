package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const defaultLinkTTL = 24 * time.Hour

// GCSStorage shares videos by uploading them to a bucket and handing out a
// time-limited link.
type GCSStorage struct {
	client  *storage.Client
	bucket  string
	prefix  string
	linkTTL time.Duration
}

func NewGCSStorage(ctx context.Context, bucket, prefix string, linkTTL time.Duration) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	if linkTTL <= 0 {
		linkTTL = defaultLinkTTL
	}

	return &GCSStorage{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		linkTTL: linkTTL,
	}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) Share(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	objectName := s.objectName(name)

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload video: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload: %w", err)
	}

	return s.link(objectName), nil
}

// link signs a GET URL for objectName, falling back to the plain object URL
// when no signing credentials are available.
func (s *GCSStorage) link(objectName string) string {
	link, err := s.client.Bucket(s.bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(s.linkTTL),
	})
	if err != nil {
		slog.Warn("Could not sign share link, using object URL", "error", err)
		return publicURL(s.bucket, objectName)
	}
	return link
}

// SharedVideo is a video previously uploaded under the share prefix.
type SharedVideo struct {
	Name    string
	Link    string
	Size    int64
	Updated time.Time
}

// ListShared returns the uploaded videos, each with a freshly signed link.
func (s *GCSStorage) ListShared(ctx context.Context) ([]SharedVideo, error) {
	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	return collectShared(it.Next, s.link)
}

// collectShared drains next until iterator.Done.
func collectShared(next func() (*storage.ObjectAttrs, error), link func(objectName string) string) ([]SharedVideo, error) {
	var videos []SharedVideo
	for {
		attrs, err := next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		videos = append(videos, SharedVideo{
			Name:    path.Base(attrs.Name),
			Link:    link(attrs.Name),
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}
	return videos, nil
}

func (s *GCSStorage) objectName(name string) string {
	name = path.Base(name)
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func publicURL(bucket, objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectName)
}
