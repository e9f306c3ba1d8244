// Package archive stores export artifacts (workbooks, receipt bundles) and
// raw statement files in a GCS bucket, so imports can be replayed and
// reports re-downloaded later.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single object write.
const uploadTimeout = 2 * time.Minute

// Store wraps one bucket. It assumes Application Default Credentials are
// configured (gcloud auth application-default login).
type Store struct {
	client *storage.Client
	bucket string
}

func New(ctx context.Context, bucket string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Put writes one artifact and returns its gs:// URI. The object name is
// namespaced by owner so bundles from different users never collide.
func (s *Store) Put(ctx context.Context, userID, name, contentType string, data []byte) (string, error) {
	objectName := path.Join(userID, name)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("archive: write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("archive: finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Fetch downloads the object the URI points at.
func (s *Store) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, objectPath, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := s.client.Bucket(bucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: open object %s/%s: %w", bucket, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: read object %s/%s: %w", bucket, objectPath, err)
	}
	return data, nil
}

// ParseURI splits a gs:// URI into bucket and object path.
func ParseURI(uri string) (bucket, objectPath string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("archive: invalid storage URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("archive: storage URI has no object path: %s", uri)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI extracts the bare filename from a gs:// URI.
// e.g. "gs://bucket/user/extrato.csv" -> "extrato.csv".
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
