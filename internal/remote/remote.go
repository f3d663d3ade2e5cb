// Package remote pushes local artifact files to an object store.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

//go:generate mockgen -destination=../mocks/mock_remote.go -package=mocks irisml/internal/remote Uploader

var ErrInvalidBucketURI = errors.New("invalid bucket uri")

// Uploader performs one blocking upload of localPath to key in bucket.
type Uploader interface {
	Upload(ctx context.Context, bucket, localPath, key string) error
}

// Location is a parsed bucket URI.
type Location struct {
	Scheme string
	Bucket string
	// Root is the parent directory for file: buckets.
	Root string
}

// ParseBucketURI accepts gs://<bucket> and file://<dir>/<bucket>.
func ParseBucketURI(uri string) (Location, error) {
	switch {
	case strings.HasPrefix(uri, "gs://"):
		b := strings.Trim(strings.TrimPrefix(uri, "gs://"), "/")
		if b == "" || strings.Contains(b, "/") {
			return Location{}, fmt.Errorf("%w: %q", ErrInvalidBucketURI, uri)
		}
		return Location{Scheme: "gs", Bucket: b}, nil
	case strings.HasPrefix(uri, "file://"):
		p := filepath.Clean(strings.TrimPrefix(uri, "file://"))
		b := filepath.Base(p)
		if b == "." || b == string(filepath.Separator) {
			return Location{}, fmt.Errorf("%w: %q", ErrInvalidBucketURI, uri)
		}
		return Location{Scheme: "file", Bucket: b, Root: filepath.Dir(p)}, nil
	}
	return Location{}, fmt.Errorf("%w: %q", ErrInvalidBucketURI, uri)
}

// Key joins an artifact prefix and a file name into an object key.
func Key(prefix, name string) string {
	return path.Join(strings.Trim(prefix, "/"), name)
}

// Open builds the uploader for a bucket URI. The returned close function
// releases client resources.
func Open(ctx context.Context, uri string) (Uploader, Location, func() error, error) {
	loc, err := ParseBucketURI(uri)
	if err != nil {
		return nil, Location{}, nil, err
	}
	switch loc.Scheme {
	case "gs":
		g, err := NewGCS(ctx)
		if err != nil {
			return nil, loc, nil, err
		}
		return g, loc, g.Close, nil
	default:
		return &Dir{Root: loc.Root}, loc, func() error { return nil }, nil
	}
}

// Dir stores objects as files under Root/<bucket>/<key>.
type Dir struct {
	Root string
}

func (d *Dir) Upload(ctx context.Context, bucket, localPath, key string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(d.Root, bucket, filepath.FromSlash(key))
	rel, err := filepath.Rel(filepath.Join(d.Root, bucket), dst)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("upload: key %q escapes bucket", key)
	}
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, out.Close()) }()
	_, err = io.Copy(out, src)
	return err
}
