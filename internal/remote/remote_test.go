package remote_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irisml/internal/remote"
)

func TestParseBucketURI(t *testing.T) {
	loc, err := remote.ParseBucketURI("gs://mlops-course-mlopsweek1-unique")
	require.NoError(t, err)
	assert.Equal(t, remote.Location{Scheme: "gs", Bucket: "mlops-course-mlopsweek1-unique"}, loc)

	loc, err = remote.ParseBucketURI("file:///tmp/buckets/iris")
	require.NoError(t, err)
	assert.Equal(t, remote.Location{Scheme: "file", Bucket: "iris", Root: "/tmp/buckets"}, loc)

	for _, bad := range []string{"", "s3://x", "gs://", "gs://a/b"} {
		_, err := remote.ParseBucketURI(bad)
		assert.ErrorIs(t, err, remote.ErrInvalidBucketURI, bad)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "my-models/iris-classifier-week-8/model.gob", remote.Key("/my-models/iris-classifier-week-8/", "model.gob"))
	assert.Equal(t, "model.gob", remote.Key("", "model.gob"))
}

func TestDirUpload(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, os.WriteFile(src, []byte("model"), 0o644))

	up, loc, closeFn, err := remote.Open(context.Background(), "file://"+filepath.Join(root, "bucket"))
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, up.Upload(context.Background(), loc.Bucket, src, "a/b/model.gob"))
	got, err := os.ReadFile(filepath.Join(root, "bucket", "a", "b", "model.gob"))
	require.NoError(t, err)
	assert.Equal(t, "model", string(got))

	assert.Error(t, up.Upload(context.Background(), loc.Bucket, src, "../../escape"))
	assert.Error(t, up.Upload(context.Background(), loc.Bucket, filepath.Join(root, "nope"), "x"))
}
