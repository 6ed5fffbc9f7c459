package dataset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestParseSource(t *testing.T) {
	client := &fakeS3{}

	src, err := ParseSource("Data/dataset.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "Data/dataset.csv"}, src)

	src, err = ParseSource("file:///srv/data/dataset.csv.gz", nil)
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "/srv/data/dataset.csv.gz"}, src)

	src, err = ParseSource("s3://recipes/exports/dataset.csv.gz", client)
	require.NoError(t, err)
	assert.Equal(t, "s3://recipes/exports/dataset.csv.gz", src.String())

	for _, bad := range []string{"", "s3://bucket", "s3:///key", "s3://bucket/"} {
		_, err := ParseSource(bad, client)
		assert.Error(t, err, bad)
	}

	_, err = ParseSource("s3://bucket/key", nil)
	assert.Error(t, err)
}

func TestNeedsS3(t *testing.T) {
	assert.False(t, NeedsS3([]string{"a.csv", "file://b.csv"}))
	assert.True(t, NeedsS3([]string{"a.csv", " s3://bucket/key"}))
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"recipes/dataset.csv.gz": gzipBytes(t, sampleCSV(t)),
	}}

	table, err := NewLoader(
		S3Source{Client: client, Bucket: "recipes", Key: "missing.csv"},
		S3Source{Client: client, Bucket: "recipes", Key: "dataset.csv.gz"},
	).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, "s3://recipes/dataset.csv.gz", table.Source())

	_, err = S3Source{Client: client, Bucket: "recipes", Key: "missing.csv"}.Open(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = S3Source{Client: &fakeS3{err: errors.New("access denied")}, Bucket: "b", Key: "k"}.Open(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSourceNotFound)
}
