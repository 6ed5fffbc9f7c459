package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrSourceNotFound is returned when a source object or file does not exist.
var ErrSourceNotFound = errors.New("dataset source not found")

// Source is a location the raw dataset bytes can be read from.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads the dataset from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	return f, nil
}

func (s FileSource) String() string {
	return s.Path
}

// ObjectGetter is the subset of the S3 client used to fetch datasets.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the dataset from an S3 (or S3-compatible) bucket.
type S3Source struct {
	Client ObjectGetter
	Bucket string
	Key    string
}

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s)
		}
		return nil, fmt.Errorf("failed to get dataset object: %w", err)
	}
	return out.Body, nil
}

func (s S3Source) String() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// ParseSource turns a configured location into a Source. Locations are local
// paths, file:// URIs, or s3://bucket/key URIs. client may be nil when no S3
// locations are configured.
func ParseSource(location string, client ObjectGetter) (Source, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, errors.New("empty dataset location")
	case strings.HasPrefix(location, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 location %q: want s3://bucket/key", location)
		}
		if client == nil {
			return nil, fmt.Errorf("s3 location %q configured without an s3 client", location)
		}
		return S3Source{Client: client, Bucket: bucket, Key: key}, nil
	case strings.HasPrefix(location, "file://"):
		return FileSource{Path: strings.TrimPrefix(location, "file://")}, nil
	default:
		return FileSource{Path: location}, nil
	}
}

// ParseSources parses every location in order.
func ParseSources(locations []string, client ObjectGetter) ([]Source, error) {
	sources := make([]Source, 0, len(locations))
	for _, loc := range locations {
		src, err := ParseSource(loc, client)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// NeedsS3 reports whether any location refers to S3.
func NeedsS3(locations []string) bool {
	for _, loc := range locations {
		if strings.HasPrefix(strings.TrimSpace(loc), "s3://") {
			return true
		}
	}
	return false
}
