package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Uploader stores asset bytes and says where they can be fetched from
type Uploader interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error)
	Remove(ctx context.Context, key string) error
}

// PlaceholderURL is served for every upload when no object storage is configured
const PlaceholderURL = "https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=600&q=80"

// PlaceholderUploader discards the bytes and hands back a stock image
type PlaceholderUploader struct{}

func (PlaceholderUploader) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	return PlaceholderURL, ctx.Err()
}

func (PlaceholderUploader) Remove(ctx context.Context, key string) error {
	return nil
}

// S3Uploader writes public objects to an S3-compatible bucket using
// path-style addressing.
type S3Uploader struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

// NewS3Uploader returns (nil, nil) when endpoint or credentials are missing so
// the caller can fall back to the placeholder.
func NewS3Uploader(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3Uploader, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 uploader: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")
	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3Uploader{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (u *S3Uploader) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := u.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", u.bucket, key, err)
	}
	return u.FileURL(key), nil
}

func (u *S3Uploader) Remove(ctx context.Context, key string) error {
	_, err := u.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", u.bucket, key, err)
	}
	return nil
}

// FileURL uses the public URL when set, otherwise a path-style URL
func (u *S3Uploader) FileURL(key string) string {
	if u.publicURL != "" {
		return u.publicURL + "/" + key
	}
	return u.endpoint + "/" + u.bucket + "/" + key
}
