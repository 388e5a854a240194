package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrObjectNotFound is returned by GetObject when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// S3Client wraps the object store operations used by the import pipeline.
type S3Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
}

// NewS3Client creates a new S3 client from AWS config.
// Path-style addressing is enabled when an endpoint override is configured
// so LocalStack bucket URLs resolve.
func NewS3Client(cfg sdkaws.Config) *S3Client {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.BaseEndpoint != nil
	})
	return &S3Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
	}
}

// GetObject opens a streamed reader over the object body. Callers must close it.
// A missing key yields ErrObjectNotFound.
func (c *S3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("s3 get object %s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("s3 get object %s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// CopyObject copies srcKey to dstKey inside the same bucket.
func (c *S3Client) CopyObject(ctx context.Context, bucket, srcKey, dstKey string) error {
	_, err := c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     sdkaws.String(bucket),
		CopySource: sdkaws.String((&url.URL{Path: bucket + "/" + srcKey}).EscapedPath()),
		Key:        sdkaws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("s3 copy object %s -> %s: %w", srcKey, dstKey, err)
	}
	return nil
}

// DeleteObject removes a single object.
func (c *S3Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PresignPut generates a presigned PUT URL for the provided bucket/key.
func (c *S3Client) PresignPut(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	presigned, err := c.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return presigned.URL, nil
}

// Upload streams body to bucket/key using the multipart upload manager.
func (c *S3Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error) {
	uploader := manager.NewUploader(c.client)
	out, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(bucket),
		Key:         sdkaws.String(key),
		ContentType: sdkaws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return out.Location, nil
}
