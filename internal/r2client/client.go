// Package r2client talks to Cloudflare R2 through the S3 API. The bot keeps
// its published results snapshot there and uses conditional writes as a
// cross-instance lock for the refresh job.
package r2client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("r2client: object not found")

// Config holds R2 connection settings.
type Config struct {
	Endpoint    string // e.g. https://<account>.r2.cloudflarestorage.com
	AccessKeyID string
	SecretKey   string
	BucketName  string
}

// Validate reports the first missing field.
func (c Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("r2client: endpoint is required")
	case c.AccessKeyID == "":
		return errors.New("r2client: access key id is required")
	case c.SecretKey == "":
		return errors.New("r2client: secret key is required")
	case c.BucketName == "":
		return errors.New("r2client: bucket name is required")
	}
	return nil
}

// Client performs object operations against one bucket.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New creates a client. No request is made until the first operation.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2client: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &Client{s3: client, bucket: cfg.BucketName}, nil
}

// Upload writes an object and returns its ETag.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	out, err := c.s3.PutObject(ctx, c.putInput(key, body, contentType))
	if err != nil {
		return "", fmt.Errorf("r2client: upload %q: %w", key, err)
	}
	return trimETag(out.ETag), nil
}

// Download returns the object body and ETag. The caller closes the body.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("r2client: download %q: %w", key, err)
	}
	return out.Body, trimETag(out.ETag), nil
}

// HeadObject returns the ETag of key without fetching the body.
func (c *Client) HeadObject(ctx context.Context, key string) (string, error) {
	out, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("r2client: head %q: %w", key, err)
	}
	return trimETag(out.ETag), nil
}

// PutObjectIfNotExists creates key only when it is absent (If-None-Match: *).
// It reports false without error when the object already exists.
func (c *Client) PutObjectIfNotExists(ctx context.Context, key string, body io.Reader, contentType string) (bool, string, error) {
	in := c.putInput(key, body, contentType)
	in.IfNoneMatch = aws.String("*")

	out, err := c.s3.PutObject(ctx, in)
	if err != nil {
		if isPreconditionFailed(err) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("r2client: put if not exists %q: %w", key, err)
	}
	return true, trimETag(out.ETag), nil
}

// PutObjectIfMatch replaces key only when its ETag still equals etag.
// It reports false without error on a mismatch.
func (c *Client) PutObjectIfMatch(ctx context.Context, key string, body io.Reader, etag, contentType string) (bool, string, error) {
	in := c.putInput(key, body, contentType)
	in.IfMatch = aws.String(`"` + etag + `"`)

	out, err := c.s3.PutObject(ctx, in)
	if err != nil {
		if isPreconditionFailed(err) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("r2client: put if match %q: %w", key, err)
	}
	return true, trimETag(out.ETag), nil
}

// DeleteObject removes key.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("r2client: delete %q: %w", key, err)
	}
	return nil
}

func (c *Client) putInput(key string, body io.Reader, contentType string) *s3.PutObjectInput {
	in := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	return in
}

func trimETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, `"`)
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
		return true
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusPreconditionFailed
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
