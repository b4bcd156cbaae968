// Package objectstore downloads resume documents from S3 or an S3-compatible service such as R2.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// URIScheme prefixes object locations given on the command line.
const URIScheme = "s3://"

// Options configure the S3 client. Empty credentials fall back to the default AWS chain.
type Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// MaxBytes limits the size of a downloaded object. Zero means unlimited.
	MaxBytes int64
}

// ObjectTooLargeError is returned when an object exceeds Options.MaxBytes.
type ObjectTooLargeError struct {
	Bucket string
	Key    string
	Limit  int64
}

func (e *ObjectTooLargeError) Error() string {
	return fmt.Sprintf("object s3://%s/%s exceeds the %d byte limit", e.Bucket, e.Key, e.Limit)
}

// getObjectAPI is the subset of the S3 client used here.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client downloads objects.
type Client struct {
	api      getObjectAPI
	maxBytes int64
}

// New builds a client from opts.
func New(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{api: api, maxBytes: opts.MaxBytes}, nil
}

// Download returns the object's contents.
func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	var body io.Reader = out.Body
	if c.maxBytes > 0 {
		body = io.LimitReader(out.Body, c.maxBytes+1)
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	if c.maxBytes > 0 && int64(buf.Len()) > c.maxBytes {
		return nil, &ObjectTooLargeError{Bucket: bucket, Key: key, Limit: c.maxBytes}
	}
	return buf.Bytes(), nil
}

// IsURI reports whether s looks like an s3://bucket/key location.
func IsURI(s string) bool {
	return strings.HasPrefix(s, URIScheme)
}

// ParseURI splits s3://bucket/key into its bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	rest := strings.TrimPrefix(uri, URIScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URI must have the form s3://bucket/key: %q", uri)
	}
	return bucket, key, nil
}
