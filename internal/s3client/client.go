// Package s3client wraps the AWS SDK v2 S3 service client down to
// exactly the object operations the s3 key-value engine needs: list,
// get, put, copy, delete. The kv.Manager contract has no notion of
// object metadata or byte-range reads, so neither appears here.
package s3client

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mdbfs/mdbfs/internal/credentials"
)

// Client is a thin handle around one bucket's worth of S3 operations.
type Client struct {
	bucket   string
	region   string
	endpoint string
	s3Client *s3.Client
}

// NewClientWithEndpoint builds a Client for bucket in region. When
// endpoint is non-empty the client targets that S3-compatible endpoint
// instead of AWS (path-style addressing, the convention LocalStack and
// similar test doubles require) rather than the real service. A nil or
// incomplete creds falls back to the SDK's default credential chain.
func NewClientWithEndpoint(bucket, region, endpoint string, creds *credentials.Credentials) *Client {
	client := &Client{
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}

	cfgOptions := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if creds != nil && creds.IsValid() {
		cfgOptions = append(cfgOptions, config.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			creds.AccessKeyID,
			creds.SecretAccessKey,
			creds.SessionToken,
		)))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), cfgOptions...)
	if err != nil {
		return client
	}

	var s3Options []func(*s3.Options)
	if endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}
	client.s3Client = s3.NewFromConfig(cfg, s3Options...)
	return client
}

// ListObjects lists every object key under prefix.
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	if c.s3Client == nil {
		return nil, fmt.Errorf("S3 client not initialized")
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	}

	keys := []string{}
	pages := s3.NewListObjectsV2Paginator(c.s3Client, input)
	for pages.HasMorePages() {
		result, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range result.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

// GetObject retrieves the full body of the object at key.
func (c *Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	if c.s3Client == nil {
		return nil, fmt.Errorf("S3 client not initialized")
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	result, err := c.s3Client.GetObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// PutObject uploads data as the full body of the object at key,
// overwriting whatever was there.
func (c *Client) PutObject(ctx context.Context, key string, data []byte) error {
	if c.s3Client == nil {
		return fmt.Errorf("S3 client not initialized")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// CopyObject duplicates the object at sourceKey to destKey within the
// same bucket.
func (c *Client) CopyObject(ctx context.Context, sourceKey, destKey string) error {
	if c.s3Client == nil {
		return fmt.Errorf("S3 client not initialized")
	}

	copySource := fmt.Sprintf("%s/%s", c.bucket, sourceKey)
	input := &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(destKey),
		CopySource: aws.String(copySource),
	}

	if _, err := c.s3Client.CopyObject(ctx, input); err != nil {
		return fmt.Errorf("failed to copy object: %w", err)
	}
	return nil
}

// DeleteObject deletes the object at key.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	if c.s3Client == nil {
		return fmt.Errorf("S3 client not initialized")
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
