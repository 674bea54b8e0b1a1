package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// S3Client keeps blobs in one bucket. With a custom endpoint (S3-compatible
// stores) blob URLs are path-style under that endpoint.
type S3Client struct {
	s3       *s3.S3
	bucket   string
	endpoint string
}

// NewS3Client merges cfgs over the region config, in order.
func NewS3Client(region, bucket string, cfgs ...*aws.Config) (*S3Client, error) {
	configs := append([]*aws.Config{{Region: aws.String(region)}}, cfgs...)
	sess, err := session.NewSession(configs...)
	if err != nil {
		return nil, err
	}

	return &S3Client{
		s3:       s3.New(sess),
		bucket:   bucket,
		endpoint: strings.TrimRight(aws.StringValue(sess.Config.Endpoint), "/"),
	}, nil
}

// EndpointConfig points the client at an S3-compatible store.
func EndpointConfig(endpoint string) *aws.Config {
	return &aws.Config{
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
	}
}

func (c *S3Client) UploadFile(ctx context.Context, file *multipart.FileHeader, path string) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, err = c.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(path),
		Body:          f,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		util.Logger.Error("s3 upload failed", zap.Error(err), zap.String("bucket", c.bucket), zap.String("key", path))
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}

	util.Logger.Info("file uploaded", zap.String("bucket", c.bucket), zap.String("key", path))
	return c.objectURL(path), nil
}

func (c *S3Client) Delete(ctx context.Context, path string) error {
	_, err := c.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (c *S3Client) objectURL(path string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, path)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, path)
}
