package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Uploader implements the Uploader interface using AWS SDK v2.
type S3Uploader struct {
	Client    *s3.Client
	Bucket    string
	PublicURL string
}

// NewS3Uploader creates an S3 client from settings. A custom endpoint is
// addressed path-style so S3-compatible stores work.
func NewS3Uploader(ctx context.Context, settings Settings) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(settings.Region),
	}
	if settings.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		Client:    client,
		Bucket:    settings.Bucket,
		PublicURL: settings.PublicURL,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, localPath, remoteKey, sum string) (string, error) {
	metadata, err := objectMetadata(localPath, sum)
	if err != nil {
		return "", err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(remoteKey),
		Body:        file,
		ContentType: aws.String(contentType(localPath)),
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", remoteKey, err)
	}

	return publicURL(u.PublicURL, remoteKey), nil
}
