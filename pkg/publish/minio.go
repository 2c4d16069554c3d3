package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOUploader implements the Uploader interface using the MinIO SDK.
type MinIOUploader struct {
	Client    *minio.Client
	Bucket    string
	PublicURL string
}

// NewMinIOUploader creates a MinIO client from settings.
func NewMinIOUploader(settings Settings) (*MinIOUploader, error) {
	// The client expects host:port.
	endpoint := strings.TrimPrefix(strings.TrimPrefix(settings.Endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.UseSSL,
		Region: settings.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOUploader{
		Client:    client,
		Bucket:    settings.Bucket,
		PublicURL: settings.PublicURL,
	}, nil
}

func (u *MinIOUploader) Upload(ctx context.Context, localPath, remoteKey, sum string) (string, error) {
	metadata, err := objectMetadata(localPath, sum)
	if err != nil {
		return "", err
	}

	_, err = u.Client.FPutObject(ctx, u.Bucket, remoteKey, localPath, minio.PutObjectOptions{
		ContentType:  contentType(localPath),
		UserMetadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", remoteKey, err)
	}

	return publicURL(u.PublicURL, remoteKey), nil
}
