package backup

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/wormkeeper/internal/server/config"
)

const mirrorKeyPrefix = "backup/"

// S3Mirror pushes backup files to an S3-compatible bucket (MinIO works with
// the base-endpoint override).
type S3Mirror struct {
	client *s3.Client
	bucket string
}

// NewS3Mirror builds a mirror from the server configuration. The caller is
// expected to skip construction when no bucket is configured.
func NewS3Mirror(ctx context.Context, config *sc.Config) (*S3Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.S3RootUser,
			config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Mirror{client: client, bucket: config.S3Bucket}, nil
}

func (m *S3Mirror) Upload(ctx context.Context, name string, body io.Reader) error {
	key := mirrorKeyPrefix + name
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &m.bucket,
		Key:    &key,
		Body:   body,
	})
	return err
}
