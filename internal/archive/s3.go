package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Archiver stores sent entry forms in an S3 bucket.
type S3Archiver struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Archiver creates an S3-backed archiver.
func NewS3Archiver(ctx context.Context, bucket, region, profile string) (*S3Archiver, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// Store uploads the attachment to s3://<bucket>/dispatches/<inscription>/<dispatch>.pdf.
func (a *S3Archiver) Store(ctx context.Context, inscriptionID int64, dispatchID string, filename string, data []byte) error {
	key := objectKey(inscriptionID, dispatchID)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return fmt.Errorf("putting object to S3: %w", err)
	}

	return nil
}
