package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	apperrors "github.com/zatekoja/pharmacy-locator/pkg/errors"
)

// S3GetObjectAPI is the subset of the S3 client used to read the catalog
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source loads the catalog from an S3 object
type S3Source struct {
	client S3GetObjectAPI
	bucket string
	key    string
}

// NewS3Source creates a new S3 catalog source
func NewS3Source(client S3GetObjectAPI, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

// Load downloads and decodes the catalog object
func (s *S3Source) Load(ctx context.Context) ([]entities.Pharmacy, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to get s3://%s/%s", s.bucket, s.key), err)
	}
	defer out.Body.Close()

	return Decode(ctx, out.Body, "s3://"+s.bucket+"/"+s.key)
}
