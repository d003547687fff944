package integrations

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"together-backend/internal/config"
)

// S3Provider is the fallback media store: a direct put-object to a bucket
// that serves public reads.
type S3Provider struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Provider builds the S3 client. A missing bucket disables the provider.
func NewS3Provider(ctx context.Context, cfg config.AWSConfig) (*S3Provider, error) {
	if cfg.S3Bucket == "" {
		return &S3Provider{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Provider{client: client, bucket: cfg.S3Bucket, region: cfg.Region}, nil
}

func (p *S3Provider) Name() string { return "s3" }

func (p *S3Provider) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if p.client == nil {
		return nil, ErrNotConfigured
	}

	data, err := decodePayload(req)
	if err != nil {
		return nil, err
	}

	ext := path.Ext(req.FileName)
	if ext == "" {
		ext = ".bin"
	}
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}

	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
	return &UploadResult{FileURL: fileURL}, nil
}
