package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 API the fetcher needs.
// *s3.Client satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Options holds optional overrides for AWS config loading.
type s3Options struct {
	profile  string
	region   string
	endpoint string
}

// S3Option customizes how the S3 client is built.
// With no options the shell's AWS setup is inherited (AWS_PROFILE, shared
// config and credentials, environment, IMDS).
type S3Option func(*s3Options)

// WithS3Profile sets the shared config profile.
func WithS3Profile(profile string) S3Option {
	return func(o *s3Options) { o.profile = profile }
}

// WithS3Region sets the region override.
func WithS3Region(region string) S3Option {
	return func(o *s3Options) { o.region = region }
}

// WithS3Endpoint points the client at an S3-compatible service such as
// MinIO. Path-style addressing is enabled when an endpoint is set.
func WithS3Endpoint(endpoint string) S3Option {
	return func(o *s3Options) { o.endpoint = endpoint }
}

// NewS3Client loads AWS configuration and builds an S3 client.
func NewS3Client(ctx context.Context, opts ...S3Option) (*s3.Client, error) {
	var o s3Options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	}), nil
}

func (f *Fetcher) fetchS3(ctx context.Context, loc Locator, limit int64) ([]byte, error) {
	f.s3Once.Do(func() {
		f.s3, f.s3Err = NewS3Client(ctx, f.s3Opts...)
	})
	if f.s3Err != nil {
		return nil, f.s3Err
	}

	out, err := f.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return readAll(out.Body, limit)
}
