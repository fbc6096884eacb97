package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
	"github.com/cloudraidfs/cloudraidfs/pkg/backend/localfs"
	"github.com/cloudraidfs/cloudraidfs/pkg/backend/s3blob"
)

// CreateBackends builds the ordered k+m backend handles from the
// configuration's backend list. Order is preserved exactly as
// configured, since it defines the shard→backend mapping.
func CreateBackends(ctx context.Context, cfg *Config) ([]backend.Backend, error) {
	backends := make([]backend.Backend, len(cfg.Backends))
	for i, bc := range cfg.Backends {
		b, err := createBackend(ctx, bc)
		if err != nil {
			return nil, fmt.Errorf("backend[%d] %q: %w", i, bc.Name, err)
		}
		backends[i] = b
	}
	return backends, nil
}

func createBackend(ctx context.Context, cfg BackendConfig) (backend.Backend, error) {
	switch cfg.Type {
	case "localfs":
		return createLocalfsBackend(cfg.Options)
	case "s3":
		return createS3Backend(ctx, cfg.Options)
	default:
		return nil, fmt.Errorf("unknown backend type: %q", cfg.Type)
	}
}

func createLocalfsBackend(options map[string]any) (backend.Backend, error) {
	var opts struct {
		Path string `mapstructure:"path"`
	}
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("invalid localfs options: %w", err)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("localfs: path is required")
	}

	store, err := localfs.New(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create localfs backend: %w", err)
	}
	return store, nil
}

func createS3Backend(ctx context.Context, options map[string]any) (backend.Backend, error) {
	var opts struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("invalid s3 options: %w", err)
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("s3: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(opts.Region))

	if opts.Endpoint != "" {
		//nolint:staticcheck // BaseEndpoint requires per-request wiring the SDK doesn't expose for custom resolvers yet
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck
				return aws.Endpoint{
					URL:               opts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := s3blob.New(ctx, s3blob.Config{
		Client:    client,
		Bucket:    opts.Bucket,
		KeyPrefix: opts.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 backend: %w", err)
	}
	return store, nil
}
