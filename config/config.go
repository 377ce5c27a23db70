// Package config loads the store settings from the environment.
package config

import (
	"context"

	env "github.com/Netflix/go-env"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Config holds the store settings
type Config struct {
	// Endpoint overrides the DynamoDB endpoint, e.g. a DynamoDB Local instance
	Endpoint        string `env:"DYNAMAP_ENDPOINT"`
	Region          string `env:"DYNAMAP_REGION,default=us-east-1"`
	AccessKeyID     string `env:"DYNAMAP_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"DYNAMAP_SECRET_ACCESS_KEY"`
	ConsistentRead  bool   `env:"DYNAMAP_CONSISTENT_READ,default=true"`
	Debug           bool   `env:"DYNAMAP_DEBUG,default=false"`
}

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFrom reads the configuration from es
func LoadFrom(es env.EnvSet) (*Config, error) {
	cfg := &Config{}

	if err := env.Unmarshal(es, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsLocal reports whether the endpoint is overridden
func (c *Config) IsLocal() bool {
	return c.Endpoint != ""
}

// LoadAWS builds the aws-sdk-go-v2 configuration.
// Local endpoints get dummy credentials when none are set and never retry.
func LoadAWS(ctx context.Context, c *Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.Region),
	}

	accessKeyID, secretAccessKey := c.AccessKeyID, c.SecretAccessKey
	if c.IsLocal() && accessKeyID == "" {
		accessKeyID, secretAccessKey = "dummy", "dummy"
	}

	if accessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}

	if c.IsLocal() {
		endpoint := c.Endpoint

		opts = append(opts,
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: endpoint}, nil
				})),
			awsconfig.WithRetryer(func() aws.Retryer {
				return aws.NopRetryer{}
			}),
		)
	}

	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
