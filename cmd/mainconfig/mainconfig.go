package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/novavoice/nova-voice/internal/config"
)

// LoadAWSConfig centralizes AWS SDK initialization so the API and tooling
// share the same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case sqs.ServiceID, dynamodb.ServiceID, s3.ServiceID, sesv2.ServiceID:
					return aws.Endpoint{
						URL:               endpoint,
						PartitionID:       "aws",
						SigningRegion:     cfg.AWSRegion,
						HostnameImmutable: true,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// Clients are the AWS service clients the API uses. Each is nil when the
// feature that needs it is unconfigured.
type Clients struct {
	SQS    *sqs.Client
	Dynamo *dynamodb.Client
	S3     *s3.Client
	SES    *sesv2.Client
}

// NewClients builds only the clients cfg asks for.
func NewClients(awsCfg aws.Config, cfg *appconfig.Config) Clients {
	var c Clients
	if cfg.LeadEventsQueueURL != "" {
		c.SQS = sqs.NewFromConfig(awsCfg)
	}
	if cfg.PersistenceBackend == "dynamodb" {
		c.Dynamo = dynamodb.NewFromConfig(awsCfg)
	}
	if cfg.ExportBucket != "" {
		c.S3 = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
	}
	if cfg.EmailProvider == "ses" {
		c.SES = sesv2.NewFromConfig(awsCfg)
	}
	return c
}

// NeedsAWS reports whether any configured feature talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	return cfg.LeadEventsQueueURL != "" ||
		cfg.PersistenceBackend == "dynamodb" ||
		cfg.ExportBucket != "" ||
		cfg.EmailProvider == "ses"
}
