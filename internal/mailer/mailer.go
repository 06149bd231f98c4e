// Package mailer delivers generated campaign previews to an operator inbox
// via AWS SES so copy can be checked in a real mail client.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/wanderly/campaign-studio/internal/config"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
)

// Sender sends plain-text test emails through SES v2.
type Sender struct {
	client *sesv2.Client
	from   string
}

// New creates an SES sender. Static credentials from config take precedence;
// empty keys fall through to the default credential chain (IAM role on ECS).
func New(ctx context.Context, cfg appconfig.Mailer) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Sender{
		client: sesv2.NewFromConfig(awsCfg),
		from:   cfg.FromAddress,
	}, nil
}

// SendPreview sends the subject/body as a plain-text email to the operator.
func (s *Sender) SendPreview(ctx context.Context, to, subject, body string) error {
	if subject == "" {
		subject = "Wanderly campaign preview"
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending preview email: %w", err)
	}

	logger.Info("campaign preview sent", "to_email", to)
	return nil
}
