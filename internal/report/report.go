// internal/report/report.go

// Package report emails run summaries to operators through AWS SES after
// each pipeline run.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"growth-assistant/internal/common/logger"
)

// SESService is the slice of the SES client the reporter needs. Tests
// swap in a mock implementation.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Reporter struct {
	client SESService
	from   string
	to     string
	logger logger.Logger
}

func New(ctx context.Context, region, from, to string, log logger.Logger) (*Reporter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Reporter{client: ses.NewFromConfig(awsCfg), from: from, to: to, logger: log}, nil
}

// NewWithClient wires an existing client, used in tests.
func NewWithClient(client SESService, from, to string, log logger.Logger) *Reporter {
	return &Reporter{client: client, from: from, to: to, logger: log}
}

// RunCompleted emails a summary of one finished run. A nil reporter is a
// no-op so callers can leave reporting unconfigured.
func (r *Reporter) RunCompleted(ctx context.Context, operation, summary string) {
	if r == nil {
		return
	}

	subject := fmt.Sprintf("[growth-assistant] %s completed %s", operation, time.Now().Format("2006-01-02 15:04"))
	input := &ses.SendEmailInput{
		Source: aws.String(r.from),
		Destination: &types.Destination{
			ToAddresses: []string{r.to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(summary)},
			},
		},
	}

	if _, err := r.client.SendEmail(ctx, input); err != nil {
		r.logger.Warn("Run report email failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
		return
	}
	r.logger.Info("Run report sent", map[string]interface{}{
		"operation": operation,
	})
}
