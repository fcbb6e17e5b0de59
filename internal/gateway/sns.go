// internal/gateway/sns.go
package gateway

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"growth-assistant/internal/common/logger"
)

// SNSAPI is the slice of the SNS client the sender needs. Tests swap in a
// mock implementation.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender delivers notifications as transactional SMS through AWS SNS.
type SNSSender struct {
	client   SNSAPI
	senderID string
	logger   logger.Logger
}

func NewSNSSender(ctx context.Context, region, senderID string, log logger.Logger) (*SNSSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSSender{client: sns.NewFromConfig(cfg), senderID: senderID, logger: log}, nil
}

// NewSNSSenderWithClient wires an existing client, used in tests.
func NewSNSSenderWithClient(client SNSAPI, senderID string, log logger.Logger) *SNSSender {
	return &SNSSender{client: client, senderID: senderID, logger: log}
}

func (s *SNSSender) Send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	digits := SanitizePhone(req.PhoneNumber)
	if digits == "" {
		return &SendResponse{Success: false, Error: "invalid phone number"}, nil
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String("+" + digits),
		Message:     aws.String(req.Message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		s.logger.Error("SNS publish failed", map[string]interface{}{
			"phone": digits,
			"error": err.Error(),
		})
		return &SendResponse{Success: false, Error: err.Error()}, nil
	}

	s.logger.Info("SMS published", map[string]interface{}{
		"phone":      digits,
		"message_id": aws.ToString(out.MessageId),
	})
	return &SendResponse{Success: true}, nil
}
