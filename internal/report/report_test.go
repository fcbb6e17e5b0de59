// internal/report/report_test.go
package report

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-assistant/internal/common/logger"
)

type mockSES struct {
	inputs   []*ses.SendEmailInput
	sendErr  error
	response *ses.SendEmailOutput
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return m.response, nil
}

func TestRunCompletedSendsSummary(t *testing.T) {
	mock := &mockSES{response: &ses.SendEmailOutput{MessageId: aws.String("m1")}}
	r := NewWithClient(mock, "ops@example.com", "admin@example.com", logger.NewNoOpLogger())

	r.RunCompleted(context.Background(), "auto-send", "Vendor performance scan sent 3 notifications.")

	require.Len(t, mock.inputs, 1)
	in := mock.inputs[0]
	assert.Equal(t, "ops@example.com", aws.ToString(in.Source))
	assert.Equal(t, []string{"admin@example.com"}, in.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(in.Message.Subject.Data), "auto-send completed")
	assert.Contains(t, aws.ToString(in.Message.Body.Text.Data), "sent 3 notifications")
}

func TestRunCompletedSendFailureIsSwallowed(t *testing.T) {
	mock := &mockSES{sendErr: errors.New("ses unavailable")}
	r := NewWithClient(mock, "ops@example.com", "admin@example.com", logger.NewNoOpLogger())

	// Must not panic or propagate.
	r.RunCompleted(context.Background(), "revenue-check", "summary")
	assert.Len(t, mock.inputs, 1)
}

func TestRunCompletedNilReporter(t *testing.T) {
	var r *Reporter
	r.RunCompleted(context.Background(), "auto-send", "summary")
}
