// internal/gateway/gateway_test.go
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-assistant/internal/common/logger"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain digits", "6281234567", "6281234567"},
		{"formatted", "+62 812-3456-789", "628123456789"},
		{"letters only", "call me", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePhone(tt.input))
		})
	}
}

func TestWALinkSender(t *testing.T) {
	sender := NewWALinkSender(logger.NewNoOpLogger())

	t.Run("builds deep link", func(t *testing.T) {
		resp, err := sender.Send(context.Background(), &SendRequest{
			PhoneNumber: "+62 812-3456",
			Message:     "Hello there & welcome",
		})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "https://wa.me/628123456?text=Hello+there+%26+welcome", resp.WhatsAppURL)
	})

	t.Run("rejects unusable number", func(t *testing.T) {
		resp, err := sender.Send(context.Background(), &SendRequest{
			PhoneNumber: "n/a",
			Message:     "hi",
		})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "invalid phone number", resp.Error)
	})
}

type mockSNSAPI struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNSAPI) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestSNSSender(t *testing.T) {
	t.Run("publishes transactional SMS", func(t *testing.T) {
		var captured *sns.PublishInput
		mock := &mockSNSAPI{
			PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
				captured = params
				return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
			},
		}
		sender := NewSNSSenderWithClient(mock, "GROWTH", logger.NewNoOpLogger())

		resp, err := sender.Send(context.Background(), &SendRequest{
			PhoneNumber: "62-812",
			Message:     "hello",
		})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		require.NotNil(t, captured)
		assert.Equal(t, "+62812", aws.ToString(captured.PhoneNumber))
		assert.Equal(t, "Transactional", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
		assert.Equal(t, "GROWTH", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
	})

	t.Run("publish failure is a failed response", func(t *testing.T) {
		mock := &mockSNSAPI{
			PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
				return nil, errors.New("throttled")
			},
		}
		sender := NewSNSSenderWithClient(mock, "", logger.NewNoOpLogger())

		resp, err := sender.Send(context.Background(), &SendRequest{PhoneNumber: "62812", Message: "hi"})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "throttled", resp.Error)
	})
}

func TestClientSend(t *testing.T) {
	t.Run("success round trip", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/notifications/whatsapp", r.URL.Path)

			var req SendRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "62812", req.PhoneNumber)

			json.NewEncoder(w).Encode(SendResponse{Success: true, WhatsAppURL: "https://wa.me/62812?text=hi"})
		}))
		defer srv.Close()

		client := NewClient(ClientConfig{BaseURL: srv.URL}, logger.NewNoOpLogger())
		resp, err := client.Send(context.Background(), &SendRequest{PhoneNumber: "62812", Message: "hi"})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "https://wa.me/62812?text=hi", resp.WhatsAppURL)
	})

	t.Run("non-200 is a failed response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(ClientConfig{BaseURL: srv.URL}, logger.NewNoOpLogger())
		resp, err := client.Send(context.Background(), &SendRequest{PhoneNumber: "62812", Message: "hi"})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "status 500")
	})

	t.Run("unreachable gateway is a failed response", func(t *testing.T) {
		client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"}, logger.NewNoOpLogger())
		resp, err := client.Send(context.Background(), &SendRequest{PhoneNumber: "62812", Message: "hi"})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})
}
