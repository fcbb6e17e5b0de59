// internal/gateway/gateway.go

// Package gateway delivers WhatsApp notifications for the pipeline. The
// default backend builds wa.me deep links without calling any external
// messaging provider; an SNS backend is available for real SMS delivery.
package gateway

import "context"

// SendRequest is the delivery request accepted by the gateway endpoint.
type SendRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// SendResponse reports one delivery attempt. Success and Error are
// mutually exclusive; WhatsAppURL is set by the deep-link backend.
type SendResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
}

// Sender is the delivery backend behind the gateway endpoint.
type Sender interface {
	Send(ctx context.Context, req *SendRequest) (*SendResponse, error)
}

// SanitizePhone strips everything but digits. Formatting characters in
// stored phone numbers ("+62 812-3456") are tolerated; an empty result
// means the number is unusable.
func SanitizePhone(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}
