// internal/gateway/walink.go
package gateway

import (
	"context"
	"fmt"
	"net/url"

	"growth-assistant/internal/common/logger"
)

// WALinkSender is the default backend. It does not send anything; it
// builds a wa.me deep link that a human can open to start the chat, and
// reports success as soon as the link is built.
type WALinkSender struct {
	logger logger.Logger
}

func NewWALinkSender(log logger.Logger) *WALinkSender {
	return &WALinkSender{logger: log}
}

func (w *WALinkSender) Send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	digits := SanitizePhone(req.PhoneNumber)
	if digits == "" {
		return &SendResponse{Success: false, Error: "invalid phone number"}, nil
	}

	link := fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(req.Message))
	w.logger.Info("WhatsApp link built", map[string]interface{}{
		"phone": digits,
		"url":   link,
	})
	return &SendResponse{Success: true, WhatsAppURL: link}, nil
}
