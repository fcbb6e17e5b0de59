// internal/pipeline/pipeline.go

// Package pipeline holds the pieces shared by the vendor performance
// scanner and the revenue threshold monitor: the gateway boundary, phone
// resolution, and the delivery-plus-audit step.
package pipeline

import (
	"context"

	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/gateway"
	"growth-assistant/internal/models"
)

// Gateway attempts delivery of one notification.
type Gateway interface {
	Send(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error)
}

// LogWriter persists delivery-audit rows.
type LogWriter interface {
	AppendNotificationLog(ctx context.Context, l *models.NotificationLog) error
}

// ResolvePhone prefers the vendor's own number, then the first shop with
// one. Nil means no number is available anywhere.
func ResolvePhone(vendor *models.User, shops []models.Shop) *string {
	if vendor.Phone != "" {
		return &vendor.Phone
	}
	for i := range shops {
		if shops[i].Phone != "" {
			return &shops[i].Phone
		}
	}
	return nil
}

// Deliver attempts gateway delivery for an already-persisted notification
// and writes exactly one audit row, no matter whether a phone exists or
// the gateway fails. Gateway problems never propagate to the caller; they
// land in the audit row's error field.
func Deliver(ctx context.Context, gw Gateway, logs LogWriter, log logger.Logger,
	n *models.Notification, phone *string, revenue, threshold *float64) *models.NotificationLog {

	entry := &models.NotificationLog{
		NotificationID: n.ID,
		VendorID:       n.VendorID,
		VendorPhone:    phone,
		Message:        n.Message,
		Revenue:        revenue,
		Threshold:      threshold,
	}

	if phone == nil {
		msg := "No phone number available for vendor"
		entry.WhatsAppError = &msg
	} else {
		resp, err := gw.Send(ctx, &gateway.SendRequest{
			PhoneNumber: gateway.SanitizePhone(*phone),
			Message:     n.Message,
		})
		switch {
		case err != nil:
			msg := err.Error()
			entry.WhatsAppError = &msg
		case resp.Success:
			entry.WhatsAppSent = true
		default:
			msg := resp.Error
			entry.WhatsAppError = &msg
		}
	}

	if err := logs.AppendNotificationLog(ctx, entry); err != nil {
		log.Error("Notification log write failed", map[string]interface{}{
			"vendor_id":       n.VendorID,
			"notification_id": n.ID,
			"error":           err.Error(),
		})
	}
	return entry
}
