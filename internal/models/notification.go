// internal/models/notification.go
package models

import "time"

// Notification types
const (
	NotificationTypeInfo    = "info"
	NotificationTypeWarning = "warning"
)

// Rule keys used for structured dedup. The message markers below remain in
// the message text for readers and older tooling that still greps on them.
const (
	RuleNoPlan           = "no_plan"
	RuleNoShop           = "no_shop"
	RuleNoActivity       = "no_customer_activity"
	RuleRevenueThreshold = "revenue_threshold"
)

type Notification struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendorId"`
	Rule      string    `json:"rule"`
	Message   string    `json:"message"`
	Type      string    `json:"type"` // "info" or "warning"
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationLog is the audit record written once per delivery attempt,
// including attempts where no phone number could be resolved.
type NotificationLog struct {
	ID             string    `json:"id"`
	NotificationID string    `json:"notificationId"`
	VendorID       string    `json:"vendorId"`
	VendorPhone    *string   `json:"vendorPhone"`
	Message        string    `json:"message"`
	WhatsAppSent   bool      `json:"whatsappSent"`
	WhatsAppError  *string   `json:"whatsappError"`
	Revenue        *float64  `json:"revenue,omitempty"`
	Threshold      *float64  `json:"threshold,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
