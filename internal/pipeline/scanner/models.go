// internal/pipeline/scanner/models.go
package scanner

import (
	"context"

	"growth-assistant/internal/models"
)

// Messages keep the wording vendors already know; dedup is keyed on the
// rule column, not on this text.
const (
	msgNoPlan     = "You haven't submitted any growth plan yet. Share your weekly plan so we can help your business grow."
	msgNoShop     = "You haven't registered a shop yet. Add your first shop to start selling and reaching customers."
	msgNoActivity = "Your shops haven't received any customer orders yet. Try promoting your products to attract more customers."
)

// Result summarizes one scan run.
type Result struct {
	AutoSent int `json:"autoSent"`
}

// Store is the persistence surface the scanner reads and writes.
type Store interface {
	ListVendors(ctx context.Context) ([]models.User, error)
	CountPlansByUser(ctx context.Context, userID string) (int, error)
	ListShopsByVendor(ctx context.Context, vendorID string) ([]models.Shop, error)
	CountOrdersByShop(ctx context.Context, shopID string) (int, error)
	HasNotification(ctx context.Context, vendorID, rule string) (bool, error)
	AppendNotification(ctx context.Context, n *models.Notification) error
	AppendNotificationLog(ctx context.Context, l *models.NotificationLog) error
}

// activityState is the outcome of the customer-activity probe. A failed
// order count is "unknown", which suppresses the notification instead of
// turning an infrastructure error into a business warning.
type activityState int

const (
	activityFound activityState = iota
	activityNone
	activityUnknown
)
