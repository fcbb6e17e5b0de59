// internal/pipeline/monitor/monitor.go

// Package monitor aggregates current-month order revenue per vendor and
// congratulates vendors who cross the configured threshold, at most once
// per calendar month.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/common/metrics"
	"growth-assistant/internal/models"
	"growth-assistant/internal/pipeline"
)

// Store is the persistence surface the monitor reads and writes.
type Store interface {
	ListOrdersInWindow(ctx context.Context, from, to time.Time) ([]models.Order, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListShopsByVendor(ctx context.Context, vendorID string) ([]models.Shop, error)
	HasNotificationInWindow(ctx context.Context, vendorID, rule string, from, to time.Time) (bool, error)
	AppendNotification(ctx context.Context, n *models.Notification) error
	AppendNotificationLog(ctx context.Context, l *models.NotificationLog) error
}

// VendorResult reports one vendor that crossed the threshold this run.
type VendorResult struct {
	VendorID string  `json:"vendorId"`
	Revenue  float64 `json:"revenue"`
	Phone    *string `json:"phone"`
	Sent     bool    `json:"sent"`
}

// Result summarizes one threshold check.
type Result struct {
	Threshold         float64        `json:"threshold"`
	NotificationsSent int            `json:"notificationsSent"`
	Vendors           []VendorResult `json:"vendors"`
}

type Monitor struct {
	store     Store
	gateway   pipeline.Gateway
	threshold float64
	logger    logger.Logger
	now       func() time.Time
}

func New(store Store, gw pipeline.Gateway, threshold float64, log logger.Logger) *Monitor {
	if threshold <= 0 {
		threshold = 50000
	}
	return &Monitor{
		store:     store,
		gateway:   gw,
		threshold: threshold,
		logger:    log.WithFields(map[string]interface{}{"operation": "revenue-check"}),
		now:       time.Now,
	}
}

// Check aggregates this month's revenue per vendor and notifies every
// vendor at or above the threshold who has not been congratulated this
// month. The comparison is inclusive.
func (m *Monitor) Check(ctx context.Context) (*Result, error) {
	start := time.Now()
	from, to := monthWindow(m.now())

	orders, err := m.store.ListOrdersInWindow(ctx, from, to)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("revenue-check", "error").Inc()
		return nil, err
	}

	totals := make(map[string]float64)
	for i := range orders {
		id := effectiveVendorID(&orders[i])
		for _, item := range orders[i].Items {
			totals[id] += item.Price * float64(item.Quantity)
		}
	}

	// Map order is random; sort so runs process vendors deterministically.
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &Result{Threshold: m.threshold}
	for _, id := range ids {
		if totals[id] < m.threshold {
			continue
		}
		m.notifyVendor(ctx, id, totals[id], from, to, result)
	}

	metrics.PipelineRunsTotal.WithLabelValues("revenue-check", "success").Inc()
	metrics.PipelineRunDuration.WithLabelValues("revenue-check").Observe(time.Since(start).Seconds())
	m.logger.Info("Revenue check completed", map[string]interface{}{
		"orders":            len(orders),
		"vendors_over":      len(result.Vendors),
		"notificationsSent": result.NotificationsSent,
		"duration":          time.Since(start).String(),
	})
	return result, nil
}

func (m *Monitor) notifyVendor(ctx context.Context, vendorID string, revenue float64, from, to time.Time, result *Result) {
	seen, err := m.store.HasNotificationInWindow(ctx, vendorID, models.RuleRevenueThreshold, from, to)
	if err != nil {
		m.logger.Warn("Dedup check failed, suppressing", map[string]interface{}{
			"vendor_id": vendorID,
			"error":     err.Error(),
		})
		return
	}
	if seen {
		metrics.NotificationsSuppressed.WithLabelValues(models.RuleRevenueThreshold, "duplicate").Inc()
		return
	}

	vendor, err := m.store.GetUser(ctx, vendorID)
	if err != nil {
		// Revenue attributed to an id with no matching account, usually
		// the purchaser-as-vendor fallback or the "unknown" bucket.
		m.logger.Warn("No account for revenue total, skipping", map[string]interface{}{
			"vendor_id": vendorID,
			"revenue":   revenue,
			"error":     err.Error(),
		})
		return
	}

	shops, err := m.store.ListShopsByVendor(ctx, vendorID)
	if err != nil {
		m.logger.Warn("Shop lookup failed, skipping vendor", map[string]interface{}{
			"vendor_id": vendorID,
			"error":     err.Error(),
		})
		return
	}

	notification := &models.Notification{
		VendorID: vendorID,
		Rule:     models.RuleRevenueThreshold,
		Message: fmt.Sprintf(
			"Congratulations! Your business has reached the minimum revenue threshold this month with %s in sales.",
			formatAmount(revenue)),
		Type: models.NotificationTypeInfo,
	}
	if err := m.store.AppendNotification(ctx, notification); err != nil {
		m.logger.Error("Notification append failed", map[string]interface{}{
			"vendor_id": vendorID,
			"error":     err.Error(),
		})
		return
	}
	metrics.NotificationsEmitted.WithLabelValues(models.RuleRevenueThreshold).Inc()
	result.NotificationsSent++

	phone := pipeline.ResolvePhone(vendor, shops)
	entry := pipeline.Deliver(ctx, m.gateway, m.store, m.logger, notification, phone, &revenue, &m.threshold)

	result.Vendors = append(result.Vendors, VendorResult{
		VendorID: vendorID,
		Revenue:  revenue,
		Phone:    phone,
		Sent:     entry.WhatsAppSent,
	})
}

// effectiveVendorID attributes an order's revenue. Orders without an
// explicit vendor fall back to the purchasing user, then to "unknown".
// The fallback conflates buyer and seller on purpose for single-vendor
// deployments where orders carry no vendor attribution.
func effectiveVendorID(o *models.Order) string {
	if o.VendorID != "" {
		return o.VendorID
	}
	if o.UserID != "" {
		return o.UserID
	}
	return "unknown"
}

// monthWindow returns [first of month, first of next month) in the
// process's local time zone.
func monthWindow(at time.Time) (time.Time, time.Time) {
	from := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	return from, from.AddDate(0, 1, 0)
}

// formatAmount renders an amount with thousands separators, dropping the
// fraction when it is whole: 50000 -> "50,000", 50000.5 -> "50,000.50".
func formatAmount(v float64) string {
	whole := int64(v)
	frac := v - float64(whole)

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if frac > 0.004 {
		b.WriteString(fmt.Sprintf("%.2f", frac)[1:])
	}
	return b.String()
}
