// internal/pipeline/scanner/scanner.go

// Package scanner walks every vendor account and nudges the ones that have
// stalled: no growth plan submitted, no shop registered, or shops with no
// customer orders. Each rule fires at most once per vendor.
package scanner

import (
	"context"
	"time"

	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/common/metrics"
	"growth-assistant/internal/models"
	"growth-assistant/internal/pipeline"
)

type Scanner struct {
	store   Store
	gateway pipeline.Gateway
	logger  logger.Logger
}

func New(store Store, gw pipeline.Gateway, log logger.Logger) *Scanner {
	return &Scanner{
		store:   store,
		gateway: gw,
		logger:  log.WithFields(map[string]interface{}{"operation": "auto-send"}),
	}
}

// Scan evaluates the rule set for every vendor, appends the notifications
// that survive dedup, and attempts delivery for each. Per-vendor failures
// are logged and skipped; only an unreadable vendor list aborts the run.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	vendors, err := s.store.ListVendors(ctx)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("auto-send", "error").Inc()
		return nil, err
	}

	result := &Result{}
	for i := range vendors {
		s.scanVendor(ctx, &vendors[i], result)
	}

	metrics.PipelineRunsTotal.WithLabelValues("auto-send", "success").Inc()
	metrics.PipelineRunDuration.WithLabelValues("auto-send").Observe(time.Since(start).Seconds())
	s.logger.Info("Scan completed", map[string]interface{}{
		"vendors":  len(vendors),
		"autoSent": result.AutoSent,
		"duration": time.Since(start).String(),
	})
	return result, nil
}

func (s *Scanner) scanVendor(ctx context.Context, vendor *models.User, result *Result) {
	planCount, err := s.store.CountPlansByUser(ctx, vendor.ID)
	if err != nil {
		s.logger.Warn("Plan lookup failed, skipping vendor", map[string]interface{}{
			"vendor_id": vendor.ID,
			"error":     err.Error(),
		})
		return
	}

	shops, err := s.store.ListShopsByVendor(ctx, vendor.ID)
	if err != nil {
		s.logger.Warn("Shop lookup failed, skipping vendor", map[string]interface{}{
			"vendor_id": vendor.ID,
			"error":     err.Error(),
		})
		return
	}

	if planCount == 0 {
		s.fire(ctx, vendor, shops, models.RuleNoPlan, msgNoPlan, result)
	}

	// Shop absence and activity absence are mutually exclusive in one
	// run: without shops there is nothing to count orders against.
	if len(shops) == 0 {
		s.fire(ctx, vendor, shops, models.RuleNoShop, msgNoShop, result)
		return
	}

	switch s.checkActivity(ctx, vendor.ID, shops) {
	case activityNone:
		s.fire(ctx, vendor, shops, models.RuleNoActivity, msgNoActivity, result)
	case activityUnknown:
		metrics.NotificationsSuppressed.WithLabelValues(models.RuleNoActivity, "unknown").Inc()
	}
}

// checkActivity probes shops in order and stops at the first one with an
// order. A count failure yields unknown rather than treating the vendor
// as inactive.
func (s *Scanner) checkActivity(ctx context.Context, vendorID string, shops []models.Shop) activityState {
	for _, shop := range shops {
		count, err := s.store.CountOrdersByShop(ctx, shop.ID)
		if err != nil {
			s.logger.Warn("Order count failed, activity unknown", map[string]interface{}{
				"vendor_id": vendorID,
				"shop_id":   shop.ID,
				"error":     err.Error(),
			})
			return activityUnknown
		}
		if count > 0 {
			return activityFound
		}
	}
	return activityNone
}

// fire appends one notification if the rule has not fired for this vendor
// before, then attempts delivery and writes the audit row.
func (s *Scanner) fire(ctx context.Context, vendor *models.User, shops []models.Shop, rule, message string, result *Result) {
	seen, err := s.store.HasNotification(ctx, vendor.ID, rule)
	if err != nil {
		s.logger.Warn("Dedup check failed, suppressing", map[string]interface{}{
			"vendor_id": vendor.ID,
			"rule":      rule,
			"error":     err.Error(),
		})
		return
	}
	if seen {
		metrics.NotificationsSuppressed.WithLabelValues(rule, "duplicate").Inc()
		return
	}

	notification := &models.Notification{
		VendorID: vendor.ID,
		Rule:     rule,
		Message:  message,
		Type:     models.NotificationTypeWarning,
	}
	if err := s.store.AppendNotification(ctx, notification); err != nil {
		s.logger.Error("Notification append failed", map[string]interface{}{
			"vendor_id": vendor.ID,
			"rule":      rule,
			"error":     err.Error(),
		})
		return
	}
	metrics.NotificationsEmitted.WithLabelValues(rule).Inc()
	result.AutoSent++

	phone := pipeline.ResolvePhone(vendor, shops)
	pipeline.Deliver(ctx, s.gateway, s.store, s.logger, notification, phone, nil, nil)
}
