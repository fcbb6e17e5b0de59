// internal/store/notifications.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/models"
)

// AppendNotification inserts a single notification row. Each notification
// is committed independently so a failure mid-run never loses the rows
// already written.
func (s *Store) AppendNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, vendor_id, rule, message, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.VendorID, n.Rule, n.Message, n.Type, n.Read, n.CreatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertError(fmt.Sprintf("notifications: %v", err))
	}
	return nil
}

// ListNotificationsByVendor returns a vendor's notifications, newest first.
func (s *Store) ListNotificationsByVendor(ctx context.Context, vendorID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vendor_id, rule, message, type, read, created_at
		FROM notifications WHERE vendor_id = $1 ORDER BY created_at DESC`, vendorID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionError(fmt.Sprintf("list notifications: %v", err))
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.VendorID, &n.Rule, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionError(fmt.Sprintf("scan notification: %v", err))
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flips the read flag for one of the vendor's
// notifications. Unknown ids are a NOT_FOUND.
func (s *Store) MarkNotificationRead(ctx context.Context, vendorID, notificationID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND vendor_id = $2`,
		notificationID, vendorID)
	if err != nil {
		return apperrors.NewQueryExecutionError(fmt.Sprintf("mark notification read: %v", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionError(fmt.Sprintf("mark notification read: %v", err))
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("notification", notificationID)
	}
	return nil
}

// HasNotification reports whether the vendor already has any notification
// for the given rule, regardless of age. The scanner rules fire at most
// once per vendor for the lifetime of the account.
func (s *Store) HasNotification(ctx context.Context, vendorID, rule string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications WHERE vendor_id = $1 AND rule = $2
		)`, vendorID, rule).Scan(&exists)
	if err != nil {
		return false, apperrors.NewQueryExecutionError(fmt.Sprintf("check notification: %v", err))
	}
	return exists, nil
}

// HasNotificationInWindow reports whether the vendor has a notification for
// the rule created in [from, to). The revenue monitor scopes its dedup to
// the current calendar month with this.
func (s *Store) HasNotificationInWindow(ctx context.Context, vendorID, rule string, from, to time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE vendor_id = $1 AND rule = $2 AND created_at >= $3 AND created_at < $4
		)`, vendorID, rule, from, to).Scan(&exists)
	if err != nil {
		return false, apperrors.NewQueryExecutionError(fmt.Sprintf("check notification window: %v", err))
	}
	return exists, nil
}

// AppendNotificationLog writes one delivery-audit row and mirrors it to the
// configured auditor. The mirror is best effort and never fails the write.
func (s *Store) AppendNotificationLog(ctx context.Context, l *models.NotificationLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_logs
			(id, notification_id, vendor_id, vendor_phone, message, whatsapp_sent, whatsapp_error, revenue, threshold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.NotificationID, l.VendorID, l.VendorPhone, l.Message,
		l.WhatsAppSent, l.WhatsAppError, l.Revenue, l.Threshold, l.CreatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertError(fmt.Sprintf("notification_logs: %v", err))
	}

	if s.audit != nil {
		if err := s.audit.Index(ctx, l); err != nil {
			s.logger.Warn("Audit mirror failed", map[string]interface{}{
				"log_id": l.ID,
				"error":  err.Error(),
			})
		}
	}
	return nil
}

// ListNotificationLogs returns delivery-audit rows, newest first, capped at
// limit. A limit of 0 means no cap.
func (s *Store) ListNotificationLogs(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	query := `
		SELECT id, notification_id, vendor_id, vendor_phone, message, whatsapp_sent, whatsapp_error, revenue, threshold, created_at
		FROM notification_logs ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionError(fmt.Sprintf("list notification logs: %v", err))
	}
	defer rows.Close()

	var out []models.NotificationLog
	for rows.Next() {
		var l models.NotificationLog
		if err := rows.Scan(&l.ID, &l.NotificationID, &l.VendorID, &l.VendorPhone, &l.Message,
			&l.WhatsAppSent, &l.WhatsAppError, &l.Revenue, &l.Threshold, &l.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionError(fmt.Sprintf("scan notification log: %v", err))
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
