// internal/store/plans.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"growth-assistant/internal/models"
)

// CreateWeeklyPlan stores a submitted growth plan.
func (s *Store) CreateWeeklyPlan(ctx context.Context, plan *models.WeeklyPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}

	// pq encodes []byte as bytea, so the jsonb payload goes over as text.
	var payload interface{}
	if len(plan.Payload) > 0 {
		payload = string(plan.Payload)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_plans (id, user_id, business_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		plan.ID, plan.UserID, plan.BusinessType, payload, plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create weekly plan: %w", err)
	}
	return nil
}

// ListPlansByUser returns a vendor's plans, newest first.
func (s *Store) ListPlansByUser(ctx context.Context, userID string) ([]models.WeeklyPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, business_type, payload, created_at
		FROM weekly_plans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.WeeklyPlan
	for rows.Next() {
		var p models.WeeklyPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.BusinessType, &p.Payload, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// CountPlansByUser is the scanner's cheap existence probe.
func (s *Store) CountPlansByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM weekly_plans WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}
	return count, nil
}

// CreateInvestment records an investor's stake in a vendor business.
func (s *Store) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investments (id, investor_id, business_name, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		inv.ID, inv.InvestorID, inv.BusinessName, inv.Amount, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create investment: %w", err)
	}
	return nil
}

// ListInvestmentsByInvestor returns an investor's positions, newest first.
func (s *Store) ListInvestmentsByInvestor(ctx context.Context, investorID string) ([]models.Investment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, investor_id, business_name, amount, created_at
		FROM investments WHERE investor_id = $1 ORDER BY created_at DESC`, investorID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var invs []models.Investment
	for rows.Next() {
		var inv models.Investment
		if err := rows.Scan(&inv.ID, &inv.InvestorID, &inv.BusinessName, &inv.Amount, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}
