// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-assistant/internal/common/config"
	"growth-assistant/internal/common/database"
	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/gateway"
	"growth-assistant/internal/models"
	"growth-assistant/internal/pipeline/monitor"
	"growth-assistant/internal/pipeline/runlock"
	"growth-assistant/internal/pipeline/scanner"
	"growth-assistant/internal/store"
)

// Requires live PostgreSQL and Redis; run with E2E=1.
func TestFullPipelineE2E(t *testing.T) {
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 to run against live services")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.NewNoOpLogger()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis connection failed")
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	require.NoError(t, store.RunMigrations(cfg.Database.Postgres.GetURL(), "../../internal/store/migrations"))

	st := store.New(pg.DB, log)
	sender := gateway.NewWALinkSender(log)

	// A fresh vendor with no plan and no shop.
	vendor := &models.User{
		Email: fmt.Sprintf("e2e-%s@example.com", uuid.New().String()[:8]),
		Role:  models.RoleVendor,
		Name:  "E2E Vendor",
		Phone: "628123456789",
	}
	require.NoError(t, st.CreateUser(ctx, vendor))

	scan := scanner.New(st, sender, log)
	result, err := scan.Scan(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.AutoSent, 2, "expected no_plan and no_shop to fire")

	notifications, err := st.ListNotificationsByVendor(ctx, vendor.ID)
	require.NoError(t, err)
	rules := make(map[string]bool)
	for _, n := range notifications {
		rules[n.Rule] = true
	}
	assert.True(t, rules[models.RuleNoPlan])
	assert.True(t, rules[models.RuleNoShop])

	// Second scan is a no-op for this vendor.
	before := len(notifications)
	_, err = scan.Scan(ctx)
	require.NoError(t, err)
	notifications, err = st.ListNotificationsByVendor(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Len(t, notifications, before, "dedup must hold across runs")

	// Revenue path: a shop, a product, a checked-out cart over threshold.
	shop := &models.Shop{VendorID: vendor.ID, Name: "E2E Shop", Phone: vendor.Phone}
	require.NoError(t, st.CreateShop(ctx, shop))
	product := &models.Product{VendorID: vendor.ID, ShopID: shop.ID, Name: "E2E Widget", Price: 60000, Stock: 10}
	require.NoError(t, st.CreateProduct(ctx, product))

	buyer := &models.User{
		Email: fmt.Sprintf("e2e-buyer-%s@example.com", uuid.New().String()[:8]),
		Role:  models.RoleCustomer,
		Name:  "E2E Buyer",
	}
	require.NoError(t, st.CreateUser(ctx, buyer))
	require.NoError(t, st.AddCartItem(ctx, &models.CartItem{
		UserID:    buyer.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  1,
		Price:     product.Price,
	}))
	order, err := st.CheckoutCart(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, 60000.0, order.Total)

	mon := monitor.New(st, sender, 50000, log)
	monResult, err := mon.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, monResult.Threshold)

	// The run lock serializes concurrent triggers.
	lock := runlock.New(rdb.Client, time.Minute, log)
	release, err := lock.Acquire(ctx, "e2e")
	require.NoError(t, err)
	_, err = lock.Acquire(ctx, "e2e")
	assert.Error(t, err, "second acquire must fail while held")
	release()
}
