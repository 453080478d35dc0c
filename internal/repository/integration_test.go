//go:build integration

package repository_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"backstock/internal/apierror"
	"backstock/internal/config"
	"backstock/internal/dto"
	"backstock/internal/infra"
	"backstock/internal/model"
	"backstock/internal/repository"
	"backstock/internal/service"
	"backstock/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("backstock"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func setupRedisURL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	rc, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Terminate(ctx) })
	url, err := rc.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}

type fixture struct {
	db      *gorm.DB
	returns service.ReturnService
	billing service.BillingService
	vp      *model.VendorProduct
}

func setupFixture(t *testing.T, stock int) *fixture {
	t.Helper()
	db := setupDB(t)
	ctx := context.Background()

	category := model.Category{Name: "Tools"}
	require.NoError(t, db.WithContext(ctx).Create(&category).Error)
	vendor := model.Vendor{Name: "Acme"}
	require.NoError(t, db.WithContext(ctx).Create(&vendor).Error)
	product := model.Product{Name: "Hammer", CategoryID: category.ID}
	require.NoError(t, db.WithContext(ctx).Create(&product).Error)
	vp := model.VendorProduct{
		ProductID:  product.ID,
		VendorID:   vendor.ID,
		VendorCode: "ACME-HA-1",
		Price:      decimal.RequireFromString("12.50"),
		Cost:       decimal.RequireFromString("8.00"),
		Stock:      &stock,
	}
	require.NoError(t, db.WithContext(ctx).Create(&vp).Error)

	txr := repository.NewTxRunner(db)
	vpRepo := repository.NewVendorProductRepository(db)
	billRepo := repository.NewBillRepository(db)
	returnRepo := repository.NewReturnRepository(db)

	return &fixture{
		db:      db,
		returns: service.NewReturnService(txr, vpRepo, billRepo, returnRepo, nil, 5),
		billing: service.NewBillingService(txr, billRepo, vpRepo, nil, nil, 5, t.TempDir()),
		vp:      &vp,
	}
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	var vp model.VendorProduct
	require.NoError(t, f.db.First(&vp, "id = ?", f.vp.ID).Error)
	require.NotNil(t, vp.Stock)
	return *vp.Stock
}

func TestReturnWorkflowAgainstPostgres(t *testing.T) {
	f := setupFixture(t, 10)
	ctx := context.Background()

	// Vendor return decrements stock and opens a pending case.
	first, err := f.returns.Submit(ctx, dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: f.vp.ID.String(),
		ReturnQty:       3,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, f.stock(t))

	// A second submission merges instead of opening a new case.
	second, err := f.returns.Submit(ctx, dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: f.vp.ID.String(),
		ReturnQty:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.ReturnQty)
	assert.Equal(t, 5, f.stock(t))

	var pendingCount int64
	require.NoError(t, f.db.Model(&model.ProductReturn{}).
		Where("vendor_product_id = ? AND status = ?", f.vp.ID, model.ReturnStatusPending).
		Count(&pendingCount).Error)
	assert.Equal(t, int64(1), pendingCount)

	// Overdrawing is refused on the live value.
	_, err = f.returns.Submit(ctx, dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindVendor,
		VendorProductID: f.vp.ID.String(),
		ReturnQty:       6,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
	assert.Equal(t, 5, f.stock(t))
}

func TestCustomerReturnAgainstPostgres(t *testing.T) {
	f := setupFixture(t, 10)
	ctx := context.Background()

	bill, err := f.billing.Create(ctx, dto.CreateBillRequest{
		InvoiceNo: "INV-1001",
		Items: []dto.BillItemRequest{
			{VendorProductID: f.vp.ID.String(), Quantity: 2, SellingPrice: decimal.RequireFromString("15.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 8, f.stock(t))

	resp, err := f.returns.Submit(ctx, dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindCustomer,
		VendorProductID: f.vp.ID.String(),
		ReturnQty:       1,
		InvoiceNum:      "INV-1001",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReturnTypeSold, resp.ReturnType)
	require.NotNil(t, resp.BillID)
	assert.Equal(t, bill.ID, *resp.BillID)
	require.NotNil(t, resp.CustomerReturn)
	assert.Equal(t, "INV-1001", resp.CustomerReturn.InvoiceNo)
	assert.Equal(t, 7, f.stock(t))

	// Wrong invoice is a validation failure, not a crash.
	_, err = f.returns.Submit(ctx, dto.SubmitReturnRequest{
		ReturnType:      dto.ReturnKindCustomer,
		VendorProductID: f.vp.ID.String(),
		ReturnQty:       1,
		InvoiceNum:      "INV-NOPE",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvoiceNotFound, apierror.KindOf(err))
}

func TestConcurrentReturnsAgainstPostgres(t *testing.T) {
	f := setupFixture(t, 10)
	ctx := context.Background()

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.returns.Submit(ctx, dto.SubmitReturnRequest{
				ReturnType:      dto.ReturnKindVendor,
				VendorProductID: f.vp.ID.String(),
				ReturnQty:       3,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, f.stock(t))
}

func TestRedisQueueRoundTrip(t *testing.T) {
	url := setupRedisURL(t)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	require.NoError(t, rdb.LPush(ctx, "it:test", "payload").Err())
	val, err := rdb.BRPop(ctx, 5*time.Second, "it:test").Result()
	require.NoError(t, err)
	assert.Equal(t, "payload", val[1])
}

func TestExhaustedAlertLandsInDeadLetterQueue(t *testing.T) {
	url := setupRedisURL(t)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	// Mailer pointed at a closed port so every send attempt fails fast.
	mailer := infra.NewMailer(&config.Config{SMTPHost: "127.0.0.1", SMTPPort: 1})
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 100, SuccessThreshold: 1, OpenTimeout: time.Hour,
	})
	alerts := worker.NewStockAlertWorker(mailer, cb, "ops@example.com")

	workerCtx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)
	worker.StartWorkerPool(workerCtx, rdb, 1, alerts)

	dispatcher := worker.NewDispatcher(rdb)
	require.NoError(t, dispatcher.EnqueueStockAlert(context.Background(), worker.StockAlertPayload{
		VendorProductID: "a5b2f0c1-0000-0000-0000-000000000001",
		ProductName:     "Widget",
		VendorName:      "Acme",
		Stock:           1,
		Threshold:       5,
	}))

	val, err := rdb.BRPop(context.Background(), 30*time.Second, worker.DeadLetterQueue).Result()
	require.NoError(t, err)

	var entry struct {
		Queue    string `json:"queue"`
		Type     string `json:"type"`
		Attempts int    `json:"attempts"`
		Reason   string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal([]byte(val[1]), &entry))
	assert.Equal(t, worker.QueueStockAlert, entry.Queue)
	assert.Equal(t, "stock_alert", entry.Type)
	assert.Equal(t, 3, entry.Attempts)
	assert.NotEmpty(t, entry.Reason)
}
