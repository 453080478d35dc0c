package repository

import (
	"context"
	"time"

	"backstock/internal/dto"
	"backstock/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesAggregate carries the derived sales figures of one product. Every field
// is zero-valued when no bill items match, never null — COALESCE in the query
// guarantees it.
type SalesAggregate struct {
	TotalSales     int64
	TotalRevenue   decimal.Decimal
	ThisMonthSales int64
	Last2DaySales  int64
}

type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	FindByInvoiceNo(ctx context.Context, invoiceNo string) (*model.Bill, error)
	List(ctx context.Context, filter dto.BillFilter) ([]model.Bill, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	CreateTx(tx *gorm.DB, b *model.Bill) error
	FindByInvoiceNoTx(tx *gorm.DB, invoiceNo string) (*model.Bill, error)
	FindItemTx(tx *gorm.DB, billID, vendorProductID uuid.UUID) (*model.BillItem, error)

	// SalesAnalysis aggregates billing history for a product: lifetime units
	// and revenue plus units since monthStart and since twoDaysAgo.
	SalesAnalysis(ctx context.Context, productID uuid.UUID, monthStart, twoDaysAgo time.Time) (*SalesAggregate, error)
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

func (r *billRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.VendorProduct").
		Preload("Items.VendorProduct.Product").
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *billRepo) FindByInvoiceNo(ctx context.Context, invoiceNo string) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("invoice_no = ?", invoiceNo).
		First(&b).Error
	return &b, err
}

func (r *billRepo) List(ctx context.Context, filter dto.BillFilter) ([]model.Bill, int64, error) {
	var bills []model.Bill
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Bill{})
	if filter.InvoiceNo != "" {
		q = q.Where("invoice_no ILIKE ?", "%"+filter.InvoiceNo+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").
		Preload("Items.VendorProduct").
		Preload("Items.VendorProduct.Product").
		Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&bills).Error
	return bills, total, err
}

func (r *billRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Items cascade via FK; return rows pointing at the bill are SET NULL.
	return r.db.WithContext(ctx).Select("Items").Delete(&model.Bill{ID: id}).Error
}

func (r *billRepo) CreateTx(tx *gorm.DB, b *model.Bill) error {
	return tx.Create(b).Error
}

func (r *billRepo) FindByInvoiceNoTx(tx *gorm.DB, invoiceNo string) (*model.Bill, error) {
	var b model.Bill
	err := tx.Where("invoice_no = ?", invoiceNo).First(&b).Error
	return &b, err
}

func (r *billRepo) FindItemTx(tx *gorm.DB, billID, vendorProductID uuid.UUID) (*model.BillItem, error) {
	var item model.BillItem
	err := tx.Where("bill_id = ? AND vendor_product_id = ?", billID, vendorProductID).
		First(&item).Error
	return &item, err
}

func (r *billRepo) SalesAnalysis(ctx context.Context, productID uuid.UUID, monthStart, twoDaysAgo time.Time) (*SalesAggregate, error) {
	var row struct {
		TotalSales     int64
		TotalRevenue   decimal.Decimal
		ThisMonthSales int64
		Last2DaySales  int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(bi.quantity), 0)                                              AS total_sales,
			COALESCE(SUM(bi.quantity * bi.selling_price), 0)                           AS total_revenue,
			COALESCE(SUM(CASE WHEN b.created_at >= ? THEN bi.quantity ELSE 0 END), 0)  AS this_month_sales,
			COALESCE(SUM(CASE WHEN b.created_at >= ? THEN bi.quantity ELSE 0 END), 0)  AS last2_day_sales
		FROM bill_items bi
		JOIN bills b            ON b.id = bi.bill_id
		JOIN vendor_products vp ON vp.id = bi.vendor_product_id
		WHERE vp.product_id = ?`,
		monthStart, twoDaysAgo, productID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &SalesAggregate{
		TotalSales:     row.TotalSales,
		TotalRevenue:   row.TotalRevenue.Round(2),
		ThisMonthSales: row.ThisMonthSales,
		Last2DaySales:  row.Last2DaySales,
	}, nil
}
