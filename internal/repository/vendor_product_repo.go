package repository

import (
	"context"

	"backstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VendorProductRepository interface {
	Create(ctx context.Context, vp *model.VendorProduct) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VendorProduct, error)
	ListActive(ctx context.Context) ([]model.VendorProduct, error)
	Update(ctx context.Context, vp *model.VendorProduct) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ReferencedByBillItems reports whether any invoice line still points at
	// this offer (delete protection).
	ReferencedByBillItems(ctx context.Context, id uuid.UUID) (bool, error)

	// Used inside transactions — callers must pass the tx instance.
	// FindByIDForUpdateTx takes a row-level lock so the stock
	// check-then-decrement is serialized per vendor product.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.VendorProduct, error)
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
}

type vendorProductRepo struct{ db *gorm.DB }

func NewVendorProductRepository(db *gorm.DB) VendorProductRepository {
	return &vendorProductRepo{db: db}
}

func (r *vendorProductRepo) Create(ctx context.Context, vp *model.VendorProduct) error {
	return r.db.WithContext(ctx).Create(vp).Error
}

func (r *vendorProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VendorProduct, error) {
	var vp model.VendorProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Vendor").
		First(&vp, "id = ?", id).Error
	return &vp, err
}

func (r *vendorProductRepo) ListActive(ctx context.Context) ([]model.VendorProduct, error) {
	var vps []model.VendorProduct
	err := r.db.WithContext(ctx).
		Where("is_active = true").
		Preload("Product").
		Preload("Vendor").
		Order("created_at DESC").
		Find(&vps).Error
	return vps, err
}

func (r *vendorProductRepo) Update(ctx context.Context, vp *model.VendorProduct) error {
	return r.db.WithContext(ctx).Save(vp).Error
}

func (r *vendorProductRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.VendorProduct{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *vendorProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.VendorProduct{}, "id = ?", id).Error
}

func (r *vendorProductRepo) ReferencedByBillItems(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BillItem{}).
		Where("vendor_product_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *vendorProductRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.VendorProduct, error) {
	var vp model.VendorProduct
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vp, "id = ?", id).Error
	return &vp, err
}

func (r *vendorProductRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.VendorProduct{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}
