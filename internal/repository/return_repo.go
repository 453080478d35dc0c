package repository

import (
	"context"
	"errors"

	"backstock/internal/dto"
	"backstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReturnRepository interface {
	List(ctx context.Context, filter dto.ReturnFilter) ([]model.ProductReturn, int64, error)

	// Used inside transactions — callers must pass the tx instance.
	// FindPendingForUpdateTx locks the Pending row for this vendor product
	// (nil, nil when none exists) so concurrent submissions cannot both miss
	// it and insert duplicates. FindByIDForUpdateTx takes the same row lock
	// by id so a resolution cannot race a concurrent merge.
	FindPendingForUpdateTx(tx *gorm.DB, vendorProductID uuid.UUID) (*model.ProductReturn, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductReturn, error)
	CreateTx(tx *gorm.DB, pr *model.ProductReturn) error
	AddQtyTx(tx *gorm.DB, id uuid.UUID, qty int) error
	// ResolveTx updates only status and resolution_type, never the full row.
	ResolveTx(tx *gorm.DB, id uuid.UUID, status model.ReturnStatus, resolutionType *int) error
	CreateCustomerReturnTx(tx *gorm.DB, cpr *model.CustomerProductReturn) error
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) ReturnRepository { return &returnRepo{db: db} }

func (r *returnRepo) List(ctx context.Context, filter dto.ReturnFilter) ([]model.ProductReturn, int64, error) {
	var returns []model.ProductReturn
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductReturn{})
	if filter.Status != 0 {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ReturnType != 0 {
		q = q.Where("return_type = ?", filter.ReturnType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&returns).Error
	return returns, total, err
}

func (r *returnRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductReturn, error) {
	var pr model.ProductReturn
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pr, "id = ?", id).Error
	return &pr, err
}

func (r *returnRepo) ResolveTx(tx *gorm.DB, id uuid.UUID, status model.ReturnStatus, resolutionType *int) error {
	updates := map[string]interface{}{"status": status}
	if resolutionType != nil {
		updates["resolution_type"] = *resolutionType
	}
	return tx.Model(&model.ProductReturn{}).Where("id = ?", id).Updates(updates).Error
}

func (r *returnRepo) FindPendingForUpdateTx(tx *gorm.DB, vendorProductID uuid.UUID) (*model.ProductReturn, error) {
	var pr model.ProductReturn
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("vendor_product_id = ? AND status = ?", vendorProductID, model.ReturnStatusPending).
		First(&pr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *returnRepo) CreateTx(tx *gorm.DB, pr *model.ProductReturn) error {
	return tx.Create(pr).Error
}

func (r *returnRepo) AddQtyTx(tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.Model(&model.ProductReturn{}).Where("id = ?", id).
		Update("return_qty", gorm.Expr("return_qty + ?", qty)).Error
}

func (r *returnRepo) CreateCustomerReturnTx(tx *gorm.DB, cpr *model.CustomerProductReturn) error {
	return tx.Create(cpr).Error
}
