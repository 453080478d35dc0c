package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner abstracts the transaction boundary so services can run multi-step
// units of work atomically. The GORM implementation opens a real DB
// transaction; tests substitute a runner that serializes callbacks, which is
// the same guarantee row locks give the production path.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct{ db *gorm.DB }

func NewTxRunner(db *gorm.DB) TxRunner { return &gormTxRunner{db: db} }

func (r *gormTxRunner) RunInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
