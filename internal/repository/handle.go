package repository

import (
	"context"
	"sync/atomic"

	"gorm.io/gorm"
)

// Handle is the shared storage handle every store borrows connections from.
// The pool may be attached after the server starts listening; until then
// every store call fails with ErrDBNotReady.
type Handle struct {
	db atomic.Pointer[gorm.DB]
}

func NewHandle(db *gorm.DB) *Handle {
	h := &Handle{}
	if db != nil {
		h.db.Store(db)
	}
	return h
}

func (h *Handle) SetDB(db *gorm.DB) {
	h.db.Store(db)
}

func (h *Handle) Ready() bool {
	return h.db.Load() != nil
}

func (h *Handle) conn(ctx context.Context, op string) (*gorm.DB, error) {
	db := h.db.Load()
	if db == nil {
		return nil, storageErr(op, ErrDBNotReady)
	}
	return db.WithContext(ctx), nil
}
