package repository

import (
	"bierz/internal/domain/model"
	"context"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	// 明細の全削除
	Clear(ctx context.Context, cartID int64) error
}
