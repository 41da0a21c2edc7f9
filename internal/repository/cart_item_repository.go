package repository

import (
	"bierz/internal/domain/model"
	"context"
)

type CartItemRepository interface {
	// 表示順（追加順）で返す
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)

	// 行の同一性は (product_id, size)。既存行は数量加算、無ければ
	// スナップショット付きで新規作成。加算したかどうかを返す。
	Upsert(ctx context.Context, item model.CartItem) (merged bool, err error)

	// 数量を上書き。対象が無ければ ErrNotFound。
	UpdateQuantity(ctx context.Context, cartID int64, productID int64, size string, qty int64) error

	// (product_id, size) 完全一致の行だけ削除。無くてもエラーにしない。
	Delete(ctx context.Context, cartID int64, productID int64, size string) error
}
