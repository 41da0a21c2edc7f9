package repository

import (
	"bierz/internal/domain/model"
	"context"
)

// 固定のレンタル機材カタログ。
type EquipmentRepository interface {
	List(ctx context.Context) ([]model.Equipment, error)
	FindByID(ctx context.Context, id int64) (model.Equipment, error)
	// シード用。slugが既にあれば何もしない。
	EnsureExists(ctx context.Context, e model.Equipment) error
}

// カートごとの機材選択（最大1件）。
type CartEquipmentRepository interface {
	// 無ければ ErrNotFound
	FindByCartID(ctx context.Context, cartID int64) (model.CartEquipment, error)
	// 選び直しは置き換え
	SetForCart(ctx context.Context, cartID int64, equip model.Equipment) error
	// 無くてもエラーにしない
	ClearForCart(ctx context.Context, cartID int64) error
}
