package repository

import (
	"bierz/internal/domain/model"
	repo "bierz/internal/repository"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// カート明細を追加順で一覧取得
func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 同一の (product_id, size) は数量加算、無ければスナップショット付きで作成
func (r *CartItemGormRepository) Upsert(ctx context.Context, item model.CartItem) (bool, error) {

	if item.Quantity <= 0 {
		return false, errors.New("invalid quantity")
	}

	merged := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CartItem

		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND product_id = ? AND size = ?", item.CartID, item.ProductID, item.Size).
			First(&existing).Error

		if findErr == nil {
			// 既存ありだったら数量を増やす
			newQty := existing.Quantity + item.Quantity

			res := tx.Model(&model.CartItem{}).
				Where("id = ?", existing.ID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			merged = true
			return nil
		}

		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		//無い場合は新規作成
		now := time.Now()
		item.CreatedAt = now
		item.UpdatedAt = now

		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return false, err
	}
	return merged, nil
}

// 明細の数量を上書き
func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartID int64, productID int64, size string, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ? AND size = ?", cartID, productID, size).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// (product_id, size) 完全一致の行だけ削除。無くてもエラーにしない
func (r *CartItemGormRepository) Delete(ctx context.Context, cartID int64, productID int64, size string) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND size = ?", cartID, productID, size).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return res.Error
	}
	return nil
}
