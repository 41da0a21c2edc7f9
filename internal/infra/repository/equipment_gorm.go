package repository

import (
	"bierz/internal/domain/model"
	repo "bierz/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentGormRepository struct {
	db *gorm.DB
}

// DI
func NewEquipmentGormRepository(db *gorm.DB) *EquipmentGormRepository {
	return &EquipmentGormRepository{db: db}
}

func (r *EquipmentGormRepository) List(ctx context.Context) ([]model.Equipment, error) {
	var items []model.Equipment

	if err := r.db.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return []model.Equipment{}, err
	}
	return items, nil
}

func (r *EquipmentGormRepository) FindByID(ctx context.Context, id int64) (model.Equipment, error) {
	var e model.Equipment

	err := r.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Equipment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Equipment{}, err
	}
	return e, nil
}

// シード用。slugが既にあれば何もしない
func (r *EquipmentGormRepository) EnsureExists(ctx context.Context, e model.Equipment) error {
	return r.db.WithContext(ctx).
		Where("slug = ?", e.Slug).
		FirstOrCreate(&e).Error
}

type CartEquipmentGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartEquipmentGormRepository(db *gorm.DB) *CartEquipmentGormRepository {
	return &CartEquipmentGormRepository{db: db}
}

func (r *CartEquipmentGormRepository) FindByCartID(ctx context.Context, cartID int64) (model.CartEquipment, error) {
	var ce model.CartEquipment

	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		First(&ce).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartEquipment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartEquipment{}, err
	}
	return ce, nil
}

// 選択はカートごとに1件。既にあれば置き換える
func (r *CartEquipmentGormRepository) SetForCart(ctx context.Context, cartID int64, equip model.Equipment) error {
	ce := model.CartEquipment{
		CartID:       cartID,
		EquipmentID:  equip.ID,
		NameSnapshot: equip.Name,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"equipment_id", "name_snapshot", "updated_at"}),
		}).
		Create(&ce).Error
}

// 無くてもエラーにしない
func (r *CartEquipmentGormRepository) ClearForCart(ctx context.Context, cartID int64) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartEquipment{})

	return res.Error
}
