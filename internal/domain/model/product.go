package model

import (
	"time"

	"gorm.io/gorm"
)

// 販売単位。chopp はリットル売り、それ以外は個数売り。
type Unit string

const (
	UnitVolume Unit = "volume"
	UnitEach   Unit = "each"
)

type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"type:varchar(50);not null;index" json:"category"`
	Price       int64          `gorm:"not null" json:"price"`
	Unit        Unit           `gorm:"type:varchar(10);not null" json:"unit"`
	Sizes       []string       `gorm:"serializer:json;type:text" json:"sizes"`
	Image       string         `gorm:"type:text" json:"image"`
	Stock       int64          `gorm:"not null" json:"stock"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// 商品が指定サイズを扱っているか。
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
