package model

import "time"

// カートの明細。
// 同一の (product_id, size) は1行にまとめ、数量を加算する。
// 表示名・画像・価格・単位は追加時点のスナップショットを必ず保存。
type CartItem struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID               int64     `gorm:"not null;index;uniqueIndex:uq_cart_product_size" json:"cart_id"`
	ProductID            int64     `gorm:"not null;index;uniqueIndex:uq_cart_product_size" json:"product_id"`
	Size                 string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_cart_product_size" json:"size"`
	Quantity             int64     `gorm:"not null" json:"quantity"`
	ProductNameSnapshot  string    `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImageSnapshot string    `gorm:"type:text" json:"product_image"`
	UnitPriceSnapshot    int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price"`
	Unit                 Unit      `gorm:"type:varchar(10);not null" json:"unit"`
	Category             string    `gorm:"type:varchar(50);not null" json:"category"`
	CreatedAt            time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
