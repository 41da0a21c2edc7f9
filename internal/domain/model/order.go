package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// 注文。金額は確定時点のスナップショットを保存する。
// 配送料・機材レンタル料はカートと同じpricingで計算した値。
type Order struct {
	ID                 int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             int64       `gorm:"not null;index" json:"user_id"`
	Status             OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	DeliveryAddress    string      `gorm:"type:text;not null" json:"delivery_address"`
	Notes              string      `gorm:"type:text" json:"notes"`
	EquipmentName      string      `gorm:"type:varchar(100)" json:"equipment_name"`
	Subtotal           int64       `gorm:"not null" json:"subtotal"`
	DeliveryFee        int64       `gorm:"not null" json:"delivery_fee"`
	EquipmentRentalFee int64       `gorm:"not null" json:"equipment_rental_fee"`
	TotalPrice         int64       `gorm:"not null" json:"total_price"`
	IdempotencyKey     string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt          time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
