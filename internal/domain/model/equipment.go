package model

import "time"

// レンタル機材（Chopeira Elétrica / HomeBar）。
// 起動時にシードされる固定の選択肢。
type Equipment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"slug"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// カートごとの機材選択。cart_idユニークで最大1件。
// 選び直しは置き換え、解除は行削除。
type CartEquipment struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID       int64     `gorm:"not null;uniqueIndex" json:"cart_id"`
	EquipmentID  int64     `gorm:"not null" json:"equipment_id"`
	NameSnapshot string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
