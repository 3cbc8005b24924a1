package models

import "time"

type ProductCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);unique" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CategoryID uint            `gorm:"not null" json:"category_id"`
	Category   ProductCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name       string          `gorm:"type:varchar(255); not null" json:"name"`
	Price      int64           `gorm:"not null" json:"price"`
	Stock      int             `gorm:"not null;default:0" json:"stock"`
	Active     bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}
