package model

import "time"

// Product is a catalog entry that gate pass items can reference by code.
type Product struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ItemCode        string    `json:"item_code" gorm:"uniqueIndex;size:100;not null"`
	ItemDescription string    `json:"item_description" gorm:"size:500;not null"`
	ItemGroup       *string   `json:"item_group" gorm:"size:100;index"`
	CreatedAt       time.Time `json:"-"`
}
