package models

import (
	"time"
)

type Label struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:50;not null" json:"name"`
	Color       string    `gorm:"size:7;not null" json:"color"` // always #RRGGBB, upper case
	Description string    `gorm:"size:200" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
