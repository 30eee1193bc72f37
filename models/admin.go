package models

import (
	"time"
)

// AdminUser is a back-office account used when the API issues its own tokens
type AdminUser struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" bson:"username" json:"username"`
	PasswordHash string    `gorm:"not null" bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updated_at"`
}

// TableName specifies the table name for the AdminUser model
func (AdminUser) TableName() string {
	return "admin_users"
}
