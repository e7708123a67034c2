package models

import "time"

// User is an operator allowed to call the admin API.
type User struct {
	Username     string    `json:"username" gorm:"primaryKey"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
