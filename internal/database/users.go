package database

import (
	"cachestore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveUser creates or replaces the operator account username.
func SaveUser(db *gorm.DB, username, passwordHash string) error {
	user := models.User{Username: username, PasswordHash: passwordHash}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
	}).Create(&user).Error
}

// FindUser returns the operator account username, or gorm.ErrRecordNotFound.
func FindUser(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
