package database

import (
	"cachestore/internal/local"
	"cachestore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Medium stores raw local records in the local_items table.
type Medium struct {
	db *gorm.DB
}

// NewMedium wraps an opened and migrated database.
func NewMedium(db *gorm.DB) *Medium {
	return &Medium{db: db}
}

func (m *Medium) GetItem(key string) (string, bool, error) {
	// Find instead of First: a miss is routine here and must not be logged as an error
	var items []models.Item
	if err := m.db.Where("item_key = ?", key).Limit(1).Find(&items).Error; err != nil {
		return "", false, err
	}
	if len(items) == 0 {
		return "", false, nil
	}
	return items[0].Value, true, nil
}

func (m *Medium) SetItem(key, value string) error {
	item := models.Item{Key: key, Value: value}
	return m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_value", "updated_at"}),
	}).Create(&item).Error
}

func (m *Medium) RemoveItem(key string) error {
	return m.db.Where("item_key = ?", key).Delete(&models.Item{}).Error
}

func (m *Medium) Keys() ([]string, error) {
	var keys []string
	if err := m.db.Model(&models.Item{}).Order("created_at, item_key").Pluck("item_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// Ensure Medium implements local.Medium at compile time.
var _ local.Medium = (*Medium)(nil)
