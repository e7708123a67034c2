package models

import "time"

// Item is one raw key/value pair of the persistent medium.
// Keys carry their namespace prefix; values are the serialized envelope.
type Item struct {
	Key       string    `json:"key" gorm:"column:item_key;primaryKey"`
	Value     string    `json:"value" gorm:"column:item_value;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Item Model
func (Item) TableName() string {
	return "local_items"
}
