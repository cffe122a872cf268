// Package state persists small key/value flags in the database.
package state

import (
	"errors"

	"gorm.io/gorm"
)

// StateEntry is a single key/value row
type StateEntry struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// TableName specifies the table name for StateEntry
func (StateEntry) TableName() string {
	return "_app_state"
}

type State struct {
	db *gorm.DB
}

func NewState(db *gorm.DB) (*State, error) {
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return nil, err
	}
	return &State{db: db}, nil
}

// Get returns the value for key, or an empty string when the key is absent
func (s *State) Get(key string) (string, error) {
	var entry StateEntry
	result := s.db.Where("key = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return entry.Value, nil
}

// Set creates or updates the value for key
func (s *State) Set(key, value string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry StateEntry
		result := tx.Where("key = ?", key).First(&entry)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				entry = StateEntry{Key: key, Value: value}
				return tx.Create(&entry).Error
			}
			return result.Error
		}
		entry.Value = value
		return tx.Save(&entry).Error
	})
}

// Delete removes the key
func (s *State) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&StateEntry{}).Error
}
