package repository

import (
	"github.com/marketbots/nsemetricsapi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository persists broker API sessions
type SessionRepository struct {
	DB *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// GetSessionByClientCode returns the stored session for a client code
func (r *SessionRepository) GetSessionByClientCode(clientCode string) (*models.SessionModel, error) {
	var session models.SessionModel
	err := r.DB.Where("client_code = ?", clientCode).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpsertSession inserts or replaces the session for its client code
func (r *SessionRepository) UpsertSession(session *models.SessionModel) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_code"}},
		UpdateAll: true,
	}).Create(session).Error
}

// DeleteSession removes the session for a client code
func (r *SessionRepository) DeleteSession(clientCode string) (int64, error) {
	result := r.DB.Where("client_code = ?", clientCode).Delete(&models.SessionModel{})
	return result.RowsAffected, result.Error
}
