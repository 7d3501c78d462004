package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type AuditRepository interface {
	Create(audit *models.RequestAudit) error
	FindRecent(limit int) ([]models.RequestAudit, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create implements AuditRepository.
func (r *auditRepository) Create(audit *models.RequestAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}

	if err := r.db.Create(audit).Error; err != nil {
		return fmt.Errorf("failed to create request audit: %w", err)
	}
	return nil
}

// FindRecent implements AuditRepository.
func (r *auditRepository) FindRecent(limit int) ([]models.RequestAudit, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var audits []models.RequestAudit
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find request audits: %w", err)
	}

	return audits, nil
}
