package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-match-analyzer/internal/models"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepository interface {
	Create(record *models.AnalysisRecord) error
	FindByID(id uuid.UUID) (*models.AnalysisRecord, error)
	FindByIDs(ids []uuid.UUID) ([]models.AnalysisRecord, error)
	FindRecent(limit int) ([]models.AnalysisRecord, error)
	FindAll(batchSize int, fn func(batch []models.AnalysisRecord) error) error
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(record *models.AnalysisRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

func (r *analysisRepository) FindByID(id uuid.UUID) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &record, nil
}

func (r *analysisRepository) FindByIDs(ids []uuid.UUID) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	if len(ids) == 0 {
		return records, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}
	return records, nil
}

func (r *analysisRepository) FindRecent(limit int) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find recent analyses: %w", err)
	}
	return records, nil
}

// FindAll walks every stored analysis in primary key order. FindInBatches pages with
// "id > last id", so any other ordering would skip rows.
func (r *analysisRepository) FindAll(batchSize int, fn func(batch []models.AnalysisRecord) error) error {
	var records []models.AnalysisRecord
	result := r.db.
		FindInBatches(&records, batchSize, func(tx *gorm.DB, batch int) error {
			return fn(records)
		})

	if result.Error != nil {
		return fmt.Errorf("failed to iterate analyses: %w", result.Error)
	}
	return nil
}
