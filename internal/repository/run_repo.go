package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/timmy/redsift/internal/domain"
)

// RunRepository handles analysis run registry operations.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RunRepository: repository instance bound to db.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - run: run record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *RunRepository) Create(ctx context.Context, run *domain.AnalysisRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update saves an existing run record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - run: run record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *RunRepository) Update(ctx context.Context, run *domain.AnalysisRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// GetByID retrieves a run by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
// Returns:
//   - *domain.AnalysisRun: run record if found.
//   - error: domain.ErrRunNotFound when missing, other errors on failure.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	var run domain.AnalysisRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// List returns runs ordered by creation time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of runs to return; 0 means no limit.
// Returns:
//   - []domain.AnalysisRun: matching run records.
//   - error: non-nil if the query fails.
func (r *RunRepository) List(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var runs []domain.AnalysisRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
