// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"
)

// visitorRepository implements the repository.VisitorRepository interface.
type visitorRepository struct {
	db *gorm.DB
}

// NewVisitorRepository is the constructor for visitorRepository.
func NewVisitorRepository(db *gorm.DB) repository.VisitorRepository {
	return &visitorRepository{db: db}
}

// Save upserts the visitor row keyed by visitor id.
func (repo *visitorRepository) Save(ctx context.Context, creds *entity.VisitorCredentials) error {
	m := fromVisitorDomain(creds)
	m.UpdatedAt = time.Now()

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "visitor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sealed_token", "sealed_cookies", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return errors.Wrap(err, "failed to save visitor session")
	}

	creds.UpdatedAt = m.UpdatedAt

	return nil
}

func (repo *visitorRepository) Find(ctx context.Context, visitorID uuid.UUID) (*entity.VisitorCredentials, error) {
	var m model.VisitorSessionModel

	if err := repo.db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVisitorNotFound
		}

		return nil, errors.Wrap(err, "failed to find visitor session")
	}

	return toVisitorDomain(&m), nil
}

func (repo *visitorRepository) Delete(ctx context.Context, visitorID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Delete(&model.VisitorSessionModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete visitor session")
	}

	return nil
}

func (repo *visitorRepository) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("updated_at < ?", before).
		Delete(&model.VisitorSessionModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete idle visitor sessions")
	}

	return result.RowsAffected, nil
}

func fromVisitorDomain(creds *entity.VisitorCredentials) *model.VisitorSessionModel {
	return &model.VisitorSessionModel{
		VisitorID:     creds.VisitorID,
		SealedToken:   creds.SealedToken,
		SealedCookies: creds.SealedCookies,
		UpdatedAt:     creds.UpdatedAt,
	}
}

func toVisitorDomain(m *model.VisitorSessionModel) *entity.VisitorCredentials {
	return &entity.VisitorCredentials{
		VisitorID:     m.VisitorID,
		SealedToken:   m.SealedToken,
		SealedCookies: m.SealedCookies,
		UpdatedAt:     m.UpdatedAt,
	}
}
