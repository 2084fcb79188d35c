package store

import (
	"context"
	"errors"

	"manuflix-backend/internal/domain/plans"

	"gorm.io/gorm"
)

type PlanStore struct {
	db *gorm.DB
}

func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

// List returns the catalog ordered by price ascending, the order the
// landing page displays it in.
func (s *PlanStore) List(ctx context.Context) ([]plans.Plan, error) {
	var out []plans.Plan
	if err := s.db.WithContext(ctx).Order("price_brl ASC").Find(&out).Error; err != nil {
		return nil, storeErr("list plans", err)
	}
	return out, nil
}

func (s *PlanStore) GetByID(ctx context.Context, id uint) (*plans.Plan, error) {
	var plan plans.Plan
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, storeErr("get plan", err)
	}
	return &plan, nil
}

// Seed inserts the default Manuflix catalog if the plans are not present
// yet. Matching is by name so reruns are harmless.
func (s *PlanStore) Seed(ctx context.Context) error {
	defaults := []plans.Plan{
		{
			Name:         "Mensal",
			Description:  "Acesso completo por 30 dias",
			PriceBRL:     29.90,
			Period:       "monthly",
			DurationDays: 30,
		},
		{
			Name:         "Anual",
			Description:  "Acesso completo por 12 meses",
			PriceBRL:     199.90,
			Period:       "yearly",
			DurationDays: 365,
			Popular:      true,
		},
		{
			Name:        "Vitalício",
			Description: "Pague uma vez, assista para sempre",
			PriceBRL:    297.00,
			Period:      "once",
			IsLifetime:  true,
		},
	}

	for i := range defaults {
		err := s.db.WithContext(ctx).
			Where(plans.Plan{Name: defaults[i].Name}).
			FirstOrCreate(&defaults[i]).Error
		if err != nil {
			return storeErr("seed plans", err)
		}
	}
	return nil
}
