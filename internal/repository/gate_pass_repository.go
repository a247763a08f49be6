package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gatepass/internal/model"
)

// gpNumberLength is the width of a well-formed number: 4-digit year plus a
// 4-digit sequence.
const gpNumberLength = 8

// GatePassRepository defines gate pass persistence operations.
type GatePassRepository interface {
	Create(ctx context.Context, gatePass *model.GatePass) error
	FindByID(ctx context.Context, id uint) (*model.GatePass, error)
	FindByNumber(ctx context.Context, gpNumber string) (*model.GatePass, error)
	List(ctx context.Context) ([]model.GatePass, error)
	LastNumberForYear(ctx context.Context, year string) (string, error)
	UpdateStatus(ctx context.Context, id uint, fields map[string]interface{}) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo GatePassRepository) error) error
}

type gatePassRepository struct {
	db *gorm.DB
}

// NewGatePassRepository creates a new gate pass repository.
func NewGatePassRepository(db *gorm.DB) GatePassRepository {
	return &gatePassRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// Create inserts the gate pass together with its items.
func (r *gatePassRepository) Create(ctx context.Context, gatePass *model.GatePass) error {
	return r.db.WithContext(ctx).Create(gatePass).Error
}

// FindByID finds a gate pass by ID, items included.
func (r *gatePassRepository) FindByID(ctx context.Context, id uint) (*model.GatePass, error) {
	var gatePass model.GatePass
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		First(&gatePass, id).Error; err != nil {
		return nil, err
	}
	return &gatePass, nil
}

// FindByNumber finds a gate pass by its exact gp_number, items included.
func (r *gatePassRepository) FindByNumber(ctx context.Context, gpNumber string) (*model.GatePass, error) {
	var gatePass model.GatePass
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Where("gp_number = ?", gpNumber).First(&gatePass).Error; err != nil {
		return nil, err
	}
	return &gatePass, nil
}

// List returns all gate passes newest first.
func (r *gatePassRepository) List(ctx context.Context) ([]model.GatePass, error) {
	var gatePasses []model.GatePass
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Order("id DESC").Find(&gatePasses).Error; err != nil {
		return nil, err
	}
	return gatePasses, nil
}

// LastNumberForYear returns the highest well-formed number issued for year,
// or "" when none exists. The row is locked for update on databases that
// support it, so it should run inside WithTransaction.
func (r *gatePassRepository) LastNumberForYear(ctx context.Context, year string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&model.GatePass{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gp_number LIKE ? AND LENGTH(gp_number) = ?", year+"%", gpNumberLength).
		Order("gp_number DESC").
		Limit(1).
		Pluck("gp_number", &numbers).Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// UpdateStatus applies the status columns in fields. Nil values clear the
// column.
func (r *gatePassRepository) UpdateStatus(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.GatePass{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// WithTransaction executes a function within a database transaction.
func (r *gatePassRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo GatePassRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &gatePassRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
