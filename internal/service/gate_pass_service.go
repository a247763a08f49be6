package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"gatepass/internal/cache"
	"gatepass/internal/errors"
	"gatepass/internal/model"
	"gatepass/internal/repository"
)

const (
	gatePassCacheTTL = 60 * time.Second
	// maxNumberAttempts bounds retries when a concurrent create took the
	// number first.
	maxNumberAttempts = 3
)

// StatusUpdate is a request to move a gate pass to another status.
type StatusUpdate struct {
	Status          string
	RejectedRemarks *string
	ApprovedBy      *string
}

// GatePassService manages the gate pass lifecycle.
type GatePassService interface {
	Create(ctx context.Context, gatePass *model.GatePass) (*model.GatePass, error)
	Get(ctx context.Context, id uint) (*model.GatePass, error)
	GetByNumber(ctx context.Context, gpNumber string) (*model.GatePass, error)
	List(ctx context.Context) ([]model.GatePass, error)
	UpdateStatus(ctx context.Context, id uint, update StatusUpdate) (*model.GatePass, error)
}

type gatePassService struct {
	repo   repository.GatePassRepository
	cache  *cache.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewGatePassService creates a new gate pass service.
func NewGatePassService(repo repository.GatePassRepository, cache *cache.Client, logger *slog.Logger) GatePassService {
	return &gatePassService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

func (s *gatePassService) numberCacheKey(gpNumber string) string {
	return fmt.Sprintf("gatepass:number:%s", gpNumber)
}

func withItems(gp *model.GatePass) *model.GatePass {
	if gp.Items == nil {
		gp.Items = []model.GatePassItem{}
	}
	return gp
}

// Create numbers and stores a new pending gate pass with its items.
func (s *gatePassService) Create(ctx context.Context, gatePass *model.GatePass) (*model.GatePass, error) {
	year := gatePass.PassDate.Year()
	gatePass.Status = model.GatePassStatusPending
	gatePass.InOrOut = model.ParseDirection(string(gatePass.InOrOut))
	gatePass.RejectedRemarks = nil
	gatePass.DateApproved = nil

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		resetIDs(gatePass)

		var created *model.GatePass
		err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.GatePassRepository) error {
			last, err := txRepo.LastNumberForYear(ctx, fmt.Sprintf("%04d", year))
			if err != nil {
				return fmt.Errorf("read last number: %w", err)
			}
			number, err := NextGPNumber(year, last)
			if err != nil {
				return err
			}
			gatePass.GPNumber = number

			if err := txRepo.Create(ctx, gatePass); err != nil {
				return err
			}
			created, err = txRepo.FindByID(ctx, gatePass.ID)
			return err
		})
		if err == nil {
			return withItems(created), nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("gate pass number taken, retrying",
				"gp_number", gatePass.GPNumber, "attempt", attempt)
			continue
		}
		if errors.Is(err, errors.ErrSequenceExhausted) {
			return nil, err
		}
		return nil, fmt.Errorf("create gate pass: %w", err)
	}
	return nil, errors.ErrNumberContention
}

func resetIDs(gp *model.GatePass) {
	gp.ID = 0
	gp.CreatedAt = time.Time{}
	for i := range gp.Items {
		gp.Items[i].ID = 0
		gp.Items[i].GatePassID = 0
	}
}

func (s *gatePassService) Get(ctx context.Context, id uint) (*model.GatePass, error) {
	gp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGatePassNotFound
		}
		return nil, fmt.Errorf("find gate pass: %w", err)
	}
	return withItems(gp), nil
}

// GetByNumber looks a pass up by its printed number. Results are cached
// briefly since scanners poll the same number repeatedly.
func (s *gatePassService) GetByNumber(ctx context.Context, gpNumber string) (*model.GatePass, error) {
	gpNumber = strings.TrimSpace(gpNumber)
	key := s.numberCacheKey(gpNumber)

	var cached model.GatePass
	if s.cache.GetJSON(ctx, key, &cached) {
		return withItems(&cached), nil
	}

	gp, err := s.repo.FindByNumber(ctx, gpNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGatePassNotFound
		}
		return nil, fmt.Errorf("find gate pass by number: %w", err)
	}
	withItems(gp)
	s.cache.SetJSON(ctx, key, gp, gatePassCacheTTL)
	return gp, nil
}

func (s *gatePassService) List(ctx context.Context) ([]model.GatePass, error) {
	gatePasses, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gate passes: %w", err)
	}
	for i := range gatePasses {
		withItems(&gatePasses[i])
	}
	return gatePasses, nil
}

// UpdateStatus sets the status. The rejection remark survives only on
// rejected passes and the approval date only on approved ones. An approver
// name is recorded only together with an approval.
func (s *gatePassService) UpdateStatus(ctx context.Context, id uint, update StatusUpdate) (*model.GatePass, error) {
	if strings.TrimSpace(update.Status) == "" {
		return nil, errors.ErrStatusRequired
	}
	status, ok := model.ParseGatePassStatus(update.Status)
	if !ok {
		return nil, errors.ErrInvalidStatus
	}

	fields := map[string]interface{}{
		"status":           string(status),
		"rejected_remarks": nil,
		"date_approved":    nil,
	}
	if status == model.GatePassStatusRejected && update.RejectedRemarks != nil {
		fields["rejected_remarks"] = *update.RejectedRemarks
	}
	if status == model.GatePassStatusApproved {
		fields["date_approved"] = model.DateOf(s.now())
		if update.ApprovedBy != nil {
			if name := strings.TrimSpace(*update.ApprovedBy); name != "" {
				fields["approved_by"] = name
			}
		}
	}

	var updated *model.GatePass
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.GatePassRepository) error {
		if _, err := txRepo.FindByID(ctx, id); err != nil {
			return err
		}
		if err := txRepo.UpdateStatus(ctx, id, fields); err != nil {
			return err
		}
		var err error
		updated, err = txRepo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGatePassNotFound
		}
		return nil, fmt.Errorf("update gate pass status: %w", err)
	}

	_ = s.cache.Delete(ctx, s.numberCacheKey(updated.GPNumber))
	s.logger.Info("gate pass status updated", "id", id, "gp_number", updated.GPNumber, "status", status)
	return withItems(updated), nil
}
