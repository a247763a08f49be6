package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/errors"
	"gatepass/internal/logging"
	"gatepass/internal/model"
	"gatepass/internal/repository"
	"gatepass/internal/testutil"
)

func newGatePassService(t *testing.T) *gatePassService {
	t.Helper()
	repo := repository.NewGatePassRepository(testutil.NewDB(t))
	svc := NewGatePassService(repo, nil, logging.Discard()).(*gatePassService)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC) }
	return svc
}

func draftGatePass(date model.Date, items ...model.GatePassItem) *model.GatePass {
	return &model.GatePass{
		PassDate:       date,
		AuthorizedName: "Juan dela Cruz",
		InOrOut:        "OUT",
		Purposes:       model.Purposes{Delivery: true},
		Items:          items,
	}
}

func TestGatePassService_CreateNumbersSequentially(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)
	day := model.NewDate(2026, time.January, 15)

	first, err := svc.Create(ctx, draftGatePass(day, model.GatePassItem{ItemDescription: "Pallet A", Qty: 10}))
	require.NoError(t, err)
	assert.Equal(t, "20260001", first.GPNumber)
	assert.Equal(t, model.GatePassStatusPending, first.Status)
	assert.Equal(t, model.DirectionOut, first.InOrOut)
	assert.Len(t, first.Items, 1)

	second, err := svc.Create(ctx, draftGatePass(day))
	require.NoError(t, err)
	assert.Equal(t, "20260002", second.GPNumber)
	assert.NotNil(t, second.Items)
	assert.Empty(t, second.Items)

	other, err := svc.Create(ctx, draftGatePass(model.NewDate(2027, time.February, 1)))
	require.NoError(t, err)
	assert.Equal(t, "20270001", other.GPNumber)
}

func TestGatePassService_CreateKeepsItemOrder(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)

	code := "P-1"
	created, err := svc.Create(ctx, draftGatePass(model.NewDate(2026, time.May, 5),
		model.GatePassItem{ItemCode: &code, ItemDescription: "first", Qty: 1},
		model.GatePassItem{ItemDescription: "second", Qty: 2},
		model.GatePassItem{ItemDescription: "third", Qty: 0},
	))
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{got.Items[0].ItemDescription, got.Items[1].ItemDescription, got.Items[2].ItemDescription})
	require.NotNil(t, got.Items[0].ItemCode)
	assert.Equal(t, "P-1", *got.Items[0].ItemCode)
	assert.True(t, got.Items[0].ID < got.Items[1].ID)
}

func TestGatePassService_CreateNormalizesDirection(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)
	day := model.NewDate(2026, time.January, 1)

	gp := draftGatePass(day)
	gp.InOrOut = " In "
	created, err := svc.Create(ctx, gp)
	require.NoError(t, err)
	assert.Equal(t, model.DirectionIn, created.InOrOut)

	gp = draftGatePass(day)
	gp.InOrOut = "sideways"
	created, err = svc.Create(ctx, gp)
	require.NoError(t, err)
	assert.Equal(t, model.DirectionOut, created.InOrOut)
}

func TestGatePassService_CreateSequenceExhausted(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)

	full := draftGatePass(model.NewDate(2026, time.January, 1))
	full.GPNumber = "20269999"
	full.Status = model.GatePassStatusPending
	full.InOrOut = model.DirectionOut
	require.NoError(t, svc.repo.Create(ctx, full))

	_, err := svc.Create(ctx, draftGatePass(model.NewDate(2026, time.June, 1)))
	assert.ErrorIs(t, err, errors.ErrSequenceExhausted)
}

func TestGatePassService_GetByNumber(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)

	created, err := svc.Create(ctx, draftGatePass(model.NewDate(2026, time.January, 15)))
	require.NoError(t, err)

	found, err := svc.GetByNumber(ctx, "  "+created.GPNumber+" ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByNumber(ctx, "20269999")
	assert.Equal(t, errors.ErrGatePassNotFound, err)

	_, err = svc.Get(ctx, 12345)
	assert.Equal(t, errors.ErrGatePassNotFound, err)
}

func TestGatePassService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)
	day := model.NewDate(2026, time.January, 15)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, draftGatePass(day))
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "20260003", list[0].GPNumber)
	assert.Equal(t, "20260001", list[2].GPNumber)
	assert.NotNil(t, list[0].Items)
}

func TestGatePassService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)

	created, err := svc.Create(ctx, draftGatePass(model.NewDate(2026, time.January, 15)))
	require.NoError(t, err)

	remark := "wrong plate number"
	rejected, err := svc.UpdateStatus(ctx, created.ID, StatusUpdate{Status: " Rejected ", RejectedRemarks: &remark})
	require.NoError(t, err)
	assert.Equal(t, model.GatePassStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectedRemarks)
	assert.Equal(t, remark, *rejected.RejectedRemarks)
	assert.Nil(t, rejected.DateApproved)

	approver := "Maria"
	approved, err := svc.UpdateStatus(ctx, created.ID, StatusUpdate{Status: "approved", RejectedRemarks: &remark, ApprovedBy: &approver})
	require.NoError(t, err)
	assert.Equal(t, model.GatePassStatusApproved, approved.Status)
	assert.Nil(t, approved.RejectedRemarks)
	require.NotNil(t, approved.DateApproved)
	assert.Equal(t, "2026-03-02", approved.DateApproved.String())
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "Maria", *approved.ApprovedBy)

	other := "Pedro"
	pending, err := svc.UpdateStatus(ctx, created.ID, StatusUpdate{Status: "pending", ApprovedBy: &other})
	require.NoError(t, err)
	assert.Nil(t, pending.DateApproved)
	require.NotNil(t, pending.ApprovedBy)
	assert.Equal(t, "Maria", *pending.ApprovedBy)

	rejectedAgain, err := svc.UpdateStatus(ctx, created.ID, StatusUpdate{Status: "rejected", ApprovedBy: &other})
	require.NoError(t, err)
	require.NotNil(t, rejectedAgain.ApprovedBy)
	assert.Equal(t, "Maria", *rejectedAgain.ApprovedBy)
}

func TestGatePassService_ApproverIgnoredUnlessApproving(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)

	created, err := svc.Create(ctx, draftGatePass(model.NewDate(2026, time.January, 15)))
	require.NoError(t, err)
	require.Nil(t, created.ApprovedBy)

	approver := "Maria"
	rejected, err := svc.UpdateStatus(ctx, created.ID, StatusUpdate{Status: "rejected", ApprovedBy: &approver})
	require.NoError(t, err)
	assert.Nil(t, rejected.ApprovedBy)
}

func TestGatePassService_UpdateStatusErrors(t *testing.T) {
	ctx := context.Background()
	svc := newGatePassService(t)

	created, err := svc.Create(ctx, draftGatePass(model.NewDate(2026, time.January, 15)))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, created.ID, StatusUpdate{Status: "   "})
	assert.Equal(t, errors.ErrStatusRequired, err)

	_, err = svc.UpdateStatus(ctx, created.ID, StatusUpdate{Status: "archived"})
	assert.Equal(t, errors.ErrInvalidStatus, err)

	_, err = svc.UpdateStatus(ctx, 999, StatusUpdate{Status: "approved"})
	assert.Equal(t, errors.ErrGatePassNotFound, err)
}

// staleNumberRepo answers LastNumberForYear with "" for the first
// *staleReads calls, as if a concurrent create had not committed yet.
type staleNumberRepo struct {
	repository.GatePassRepository
	staleReads *int
}

func (r staleNumberRepo) LastNumberForYear(ctx context.Context, year string) (string, error) {
	if *r.staleReads > 0 {
		*r.staleReads--
		return "", nil
	}
	return r.GatePassRepository.LastNumberForYear(ctx, year)
}

func (r staleNumberRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.GatePassRepository) error) error {
	return r.GatePassRepository.WithTransaction(ctx, func(ctx context.Context, tx repository.GatePassRepository) error {
		return fn(ctx, staleNumberRepo{GatePassRepository: tx, staleReads: r.staleReads})
	})
}

func newStaleNumberService(t *testing.T, staleReads *int) *gatePassService {
	t.Helper()
	repo := staleNumberRepo{
		GatePassRepository: repository.NewGatePassRepository(testutil.NewDB(t)),
		staleReads:         staleReads,
	}
	return NewGatePassService(repo, nil, logging.Discard()).(*gatePassService)
}

func TestGatePassService_CreateRetriesTakenNumber(t *testing.T) {
	ctx := context.Background()
	staleReads := 0
	svc := newStaleNumberService(t, &staleReads)
	day := model.NewDate(2026, time.January, 15)

	first, err := svc.Create(ctx, draftGatePass(day))
	require.NoError(t, err)
	require.Equal(t, "20260001", first.GPNumber)

	staleReads = 1
	second, err := svc.Create(ctx, draftGatePass(day, model.GatePassItem{ItemDescription: "Drum", Qty: 4}))
	require.NoError(t, err)
	assert.Equal(t, "20260002", second.GPNumber)
	assert.Len(t, second.Items, 1)
	assert.Zero(t, staleReads)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGatePassService_CreateGivesUpAfterRetries(t *testing.T) {
	ctx := context.Background()
	staleReads := 0
	svc := newStaleNumberService(t, &staleReads)
	day := model.NewDate(2026, time.January, 15)

	_, err := svc.Create(ctx, draftGatePass(day))
	require.NoError(t, err)

	staleReads = maxNumberAttempts + 2
	_, err = svc.Create(ctx, draftGatePass(day, model.GatePassItem{ItemDescription: "Drum", Qty: 4}))
	assert.ErrorIs(t, err, errors.ErrNumberContention)
	assert.Equal(t, 2, staleReads)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
