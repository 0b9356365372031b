package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/config"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/jobs"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconciliationFixture struct {
	svc          *ReconciliationService
	contractRepo *mockContractRepo
	paymentRepo  *mockPaymentRepo
	clock        *fakeClock
}

func newReconciliationFixture(t *testing.T, now time.Time) *reconciliationFixture {
	t.Helper()
	clock := &fakeClock{now: now}
	contractRepo := &mockContractRepo{updateErr: map[uint]error{}}
	paymentRepo := &mockPaymentRepo{updateErr: map[uint]error{}}
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	paymentSvc := NewPaymentService(
		paymentRepo,
		contractRepo,
		NewSettingsService(newMockSettingRepo(nil), clock),
		NewNotificationService(&mockNotificationRepo{}, &mockUserRepo{}),
		NewEmailService(&config.Config{}),
		NewAuditService(nil),
		worker,
		clock,
	)

	return &reconciliationFixture{
		svc:          NewReconciliationService(contractRepo, paymentRepo, paymentSvc, clock),
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		clock:        clock,
	}
}

func TestReconciliationActivatesReservedContract(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 10))
	f.contractRepo.contracts = []models.Contract{{
		ID:        1,
		StartDate: date(2025, time.June, 9),
		EndDate:   date(2025, time.July, 10),
		Status:    models.ContractStatusReserved,
	}}

	require.NoError(t, f.svc.Run(context.Background()))

	require.Len(t, f.contractRepo.updated, 1)
	assert.Equal(t, models.ContractStatusActive, f.contractRepo.updated[0].Status)
}

func TestReconciliationFinishesExpiredContract(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 10))
	f.contractRepo.contracts = []models.Contract{{
		ID:        1,
		StartDate: date(2024, time.June, 1),
		EndDate:   date(2025, time.June, 9),
		Status:    models.ContractStatusActive,
	}}

	require.NoError(t, f.svc.Run(context.Background()))

	require.Len(t, f.contractRepo.updated, 1)
	assert.Equal(t, models.ContractStatusFinished, f.contractRepo.updated[0].Status)
}

func TestReconciliationLeavesConsistentContractsAlone(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 10))
	f.contractRepo.contracts = []models.Contract{
		{ID: 1, StartDate: date(2025, time.July, 1), EndDate: date(2026, time.July, 1), Status: models.ContractStatusReserved},
		{ID: 2, StartDate: date(2025, time.January, 1), EndDate: date(2025, time.December, 1), Status: models.ContractStatusActive},
	}

	require.NoError(t, f.svc.Run(context.Background()))
	assert.Empty(t, f.contractRepo.updated)
}

func TestReconciliationSkipsConcurrentlyModifiedContract(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 10))
	f.contractRepo.contracts = []models.Contract{{
		ID:        1,
		StartDate: date(2025, time.June, 1),
		EndDate:   date(2025, time.July, 1),
		Status:    models.ContractStatusReserved,
	}}
	f.contractRepo.updateErr[1] = repository.ErrStaleRecord

	// A lost optimistic-lock race is not a failure; the next pass
	// re-derives from fresh state.
	assert.NoError(t, f.svc.Run(context.Background()))
}

func TestReconciliationIsolatesContractFailures(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 10))
	f.contractRepo.contracts = []models.Contract{
		{ID: 1, StartDate: date(2025, time.June, 1), EndDate: date(2025, time.July, 1), Status: models.ContractStatusReserved},
		{ID: 2, StartDate: date(2025, time.June, 1), EndDate: date(2025, time.July, 1), Status: models.ContractStatusReserved},
	}
	f.contractRepo.updateErr[1] = errors.New("connection reset")

	err := f.svc.Run(context.Background())
	assert.Error(t, err)

	// The second contract was still transitioned
	require.Len(t, f.contractRepo.updated, 1)
	assert.Equal(t, uint(2), f.contractRepo.updated[0].ID)
}

func TestReconciliationMarksOverduePayments(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 16))
	f.contractRepo.contracts = []models.Contract{{ID: 1, TenantID: 2, StartDate: date(2025, time.January, 1), EndDate: date(2025, time.December, 1), Status: models.ContractStatusActive}}
	f.paymentRepo.payments = []models.Payment{
		{ID: 1, ContractID: 1, Number: 6, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.June, 1), Status: models.PaymentStatusPending},
		{ID: 2, ContractID: 1, Number: 7, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.July, 1), Status: models.PaymentStatusPending},
	}

	require.NoError(t, f.svc.Run(context.Background()))

	overdue, err := f.paymentRepo.FindOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, uint(1), overdue[0].ID)
	// 15 days late lands in the first interest band
	assert.True(t, overdue[0].InterestAmount.Equal(decimal.NewFromInt(20)))

	// The July installment is not yet due and stays pending
	stillPending, err := f.paymentRepo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stillPending.Status)
}

func TestReconciliationRaisesInterestAsOverdueAges(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 2))
	f.contractRepo.contracts = []models.Contract{{ID: 1, TenantID: 2, StartDate: date(2025, time.January, 1), EndDate: date(2025, time.December, 1), Status: models.ContractStatusActive}}
	f.paymentRepo.payments = []models.Payment{
		{ID: 1, ContractID: 1, Number: 6, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.June, 1), Status: models.PaymentStatusPending},
	}

	// One day late: flips to overdue below the first band, no interest yet
	require.NoError(t, f.svc.Run(context.Background()))
	payment, err := f.paymentRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, payment.Status)
	assert.True(t, payment.InterestAmount.IsZero())

	// Fifteen days late: a later sweep lifts the debt into the first band
	f.clock.now = date(2025, time.June, 16)
	require.NoError(t, f.svc.Run(context.Background()))
	payment, err = f.paymentRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, payment.InterestAmount.Equal(decimal.NewFromInt(20)),
		"interest was %s, want 20", payment.InterestAmount)

	// Twenty-five days late: the second band
	f.clock.now = date(2025, time.June, 26)
	require.NoError(t, f.svc.Run(context.Background()))
	payment, err = f.paymentRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, payment.InterestAmount.Equal(decimal.NewFromInt(50)),
		"interest was %s, want 50", payment.InterestAmount)
}

func TestReconciliationSkipsOverdueWithUnchangedInterest(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 16))
	f.paymentRepo.payments = []models.Payment{
		{ID: 1, ContractID: 1, Number: 6, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.June, 1), Status: models.PaymentStatusOverdue, InterestAmount: decimal.NewFromInt(20)},
	}

	require.NoError(t, f.svc.Run(context.Background()))
	assert.Empty(t, f.paymentRepo.updated)
}

func TestReconciliationSweepsCancelledContractDebts(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 16))
	reason := "tenant defaulted"
	f.contractRepo.contracts = []models.Contract{{
		ID:                 1,
		TenantID:           2,
		StartDate:          date(2025, time.January, 1),
		EndDate:            date(2025, time.June, 10),
		Status:             models.ContractStatusCancelled,
		CancellationReason: &reason,
	}}
	f.paymentRepo.payments = []models.Payment{
		{ID: 1, ContractID: 1, Number: 5, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.June, 1), Status: models.PaymentStatusPending},
	}

	require.NoError(t, f.svc.Run(context.Background()))

	// The contract stays cancelled, but its past-due debt still accrues
	assert.Empty(t, f.contractRepo.updated)
	payment, err := f.paymentRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, payment.Status)
	assert.True(t, payment.InterestAmount.Equal(decimal.NewFromInt(20)))
}

func TestReconciliationIsolatesPaymentFailures(t *testing.T) {
	f := newReconciliationFixture(t, date(2025, time.June, 16))
	f.contractRepo.contracts = []models.Contract{{ID: 1, TenantID: 2, StartDate: date(2025, time.January, 1), EndDate: date(2025, time.December, 1), Status: models.ContractStatusActive}}
	f.paymentRepo.payments = []models.Payment{
		{ID: 1, ContractID: 1, Number: 4, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.April, 1), Status: models.PaymentStatusPending},
		{ID: 2, ContractID: 1, Number: 5, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.May, 1), Status: models.PaymentStatusPending},
	}
	f.paymentRepo.updateErr[1] = errors.New("connection reset")

	err := f.svc.Run(context.Background())
	assert.Error(t, err)

	// The second installment was still flipped
	second, findErr := f.paymentRepo.FindByID(context.Background(), 2)
	require.NoError(t, findErr)
	assert.Equal(t, models.PaymentStatusOverdue, second.Status)
}
