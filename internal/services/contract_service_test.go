package services

import (
	"context"
	"testing"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/jobs"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contractServiceFixture struct {
	svc          *ContractService
	contractRepo *mockContractRepo
	paymentRepo  *mockPaymentRepo
	settingRepo  *mockSettingRepo
	notifRepo    *mockNotificationRepo
	worker       *jobs.Worker
	clock        *fakeClock
}

func newContractServiceFixture(t *testing.T, now time.Time) *contractServiceFixture {
	t.Helper()
	clock := &fakeClock{now: now}
	contractRepo := &mockContractRepo{}
	paymentRepo := &mockPaymentRepo{}
	settingRepo := newMockSettingRepo(nil)
	notifRepo := &mockNotificationRepo{}
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	svc := NewContractService(
		nil,
		contractRepo,
		nil,
		&mockUserRepo{},
		paymentRepo,
		NewSettingsService(settingRepo, clock),
		NewNotificationService(notifRepo, &mockUserRepo{}),
		nil,
		NewAuditService(nil),
		worker,
		clock,
	)

	return &contractServiceFixture{
		svc:          svc,
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		settingRepo:  settingRepo,
		notifRepo:    notifRepo,
		worker:       worker,
		clock:        clock,
	}
}

func TestValidateRejectsInvertedDateRange(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.January, 1))

	contract := &models.Contract{
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.June, 1),
		EndDate:     date(2025, time.June, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusReserved,
	}

	errs, err := f.svc.Validate(context.Background(), contract, false)
	require.NoError(t, err)
	assert.False(t, errs.Valid())
	assert.True(t, errs.HasField("end_date"))
	// Structural failure short-circuits before any other rule runs
	assert.Len(t, errs, 1)
}

func TestValidateRejectsOverlappingBooking(t *testing.T) {
	f := newContractServiceFixture(t, date(2024, time.November, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:         1,
		PropertyID: 1,
		TenantID:   5,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		Status:     models.ContractStatusActive,
	}}

	cases := []struct {
		name       string
		start, end time.Time
		wantClash  bool
	}{
		{"fully inside existing booking", date(2025, time.March, 1), date(2025, time.April, 1), true},
		{"overlaps the head of existing booking", date(2024, time.December, 1), date(2025, time.January, 15), true},
		{"starts the day after existing booking ends", date(2025, time.July, 1), date(2025, time.December, 31), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contract := &models.Contract{
				PropertyID:  1,
				TenantID:    2,
				StartDate:   tc.start,
				EndDate:     tc.end,
				MonthlyRent: decimal.NewFromInt(1000),
				Status:      models.ContractStatusReserved,
			}

			errs, err := f.svc.Validate(context.Background(), contract, false)
			require.NoError(t, err)
			if tc.wantClash {
				assert.False(t, errs.Valid())
				assert.True(t, errs.HasField(models.GeneralErrorKey))
			} else {
				assert.True(t, errs.Valid())
			}
		})
	}
}

func TestValidateOverlapIgnoresCancelledContracts(t *testing.T) {
	f := newContractServiceFixture(t, date(2024, time.November, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:         1,
		PropertyID: 1,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		Status:     models.ContractStatusCancelled,
	}}

	contract := &models.Contract{
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.March, 1),
		EndDate:     date(2025, time.September, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusReserved,
	}

	errs, err := f.svc.Validate(context.Background(), contract, false)
	require.NoError(t, err)
	assert.True(t, errs.Valid())
}

func TestValidateCancellationRequiresReason(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.January, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:         1,
		PropertyID: 1,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.December, 1),
		Status:     models.ContractStatusActive,
	}}

	contract := &models.Contract{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2025, time.December, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusCancelled,
	}

	errs, err := f.svc.Validate(context.Background(), contract, true)
	require.NoError(t, err)
	assert.False(t, errs.Valid())
	assert.True(t, errs.HasField("cancellation_reason"))
	assert.Len(t, errs, 1)
	// Validation never persists
	assert.Empty(t, f.contractRepo.updated)

	reason := "tenant moved out"
	contract.CancellationReason = &reason
	errs, err = f.svc.Validate(context.Background(), contract, true)
	require.NoError(t, err)
	assert.True(t, errs.Valid())
}

func TestValidateRejectsPastDatesOnCreate(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 1))

	contract := &models.Contract{
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.May, 1),
		EndDate:     date(2026, time.May, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}

	errs, err := f.svc.Validate(context.Background(), contract, false)
	require.NoError(t, err)
	assert.True(t, errs.HasField("start_date"))
}

func TestValidateStartDateImmutableOnActiveContract(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.March, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:         1,
		PropertyID: 1,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.December, 1),
		Status:     models.ContractStatusActive,
	}}

	contract := &models.Contract{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.February, 1),
		EndDate:     date(2025, time.December, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}

	errs, err := f.svc.Validate(context.Background(), contract, true)
	require.NoError(t, err)
	assert.True(t, errs.HasField("start_date"))
}

func TestCreateDerivesInitialStatusFromClock(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:         1,
		PropertyID: 1,
		StartDate:  date(2025, time.July, 1),
		EndDate:    date(2026, time.July, 1),
		Status:     models.ContractStatusReserved,
	}}

	// Overlapping on purpose: Create must stop at validation, after the
	// initial status has been derived.
	contract := &models.Contract{
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.August, 1),
		EndDate:     date(2026, time.February, 1),
		MonthlyRent: decimal.NewFromInt(1000),
	}

	errs, err := f.svc.Create(context.Background(), contract, 9)
	require.NoError(t, err)
	assert.False(t, errs.Valid())
	assert.Equal(t, models.ContractStatusReserved, contract.Status)
}

func TestCalculateTerminationEarly(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.July, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2026, time.January, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}}
	f.paymentRepo.payments = []models.Payment{
		{ID: 1, ContractID: 1, Number: 5, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.May, 1), Status: models.PaymentStatusOverdue, InterestAmount: decimal.NewFromInt(50)},
		{ID: 2, ContractID: 1, Number: 6, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.June, 1), Status: models.PaymentStatusPending},
		{ID: 3, ContractID: 1, Number: 4, Amount: decimal.NewFromInt(1000), DueDate: date(2025, time.April, 1), Status: models.PaymentStatusPaid},
	}

	settlement, err := f.svc.CalculateTermination(context.Background(), 1, date(2025, time.July, 1))
	require.NoError(t, err)

	assert.Equal(t, 12, settlement.MonthsTotal)
	assert.Equal(t, 6, settlement.MonthsCompleted)
	assert.True(t, settlement.IsEarly)
	assert.False(t, settlement.IsLate)
	// 6 remaining months * 1000 rent * 10%
	assert.True(t, settlement.Penalty.Equal(decimal.NewFromInt(600)), "penalty was %s", settlement.Penalty)
	assert.Equal(t, 2, settlement.MonthsOwed)
	assert.True(t, settlement.AmountOwed.Equal(decimal.NewFromInt(2050)), "amount owed was %s", settlement.AmountOwed)
}

func TestCalculateTerminationLate(t *testing.T) {
	f := newContractServiceFixture(t, date(2026, time.February, 15))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2026, time.January, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}}

	settlement, err := f.svc.CalculateTermination(context.Background(), 1, date(2026, time.February, 15))
	require.NoError(t, err)

	assert.False(t, settlement.IsEarly)
	assert.True(t, settlement.IsLate)
	// 1 month past the agreed end * 1000 rent * 5%
	assert.True(t, settlement.Penalty.Equal(decimal.NewFromInt(50)), "penalty was %s", settlement.Penalty)
}

func TestCalculateTerminationLateChargesAtLeastOneMonth(t *testing.T) {
	f := newContractServiceFixture(t, date(2026, time.January, 10))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2026, time.January, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}}

	// Ten days past the end date is still within the same calendar month,
	// but a late exit always owes at least one month's penalty.
	settlement, err := f.svc.CalculateTermination(context.Background(), 1, date(2026, time.January, 10))
	require.NoError(t, err)
	assert.True(t, settlement.IsLate)
	assert.True(t, settlement.Penalty.Equal(decimal.NewFromInt(50)), "penalty was %s", settlement.Penalty)
}

func TestCalculateTerminationOnExactEndDate(t *testing.T) {
	f := newContractServiceFixture(t, date(2026, time.January, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2026, time.January, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}}

	settlement, err := f.svc.CalculateTermination(context.Background(), 1, date(2026, time.January, 1))
	require.NoError(t, err)

	assert.False(t, settlement.IsEarly)
	assert.False(t, settlement.IsLate)
	assert.True(t, settlement.Penalty.IsZero())
}

func TestCalculateTerminationHonorsConfiguredRate(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.July, 1))
	f.settingRepo.values[models.SettingEarlyTerminationRate] = "0.20"
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2026, time.January, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}}

	settlement, err := f.svc.CalculateTermination(context.Background(), 1, date(2025, time.July, 1))
	require.NoError(t, err)
	assert.True(t, settlement.Penalty.Equal(decimal.NewFromInt(1200)), "penalty was %s", settlement.Penalty)
}

func TestCalculateTerminationRejectsFinishedContract(t *testing.T) {
	f := newContractServiceFixture(t, date(2026, time.March, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2026, time.January, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusFinished,
	}}

	_, err := f.svc.CalculateTermination(context.Background(), 1, date(2026, time.March, 1))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelRequiresReason(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 1))

	err := f.svc.Cancel(context.Background(), 1, "", 9)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelMovesContractToCancelled(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2025, time.December, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}}

	err := f.svc.Cancel(context.Background(), 1, "tenant requested exit", 9)
	require.NoError(t, err)

	require.Len(t, f.contractRepo.updated, 1)
	saved := f.contractRepo.updated[0]
	assert.Equal(t, models.ContractStatusCancelled, saved.Status)
	assert.Equal(t, date(2025, time.June, 1), saved.EndDate)
	require.NotNil(t, saved.CancellationReason)
	assert.Equal(t, "tenant requested exit", *saved.CancellationReason)
}

func TestUpdateCancelsContractThatStartedToday(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.June, 1),
		EndDate:     date(2025, time.December, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusActive,
	}}

	reason := "tenant never moved in"
	contract := f.contractRepo.contracts[0]
	contract.Status = models.ContractStatusCancelled
	contract.CancellationReason = &reason

	errs, err := f.svc.Update(context.Background(), &contract)
	require.NoError(t, err)
	assert.True(t, errs.Valid())

	// The forced end date lands on the start date and still passes
	require.Len(t, f.contractRepo.updated, 1)
	saved := f.contractRepo.updated[0]
	assert.Equal(t, models.ContractStatusCancelled, saved.Status)
	assert.Equal(t, date(2025, time.June, 1), saved.EndDate)
}

func TestCancelBeforeStartClampsEndToStart(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:          1,
		PropertyID:  1,
		TenantID:    2,
		StartDate:   date(2025, time.August, 1),
		EndDate:     date(2026, time.August, 1),
		MonthlyRent: decimal.NewFromInt(1000),
		Status:      models.ContractStatusReserved,
	}}

	err := f.svc.Cancel(context.Background(), 1, "plans changed", 9)
	require.NoError(t, err)

	require.Len(t, f.contractRepo.updated, 1)
	saved := f.contractRepo.updated[0]
	assert.Equal(t, models.ContractStatusCancelled, saved.Status)
	// End date never drops below the start date
	assert.Equal(t, date(2025, time.August, 1), saved.EndDate)
}

func TestCancelRejectsFinishedContract(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 1))
	f.contractRepo.contracts = []models.Contract{{
		ID:     1,
		Status: models.ContractStatusFinished,
	}}

	err := f.svc.Cancel(context.Background(), 1, "too late", 9)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestNextAvailableDateWalksConsecutiveBookings(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 10))
	f.contractRepo.contracts = []models.Contract{
		{ID: 1, PropertyID: 1, StartDate: date(2025, time.June, 1), EndDate: date(2025, time.June, 30), Status: models.ContractStatusActive},
		{ID: 2, PropertyID: 1, StartDate: date(2025, time.July, 1), EndDate: date(2025, time.August, 15), Status: models.ContractStatusReserved},
		{ID: 3, PropertyID: 1, StartDate: date(2025, time.October, 1), EndDate: date(2025, time.December, 1), Status: models.ContractStatusReserved},
	}

	next, err := f.svc.NextAvailableDate(context.Background(), 1)
	require.NoError(t, err)
	// The first two bookings touch; the gap before October is free
	assert.Equal(t, date(2025, time.August, 16), next)
}

func TestNextAvailableDateWithNoBookingsIsToday(t *testing.T) {
	f := newContractServiceFixture(t, date(2025, time.June, 10))

	next, err := f.svc.NextAvailableDate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 10), next)
}
