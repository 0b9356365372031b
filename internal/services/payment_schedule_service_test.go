package services

import (
	"testing"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanTwelveMonths(t *testing.T) {
	svc := NewPaymentScheduleService()
	contract := &models.Contract{
		ID:          7,
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2026, time.January, 1),
		MonthlyRent: decimal.NewFromInt(1500),
	}

	plan, err := svc.BuildPlan(contract)
	require.NoError(t, err)
	require.Len(t, plan, 12)

	for i, payment := range plan {
		assert.Equal(t, uint(7), payment.ContractID)
		assert.Equal(t, i+1, payment.Number)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
		assert.Equal(t, contract.StartDate.AddDate(0, i, 0), payment.DueDate)
	}

	// First installment is due on the start date itself
	assert.Equal(t, date(2025, time.January, 1), plan[0].DueDate)
	assert.Equal(t, date(2025, time.December, 1), plan[11].DueDate)
}

func TestBuildPlanDueDatesCrossYearBoundary(t *testing.T) {
	svc := NewPaymentScheduleService()
	contract := &models.Contract{
		StartDate:   date(2025, time.November, 15),
		EndDate:     date(2026, time.February, 15),
		MonthlyRent: decimal.NewFromInt(800),
	}

	plan, err := svc.BuildPlan(contract)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, date(2025, time.November, 15), plan[0].DueDate)
	assert.Equal(t, date(2025, time.December, 15), plan[1].DueDate)
	assert.Equal(t, date(2026, time.January, 15), plan[2].DueDate)
}

func TestBuildPlanRejectsNonPositiveRent(t *testing.T) {
	svc := NewPaymentScheduleService()
	contract := &models.Contract{
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2025, time.July, 1),
		MonthlyRent: decimal.Zero,
	}

	_, err := svc.BuildPlan(contract)
	assert.Error(t, err)
}

func TestBuildPlanRejectsSubMonthSpan(t *testing.T) {
	svc := NewPaymentScheduleService()
	contract := &models.Contract{
		StartDate:   date(2025, time.January, 1),
		EndDate:     date(2025, time.January, 20),
		MonthlyRent: decimal.NewFromInt(1000),
	}

	_, err := svc.BuildPlan(contract)
	assert.Error(t, err)
}
