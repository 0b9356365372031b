package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentTotalIsDerived(t *testing.T) {
	payment := &Payment{
		Amount:         decimal.NewFromInt(1000),
		InterestAmount: decimal.NewFromInt(50),
		PenaltyAmount:  decimal.NewFromInt(600),
	}
	assert.True(t, payment.Total().Equal(decimal.NewFromInt(1650)))
}

func TestDaysLate(t *testing.T) {
	payment := &Payment{
		DueDate: day(2025, time.June, 1),
		Status:  PaymentStatusPending,
	}

	assert.Equal(t, 0, payment.DaysLate(day(2025, time.May, 20)))
	assert.Equal(t, 0, payment.DaysLate(day(2025, time.June, 1)))
	assert.Equal(t, 1, payment.DaysLate(day(2025, time.June, 2)))
	assert.Equal(t, 15, payment.DaysLate(day(2025, time.June, 16)))
}

func TestDaysLateIsZeroOncePaid(t *testing.T) {
	payment := &Payment{
		DueDate: day(2025, time.June, 1),
		Status:  PaymentStatusPaid,
	}
	assert.Equal(t, 0, payment.DaysLate(day(2025, time.August, 1)))
}

func TestPaymentGuards(t *testing.T) {
	pending := &Payment{Status: PaymentStatusPending}
	assert.True(t, pending.MayPay())
	assert.True(t, pending.MayMarkOverdue())

	overdue := &Payment{Status: PaymentStatusOverdue}
	assert.True(t, overdue.MayPay())
	assert.False(t, overdue.MayMarkOverdue())

	paid := &Payment{Status: PaymentStatusPaid}
	assert.False(t, paid.MayPay())
	assert.False(t, paid.MayMarkOverdue())

	voidedAt := day(2025, time.June, 1)
	voided := &Payment{Status: PaymentStatusPending, VoidedAt: &voidedAt}
	assert.False(t, voided.MayPay())
	assert.True(t, voided.IsVoided())
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{}
	assert.True(t, errs.Valid())

	errs.Add("start_date", "start date cannot be in the past")
	errs.AddGeneral("property already has a contract for these dates")

	assert.False(t, errs.Valid())
	assert.True(t, errs.HasField("start_date"))
	assert.True(t, errs.HasField(GeneralErrorKey))
	assert.False(t, errs.HasField("end_date"))
}
