package services

import (
	"fmt"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
)

// PaymentScheduleService builds the monthly installment plan for a
// contract. It is pure: it never touches storage.
type PaymentScheduleService struct{}

// NewPaymentScheduleService creates a new payment schedule service
func NewPaymentScheduleService() *PaymentScheduleService {
	return &PaymentScheduleService{}
}

// BuildPlan returns one pending installment per whole month of the
// contract: sequence 1..N, due dates spaced one calendar month apart
// starting at the contract start date, amount equal to the monthly rent.
func (s *PaymentScheduleService) BuildPlan(contract *models.Contract) ([]models.Payment, error) {
	if !contract.MonthlyRent.IsPositive() {
		return nil, fmt.Errorf("monthly rent must be positive")
	}

	months := contract.DurationMonths()
	if months == 0 {
		return nil, fmt.Errorf("contract spans less than one whole month")
	}

	payments := make([]models.Payment, 0, months)
	for i := 0; i < months; i++ {
		payments = append(payments, models.Payment{
			ContractID: contract.ID,
			Number:     i + 1,
			Amount:     contract.MonthlyRent,
			DueDate:    contract.StartDate.AddDate(0, i, 0),
			Status:     models.PaymentStatusPending,
		})
	}
	return payments, nil
}
