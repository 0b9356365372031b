package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/jesusemanuel87/inmobiliaria-api/pkg/logger"
)

// ReconciliationService keeps contract and payment states consistent
// with the current date. It runs as a scheduled background job: one
// contract sweep and one payment sweep per pass, each item handled in
// isolation so a bad record never halts the rest of the batch.
type ReconciliationService struct {
	contractRepo repository.ContractRepository
	paymentRepo  repository.PaymentRepository
	paymentSvc   *PaymentService
	clock        Clock
}

func NewReconciliationService(
	contractRepo repository.ContractRepository,
	paymentRepo repository.PaymentRepository,
	paymentSvc *PaymentService,
	clock Clock,
) *ReconciliationService {
	return &ReconciliationService{
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		paymentSvc:   paymentSvc,
		clock:        clock,
	}
}

// Run executes one full reconciliation pass. A non-nil error tells the
// scheduler to retry after its shorter backoff interval.
func (s *ReconciliationService) Run(ctx context.Context) error {
	today := Today(s.clock)

	contractErrs := s.sweepContracts(ctx, today)
	paymentErrs := s.sweepPayments(ctx, today)

	if contractErrs > 0 || paymentErrs > 0 {
		return fmt.Errorf("reconciliation finished with %d contract and %d payment failures", contractErrs, paymentErrs)
	}
	return nil
}

// sweepContracts re-derives every non-terminal contract's state from its
// dates and persists only actual changes. Cancelled is sticky and never
// revisited; the repository query excludes terminal states entirely.
func (s *ReconciliationService) sweepContracts(ctx context.Context, today time.Time) int {
	contracts, err := s.contractRepo.FindNonTerminal(ctx)
	if err != nil {
		logger.Error("contract sweep could not load contracts", "error", err)
		return 1
	}

	failures := 0
	updated := 0
	for i := range contracts {
		contract := &contracts[i]

		target := contract.TargetStatus(today)
		if target == contract.Status {
			continue
		}

		previous := contract.Status
		contract.Status = target
		if err := s.contractRepo.Update(ctx, contract); err != nil {
			if errors.Is(err, repository.ErrStaleRecord) {
				// Someone changed it mid-sweep; the next pass will
				// re-derive from fresh state.
				logger.Warn("contract changed concurrently, skipping",
					"contract_id", contract.ID, "from", previous, "to", target)
				continue
			}
			logger.Error("contract sweep failed to persist transition",
				"contract_id", contract.ID, "from", previous, "to", target, "error", err)
			failures++
			continue
		}

		updated++
		logger.Info("contract transitioned", "contract_id", contract.ID, "from", previous, "to", target)
	}

	if updated > 0 || failures > 0 {
		logger.Info("contract sweep finished", "scanned", len(contracts), "updated", updated, "failed", failures)
	}
	return failures
}

// sweepPayments flips pending installments past their due date to
// overdue and keeps re-accruing interest on unpaid overdue ones, so an
// installment that flipped days before its first band still picks up
// the tiered interest as the debt ages.
func (s *ReconciliationService) sweepPayments(ctx context.Context, today time.Time) int {
	payments, err := s.paymentRepo.FindUnpaidDueBefore(ctx, today)
	if err != nil {
		logger.Error("payment sweep could not load installments", "error", err)
		return 1
	}

	failures := 0
	for i := range payments {
		payment := &payments[i]

		var sweepErr error
		if payment.Status == models.PaymentStatusPending {
			sweepErr = s.paymentSvc.MarkOverdue(ctx, payment, today)
		} else {
			sweepErr = s.paymentSvc.RefreshInterest(ctx, payment, today)
		}
		if sweepErr != nil {
			logger.Error("payment sweep failed to update installment",
				"payment_id", payment.ID, "contract_id", payment.ContractID, "error", sweepErr)
			failures++
		}
	}

	if len(payments) > 0 {
		logger.Info("payment sweep finished", "overdue_candidates", len(payments), "failed", failures)
	}
	return failures
}
