package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/jobs"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/statemachine"
	"github.com/jesusemanuel87/inmobiliaria-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Default interest tier bands and rates, overridable via settings
var (
	defaultTier1MinDays = 10
	defaultTier1Rate    = decimal.RequireFromString("0.02")
	defaultTier2MinDays = 20
	defaultTier2Rate    = decimal.RequireFromString("0.05")
)

type PaymentService struct {
	repo            repository.PaymentRepository
	contractRepo    repository.ContractRepository
	settingsSvc     *SettingsService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
	clock           Clock
	schedule        *PaymentScheduleService
}

func NewPaymentService(
	repo repository.PaymentRepository,
	contractRepo repository.ContractRepository,
	settingsSvc *SettingsService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
	clock Clock,
) *PaymentService {
	return &PaymentService{
		repo:            repo,
		contractRepo:    contractRepo,
		settingsSvc:     settingsSvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
		clock:           clock,
		schedule:        NewPaymentScheduleService(),
	}
}

// FindByID gets a payment by ID
func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return payment, err
}

// FindByContract returns a contract's installments in due-date order
func (s *PaymentService) FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	return s.repo.FindByContract(ctx, contractID)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

// GeneratePlan creates the full installment plan for a contract. It is
// idempotent: once any installment exists for the contract it does
// nothing, so a retry can never duplicate the plan.
func (s *PaymentService) GeneratePlan(ctx context.Context, contractID uint, actorID uint) error {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	exists, err := s.repo.ExistsForContract(ctx, contractID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	plan, err := s.schedule.BuildPlan(contract)
	if err != nil {
		return err
	}
	for i := range plan {
		plan[i].CreatedByID = &actorID
	}

	if err := s.repo.CreateBatch(ctx, plan); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, &actorID, models.AuditActionCreate, "payment_plan", contractID,
		fmt.Sprintf("%d installments generated", len(plan)))
	return nil
}

// AccrueInterest writes the tiered late interest onto an unpaid
// installment as of the given day. Paid installments are never touched,
// which also protects penalties applied at termination.
func (s *PaymentService) AccrueInterest(ctx context.Context, payment *models.Payment, asOf time.Time) {
	if payment.IsPaid() {
		return
	}
	payment.InterestAmount = s.interestFor(ctx, payment, asOf)
}

// interestFor computes the late interest for an installment: the rate of
// the days-late band applied to the base amount, plus an optional
// monthly-compounding component for debts older than thirty days.
func (s *PaymentService) interestFor(ctx context.Context, payment *models.Payment, asOf time.Time) decimal.Decimal {
	daysLate := payment.DaysLate(asOf)

	tier1Min := s.settingsSvc.GetInt(ctx, models.SettingInterestTier1MinDays, defaultTier1MinDays)
	tier2Min := s.settingsSvc.GetInt(ctx, models.SettingInterestTier2MinDays, defaultTier2MinDays)

	var rate decimal.Decimal
	switch {
	case daysLate >= tier2Min:
		rate = s.settingsSvc.GetDecimal(ctx, models.SettingInterestTier2Rate, defaultTier2Rate)
	case daysLate >= tier1Min:
		rate = s.settingsSvc.GetDecimal(ctx, models.SettingInterestTier1Rate, defaultTier1Rate)
	default:
		return decimal.Zero
	}

	interest := payment.Amount.Mul(rate)

	monthlyRate := s.settingsSvc.GetDecimal(ctx, models.SettingInterestMonthlyRate, decimal.Zero)
	if monthlyRate.IsPositive() && daysLate >= 30 {
		monthsLate := int64(daysLate / 30)
		factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(monthsLate))
		interest = interest.Add(payment.Amount.Mul(factor.Sub(decimal.NewFromInt(1))))
	}

	return interest
}

// RefreshInterest recomputes the late interest on an unpaid overdue
// installment and persists it only when the debt aged into a different
// amount. Paid and voided installments are left alone.
func (s *PaymentService) RefreshInterest(ctx context.Context, payment *models.Payment, asOf time.Time) error {
	if payment.IsPaid() || payment.IsVoided() {
		return nil
	}

	previous := payment.InterestAmount
	s.AccrueInterest(ctx, payment, asOf)
	if payment.InterestAmount.Equal(previous) {
		return nil
	}
	return s.repo.Update(ctx, payment)
}

// MarkOverdue accrues interest on a pending installment past its due
// date and flips it to overdue. Called by the reconciliation sweep.
func (s *PaymentService) MarkOverdue(ctx context.Context, payment *models.Payment, asOf time.Time) error {
	if !payment.MayMarkOverdue() {
		return fmt.Errorf("%w: installment %d is %s", ErrInvalidState, payment.ID, payment.Status)
	}

	s.AccrueInterest(ctx, payment, asOf)

	pfsm := statemachine.NewPaymentFSM(payment)
	if err := pfsm.MarkOverdue(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notifyOverdue(ctx, payment)
	})
	return nil
}

// Register marks an installment as paid with today's date. Registering
// an already-paid installment is a conflict, not an error of the
// infrastructure kind, so the caller gets ErrAlreadyPaid to render.
func (s *PaymentService) Register(ctx context.Context, id uint, method, notes string, actorID uint) (*models.Payment, error) {
	payment, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.IsPaid() {
		return nil, ErrAlreadyPaid
	}
	if payment.IsVoided() {
		return nil, ErrVoided
	}

	pfsm := statemachine.NewPaymentFSM(payment)
	if err := pfsm.Pay(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	paidDate := Today(s.clock)
	payment.PaidDate = &paidDate
	if method != "" {
		payment.Method = &method
	}
	if notes != "" {
		payment.Notes = &notes
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &actorID, models.AuditActionPay, "payment", payment.ID,
		fmt.Sprintf("installment %d of contract %d paid via %s", payment.Number, payment.ContractID, method))

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notifyPaid(ctx, payment)
	})

	return payment, nil
}

// Void administratively retires an installment so it is no longer
// collectible. Paid installments cannot be voided.
func (s *PaymentService) Void(ctx context.Context, id uint, actorID uint) (*models.Payment, error) {
	payment, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.IsPaid() {
		return nil, ErrAlreadyPaid
	}
	if payment.IsVoided() {
		return nil, ErrVoided
	}

	now := s.clock.Now()
	payment.VoidedAt = &now
	payment.VoidedByID = &actorID

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &actorID, models.AuditActionVoid, "payment", payment.ID,
		fmt.Sprintf("installment %d of contract %d voided", payment.Number, payment.ContractID))

	return payment, nil
}

func (s *PaymentService) notifyPaid(ctx context.Context, payment *models.Payment) error {
	contract, err := s.contractRepo.FindByID(ctx, payment.ContractID)
	if err != nil {
		return err
	}
	return s.notificationSvc.NotifyUser(ctx, contract.TenantID,
		"Payment registered",
		fmt.Sprintf("Installment %d of contract #%d was registered as paid.", payment.Number, contract.ID),
		models.NotificationTypePaymentRegistered)
}

func (s *PaymentService) notifyOverdue(ctx context.Context, payment *models.Payment) error {
	contract, err := s.contractRepo.FindByID(ctx, payment.ContractID)
	if err != nil {
		return err
	}
	if err := s.notificationSvc.NotifyUser(ctx, contract.TenantID,
		"Installment overdue",
		fmt.Sprintf("Installment %d of contract #%d is overdue. Current total: %s.",
			payment.Number, contract.ID, payment.Total().StringFixed(2)),
		models.NotificationTypePaymentOverdue); err != nil {
		logger.Error("failed to create overdue notification", "payment_id", payment.ID, "error", err)
	}
	return s.emailSvc.SendPaymentOverdue(ctx, contract, payment)
}
