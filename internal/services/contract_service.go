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

// Default termination penalty rates, overridable via settings
var (
	defaultEarlyTerminationRate = decimal.RequireFromString("0.10")
	defaultLateTerminationRate  = decimal.RequireFromString("0.05")
)

// Settlement is the computed financial outcome of ending a contract on
// a given date. CalculateTermination builds it without mutating storage;
// Finalize persists it.
type Settlement struct {
	ContractID      uint             `json:"contract_id"`
	TerminationDate time.Time        `json:"termination_date"`
	MonthsTotal     int              `json:"months_total"`
	MonthsCompleted int              `json:"months_completed"`
	IsEarly         bool             `json:"is_early"`
	IsLate          bool             `json:"is_late"`
	Penalty         decimal.Decimal  `json:"penalty"`
	MonthsOwed      int              `json:"months_owed"`
	AmountOwed      decimal.Decimal  `json:"amount_owed"`
	Outstanding     []models.Payment `json:"outstanding"`
}

type ContractService struct {
	db              *gorm.DB
	repo            repository.ContractRepository
	propertyRepo    repository.PropertyRepository
	userRepo        repository.UserRepository
	paymentRepo     repository.PaymentRepository
	settingsSvc     *SettingsService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
	clock           Clock
	paymentSchedule *PaymentScheduleService
}

func NewContractService(
	db *gorm.DB,
	repo repository.ContractRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	settingsSvc *SettingsService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
	clock Clock,
) *ContractService {
	return &ContractService{
		db:              db,
		repo:            repo,
		propertyRepo:    propertyRepo,
		userRepo:        userRepo,
		paymentRepo:     paymentRepo,
		settingsSvc:     settingsSvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
		clock:           clock,
		paymentSchedule: NewPaymentScheduleService(),
	}
}

// FindByID gets a contract by ID
func (s *ContractService) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return contract, err
}

// FindByIDWithDetails gets a contract by ID with associations preloaded
func (s *ContractService) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return contract, err
}

func (s *ContractService) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return s.repo.List(ctx, query)
}

// Validate checks a contract against the booking rules and returns the
// accumulated errors as data. Structural errors short-circuit; business
// errors accumulate; the overlap query runs only on otherwise-clean
// input whose target state is not cancelled.
func (s *ContractService) Validate(ctx context.Context, contract *models.Contract, isEdit bool) (models.ValidationErrors, error) {
	errs := models.ValidationErrors{}
	today := Today(s.clock)

	// 1. Date range must be ordered. Everything downstream assumes it.
	// A cancellation pulls the end date back to today, which may land on
	// the start date itself, so cancelled contracts only need end >= start.
	if contract.Status == models.ContractStatusCancelled {
		if DateOf(contract.EndDate).Before(DateOf(contract.StartDate)) {
			errs.Add("end_date", "end date cannot be before start date")
			return errs, nil
		}
	} else if !contract.EndDate.After(contract.StartDate) {
		errs.Add("end_date", "end date must be after start date")
		return errs, nil
	}

	// 2. Start date is immutable once the contract is active.
	if isEdit {
		existing, err := s.repo.FindByID(ctx, contract.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if existing.Status == models.ContractStatusActive && !DateOf(contract.StartDate).Equal(DateOf(existing.StartDate)) {
			errs.Add("start_date", "start date cannot be changed on an active contract")
		}
	}

	// 3. Cancellation always carries a reason.
	if contract.Status == models.ContractStatusCancelled {
		if contract.CancellationReason == nil || *contract.CancellationReason == "" {
			errs.Add("cancellation_reason", "cancellation reason is required")
		}
	}

	// 4. New bookings cannot start or end in the past.
	if !isEdit && (contract.Status == models.ContractStatusActive || contract.Status == models.ContractStatusReserved) {
		if DateOf(contract.StartDate).Before(today) {
			errs.Add("start_date", "start date cannot be in the past")
		}
		if DateOf(contract.EndDate).Before(today) {
			errs.Add("end_date", "end date cannot be in the past")
		}
	}

	// 5. Overlap check, only on otherwise-clean input.
	if errs.Valid() && contract.Status != models.ContractStatusCancelled {
		excludeID := uint(0)
		if isEdit {
			excludeID = contract.ID
		}
		overlapping, err := s.repo.FindOverlapping(ctx, contract.PropertyID, contract.StartDate, contract.EndDate, excludeID)
		if err != nil {
			return nil, err
		}
		if len(overlapping) > 0 {
			errs.AddGeneral("property already has a contract for these dates")
		}
	}

	return errs, nil
}

// Create validates the contract, derives its initial state from the
// clock and persists it together with its full installment plan in one
// transaction: either both land or neither does.
func (s *ContractService) Create(ctx context.Context, contract *models.Contract, actorID uint) (models.ValidationErrors, error) {
	today := Today(s.clock)

	if DateOf(contract.StartDate).After(today) {
		contract.Status = models.ContractStatusReserved
	} else {
		contract.Status = models.ContractStatusActive
	}
	contract.CreatedByID = &actorID

	errs, err := s.Validate(ctx, contract, false)
	if err != nil {
		return nil, err
	}
	if !errs.Valid() {
		return errs, nil
	}

	plan, err := s.paymentSchedule.BuildPlan(contract)
	if err != nil {
		errs.AddGeneral(err.Error())
		return errs, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contractRepo := repository.NewContractRepository(tx)
		paymentRepo := repository.NewPaymentRepository(tx)

		if err := contractRepo.Create(ctx, contract); err != nil {
			return err
		}
		for i := range plan {
			plan[i].ContractID = contract.ID
			plan[i].CreatedByID = &actorID
		}
		return paymentRepo.CreateBatch(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &actorID, models.AuditActionCreate, "contract", contract.ID,
		fmt.Sprintf("contract created with %d installments", len(plan)))

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notifyContractCreated(ctx, contract)
	})

	return nil, nil
}

// Update validates and persists contract changes. A change to cancelled
// forces the end date to today so no installment beyond today stays
// collectible.
func (s *ContractService) Update(ctx context.Context, contract *models.Contract) (models.ValidationErrors, error) {
	if contract.Status == models.ContractStatusCancelled {
		contract.EndDate = s.cancellationEndDate(contract.StartDate)
	}

	errs, err := s.Validate(ctx, contract, true)
	if err != nil {
		return nil, err
	}
	if !errs.Valid() {
		return errs, nil
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}
	return nil, nil
}

// Cancel moves a contract to cancelled with the given reason and pulls
// its end date back to today.
func (s *ContractService) Cancel(ctx context.Context, id uint, reason string, actorID uint) error {
	if reason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrInvalidState)
	}

	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	cfsm := statemachine.NewContractFSM(contract)
	if err := cfsm.Cancel(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	contract.CancellationReason = &reason
	contract.EndDate = s.cancellationEndDate(contract.StartDate)

	if err := s.repo.Update(ctx, contract); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, &actorID, models.AuditActionCancel, "contract", contract.ID, reason)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notifyContractCancelled(ctx, contract, reason)
	})

	return nil
}

// cancellationEndDate is the end date a cancellation forces onto the
// contract: today, clamped to the start date when the contract never
// began, so end >= start holds on every cancellation path.
func (s *ContractService) cancellationEndDate(start time.Time) time.Time {
	today := Today(s.clock)
	if startDay := DateOf(start); today.Before(startDay) {
		return startDay
	}
	return today
}

// CalculateTermination computes the settlement for ending the contract
// on the given date without touching storage. Exactly one of the early
// or late penalty applies; ending exactly on the agreed end date incurs
// neither.
func (s *ContractService) CalculateTermination(ctx context.Context, id uint, terminationDate time.Time) (*Settlement, error) {
	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status == models.ContractStatusFinished {
		return nil, fmt.Errorf("%w: contract is already finished", ErrInvalidState)
	}

	termDate := DateOf(terminationDate)
	endDate := DateOf(contract.EndDate)

	settlement := &Settlement{
		ContractID:      contract.ID,
		TerminationDate: termDate,
		MonthsTotal:     contract.DurationMonths(),
		MonthsCompleted: models.MonthsBetween(contract.StartDate, termDate),
		IsEarly:         termDate.Before(endDate),
		IsLate:          termDate.After(endDate),
		Penalty:         decimal.Zero,
		AmountOwed:      decimal.Zero,
	}

	outstanding, err := s.paymentRepo.FindOutstandingByContract(ctx, contract.ID, termDate)
	if err != nil {
		return nil, err
	}
	settlement.Outstanding = outstanding
	settlement.MonthsOwed = len(outstanding)
	for _, payment := range outstanding {
		settlement.AmountOwed = settlement.AmountOwed.Add(payment.Total())
	}

	switch {
	case settlement.IsEarly:
		rate := s.settingsSvc.GetDecimal(ctx, models.SettingEarlyTerminationRate, defaultEarlyTerminationRate)
		remaining := settlement.MonthsTotal - settlement.MonthsCompleted
		if remaining < 0 {
			remaining = 0
		}
		settlement.Penalty = contract.MonthlyRent.
			Mul(decimal.NewFromInt(int64(remaining))).
			Mul(rate)
	case settlement.IsLate:
		rate := s.settingsSvc.GetDecimal(ctx, models.SettingLateTerminationRate, defaultLateTerminationRate)
		monthsPast := models.MonthsBetween(endDate, termDate)
		if monthsPast < 1 {
			monthsPast = 1
		}
		settlement.Penalty = contract.MonthlyRent.
			Mul(decimal.NewFromInt(int64(monthsPast))).
			Mul(rate)
	}

	return settlement, nil
}

// Finalize persists a termination settlement: termination date, penalty
// and owed totals land on the contract, the penalty lands on the last
// outstanding installment, and the contract moves to finished unless it
// was already cancelled.
func (s *ContractService) Finalize(ctx context.Context, id uint, terminationDate time.Time, actorID uint) (*Settlement, error) {
	settlement, err := s.CalculateTermination(ctx, id, terminationDate)
	if err != nil {
		return nil, err
	}

	contract, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	contract.TerminationDate = &settlement.TerminationDate
	contract.TerminationPenalty = &settlement.Penalty
	contract.MonthsOwed = settlement.MonthsOwed
	contract.AmountOwed = settlement.AmountOwed
	contract.TerminatedByID = &actorID
	contract.TerminatedAt = &now

	if contract.Status != models.ContractStatusCancelled {
		cfsm := statemachine.NewContractFSM(contract)
		if err := cfsm.Finish(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contractRepo := repository.NewContractRepository(tx)
		paymentRepo := repository.NewPaymentRepository(tx)

		if err := contractRepo.Update(ctx, contract); err != nil {
			return err
		}

		// The termination penalty is carried by the last outstanding
		// installment; frozen-on-paid keeps it from being recomputed.
		if settlement.Penalty.IsPositive() && len(settlement.Outstanding) > 0 {
			last := settlement.Outstanding[len(settlement.Outstanding)-1]
			last.PenaltyAmount = settlement.Penalty
			if err := paymentRepo.Update(ctx, &last); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &actorID, models.AuditActionFinalize, "contract", contract.ID,
		fmt.Sprintf("terminated on %s, penalty %s", settlement.TerminationDate.Format("2006-01-02"), settlement.Penalty))

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notifyContractFinalized(ctx, contract, settlement)
	})

	return settlement, nil
}

// DateRange is a closed interval of days a property is booked
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// UnavailableRanges returns the booked date ranges of a property from
// today on, for the booking calendar.
func (s *ContractService) UnavailableRanges(ctx context.Context, propertyID uint) ([]DateRange, error) {
	contracts, err := s.repo.FindBlockingRanges(ctx, propertyID, Today(s.clock))
	if err != nil {
		return nil, err
	}
	ranges := make([]DateRange, 0, len(contracts))
	for _, contract := range contracts {
		ranges = append(ranges, DateRange{Start: contract.StartDate, End: contract.EndDate})
	}
	return ranges, nil
}

// NextAvailableDate returns the first day from today on which the
// property has no booking.
func (s *ContractService) NextAvailableDate(ctx context.Context, propertyID uint) (time.Time, error) {
	today := Today(s.clock)
	contracts, err := s.repo.FindBlockingRanges(ctx, propertyID, today)
	if err != nil {
		return time.Time{}, err
	}

	candidate := today
	for _, contract := range contracts {
		if contract.StartDate.After(candidate) {
			break
		}
		next := DateOf(contract.EndDate).AddDate(0, 0, 1)
		if next.After(candidate) {
			candidate = next
		}
	}
	return candidate, nil
}

func (s *ContractService) notifyContractCreated(ctx context.Context, contract *models.Contract) error {
	if err := s.notificationSvc.NotifyUser(ctx, contract.TenantID,
		"Contract created",
		fmt.Sprintf("Your rental contract #%d has been created.", contract.ID),
		models.NotificationTypeContractCreated); err != nil {
		logger.Error("failed to notify tenant of new contract", "contract_id", contract.ID, "error", err)
	}

	// Reload with tenant and property for the email body
	full, err := s.repo.FindByIDWithDetails(ctx, contract.ID)
	if err != nil {
		return err
	}
	return s.emailSvc.SendContractCreated(ctx, full)
}

func (s *ContractService) notifyContractCancelled(ctx context.Context, contract *models.Contract, reason string) error {
	return s.notificationSvc.NotifyUser(ctx, contract.TenantID,
		"Contract cancelled",
		fmt.Sprintf("Contract #%d was cancelled: %s", contract.ID, reason),
		models.NotificationTypeContractCancelled)
}

func (s *ContractService) notifyContractFinalized(ctx context.Context, contract *models.Contract, settlement *Settlement) error {
	message := fmt.Sprintf("Contract #%d was terminated on %s.", contract.ID, settlement.TerminationDate.Format("2006-01-02"))
	if settlement.Penalty.IsPositive() {
		message += fmt.Sprintf(" A termination penalty of %s applies.", settlement.Penalty.StringFixed(2))
	}
	return s.notificationSvc.NotifyUser(ctx, contract.TenantID,
		"Contract terminated", message, models.NotificationTypeContractFinalized)
}
