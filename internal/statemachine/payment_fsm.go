package statemachine

import (
	"context"
	"fmt"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/looplab/fsm"
)

// PaymentFSM wraps a payment with its state machine
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending/overdue → paid
			{Name: "pay", Src: []string{models.PaymentStatusPending, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPaid},

			// pending → overdue (due date passed unpaid)
			{Name: "mark_overdue", Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusOverdue},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Pay transitions payment to paid state
func (p *PaymentFSM) Pay(ctx context.Context) error {
	if !p.payment.MayPay() {
		return fmt.Errorf("payment cannot be registered in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "pay"); err != nil {
		return fmt.Errorf("failed to register payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// MarkOverdue transitions payment to overdue state
func (p *PaymentFSM) MarkOverdue(ctx context.Context) error {
	if !p.payment.MayMarkOverdue() {
		return fmt.Errorf("payment cannot be marked overdue in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "mark_overdue"); err != nil {
		return fmt.Errorf("failed to mark payment overdue: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// CurrentState returns the current state of the payment
func (p *PaymentFSM) CurrentState() string {
	return p.fsm.Current()
}

// CanTransition checks if a transition is possible
func (p *PaymentFSM) CanTransition(event string) bool {
	return p.fsm.Can(event)
}
