package statemachine

import (
	"context"
	"testing"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractLifecycle(t *testing.T) {
	ctx := context.Background()

	contract := &models.Contract{Status: models.ContractStatusReserved}
	cfsm := NewContractFSM(contract)

	require.NoError(t, cfsm.Activate(ctx))
	assert.Equal(t, models.ContractStatusActive, contract.Status)

	require.NoError(t, cfsm.Finish(ctx))
	assert.Equal(t, models.ContractStatusFinished, contract.Status)
}

func TestContractCannotLeaveTerminalStates(t *testing.T) {
	ctx := context.Background()

	finished := &models.Contract{Status: models.ContractStatusFinished}
	assert.Error(t, NewContractFSM(finished).Cancel(ctx))
	assert.Error(t, NewContractFSM(finished).Activate(ctx))

	cancelled := &models.Contract{Status: models.ContractStatusCancelled}
	assert.Error(t, NewContractFSM(cancelled).Finish(ctx))
	assert.Equal(t, models.ContractStatusCancelled, cancelled.Status)
}

func TestReservedContractCanBeCancelledOrFinished(t *testing.T) {
	ctx := context.Background()

	reserved := &models.Contract{Status: models.ContractStatusReserved}
	require.NoError(t, NewContractFSM(reserved).Cancel(ctx))
	assert.Equal(t, models.ContractStatusCancelled, reserved.Status)

	reserved = &models.Contract{Status: models.ContractStatusReserved}
	require.NoError(t, NewContractFSM(reserved).Finish(ctx))
	assert.Equal(t, models.ContractStatusFinished, reserved.Status)
}

func TestPaymentTransitions(t *testing.T) {
	ctx := context.Background()

	payment := &models.Payment{Status: models.PaymentStatusPending}
	pfsm := NewPaymentFSM(payment)
	require.NoError(t, pfsm.MarkOverdue(ctx))
	assert.Equal(t, models.PaymentStatusOverdue, payment.Status)

	// Overdue installments can still be paid
	require.NoError(t, NewPaymentFSM(payment).Pay(ctx))
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)

	// Paid is terminal
	assert.Error(t, NewPaymentFSM(payment).MarkOverdue(ctx))
	assert.Error(t, NewPaymentFSM(payment).Pay(ctx))
}
