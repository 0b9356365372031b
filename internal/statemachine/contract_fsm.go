package statemachine

import (
	"context"
	"fmt"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/looplab/fsm"
)

// ContractFSM wraps a contract with its state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	cfsm.fsm = fsm.NewFSM(
		contract.Status,
		fsm.Events{
			// reserved → active (start date reached)
			{Name: "activate", Src: []string{models.ContractStatusReserved}, Dst: models.ContractStatusActive},

			// reserved/active → finished (end date passed or terminated)
			{Name: "finish", Src: []string{models.ContractStatusReserved, models.ContractStatusActive}, Dst: models.ContractStatusFinished},

			// reserved/active → cancelled
			{Name: "cancel", Src: []string{models.ContractStatusReserved, models.ContractStatusActive}, Dst: models.ContractStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Activate transitions contract to active state
func (c *ContractFSM) Activate(ctx context.Context) error {
	if !c.contract.MayActivate() {
		return fmt.Errorf("contract cannot be activated in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Finish transitions contract to finished state
func (c *ContractFSM) Finish(ctx context.Context) error {
	if !c.contract.MayFinish() {
		return fmt.Errorf("contract cannot be finished in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "finish"); err != nil {
		return fmt.Errorf("failed to finish contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Cancel transitions contract to cancelled state
func (c *ContractFSM) Cancel(ctx context.Context) error {
	if !c.contract.MayCancel() {
		return fmt.Errorf("contract cannot be cancelled in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// CurrentState returns the current state of the contract
func (c *ContractFSM) CurrentState() string {
	return c.fsm.Current()
}

// CanTransition checks if a transition is possible
func (c *ContractFSM) CanTransition(event string) bool {
	return c.fsm.Can(event)
}
