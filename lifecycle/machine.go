package lifecycle

import (
	"context"
	stderrors "errors"

	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/state"
	"github.com/looplab/fsm"
)

const (
	eventInitialize = "initialize"
	eventStake      = "stake"
	eventRedeem     = "redeem"
	eventUnstake    = "unstake"
)

var transitions = fsm.Events{
	{Name: eventInitialize, Src: []string{string(state.Uninitialized)}, Dst: string(state.Idle)},
	{Name: eventStake, Src: []string{string(state.Idle)}, Dst: string(state.Staked)},
	{Name: eventRedeem, Src: []string{string(state.Staked)}, Dst: string(state.Staked)},
	{Name: eventUnstake, Src: []string{string(state.Staked)}, Dst: string(state.Idle)},
}

// transition checks that event is allowed from the record's current state
// and returns the state the record must be in once the event is applied.
func transition(ctx context.Context, record *state.StakeRecord, event string) (state.Lifecycle, error) {
	current := record.State()
	machine := fsm.NewFSM(string(current), transitions, fsm.Callbacks{})
	if machine.Cannot(event) {
		if current == state.Uninitialized {
			return "", errors.Errorf(errors.UninitializedAccount, "cannot %s: stake record is not initialized", event)
		}
		return "", errors.InvalidStakeOperationf("cannot %s a record that is %s", event, current)
	}
	if err := machine.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if !stderrors.As(err, &noTransition) {
			return "", errors.Unknownf("%s from %s: %v", event, current, err)
		}
	}
	return state.Lifecycle(machine.Current()), nil
}
