// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/task"
	"github.com/vmware/govmomi/vim25/types"
)

// ErrInvalidPowerState is returned if a power state does not map to
// "poweredOff", "poweredOn", or "suspended".
type ErrInvalidPowerState struct {
	PowerState types.VirtualMachinePowerState
}

// Error enables this type to be returned as a Golang error object.
func (e ErrInvalidPowerState) Error() string {
	return fmt.Sprintf("invalid power state: %q", e.PowerState)
}

// PowerOpResult represents one of the possible results when calling
// SetAndWaitOnPowerState.
type PowerOpResult uint8

const (
	// PowerOpResultNone indicates the power state was not changed
	// because the VM's power state matched the desired power state.
	PowerOpResultNone PowerOpResult = iota

	// PowerOpResultChanged indicates the power state was changed.
	PowerOpResultChanged
)

// AnyChange returns true if the result indicates a change.
func (r PowerOpResult) AnyChange() bool {
	return r >= PowerOpResultChanged
}

// SetAndWaitOnPowerState changes the VM's power state with a hard operation
// and blocks until the operation completes. An InvalidPowerState fault that
// reports the VM is already in the desired power state is not an error.
func SetAndWaitOnPowerState(
	ctx context.Context,
	obj *object.VirtualMachine,
	desiredPowerState types.VirtualMachinePowerState) (PowerOpResult, error) {

	var powerOpFn func(context.Context) (*object.Task, error)

	switch desiredPowerState {
	case types.VirtualMachinePowerStatePoweredOn:
		powerOpFn = obj.PowerOn
	case types.VirtualMachinePowerStatePoweredOff:
		powerOpFn = obj.PowerOff
	case types.VirtualMachinePowerStateSuspended:
		powerOpFn = obj.Suspend
	default:
		return 0, ErrInvalidPowerState{PowerState: desiredPowerState}
	}

	return doAndWaitOnHardPowerOp(ctx, desiredPowerState, powerOpFn)
}

// ResetAndWait resets the VM and blocks until the operation completes.
func ResetAndWait(ctx context.Context, obj *object.VirtualMachine) error {
	t, err := obj.Reset(ctx)
	if err != nil {
		return fmt.Errorf("failed to invoke reset: %w", err)
	}
	if _, err := t.WaitForResult(ctx); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	return nil
}

func doAndWaitOnHardPowerOp(
	ctx context.Context,
	desiredPowerState types.VirtualMachinePowerState,
	powerOpFn func(context.Context) (*object.Task, error)) (PowerOpResult, error) {

	log := logr.FromContextOrDiscard(ctx)

	t, err := powerOpFn(ctx)
	if err != nil {
		return 0, fmt.Errorf(
			"failed to invoke hard power op for %s: %w", desiredPowerState, err)
	}
	if ti, err := t.WaitForResult(ctx); err != nil {
		var taskErr task.Error
		if errors.As(err, &taskErr) {
			// Ignore error if desired power state already set.
			if ips, ok := taskErr.Fault().(*types.InvalidPowerState); ok && ips.ExistingState == ips.RequestedState {
				log.Info(
					"Power state already set",
					"desiredPowerState",
					desiredPowerState)
				return PowerOpResultNone, nil
			}
		}
		if ti != nil {
			log.Error(err, "Change power state task failed", "taskInfo", ti)
		}
		return 0, fmt.Errorf("hard set power state to %s failed: %w", desiredPowerState, err)
	}

	return PowerOpResultChanged, nil
}
