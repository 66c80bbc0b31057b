// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// RelocateToResourcePool moves the VM into the resource pool. The VM's host
// and storage are left alone.
func RelocateToResourcePool(
	ctx context.Context,
	vcVM *object.VirtualMachine,
	pool vimtypes.ManagedObjectReference) error {

	t, err := vcVM.Relocate(
		ctx,
		vimtypes.VirtualMachineRelocateSpec{Pool: &pool},
		vimtypes.VirtualMachineMovePriorityDefaultPriority)
	if err != nil {
		return err
	}

	if _, err := t.WaitForResult(ctx); err != nil {
		return fmt.Errorf("relocate VM task failed: %w", err)
	}
	return nil
}
