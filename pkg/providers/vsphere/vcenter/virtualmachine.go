// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter

import (
	"context"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
)

// FindVirtualMachineByPath returns the VM at the inventory path, or nil if
// nothing exists at the path or the object at the path is not a VM.
func FindVirtualMachineByPath(
	ctx context.Context,
	vimClient *vim25.Client,
	path string) (*object.VirtualMachine, error) {

	objRef, err := object.NewSearchIndex(vimClient).FindByInventoryPath(ctx, path)
	if err != nil {
		return nil, err
	}

	vm, ok := objRef.(*object.VirtualMachine)
	if !ok {
		return nil, nil
	}

	return vm, nil
}
