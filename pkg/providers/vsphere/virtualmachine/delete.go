// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/vmware/govmomi/object"
)

// DeleteVirtualMachine destroys the VM and deletes its files.
func DeleteVirtualMachine(
	ctx context.Context,
	vcVM *object.VirtualMachine) error {

	t, err := vcVM.Destroy(ctx)
	if err != nil {
		return err
	}

	if taskInfo, err := t.WaitForResult(ctx); err != nil {
		if taskInfo != nil {
			logr.FromContextOrDiscard(ctx).V(5).Error(err, "destroy VM task failed", "taskInfo", taskInfo)
		}
		return fmt.Errorf("destroy VM task failed: %w", err)
	}

	return nil
}

// UnregisterVirtualMachine removes the VM from the inventory and keeps its
// files.
func UnregisterVirtualMachine(
	ctx context.Context,
	vcVM *object.VirtualMachine) error {

	return vcVM.Unregister(ctx)
}
