// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/util"
)

// ConfigSpec returns the ConfigSpec that applies the change. Only the fields
// that are set in the change are set in the ConfigSpec.
func ConfigSpec(change providers.ConfigChange) vimtypes.VirtualMachineConfigSpec {
	var configSpec vimtypes.VirtualMachineConfigSpec

	if change.CPUs != nil {
		configSpec.NumCPUs = *change.CPUs
	}
	if change.MemoryMB != nil {
		configSpec.MemoryMB = *change.MemoryMB
	}
	if change.Annotation != nil {
		configSpec.Annotation = *change.Annotation
	}
	if len(change.ExtraConfig) > 0 {
		configSpec.ExtraConfig = util.OptionValuesFromMap(change.ExtraConfig)
	}

	return configSpec
}

// Reconfigure applies the ConfigSpec to the VM.
func Reconfigure(
	ctx context.Context,
	vcVM *object.VirtualMachine,
	configSpec vimtypes.VirtualMachineConfigSpec) error {

	t, err := vcVM.Reconfigure(ctx, configSpec)
	if err != nil {
		return err
	}

	if _, err := t.WaitForResult(ctx); err != nil {
		return fmt.Errorf("reconfigure VM task failed: %w", err)
	}
	return nil
}
