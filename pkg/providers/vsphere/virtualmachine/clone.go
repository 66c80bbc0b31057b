// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	vimtypes "github.com/vmware/govmomi/vim25/types"
	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/internal"
)

// CloneVM clones args.Source and returns the reference of the new VM.
func CloneVM(
	ctx context.Context,
	vimClient *vim25.Client,
	args providers.CloneArgs) (vimtypes.ManagedObjectReference, error) {

	log := logr.FromContextOrDiscard(ctx)

	cloneSpec, err := CreateCloneSpec(ctx, vimClient, args)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, err
	}

	srcVM := object.NewVirtualMachine(vimClient, internal.MoRef(args.Source))
	folder := object.NewFolder(vimClient, internal.MoRef(args.Folder))

	cloneTask, err := srcVM.Clone(ctx, folder, args.Name, *cloneSpec)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, err
	}

	result, err := cloneTask.WaitForResult(ctx)
	if err != nil {
		if result != nil {
			log.V(5).Error(err, "clone VM task failed", "taskInfo", result)
		}
		return vimtypes.ManagedObjectReference{}, fmt.Errorf("clone VM task failed: %w", err)
	}

	ref, ok := result.Result.(vimtypes.ManagedObjectReference)
	if !ok {
		return vimtypes.ManagedObjectReference{}, fmt.Errorf("clone VM task returned a %T", result.Result)
	}
	return ref, nil
}

// CreateCloneSpec returns the CloneSpec for args. A named customization spec
// is read from the server.
func CreateCloneSpec(
	ctx context.Context,
	vimClient *vim25.Client,
	args providers.CloneArgs) (*vimtypes.VirtualMachineCloneSpec, error) {

	configSpec := ConfigSpec(args.Config)

	cloneSpec := &vimtypes.VirtualMachineCloneSpec{
		Config:   &configSpec,
		Memory:   ptr.To(false), // No full memory clones.
		PowerOn:  args.PowerOn && !args.Template,
		Template: args.Template,
	}

	cloneSpec.Location.Datastore = internal.MoRefPtr(args.Placement.Datastore)
	if args.Template {
		// A template has no resource pool.
		if args.Placement.Host != nil {
			cloneSpec.Location.Host = internal.MoRefPtr(*args.Placement.Host)
		}
	} else {
		cloneSpec.Location.Pool = internal.MoRefPtr(args.Placement.ResourcePool)
	}

	if args.Linked {
		cloneSpec.Location.DiskMoveType = string(vimtypes.VirtualMachineRelocateDiskMoveOptionsMoveChildMostDiskBacking)
	}

	if args.CustomizationSpec != "" {
		m := object.NewCustomizationSpecManager(vimClient)
		item, err := m.GetCustomizationSpec(ctx, args.CustomizationSpec)
		if err != nil {
			return nil, fmt.Errorf("failed to get customization spec %q: %w", args.CustomizationSpec, err)
		}
		cloneSpec.Customization = &item.Spec
	}

	return cloneSpec, nil
}
