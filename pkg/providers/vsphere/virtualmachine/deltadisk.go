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

// AddDeltaDiskLayer adds a child delta disk to every disk of the VM so that
// the VM's current disks become the parents of linked clones.
func AddDeltaDiskLayer(ctx context.Context, vm *object.VirtualMachine) error {
	devices, err := vm.Device(ctx)
	if err != nil {
		return fmt.Errorf("failed to get VM devices: %w", err)
	}

	deviceChanges, err := DeltaDiskLayerDeviceChanges(devices)
	if err != nil {
		return err
	}
	if len(deviceChanges) == 0 {
		return nil
	}

	t, err := vm.Reconfigure(ctx, vimtypes.VirtualMachineConfigSpec{
		DeviceChange: deviceChanges,
	})
	if err != nil {
		return err
	}

	if _, err := t.WaitForResult(ctx); err != nil {
		return fmt.Errorf("add delta disk layer task failed: %w", err)
	}
	return nil
}

// DeltaDiskLayerDeviceChanges returns the device changes that replace each
// disk with a new disk backed by a delta file whose parent is the existing
// backing. Disks that are already backed by a delta file are left alone.
func DeltaDiskLayerDeviceChanges(
	devices object.VirtualDeviceList) ([]vimtypes.BaseVirtualDeviceConfigSpec, error) {

	var deviceChanges []vimtypes.BaseVirtualDeviceConfigSpec

	for _, d := range devices.SelectByType((*vimtypes.VirtualDisk)(nil)) {
		disk := d.(*vimtypes.VirtualDisk)

		backing, ok := disk.Backing.(*vimtypes.VirtualDiskFlatVer2BackingInfo)
		if !ok {
			return nil, fmt.Errorf("disk %d has an unsupported backing %T", disk.Key, disk.Backing)
		}
		if backing.Parent != nil {
			continue
		}

		var dsPath object.DatastorePath
		if !dsPath.FromString(backing.FileName) {
			return nil, fmt.Errorf("disk %d has an invalid file name %q", disk.Key, backing.FileName)
		}

		child := &vimtypes.VirtualDisk{
			VirtualDevice: vimtypes.VirtualDevice{
				Key:           disk.Key,
				ControllerKey: disk.ControllerKey,
				UnitNumber:    disk.UnitNumber,
				Backing: &vimtypes.VirtualDiskFlatVer2BackingInfo{
					VirtualDeviceFileBackingInfo: vimtypes.VirtualDeviceFileBackingInfo{
						// The server picks the file name in the datastore.
						FileName:  fmt.Sprintf("[%s]", dsPath.Datastore),
						Datastore: backing.Datastore,
					},
					DiskMode:        backing.DiskMode,
					ThinProvisioned: backing.ThinProvisioned,
					Parent:          backing,
				},
			},
			CapacityInKB:    disk.CapacityInKB,
			CapacityInBytes: disk.CapacityInBytes,
		}

		deviceChanges = append(deviceChanges,
			&vimtypes.VirtualDeviceConfigSpec{
				Operation: vimtypes.VirtualDeviceConfigSpecOperationRemove,
				Device:    disk,
			},
			&vimtypes.VirtualDeviceConfigSpec{
				Operation:     vimtypes.VirtualDeviceConfigSpecOperationAdd,
				FileOperation: vimtypes.VirtualDeviceConfigSpecFileOperationCreate,
				Device:        child,
			})
	}

	return deviceChanges, nil
}
