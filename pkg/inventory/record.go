// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"maps"

	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
)

const (
	powerStatePoweredOn  = "poweredOn"
	powerStatePoweredOff = "poweredOff"
	powerStateSuspended  = "suspended"

	// noHostname is reported by VMware Tools when the guest has no hostname.
	noHostname = "(none)"
)

// MachineState maps a machine's power state to its lifecycle state.
func MachineState(vm *VirtualMachine) v1alpha1.MachineState {
	if vm == nil {
		return v1alpha1.MachineStateAbsent
	}
	if vm.Template {
		return v1alpha1.MachineStateTemplate
	}
	switch vm.PowerState {
	case powerStatePoweredOn:
		return v1alpha1.MachineStateRunning
	case powerStatePoweredOff:
		return v1alpha1.MachineStateStopped
	case powerStateSuspended:
		return v1alpha1.MachineStateSuspended
	default:
		return v1alpha1.MachineStateUnknown
	}
}

// Record returns the normalized record of a machine in the graph.
func (g *Graph) Record(vm *VirtualMachine) v1alpha1.MachineRecord {
	path := g.Path(vm.Ref)

	r := v1alpha1.MachineRecord{
		Ref:         vm.Ref,
		Path:        path,
		Name:        vm.Name,
		Folder:      FolderSegments(path),
		State:       MachineState(vm),
		Template:    vm.Template,
		CPUs:        vm.CPUs,
		Memory:      vm.MemoryMB,
		Annotation:  vm.Annotation,
		ExtraConfig: maps.Clone(vm.ExtraConfig),
	}

	ro := &r.ReadOnlyProperties
	ro.CPUReservation = vm.CPUReservation
	ro.MemoryReservation = vm.MemoryReservation
	ro.NumberEthernetCards = vm.NumEthernetCards
	ro.PowerState = nonEmpty(vm.PowerState)
	ro.SnapshotDisabled = vm.SnapshotDisabled
	ro.SnapshotLocked = vm.SnapshotLocked
	ro.SnapshotPowerOffBehavior = nonEmpty(vm.SnapshotPowerOffBehavior)
	ro.ToolsInstallerMounted = vm.ToolsInstallerMounted
	ro.UUID = nonEmpty(vm.UUID)
	ro.InstanceUUID = nonEmpty(vm.InstanceUUID)
	ro.GuestIP = nonEmpty(vm.GuestIP)
	ro.GuestOS = nonEmpty(vm.GuestFullName)
	if vm.GuestHostname != noHostname {
		ro.Hostname = nonEmpty(vm.GuestHostname)
	}
	ro.CPUAffinity = vm.CPUAffinity
	ro.MemoryAffinity = vm.MemoryAffinity

	if dc, ok := g.Datacenter(vm.Ref); ok {
		ro.Datacenter = ptr.To(dc.ObjectName())
	}

	if vm.ResourcePool != nil {
		var compute Node
		r.ResourcePool, compute = g.ResourcePoolPath(*vm.ResourcePool)
		ro.DRSBehavior = drsBehavior(compute, vm.Ref)
	}

	ro.VCenterName = nonEmpty(g.about.Name)
	ro.VCenterVersion = nonEmpty(g.about.Version)
	ro.VCenterFullVersion = nonEmpty(g.about.FullVersion)
	ro.VCenterUUID = nonEmpty(g.about.InstanceUUID)

	return r
}

// Records returns the records of all the configured machines, sorted by
// path.
func (g *Graph) Records() []v1alpha1.MachineRecord {
	var out []v1alpha1.MachineRecord
	for _, p := range g.MachinePaths() {
		if vm := g.machines[p]; vm.Configured {
			out = append(out, g.Record(vm))
		}
	}
	return out
}

func drsBehavior(compute Node, vm Ref) *string {
	var ccr *ClusterComputeResource
	switch c := compute.(type) {
	case *ClusterComputeResource:
		ccr = c
	case ClusterComputeResource:
		ccr = &c
	default:
		return nil
	}
	if !ccr.DRSEnabled {
		return nil
	}
	if b, ok := ccr.DRSOverrides[vm]; ok && b != "" {
		return ptr.To(b)
	}
	return nonEmpty(ccr.DefaultDRSBehavior)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return ptr.To(s)
}
