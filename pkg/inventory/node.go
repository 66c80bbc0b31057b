// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
)

// Ref is an opaque reference to a managed object.
type Ref = v1alpha1.ObjectRef

// Kind is the type of an inventory node.
type Kind uint8

const (
	KindDatacenter Kind = iota + 1
	KindFolder
	KindVirtualMachine
	KindResourcePool
	KindComputeResource
	KindClusterComputeResource
)

// String returns the vSphere type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDatacenter:
		return "Datacenter"
	case KindFolder:
		return "Folder"
	case KindVirtualMachine:
		return "VirtualMachine"
	case KindResourcePool:
		return "ResourcePool"
	case KindComputeResource:
		return "ComputeResource"
	case KindClusterComputeResource:
		return "ClusterComputeResource"
	default:
		return ""
	}
}

// Node is one of Datacenter, Folder, VirtualMachine, ResourcePool,
// ComputeResource, or ClusterComputeResource.
type Node interface {
	Reference() Ref
	ObjectName() string
	ParentRef() *Ref
	Kind() Kind

	isNode()
}

// Entity holds the fields common to every node.
type Entity struct {
	Ref    Ref
	Name   string
	Parent *Ref
}

func (e Entity) Reference() Ref     { return e.Ref }
func (e Entity) ObjectName() string { return e.Name }
func (e Entity) ParentRef() *Ref    { return e.Parent }
func (e Entity) isNode()            {}

type Datacenter struct {
	Entity
}

func (Datacenter) Kind() Kind { return KindDatacenter }

type Folder struct {
	Entity
}

func (Folder) Kind() Kind { return KindFolder }

type ResourcePool struct {
	Entity
}

func (ResourcePool) Kind() Kind { return KindResourcePool }

type ComputeResource struct {
	Entity
}

func (ComputeResource) Kind() Kind { return KindComputeResource }

type ClusterComputeResource struct {
	Entity

	DRSEnabled         bool
	DefaultDRSBehavior string

	// DRSOverrides are the per machine DRS behaviors.
	DRSOverrides map[Ref]string
}

func (ClusterComputeResource) Kind() Kind { return KindClusterComputeResource }

// VirtualMachine holds the properties of a machine that are read by the
// reconciler.
type VirtualMachine struct {
	Entity

	ResourcePool *Ref

	// Configured is false while the machine does not expose its
	// configuration, ex. right after it was created.
	Configured bool

	Template   bool
	PowerState string
	CPUs       int32
	MemoryMB   int64
	Annotation string

	ExtraConfig map[string]string

	CPUReservation           *int32
	MemoryReservation        *int32
	NumEthernetCards         *int32
	UUID                     string
	InstanceUUID             string
	GuestHostname            string
	GuestIP                  string
	GuestFullName            string
	ToolsInstallerMounted    *bool
	SnapshotDisabled         *bool
	SnapshotLocked           *bool
	SnapshotPowerOffBehavior string
	CPUAffinity              []int32
	MemoryAffinity           []int32
}

func (VirtualMachine) Kind() Kind { return KindVirtualMachine }

// IsComputeBoundary returns true for the compute resources that own the
// top-level resource pools.
func IsComputeBoundary(n Node) bool {
	switch n.Kind() {
	case KindComputeResource, KindClusterComputeResource:
		return true
	}
	return false
}

// IsRoot returns true for the node at the top of the inventory.
func IsRoot(n Node) bool {
	return n.ParentRef() == nil
}

// IsDatacenter returns true for datacenters.
func IsDatacenter(n Node) bool {
	return n.Kind() == KindDatacenter
}
