// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"maps"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
)

// Ref is an opaque reference to a managed object.
type Ref = v1alpha1.ObjectRef

// Session is a pre-authenticated connection to vCenter. Every method that
// starts a task waits for the task to complete. Errors are classified with a
// pkg/errors Kind.
type Session interface {
	inventory.Querier

	// FindMachine returns the reference of the machine or template at the
	// inventory path. The second return value is false if there is no such
	// machine.
	FindMachine(ctx context.Context, path string) (Ref, bool, error)

	// ResolvePlacement resolves the resource pool, datastore, and host used
	// to create a machine.
	ResolvePlacement(ctx context.Context, args PlacementArgs) (Placement, error)

	// EnsureFolderPath returns the folder at the provided segments below the
	// datacenter's machine folder, creating the missing folders.
	EnsureFolderPath(ctx context.Context, datacenter string, segments []string) (Ref, error)

	Clone(ctx context.Context, args CloneArgs) (Ref, error)
	Register(ctx context.Context, args RegisterArgs) (Ref, error)
	Reconfigure(ctx context.Context, ref Ref, change ConfigChange) error

	PowerOn(ctx context.Context, ref Ref) error
	PowerOff(ctx context.Context, ref Ref) error
	Suspend(ctx context.Context, ref Ref) error
	Reset(ctx context.Context, ref Ref) error

	Unregister(ctx context.Context, ref Ref) error
	Destroy(ctx context.Context, ref Ref) error

	// Relocate moves the machine to the resource pool.
	Relocate(ctx context.Context, ref Ref, pool Ref) error

	// AddDeltaDiskLayer adds a child delta disk to each of the machine's
	// disks so the disks may be shared by linked clones.
	AddDeltaDiskLayer(ctx context.Context, ref Ref) error

	ValidateGuestCredentials(ctx context.Context, ref Ref, auth GuestAuth) error
	StartGuestProgram(ctx context.Context, ref Ref, auth GuestAuth, program GuestProgram) (int64, error)
	ListGuestProcesses(ctx context.Context, ref Ref, auth GuestAuth, pids []int64) ([]v1alpha1.GuestProcess, error)

	// Close logs out of the session.
	Close(ctx context.Context) error
}

// SessionFactory returns a new Session. Each batch worker creates its own.
type SessionFactory func(ctx context.Context) (Session, error)

// PlacementArgs describes where a machine should be created.
type PlacementArgs struct {
	Datacenter string

	// ResourcePool is the path /<compute>/<pool...> of the pool. When empty
	// the top-level pool of the datacenter's first compute resource is used.
	ResourcePool string

	// Datastore is the name of the datastore. When empty the first datastore
	// of the compute resource is used, and then the first datastore of the
	// datacenter.
	Datastore string

	// Template indicates a host is required.
	Template bool
}

// Placement is a resolved PlacementArgs.
type Placement struct {
	ResourcePool  Ref
	Datastore     Ref
	DatastoreName string

	// Host is set for templates.
	Host *Ref
}

// CloneArgs are the arguments for cloning a machine.
type CloneArgs struct {
	Source    Ref
	Folder    Ref
	Name      string
	Placement Placement

	// Linked creates a linked clone. The source must have a delta disk
	// layer.
	Linked bool

	// CustomizationSpec is the name of a stored customization spec.
	CustomizationSpec string

	PowerOn  bool
	Template bool

	// Config is applied to the clone as part of the clone task.
	Config ConfigChange
}

// RegisterArgs are the arguments for registering a machine from files on a
// datastore.
type RegisterArgs struct {
	Folder Ref
	Name   string

	// SourceFolder is the name of the datastore folder with the machine's
	// files.
	SourceFolder string

	Placement Placement
	Template  bool
}

// ConfigChange holds the properties to change in one reconfigure task.
type ConfigChange struct {
	CPUs        *int32
	MemoryMB    *int64
	Annotation  *string
	ExtraConfig map[string]string
}

// IsEmpty returns true if there is nothing to change.
func (c ConfigChange) IsEmpty() bool {
	return c.CPUs == nil &&
		c.MemoryMB == nil &&
		c.Annotation == nil &&
		len(c.ExtraConfig) == 0
}

// DeepCopy returns a copy of the change.
func (c ConfigChange) DeepCopy() ConfigChange {
	out := c
	if c.CPUs != nil {
		v := *c.CPUs
		out.CPUs = &v
	}
	if c.MemoryMB != nil {
		v := *c.MemoryMB
		out.MemoryMB = &v
	}
	if c.Annotation != nil {
		v := *c.Annotation
		out.Annotation = &v
	}
	out.ExtraConfig = maps.Clone(c.ExtraConfig)
	return out
}

// GuestAuth are credentials for a guest operating system account.
type GuestAuth struct {
	User     string
	Password string
}

// GuestProgram is a program to start in a guest.
type GuestProgram struct {
	Path             string
	Arguments        string
	WorkingDirectory string
}
