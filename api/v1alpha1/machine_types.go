// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

// EnsureState is the desired lifecycle state of a machine.
type EnsureState string

const (
	// EnsurePresent means the machine exists. When the machine must be
	// created, it is powered on unless it is a template.
	EnsurePresent EnsureState = "present"

	// EnsureAbsent means the machine does not exist.
	EnsureAbsent EnsureState = "absent"

	EnsureRunning   EnsureState = "running"
	EnsureStopped   EnsureState = "stopped"
	EnsureSuspended EnsureState = "suspended"

	// EnsureReset resets a running machine, or starts a stopped or suspended
	// one. It is never in sync.
	EnsureReset EnsureState = "reset"

	// EnsureUnregistered removes the machine from the inventory and keeps
	// its files.
	EnsureUnregistered EnsureState = "unregistered"
)

// MachineState is the observed lifecycle state of a machine.
type MachineState string

const (
	MachineStateAbsent    MachineState = "absent"
	MachineStateTemplate  MachineState = "template"
	MachineStateStopped   MachineState = "stopped"
	MachineStateRunning   MachineState = "running"
	MachineStateSuspended MachineState = "suspended"

	// MachineStateUnknown is an existing machine with a power state that is
	// not recognized.
	MachineStateUnknown MachineState = "unknown"
)

// SourceType describes what a descriptor's source refers to.
type SourceType string

const (
	SourceTypeVM       SourceType = "vm"
	SourceTypeTemplate SourceType = "template"

	// SourceTypeFolder is a datastore folder with the files of a machine that
	// is registered in place.
	SourceTypeFolder SourceType = "folder"
)

// ObjectRef is an opaque reference to a vSphere managed object.
type ObjectRef struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// String returns the reference in the form Type:Value.
func (r ObjectRef) String() string {
	if r.Type == "" && r.Value == "" {
		return ""
	}
	return r.Type + ":" + r.Value
}

// IsZero returns true for the empty reference.
func (r ObjectRef) IsZero() bool {
	return r == ObjectRef{}
}

// CreateCommand is a program started in the guest after the machine is
// created.
type CreateCommand struct {
	Command          string `json:"command" validate:"required"`
	Arguments        string `json:"arguments,omitempty"`
	WorkingDirectory string `json:"working_directory,omitempty"`
	User             string `json:"user" validate:"required"`
	Password         string `json:"password" validate:"required"`
}

// ReadOnlyProperties are observed on machines and may never be set by a
// descriptor.
type ReadOnlyProperties struct {
	CPUReservation           *int32  `json:"cpu_reservation,omitempty"`
	MemoryReservation        *int32  `json:"memory_reservation,omitempty"`
	NumberEthernetCards      *int32  `json:"number_ethernet_cards,omitempty"`
	PowerState               *string `json:"power_state,omitempty"`
	SnapshotDisabled         *bool   `json:"snapshot_disabled,omitempty"`
	SnapshotLocked           *bool   `json:"snapshot_locked,omitempty"`
	SnapshotPowerOffBehavior *string `json:"snapshot_power_off_behavior,omitempty"`
	ToolsInstallerMounted    *bool   `json:"tools_installer_mounted,omitempty"`
	UUID                     *string `json:"uuid,omitempty"`
	InstanceUUID             *string `json:"instance_uuid,omitempty"`
	GuestIP                  *string `json:"guest_ip,omitempty"`
	GuestOS                  *string `json:"guest_os,omitempty"`
	Hostname                 *string `json:"hostname,omitempty"`
	Datacenter               *string `json:"datacenter,omitempty"`
	DRSBehavior              *string `json:"drs_behavior,omitempty"`
	CPUAffinity              []int32 `json:"cpu_affinity,omitempty"`
	MemoryAffinity           []int32 `json:"memory_affinity,omitempty"`
	VCenterFullVersion       *string `json:"vcenter_full_version,omitempty"`
	VCenterName              *string `json:"vcenter_name,omitempty"`
	VCenterUUID              *string `json:"vcenter_uuid,omitempty"`
	VCenterVersion           *string `json:"vcenter_version,omitempty"`
}

// ResourceDescriptor is the desired state of one machine.
type ResourceDescriptor struct {
	// Path is /<datacenter>/vm/<folder...>/<name>.
	Path string `json:"path" validate:"required,machinepath"`

	// Ensure defaults to present.
	Ensure EnsureState `json:"ensure,omitempty" validate:"omitempty,oneof=present absent running stopped suspended reset unregistered"`

	// Source is the path of the machine or template to clone, or the name of
	// a datastore folder when SourceType is folder.
	Source string `json:"source,omitempty"`

	// SourceType defaults to vm.
	SourceType SourceType `json:"source_type,omitempty" validate:"omitempty,oneof=vm template folder"`

	Template bool `json:"template,omitempty"`

	CPUs *int32 `json:"cpus,omitempty" validate:"omitempty,gt=0"`

	// Memory is in MB.
	Memory *int64 `json:"memory,omitempty" validate:"omitempty,gt=0"`

	// Annotation cannot be cleared once it is set, so an empty annotation is
	// rejected.
	Annotation *string `json:"annotation,omitempty" validate:"omitempty,min=1"`

	// ExtraConfig keys that are not listed are left untouched.
	ExtraConfig map[string]string `json:"extra_config,omitempty" validate:"omitempty,dive,keys,required,endkeys"`

	// ResourcePool is /<compute resource>/<pool...>.
	ResourcePool string `json:"resource_pool,omitempty"`

	Datastore         string `json:"datastore,omitempty"`
	LinkedClone       bool   `json:"linked_clone,omitempty"`
	CustomizationSpec string `json:"customization_spec,omitempty"`

	// DeleteFromDisk defaults to true.
	DeleteFromDisk *bool `json:"delete_from_disk,omitempty"`

	CreateCommand *CreateCommand `json:"create_command,omitempty"`

	ReadOnlyProperties `json:",inline"`
}

// EnsureOrDefault returns the desired state, defaulting to present.
func (d ResourceDescriptor) EnsureOrDefault() EnsureState {
	if d.Ensure == "" {
		return EnsurePresent
	}
	return d.Ensure
}

// SourceTypeOrDefault returns the source type, defaulting to vm.
func (d ResourceDescriptor) SourceTypeOrDefault() SourceType {
	if d.SourceType == "" {
		return SourceTypeVM
	}
	return d.SourceType
}

// DeleteFromDiskOrDefault returns whether an absent machine is destroyed
// rather than unregistered.
func (d ResourceDescriptor) DeleteFromDiskOrDefault() bool {
	if d.DeleteFromDisk == nil {
		return true
	}
	return *d.DeleteFromDisk
}

// MachineRecord is the observed state of one machine.
type MachineRecord struct {
	Ref          ObjectRef         `json:"ref"`
	Path         string            `json:"path"`
	Name         string            `json:"name"`
	Folder       []string          `json:"folder,omitempty"`
	ResourcePool string            `json:"resource_pool,omitempty"`
	State        MachineState      `json:"state"`
	Template     bool              `json:"template,omitempty"`
	CPUs         int32             `json:"cpus"`
	Memory       int64             `json:"memory"`
	Annotation   string            `json:"annotation,omitempty"`
	ExtraConfig  map[string]string `json:"extra_config,omitempty"`

	ReadOnlyProperties `json:",inline"`
}
