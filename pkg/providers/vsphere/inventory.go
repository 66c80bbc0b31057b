// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vsphere

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	vimtypes "github.com/vmware/govmomi/vim25/types"
	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/internal"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/vcenter"
	"github.com/vmware-tanzu/vm-reconciler/pkg/util"
)

// containerPropertyPaths are the properties retrieved for every type below
// the inventory root other than VirtualMachine.
var containerPropertyPaths = map[string][]string{
	"Datacenter":             {"name", "parent"},
	"Folder":                 {"name", "parent"},
	"ResourcePool":           {"name", "parent"},
	"ComputeResource":        {"name", "parent"},
	"ClusterComputeResource": {"name", "parent", "configurationEx"},
}

// BulkQuery returns every datacenter, folder, resource pool, compute resource,
// and machine below the datacenter or folder at root, plus root and its
// ancestors. The objects are retrieved with a single request through a
// container view. Objects that were removed while the request was running
// are dropped.
func (s *Session) BulkQuery(
	ctx context.Context,
	root string,
	propertyPaths []string) ([]inventory.Node, error) {

	nodes, err := s.bulkQuery(ctx, root, propertyPaths)
	return nodes, translate("bulkQuery", err)
}

func (s *Session) bulkQuery(
	ctx context.Context,
	root string,
	propertyPaths []string) ([]inventory.Node, error) {

	log := logr.FromContextOrDiscard(ctx)
	vimClient := s.client.VimClient()

	obj, err := object.NewSearchIndex(vimClient).FindByInventoryPath(ctx, root)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: %s", vcenter.ErrNotFound, root)
	}
	rootRef := obj.Reference()
	if rootRef.Type != "Datacenter" && rootRef.Type != "Folder" {
		return nil, fmt.Errorf("%w: %s is a %s", vcenter.ErrNotFound, root, rootRef.Type)
	}

	// The ancestors include the root itself.
	ancestors, err := mo.Ancestors(ctx, vimClient, vimClient.ServiceContent.PropertyCollector, rootRef)
	if err != nil {
		return nil, err
	}

	nodes := make([]inventory.Node, 0, len(ancestors))
	for i := range ancestors {
		nodes = append(nodes, ancestorNode(ancestors[i]))
	}

	m := view.NewManager(vimClient)
	types := make([]string, 0, len(containerPropertyPaths)+1)
	for t := range containerPropertyPaths {
		types = append(types, t)
	}
	types = append(types, "VirtualMachine")

	v, err := m.CreateContainerView(ctx, rootRef, types, true)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := v.Destroy(context.WithoutCancel(ctx)); err != nil {
			log.V(4).Error(err, "Failed to destroy container view")
		}
	}()

	contents, err := retrieveContainer(ctx, vimClient, v.Reference(), propertyPaths)
	if err != nil {
		return nil, err
	}

	var dropped int
	for i := range contents {
		if vanished(contents[i]) {
			dropped++
			continue
		}
		n, err := contentNode(contents[i])
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}

	log.V(4).Info("Retrieved inventory",
		"root", root, "objects", len(contents), "vanished", dropped)
	return nodes, nil
}

// retrieveContainer returns the contents of every object in the container
// view with one RetrieveProperties request.
func retrieveContainer(
	ctx context.Context,
	vimClient *vim25.Client,
	containerView vimtypes.ManagedObjectReference,
	machinePropertyPaths []string) ([]vimtypes.ObjectContent, error) {

	propSet := []vimtypes.PropertySpec{
		{
			Type:    "VirtualMachine",
			PathSet: machinePathSet(machinePropertyPaths),
		},
	}
	for t, paths := range containerPropertyPaths {
		propSet = append(propSet, vimtypes.PropertySpec{Type: t, PathSet: paths})
	}

	req := vimtypes.RetrieveProperties{
		This: vimClient.ServiceContent.PropertyCollector,
		SpecSet: []vimtypes.PropertyFilterSpec{
			{
				ObjectSet: []vimtypes.ObjectSpec{
					{
						Obj:  containerView,
						Skip: ptr.To(true),
						SelectSet: []vimtypes.BaseSelectionSpec{
							&vimtypes.TraversalSpec{
								Type: "ContainerView",
								Path: "view",
							},
						},
					},
				},
				PropSet: propSet,
			},
		},
	}

	res, err := property.DefaultCollector(vimClient).RetrieveProperties(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Returnval, nil
}

// machinePathSet returns the paths with name and parent, which the graph
// requires for every node.
func machinePathSet(paths []string) []string {
	pathSet := []string{"name", "parent"}
	for _, p := range paths {
		if !slices.Contains(pathSet, p) {
			pathSet = append(pathSet, p)
		}
	}
	return pathSet
}

// vanished returns true if the object was removed while it was retrieved.
// Other missing properties are ignored.
func vanished(oc vimtypes.ObjectContent) bool {
	for _, missing := range oc.MissingSet {
		if _, ok := missing.Fault.Fault.(*vimtypes.ManagedObjectNotFound); ok {
			return true
		}
	}
	return false
}

func entity(self vimtypes.ManagedObjectReference, name string, parent *vimtypes.ManagedObjectReference) inventory.Entity {
	return inventory.Entity{
		Ref:    internal.Ref(self),
		Name:   name,
		Parent: internal.RefPtr(parent),
	}
}

func ancestorNode(me mo.ManagedEntity) inventory.Node {
	e := entity(me.Self, me.Name, me.Parent)
	if me.Self.Type == "Datacenter" {
		return &inventory.Datacenter{Entity: e}
	}
	return &inventory.Folder{Entity: e}
}

// contentNode returns the node for the object content, or nil for a type
// that is not part of the inventory model.
func contentNode(oc vimtypes.ObjectContent) (inventory.Node, error) {
	obj, err := mo.ObjectContentToType(oc, true)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", oc.Obj, err)
	}

	switch o := obj.(type) {
	case *mo.Datacenter:
		return &inventory.Datacenter{Entity: entity(o.Self, o.Name, o.Parent)}, nil
	case *mo.Folder:
		return &inventory.Folder{Entity: entity(o.Self, o.Name, o.Parent)}, nil
	case *mo.ResourcePool:
		return &inventory.ResourcePool{Entity: entity(o.Self, o.Name, o.Parent)}, nil
	case *mo.ComputeResource:
		return &inventory.ComputeResource{Entity: entity(o.Self, o.Name, o.Parent)}, nil
	case *mo.ClusterComputeResource:
		return clusterNode(o), nil
	case *mo.VirtualMachine:
		return machineNode(o), nil
	}
	return nil, nil
}

func clusterNode(o *mo.ClusterComputeResource) *inventory.ClusterComputeResource {
	n := &inventory.ClusterComputeResource{
		Entity: entity(o.Self, o.Name, o.Parent),
	}

	cfg, ok := o.ConfigurationEx.(*vimtypes.ClusterConfigInfoEx)
	if !ok {
		return n
	}
	n.DRSEnabled = ptr.Deref(cfg.DrsConfig.Enabled, false)
	n.DefaultDRSBehavior = string(cfg.DrsConfig.DefaultVmBehavior)
	if len(cfg.DrsVmConfig) > 0 {
		n.DRSOverrides = make(map[inventory.Ref]string, len(cfg.DrsVmConfig))
		for _, vmCfg := range cfg.DrsVmConfig {
			n.DRSOverrides[internal.Ref(vmCfg.Key)] = string(vmCfg.Behavior)
		}
	}
	return n
}

func machineNode(o *mo.VirtualMachine) *inventory.VirtualMachine {
	n := &inventory.VirtualMachine{
		Entity:                entity(o.Self, o.Name, o.Parent),
		ResourcePool:          internal.RefPtr(o.ResourcePool),
		PowerState:            string(o.Summary.Runtime.PowerState),
		ToolsInstallerMounted: ptr.To(o.Summary.Runtime.ToolsInstallerMounted),
	}

	if g := o.Summary.Guest; g != nil {
		n.GuestHostname = g.HostName
		n.GuestIP = g.IpAddress
		n.GuestFullName = g.GuestFullName
	}

	// A machine that was just created has no configuration yet.
	if o.Config == nil {
		return n
	}
	n.Configured = true

	sc := o.Summary.Config
	n.CPUs = sc.NumCpu
	n.MemoryMB = int64(sc.MemorySizeMB)
	n.CPUReservation = ptr.To(sc.CpuReservation)
	n.MemoryReservation = ptr.To(sc.MemoryReservation)
	n.NumEthernetCards = ptr.To(sc.NumEthernetCards)
	n.UUID = sc.Uuid
	n.InstanceUUID = sc.InstanceUuid

	n.Template = o.Config.Template
	n.Annotation = o.Config.Annotation
	n.ExtraConfig = util.OptionValues(o.Config.ExtraConfig).StringMap()

	n.SnapshotDisabled = o.Config.Flags.SnapshotDisabled
	n.SnapshotLocked = o.Config.Flags.SnapshotLocked
	n.SnapshotPowerOffBehavior = o.Config.Flags.SnapshotPowerOffBehavior

	if a := o.Config.CpuAffinity; a != nil {
		n.CPUAffinity = a.AffinitySet
	}
	if a := o.Config.MemoryAffinity; a != nil {
		n.MemoryAffinity = a.AffinitySet
	}

	return n
}
