// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine

import (
	"context"
	"fmt"
	"path"

	"github.com/go-logr/logr"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconciler/pkg/constants"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/internal"
)

// RegisterPath returns the datastore path of the configuration file in the
// datastore folder, ex. "[LocalDS_0] web/web.vmx".
func RegisterPath(datastore, folder string, template bool) string {
	ext := constants.MachineFileExtension
	if template {
		ext = constants.TemplateFileExtension
	}
	p := object.DatastorePath{
		Datastore: datastore,
		Path:      path.Join(folder, path.Base(folder)+ext),
	}
	return p.String()
}

// RegisterVM registers the machine whose files are in args.SourceFolder and
// returns the reference of the new VM. A template is registered on the
// placement's host, everything else in the placement's resource pool.
func RegisterVM(
	ctx context.Context,
	vimClient *vim25.Client,
	args providers.RegisterArgs) (vimtypes.ManagedObjectReference, error) {

	log := logr.FromContextOrDiscard(ctx)

	var (
		pool *object.ResourcePool
		host *object.HostSystem
	)
	if args.Template {
		if args.Placement.Host == nil {
			return vimtypes.ManagedObjectReference{}, fmt.Errorf("a template requires a host")
		}
		host = object.NewHostSystem(vimClient, internal.MoRef(*args.Placement.Host))
	} else {
		pool = object.NewResourcePool(vimClient, internal.MoRef(args.Placement.ResourcePool))
	}

	folder := object.NewFolder(vimClient, internal.MoRef(args.Folder))
	vmxPath := RegisterPath(args.Placement.DatastoreName, args.SourceFolder, args.Template)

	log.V(4).Info("Registering VM", "path", vmxPath, "template", args.Template)
	registerTask, err := folder.RegisterVM(ctx, vmxPath, args.Name, args.Template, pool, host)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, err
	}

	result, err := registerTask.WaitForResult(ctx)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, fmt.Errorf("register VM task failed: %w", err)
	}

	ref, ok := result.Result.(vimtypes.ManagedObjectReference)
	if !ok {
		return vimtypes.ManagedObjectReference{}, fmt.Errorf("register VM task returned a %T", result.Result)
	}
	return ref, nil
}
