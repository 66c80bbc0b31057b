// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// GetResourcePoolOwnerHost returns a connected host of the compute resource
// that owns the ResourcePool. A template is registered on a host instead of
// in a resource pool.
func GetResourcePoolOwnerHost(
	ctx context.Context,
	rp *object.ResourcePool) (*object.HostSystem, error) {

	ownerRef, err := GetResourcePoolOwnerMoRef(ctx, rp.Client(), rp.Reference().Value)
	if err != nil {
		return nil, err
	}

	var cr mo.ComputeResource
	pc := property.DefaultCollector(rp.Client())
	if err := pc.RetrieveOne(ctx, ownerRef, []string{"host"}, &cr); err != nil {
		return nil, err
	}
	if len(cr.Host) == 0 {
		return nil, fmt.Errorf("compute resource %s has no hosts: %w", ownerRef.Value, ErrNotFound)
	}

	var hosts []mo.HostSystem
	if err := pc.Retrieve(ctx, cr.Host, []string{"runtime.connectionState"}, &hosts); err != nil {
		return nil, err
	}

	for i := range hosts {
		if hosts[i].Runtime.ConnectionState == vimtypes.HostSystemConnectionStateConnected {
			return object.NewHostSystem(rp.Client(), hosts[i].Self), nil
		}
	}

	return nil, fmt.Errorf("compute resource %s has no connected hosts: %w", ownerRef.Value, ErrNotFound)
}
