// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter

import (
	"context"

	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
)

// GetDatastore returns the named Datastore. When name is empty, the first
// Datastore of the compute resource that owns rp is returned, and then the
// datacenter's default Datastore. The finder must have its datacenter set.
func GetDatastore(
	ctx context.Context,
	finder *find.Finder,
	rp *object.ResourcePool,
	name string) (*object.Datastore, error) {

	if name != "" {
		return finder.Datastore(ctx, name)
	}

	if rp != nil {
		ds, err := getResourcePoolOwnerDatastore(ctx, rp)
		if err != nil {
			return nil, err
		}
		if ds != nil {
			return ds, nil
		}
	}

	return finder.DefaultDatastore(ctx)
}

func getResourcePoolOwnerDatastore(
	ctx context.Context,
	rp *object.ResourcePool) (*object.Datastore, error) {

	ownerRef, err := GetResourcePoolOwnerMoRef(ctx, rp.Client(), rp.Reference().Value)
	if err != nil {
		return nil, err
	}

	var cr mo.ComputeResource
	pc := property.DefaultCollector(rp.Client())
	if err := pc.RetrieveOne(ctx, ownerRef, []string{"datastore"}, &cr); err != nil {
		return nil, err
	}
	if len(cr.Datastore) == 0 {
		return nil, nil
	}

	var ds mo.Datastore
	if err := pc.RetrieveOne(ctx, cr.Datastore[0], []string{"name"}, &ds); err != nil {
		return nil, err
	}

	d := object.NewDatastore(rp.Client(), cr.Datastore[0])
	d.InventoryPath = ds.Name
	return d, nil
}
