// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// GetResourcePoolByPath returns the ResourcePool at /<compute resource>/<pool...>.
// A path with only the compute resource names the compute resource's
// top-level pool. The finder must have its datacenter set.
func GetResourcePoolByPath(
	ctx context.Context,
	finder *find.Finder,
	path []string) (*object.ResourcePool, error) {

	if len(path) == 0 {
		return nil, fmt.Errorf("resource pool path is empty: %w", ErrNotFound)
	}

	cr, err := finder.ComputeResource(ctx, path[0])
	if err != nil {
		return nil, err
	}

	rp, err := cr.ResourcePool(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range path[1:] {
		if rp, err = GetChildResourcePool(ctx, rp, name); err != nil {
			return nil, err
		}
	}

	return rp, nil
}

// GetDefaultResourcePool returns the top-level ResourcePool of the first
// cluster in the datacenter, or of the first standalone compute resource when
// the datacenter has no cluster.
func GetDefaultResourcePool(
	ctx context.Context,
	finder *find.Finder) (*object.ResourcePool, error) {

	var cr *object.ComputeResource

	ccrs, err := finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		var notFound *find.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	if len(ccrs) > 0 {
		cr = &ccrs[0].ComputeResource
	} else {
		crs, err := finder.ComputeResourceList(ctx, "*")
		if err != nil {
			return nil, err
		}
		cr = crs[0]
	}

	return cr.ResourcePool(ctx)
}

// GetResourcePoolOwnerMoRef returns the ComputeResource or
// ClusterComputeResource MoRef that owns the ResourcePool.
func GetResourcePoolOwnerMoRef(
	ctx context.Context,
	vimClient *vim25.Client,
	rpMoID string) (vimtypes.ManagedObjectReference, error) {

	rp := object.NewResourcePool(vimClient,
		vimtypes.ManagedObjectReference{Type: "ResourcePool", Value: rpMoID})

	objRef, err := rp.Owner(ctx)
	if err != nil {
		return vimtypes.ManagedObjectReference{}, err
	}

	return objRef.Reference(), nil
}

// GetChildResourcePool gets the named child ResourcePool from the parent ResourcePool.
func GetChildResourcePool(
	ctx context.Context,
	parentRP *object.ResourcePool,
	childName string) (*object.ResourcePool, error) {

	childRP, err := findChildRP(ctx, parentRP, childName)
	if err != nil {
		return nil, err
	} else if childRP == nil {
		return nil, fmt.Errorf("ResourcePool child %q not found under parent ResourcePool %s: %w",
			childName, parentRP.Reference().Value, ErrNotFound)
	}

	return childRP, nil
}

func findChildRP(
	ctx context.Context,
	parentRP *object.ResourcePool,
	childName string) (*object.ResourcePool, error) {

	objRef, err := object.NewSearchIndex(parentRP.Client()).FindChild(ctx, parentRP, childName)
	if err != nil {
		return nil, err
	} else if objRef == nil {
		// FindChild() returns nil when child name is not found.
		return nil, nil
	}

	childRP, ok := objRef.(*object.ResourcePool)
	if !ok {
		return nil, fmt.Errorf("ResourcePool child %q is not a ResourcePool but a %T", childName, objRef)
	}

	return childRP, nil
}
