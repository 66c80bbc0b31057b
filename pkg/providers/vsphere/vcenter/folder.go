// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/vmware/govmomi/fault"
	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// GetChildFolder gets the named child Folder from the parent Folder.
func GetChildFolder(
	ctx context.Context,
	parentFolder *object.Folder,
	childName string) (*object.Folder, error) {

	childFolder, err := findChildFolder(ctx, parentFolder, childName)
	if err != nil {
		return nil, err
	} else if childFolder == nil {
		return nil, fmt.Errorf("folder child %s not found under parent Folder %s: %w",
			childName, parentFolder.Reference().Value, ErrNotFound)
	}

	return childFolder, nil
}

// EnsureFolderPath returns the Folder at the end of the path of child folder
// names below parentFolder, creating the folders that do not exist. A folder
// that is created by someone else between the lookup and the create is
// used as is.
func EnsureFolderPath(
	ctx context.Context,
	parentFolder *object.Folder,
	childNames []string) (*object.Folder, error) {

	log := logr.FromContextOrDiscard(ctx)
	folder := parentFolder

	for _, name := range childNames {
		child, err := findChildFolder(ctx, folder, name)
		if err != nil {
			return nil, err
		}

		if child == nil {
			log.V(4).Info("Creating folder", "parent", folder.Reference().Value, "name", name)
			child, err = folder.CreateFolder(ctx, name)
			if err != nil {
				if !fault.Is(err, &vimtypes.DuplicateName{}) {
					return nil, err
				}
				if child, err = GetChildFolder(ctx, folder, name); err != nil {
					return nil, err
				}
			}
		}

		folder = child
	}

	return folder, nil
}

func findChildFolder(
	ctx context.Context,
	parentFolder *object.Folder,
	childName string) (*object.Folder, error) {

	objRef, err := object.NewSearchIndex(parentFolder.Client()).FindChild(ctx, parentFolder.Reference(), childName)
	if err != nil {
		return nil, err
	} else if objRef == nil {
		return nil, nil
	}

	folder, ok := objRef.(*object.Folder)
	if !ok {
		return nil, fmt.Errorf("Folder child %q is not Folder but a %T", childName, objRef) //nolint:staticcheck
	}

	return folder, nil
}
