// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
)

// MoRef returns the managed object reference for ref.
func MoRef(ref providers.Ref) vimtypes.ManagedObjectReference {
	return vimtypes.ManagedObjectReference{Type: ref.Type, Value: ref.Value}
}

// MoRefPtr returns a pointer to the managed object reference for ref, or nil
// for the empty reference.
func MoRefPtr(ref providers.Ref) *vimtypes.ManagedObjectReference {
	if ref.IsZero() {
		return nil
	}
	moRef := MoRef(ref)
	return &moRef
}

// Ref returns the reference for the managed object reference.
func Ref(moRef vimtypes.ManagedObjectReference) providers.Ref {
	return providers.Ref{Type: moRef.Type, Value: moRef.Value}
}

// RefPtr returns a pointer to the reference for moRef, or nil if moRef is
// nil.
func RefPtr(moRef *vimtypes.ManagedObjectReference) *providers.Ref {
	if moRef == nil {
		return nil
	}
	ref := Ref(*moRef)
	return &ref
}
