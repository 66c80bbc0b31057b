// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package context

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
)

// MachineContext is the context used to reconcile one ResourceDescriptor.
type MachineContext struct {
	context.Context
	Logger logr.Logger

	// RunID identifies the reconcile in logs.
	RunID string

	Desc   v1alpha1.ResourceDescriptor
	Path   v1alpha1.MachinePath
	Cache  *inventory.Cache
	Result *v1alpha1.Result
}

func (m *MachineContext) String() string {
	return fmt.Sprintf("%s %s", m.Desc.EnsureOrDefault(), m.Desc.Path)
}

// AddChanges appends changes to the result.
func (m *MachineContext) AddChanges(changes ...v1alpha1.Change) {
	m.Result.Changes = append(m.Result.Changes, changes...)
}
