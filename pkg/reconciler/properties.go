// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"fmt"
	"sort"
	"strconv"

	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/util"
)

const (
	PropertyCPUs         = "cpus"
	PropertyMemory       = "memory"
	PropertyAnnotation   = "annotation"
	PropertyExtraConfig  = "extra_config"
	PropertyEnsure       = "ensure"
	PropertyResourcePool = "resource_pool"
	PropertyCommand      = "create_command"
)

// Diff returns the mutable properties of the descriptor that differ from the
// record. Only the differing properties are set. Extra config keys that exist
// only on the machine are ignored.
func Diff(d v1alpha1.ResourceDescriptor, r v1alpha1.MachineRecord) providers.ConfigChange {
	var c providers.ConfigChange
	if d.CPUs != nil && *d.CPUs != r.CPUs {
		c.CPUs = ptr.To(*d.CPUs)
	}
	if d.Memory != nil && *d.Memory != r.Memory {
		c.MemoryMB = ptr.To(*d.Memory)
	}
	if d.Annotation != nil && *d.Annotation != r.Annotation {
		c.Annotation = ptr.To(*d.Annotation)
	}
	c.ExtraConfig = util.ExtraConfigDiff(r.ExtraConfig, d.ExtraConfig)
	return c
}

// Overrides returns every mutable property set by the descriptor. They are
// applied to a clone as part of the clone task.
func Overrides(d v1alpha1.ResourceDescriptor) providers.ConfigChange {
	c := providers.ConfigChange{
		CPUs:       d.CPUs,
		MemoryMB:   d.Memory,
		Annotation: d.Annotation,
	}
	if len(d.ExtraConfig) > 0 {
		c.ExtraConfig = d.ExtraConfig
	}
	return c.DeepCopy()
}

// Changes describes a change to the record.
func Changes(c providers.ConfigChange, r v1alpha1.MachineRecord, action string) []v1alpha1.Change {
	var out []v1alpha1.Change
	if c.CPUs != nil {
		out = append(out, v1alpha1.Change{
			Property: PropertyCPUs,
			From:     strconv.Itoa(int(r.CPUs)),
			To:       strconv.Itoa(int(*c.CPUs)),
			Action:   action,
		})
	}
	if c.MemoryMB != nil {
		out = append(out, v1alpha1.Change{
			Property: PropertyMemory,
			From:     strconv.FormatInt(r.Memory, 10),
			To:       strconv.FormatInt(*c.MemoryMB, 10),
			Action:   action,
		})
	}
	if c.Annotation != nil {
		out = append(out, v1alpha1.Change{
			Property: PropertyAnnotation,
			From:     r.Annotation,
			To:       *c.Annotation,
			Action:   action,
		})
	}
	keys := make([]string, 0, len(c.ExtraConfig))
	for k := range c.ExtraConfig {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, v1alpha1.Change{
			Property: fmt.Sprintf("%s.%s", PropertyExtraConfig, k),
			From:     r.ExtraConfig[k],
			To:       c.ExtraConfig[k],
			Action:   action,
		})
	}
	return out
}
