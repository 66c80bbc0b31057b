// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	vimtypes "github.com/vmware/govmomi/vim25/types"
	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/virtualmachine"
	"github.com/vmware-tanzu/vm-reconciler/pkg/util"
)

var _ = Describe("ConfigSpec", func() {

	It("returns an empty ConfigSpec for an empty change", func() {
		Expect(virtualmachine.ConfigSpec(providers.ConfigChange{})).To(Equal(vimtypes.VirtualMachineConfigSpec{}))
	})

	It("sets only the changed fields", func() {
		configSpec := virtualmachine.ConfigSpec(providers.ConfigChange{
			MemoryMB: ptr.To[int64](2048),
			ExtraConfig: map[string]string{
				"guestinfo.b": "2",
				"guestinfo.a": "1",
			},
		})
		Expect(configSpec.NumCPUs).To(BeZero())
		Expect(configSpec.MemoryMB).To(BeEquivalentTo(2048))
		Expect(configSpec.Annotation).To(BeEmpty())
		Expect(configSpec.ExtraConfig).To(HaveLen(2))
		Expect(util.OptionValues(configSpec.ExtraConfig).StringMap()).To(Equal(map[string]string{
			"guestinfo.a": "1",
			"guestinfo.b": "2",
		}))
	})

	It("sets the cpus and the annotation", func() {
		configSpec := virtualmachine.ConfigSpec(providers.ConfigChange{
			CPUs:       ptr.To[int32](4),
			Annotation: ptr.To("hello"),
		})
		Expect(configSpec.NumCPUs).To(BeEquivalentTo(4))
		Expect(configSpec.Annotation).To(Equal("hello"))
	})
})
