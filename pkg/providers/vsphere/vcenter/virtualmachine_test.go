// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/vcenter"
	"github.com/vmware-tanzu/vm-reconciler/test/builder"
)

func virtualMachineTests() {
	var (
		ctx *builder.TestContextForVCSim
	)

	BeforeEach(func() {
		ctx = suite.NewTestContextForVCSim()
	})

	AfterEach(func() {
		ctx.AfterEach()
		ctx = nil
	})

	Context("FindVirtualMachineByPath", func() {
		It("returns the VM at the path", func() {
			expected := ctx.GetFirstVM()

			vm, err := vcenter.FindVirtualMachineByPath(ctx, ctx.VimClient, expected.InventoryPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(vm).ToNot(BeNil())
			Expect(vm.Reference()).To(Equal(expected.Reference()))
		})

		It("returns nil when nothing is at the path", func() {
			vm, err := vcenter.FindVirtualMachineByPath(ctx, ctx.VimClient, "/DC0/vm/bogus")
			Expect(err).ToNot(HaveOccurred())
			Expect(vm).To(BeNil())
		})

		It("returns nil when the object at the path is not a VM", func() {
			vm, err := vcenter.FindVirtualMachineByPath(ctx, ctx.VimClient, "/DC0/vm")
			Expect(err).ToNot(HaveOccurred())
			Expect(vm).To(BeNil())
		})
	})
}
