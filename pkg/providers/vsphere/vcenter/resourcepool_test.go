// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/vcenter"
	"github.com/vmware-tanzu/vm-reconciler/test/builder"
)

func resourcePoolTests() {
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

	Context("GetResourcePoolByPath", func() {
		It("returns the cluster's top-level pool for the cluster name", func() {
			rp, err := vcenter.GetResourcePoolByPath(ctx, ctx.Finder, []string{"DC0_C0"})
			Expect(err).ToNot(HaveOccurred())
			Expect(rp.Reference()).To(Equal(ctx.ClusterRootPool().Reference()))
		})

		It("returns a nested pool", func() {
			child := ctx.CreateResourcePool("RP1")
			_, err := child.Create(ctx, "RP2", vimtypes.DefaultResourceConfigSpec())
			Expect(err).ToNot(HaveOccurred())

			rp, err := vcenter.GetResourcePoolByPath(ctx, ctx.Finder, []string{"DC0_C0", "RP1"})
			Expect(err).ToNot(HaveOccurred())
			Expect(rp.Reference()).To(Equal(child.Reference()))

			rp, err = vcenter.GetResourcePoolByPath(ctx, ctx.Finder, []string{"DC0_C0", "RP1", "RP2"})
			Expect(err).ToNot(HaveOccurred())
			Expect(rp).ToNot(BeNil())
		})

		It("returns ErrNotFound for a missing pool", func() {
			_, err := vcenter.GetResourcePoolByPath(ctx, ctx.Finder, []string{"DC0_C0", "bogus"})
			Expect(err).To(MatchError(vcenter.ErrNotFound))
		})

		It("returns an error for a missing compute resource", func() {
			_, err := vcenter.GetResourcePoolByPath(ctx, ctx.Finder, []string{"bogus"})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("GetDefaultResourcePool", func() {
		It("returns the cluster's top-level pool", func() {
			rp, err := vcenter.GetDefaultResourcePool(ctx, ctx.Finder)
			Expect(err).ToNot(HaveOccurred())
			Expect(rp.Reference()).To(Equal(ctx.ClusterRootPool().Reference()))
		})
	})

	Context("GetResourcePoolOwnerMoRef", func() {
		It("returns the cluster", func() {
			ref, err := vcenter.GetResourcePoolOwnerMoRef(ctx, ctx.VimClient, ctx.ClusterRootPool().Reference().Value)
			Expect(err).ToNot(HaveOccurred())
			Expect(ref).To(Equal(ctx.GetSingleClusterCompute().Reference()))
		})

		It("returns error when MoID does not exist", func() {
			_, err := vcenter.GetResourcePoolOwnerMoRef(ctx, ctx.VimClient, "bogus")
			Expect(err).To(HaveOccurred())
		})
	})
}
