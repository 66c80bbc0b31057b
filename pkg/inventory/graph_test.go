// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package inventory_test

import (
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
)

var _ = Describe("Graph", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture()
	})

	DescribeTable("machine paths",
		func(folders ...string) {
			vm := f.machine("vm1", f.folders(folders...), f.rp1)
			g := f.graph()

			expected := "/" + strings.Join(append(append([]string{"DC0", "vm"}, folders...), "vm1"), "/")
			Expect(g.Path(vm.Ref)).To(Equal(expected))

			got, ok := g.Machine(expected)
			Expect(ok).To(BeTrue())
			Expect(got.Ref).To(Equal(vm.Ref))

			Expect(slices.Equal(inventory.FolderSegments(expected), folders)).To(BeTrue())
		},
		Entry("no folders"),
		Entry("one folder", "f1"),
		Entry("two folders", "f1", "f2"),
		Entry("three folders", "f1", "f2", "f3"),
		Entry("four folders", "f1", "f2", "f3", "f4"),
	)

	It("normalizes the path given to Machine", func() {
		f.machine("vm1", f.folders("f1"), f.rp1)
		g := f.graph()

		_, ok := g.Machine("DC0/vm/f1/vm1/")
		Expect(ok).To(BeTrue())
		_, ok = g.Machine("/DC0/vm/vm1")
		Expect(ok).To(BeFalse())
	})

	It("returns the machine paths in sorted order", func() {
		f.machine("b", f.vmFolder, f.rp1)
		f.machine("a", f.vmFolder, f.rp1)
		Expect(f.graph().MachinePaths()).To(Equal([]string{"/DC0/vm/a", "/DC0/vm/b"}))
	})

	Context("ResourcePoolPath", func() {
		It("omits the implicit top-level pool", func() {
			g := f.graph()
			p, compute := g.ResourcePoolPath(f.rp1)
			Expect(p).To(Equal("/DC0_C0/RP1"))
			Expect(compute).ToNot(BeNil())
			Expect(compute.ObjectName()).To(Equal("DC0_C0"))

			p, _ = g.ResourcePoolPath(f.rootPool)
			Expect(p).To(Equal("/DC0_C0"))
		})
	})

	Context("WalkUntil", func() {
		It("stops on a cycle", func() {
			a := inventory.Ref{Type: "Folder", Value: "a"}
			b := inventory.Ref{Type: "Folder", Value: "b"}
			g := inventory.NewGraph([]inventory.Node{
				&inventory.Folder{Entity: inventory.Entity{Ref: a, Name: "a", Parent: &b}},
				&inventory.Folder{Entity: inventory.Entity{Ref: b, Name: "b", Parent: &a}},
			}, inventory.About{})

			chain, boundary := g.WalkUntil(a, inventory.IsRoot)
			Expect(chain).To(HaveLen(2))
			Expect(boundary).To(BeNil())
		})

		It("stops on a missing parent", func() {
			chain, boundary := f.graph().WalkUntil(
				inventory.Ref{Type: "Folder", Value: "missing"}, inventory.IsRoot)
			Expect(chain).To(BeEmpty())
			Expect(boundary).To(BeNil())
		})
	})

	Context("Datacenter", func() {
		It("returns the datacenter of a machine", func() {
			vm := f.machine("vm1", f.folders("f1", "f2"), f.rp1)
			dc, ok := f.graph().Datacenter(vm.Ref)
			Expect(ok).To(BeTrue())
			Expect(dc.ObjectName()).To(Equal("DC0"))
		})
	})
})
