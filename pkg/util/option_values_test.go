// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package util_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconciler/pkg/util"
)

var _ = Describe("OptionValues", func() {

	Context("OptionValuesFromMap", func() {
		It("should return nil for an empty map", func() {
			Ω(util.OptionValuesFromMap(nil)).Should(BeNil())
			Ω(util.OptionValuesFromMap(map[string]string{})).Should(BeNil())
		})
		It("should sort the elements by key", func() {
			Ω(util.OptionValuesFromMap(map[string]string{"b": "2", "a": "1"})).Should(Equal(util.OptionValues{
				&vimtypes.OptionValue{Key: "a", Value: "1"},
				&vimtypes.OptionValue{Key: "b", Value: "2"},
			}))
		})
	})

	Context("StringMap", func() {
		It("should stringify the values", func() {
			i := int32(3)
			ov := util.OptionValues{
				&vimtypes.OptionValue{Key: "a", Value: "1"},
				&vimtypes.OptionValue{Key: "b", Value: &i},
				&vimtypes.OptionValue{Key: "c", Value: true},
			}
			Ω(ov.StringMap()).Should(Equal(map[string]string{"a": "1", "b": "3", "c": "true"}))
		})
	})
})

var _ = Describe("ExtraConfigDiff", func() {

	DescribeTable("diff",
		func(current, desired, expected map[string]string) {
			diff := util.ExtraConfigDiff(current, desired)
			if expected == nil {
				Ω(diff).Should(BeNil())
				return
			}
			Ω(diff).Should(Equal(expected))
		},
		Entry("nothing desired", map[string]string{"a": "1"}, nil, nil),
		Entry("equal", map[string]string{"a": "1"}, map[string]string{"a": "1"}, nil),
		Entry("current is a superset",
			map[string]string{"a": "1", "b": "2"},
			map[string]string{"a": "1"},
			nil),
		Entry("missing key",
			map[string]string{"a": "1"},
			map[string]string{"a": "1", "b": "2"},
			map[string]string{"b": "2"}),
		Entry("different value",
			map[string]string{"a": "1", "b": "2"},
			map[string]string{"a": "3"},
			map[string]string{"a": "3"}),
		Entry("nothing current",
			nil,
			map[string]string{"a": "1"},
			map[string]string{"a": "1"}),
	)

	It("is in sync after the diff is merged", func() {
		current := map[string]string{"a": "1", "keep": "x"}
		desired := map[string]string{"a": "2", "b": "3"}
		for k, v := range util.ExtraConfigDiff(current, desired) {
			current[k] = v
		}
		Ω(util.ExtraConfigDiff(current, desired)).Should(BeEmpty())
		Ω(current).Should(HaveKeyWithValue("keep", "x"))
	})
})
