// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/virtualmachine"
)

var _ = DescribeTable("RegisterPath",
	func(datastore, folder string, template bool, expected string) {
		Expect(virtualmachine.RegisterPath(datastore, folder, template)).To(Equal(expected))
	},
	Entry("machine", "LocalDS_0", "web", false, "[LocalDS_0] web/web.vmx"),
	Entry("template", "LocalDS_0", "golden", true, "[LocalDS_0] golden/golden.vmtx"),
	Entry("nested folder", "LocalDS_0", "images/golden", true, "[LocalDS_0] images/golden/golden.vmtx"),
)
