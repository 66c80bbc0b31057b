// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
)

// TestSuite is the parent of the test contexts created for a package's
// tests.
type TestSuite struct {
	context.Context
}

// NewTestSuite returns a new test suite.
func NewTestSuite() *TestSuite {
	return &TestSuite{
		Context: pkgcfg.WithContext(context.Background(), pkgcfg.Default()),
	}
}

// Register registers the suite's specs with ginkgo and runs them. The
// vcSimTestsFn describes the tests that need a vC Sim instance.
func (s *TestSuite) Register(t *testing.T, name string, vcSimTestsFn func()) {
	RegisterFailHandler(Fail)

	if vcSimTestsFn != nil {
		Describe("vC Sim tests", vcSimTestsFn)
	}

	RunSpecs(t, name)
}

// BeforeSuite sends the logs to the ginkgo writer.
func (s *TestSuite) BeforeSuite() {
	pkglog.SetDefault(pkglog.New(GinkgoWriter, 4))
}

// AfterSuite is a no-op kept so suites have a symmetric setup.
func (s *TestSuite) AfterSuite() {
}
