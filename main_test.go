// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/fake"
)

const testConfig = `vcenter:
  host: vcenter.example.com
  user: administrator@vsphere.local
  password: secret
  datacenter: DC0
  ssl: true
`

var _ = Describe("vmreconcile", func() {
	var (
		dir     string
		session *fake.Session
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		cmd     *cobra.Command
	)

	writeFile := func(name, content string) string {
		p := filepath.Join(dir, name)
		Expect(os.WriteFile(p, []byte(content), 0o600)).To(Succeed())
		return p
	}

	execute := func(args ...string) error {
		cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "vcenter.yaml")}, args...))
		return cmd.ExecuteContext(context.Background())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		writeFile("vcenter.yaml", testConfig)

		session = fake.NewSession()
		session.AddMachine("/DC0/vm/web", fake.MachineOptions{
			PowerState: "poweredOff",
			CPUs:       2,
			MemoryMB:   4096,
		})

		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		cmd = newRootCommand(stdout, stderr, func(pkgcfg.VCenter) providers.SessionFactory {
			return func(context.Context) (providers.Session, error) {
				return session, nil
			}
		})
	})

	Context("apply", func() {
		It("reconciles the descriptors and writes the results", func() {
			file := writeFile("machines.yaml", `machines:
- path: /DC0/vm/web
  ensure: running
`)
			Expect(execute("apply", "-f", file, "-o", "json")).To(Succeed())

			var results []v1alpha1.Result
			Expect(json.Unmarshal(stdout.Bytes(), &results)).To(Succeed())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Path).To(Equal("/DC0/vm/web"))
			Expect(results[0].Outcome).To(Equal(v1alpha1.OutcomeChanged))
			Expect(session.CallCount("PowerOn")).To(Equal(1))
		})

		It("fails when a descriptor fails", func() {
			file := writeFile("machines.yaml", `- path: /DC0/vm/missing
  ensure: running
`)
			err := execute("apply", "-f", file)
			Expect(err).To(MatchError(errFailed))
			Expect(stdout.String()).To(ContainSubstring("/DC0/vm/missing"))
			Expect(stderr.String()).To(ContainSubstring("1 of 1 machines failed to reconcile"))
		})

		It("rejects an invalid file without calling vCenter", func() {
			file := writeFile("machines.yaml", `- path: web
`)
			Expect(execute("apply", "-f", file)).ToNot(Succeed())
			Expect(session.Calls()).To(BeEmpty())
		})

		It("requires a file", func() {
			Expect(execute("apply")).ToNot(Succeed())
		})
	})

	Context("get", func() {
		It("writes the record of the machine", func() {
			Expect(execute("get", "/DC0/vm/web", "-o", "json")).To(Succeed())

			var records []v1alpha1.MachineRecord
			Expect(json.Unmarshal(stdout.Bytes(), &records)).To(Succeed())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Path).To(Equal("/DC0/vm/web"))
			Expect(records[0].CPUs).To(BeEquivalentTo(2))
			Expect(session.Closed()).To(BeTrue())
		})

		It("returns a not found error for a missing machine", func() {
			err := execute("get", "/DC0/vm/missing")
			Expect(pkgerr.IsNotFound(err)).To(BeTrue())
		})

		It("returns a user error for an invalid path", func() {
			err := execute("get", "web")
			Expect(pkgerr.IsUser(err)).To(BeTrue())
		})
	})

	Context("list", func() {
		It("lists the machines in the configured datacenter", func() {
			Expect(execute("list")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("/DC0/vm/web"))
			Expect(stdout.String()).To(ContainSubstring("PATH"))
		})

		It("reads the configuration from the command context", func() {
			Expect(execute("list")).To(Succeed())

			list, _, err := cmd.Find([]string{"list"})
			Expect(err).ToNot(HaveOccurred())
			config, ok := pkgcfg.FromContext(list.Context())
			Expect(ok).To(BeTrue())
			Expect(config.VCenter.Host).To(Equal("vcenter.example.com"))
			Expect(config.VCenter.Datacenter).To(Equal("DC0"))
		})

		It("writes the metrics textfile", func() {
			textfile := filepath.Join(dir, "vmreconcile.prom")
			Expect(execute("list", "DC0", "--metrics-textfile", textfile)).To(Succeed())
			Expect(textfile).To(BeAnExistingFile())
		})
	})

	It("rejects an unknown output format", func() {
		Expect(execute("list", "-o", "xml")).ToNot(Succeed())
	})
})

