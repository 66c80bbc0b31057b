// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"context"
	"crypto/tls"
	"strconv"

	. "github.com/onsi/gomega"

	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/simulator"
	"github.com/vmware/govmomi/vim25"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/client"
)

// TestContextForVCSim is used for tests that need a vC Sim instance. The
// inventory has one datacenter, DC0, with a single cluster, DC0_C0.
type TestContextForVCSim struct {
	context.Context

	Config     pkgcfg.VCenter
	Client     *client.Client
	VimClient  *vim25.Client
	Finder     *find.Finder
	Datacenter *object.Datacenter

	model  *simulator.Model
	server *simulator.Server

	singleCCR *object.ClusterComputeResource
}

// NewTestContextForVCSim returns a context with a running vC Sim instance and
// a logged in client.
func (s *TestSuite) NewTestContextForVCSim() *TestContextForVCSim {
	ctx := &TestContextForVCSim{
		Context: s.Context,
	}
	ctx.setupVCSim()
	return ctx
}

// AfterEach logs out and stops vC Sim.
func (c *TestContextForVCSim) AfterEach() {
	if c.Client != nil {
		_ = c.Client.Logout(c)
	}
	if c.server != nil {
		c.server.Close()
	}
	if c.model != nil {
		c.model.Remove()
	}
}

func (c *TestContextForVCSim) setupVCSim() {
	vcModel := simulator.VPX()
	// By Default, the Model being used by vcsim has two ResourcePools (one for the cluster
	// and host each). Setting Model.Host=0 ensures we only have one ResourcePool, making it
	// easier to pick the ResourcePool without having to look up using a hardcoded path.
	vcModel.Host = 0

	Expect(vcModel.Create()).To(Succeed())

	vcModel.Service.TLS = &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	c.model = vcModel
	c.server = c.model.Service.NewServer()

	port, err := strconv.Atoi(c.server.URL.Port())
	Expect(err).ToNot(HaveOccurred())
	password, _ := simulator.DefaultLogin.Password()

	c.Config = pkgcfg.VCenter{
		Host:       c.server.URL.Hostname(),
		Port:       port,
		User:       simulator.DefaultLogin.Username(),
		Password:   password,
		Datacenter: "DC0",
		Insecure:   true,
		SSL:        c.server.URL.Scheme == "https",
	}
	config := pkgcfg.FromContextOrDefault(c)
	config.VCenter = c.Config
	c.Context = pkgcfg.WithContext(c.Context, config)

	c.Client, err = client.NewClient(c, c.Config)
	Expect(err).ToNot(HaveOccurred())
	c.VimClient = c.Client.VimClient()

	c.Finder = find.NewFinder(c.VimClient)
	c.Datacenter, err = c.Finder.Datacenter(c, "/DC0")
	Expect(err).ToNot(HaveOccurred())
	c.Finder.SetDatacenter(c.Datacenter)

	ccrs, err := c.Finder.ClusterComputeResourceList(c, "*")
	Expect(err).ToNot(HaveOccurred())
	Expect(ccrs).To(HaveLen(1))
	c.singleCCR = ccrs[0]
}

// GetSingleClusterCompute returns the only cluster in the inventory.
func (c *TestContextForVCSim) GetSingleClusterCompute() *object.ClusterComputeResource {
	return c.singleCCR
}

// ClusterRootPool returns the cluster's top-level resource pool.
func (c *TestContextForVCSim) ClusterRootPool() *object.ResourcePool {
	rp, err := c.singleCCR.ResourcePool(c)
	Expect(err).ToNot(HaveOccurred())
	return rp
}

// CreateResourcePool creates a child of the cluster's top-level resource pool.
func (c *TestContextForVCSim) CreateResourcePool(name string) *object.ResourcePool {
	rp, err := c.ClusterRootPool().Create(c, name, vimtypes.DefaultResourceConfigSpec())
	Expect(err).ToNot(HaveOccurred())
	return rp
}

// GetFirstVM returns one of the machines created by vC Sim. Its
// InventoryPath is set.
func (c *TestContextForVCSim) GetFirstVM() *object.VirtualMachine {
	vms, err := c.Finder.VirtualMachineList(c, "*")
	Expect(err).ToNot(HaveOccurred())
	Expect(vms).ToNot(BeEmpty())
	return vms[0]
}

// GetVMFromMoID returns the machine with the given managed object ID.
func (c *TestContextForVCSim) GetVMFromMoID(moID string) *object.VirtualMachine {
	objRef, err := c.Finder.ObjectReference(c, vimtypes.ManagedObjectReference{
		Type:  "VirtualMachine",
		Value: moID,
	})
	if err != nil {
		return nil
	}

	vm, ok := objRef.(*object.VirtualMachine)
	Expect(ok).To(BeTrue())
	return vm
}
