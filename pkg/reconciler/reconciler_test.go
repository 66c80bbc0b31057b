// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package reconciler_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/fake"
	"github.com/vmware-tanzu/vm-reconciler/pkg/reconciler"
	"github.com/vmware-tanzu/vm-reconciler/pkg/retry"
)

const (
	templatePath = "/DC0/vm/eng/templates/base"
	machinePath  = "/DC0/vm/eng/x"
)

func testOptions() reconciler.Options {
	policy := retry.Policy{
		MaxAttempts:           3,
		NotConfiguredAttempts: 3,
		Factor:                2,
	}
	return reconciler.Options{
		Retry:      policy,
		GuestRetry: policy,
	}
}

func transient(op string) error {
	return pkgerr.New(pkgerr.KindTransient, op, errors.New("HostCommunication"))
}

// lastArg returns the argument of the last call of op.
func lastArg(session *fake.Session, op string) any {
	calls := session.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Op == op {
			return calls[i].Arg
		}
	}
	return nil
}

var _ = Describe("Reconciler", func() {
	var (
		ctx     context.Context
		session *fake.Session
		r       *reconciler.Reconciler
		desc    v1alpha1.ResourceDescriptor
		result  v1alpha1.Result
	)

	BeforeEach(func() {
		ctx = context.Background()
		session = fake.NewSession()
		session.AddMachine(templatePath, fake.MachineOptions{
			Template:    true,
			CPUs:        1,
			MemoryMB:    512,
			ExtraConfig: map[string]string{"guestinfo.base": "1"},
		})
		desc = v1alpha1.ResourceDescriptor{
			Path:   machinePath,
			Source: templatePath,
		}
	})

	JustBeforeEach(func() {
		r = reconciler.New(session, testOptions())
		result = r.Reconcile(ctx, desc)
	})

	Context("a machine is created", func() {
		BeforeEach(func() {
			desc.Ensure = v1alpha1.EnsureRunning
			desc.CPUs = ptr.To[int32](2)
			desc.Memory = ptr.To[int64](1024)
		})

		It("clones the source with power on", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(result.Outcome).To(Equal(v1alpha1.OutcomeChanged))
			Expect(session.Ops()).To(Equal([]string{"Clone"}))

			args := lastArg(session, "Clone").(providers.CloneArgs)
			Expect(args.PowerOn).To(BeTrue())
			Expect(args.Name).To(Equal("x"))
			Expect(args.Config.CPUs).To(Equal(ptr.To[int32](2)))
			Expect(args.Config.MemoryMB).To(Equal(ptr.To[int64](1024)))

			Expect(result.Snapshot).ToNot(BeNil())
			Expect(result.Snapshot.Path).To(Equal(machinePath))
			Expect(result.Snapshot.CPUs).To(BeEquivalentTo(2))
			Expect(result.Snapshot.Memory).To(BeEquivalentTo(1024))
			Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateRunning))
			Expect(result.Snapshot.ExtraConfig).To(HaveKeyWithValue("guestinfo.base", "1"))
		})

		It("is idempotent", func() {
			ops := session.Ops()

			again := r.Reconcile(ctx, desc)
			Expect(again.Err).ToNot(HaveOccurred())
			Expect(again.Outcome).To(Equal(v1alpha1.OutcomeUnchanged))
			Expect(again.Changes).To(BeEmpty())
			Expect(session.Ops()).To(Equal(ops))

			// A new run also issues no changes.
			again = reconciler.New(session, testOptions()).Reconcile(ctx, desc)
			Expect(again.Outcome).To(Equal(v1alpha1.OutcomeUnchanged))
			Expect(session.Ops()).To(Equal(ops))
		})

		It("reads the inventory again on the next reconcile", func() {
			vm, ok := session.Machine(machinePath)
			Expect(ok).To(BeTrue())
			Expect(session.PowerOff(ctx, vm.Ref)).To(Succeed())

			again := r.Reconcile(ctx, desc)
			Expect(again.Err).ToNot(HaveOccurred())
			Expect(again.Outcome).To(Equal(v1alpha1.OutcomeChanged))
			Expect(session.CallCount("PowerOn")).To(Equal(1))
			Expect(again.Snapshot.State).To(Equal(v1alpha1.MachineStateRunning))

			vm, _ = session.Machine(machinePath)
			Expect(vm.PowerState).To(Equal("poweredOn"))
		})

		When("the folder does not exist", func() {
			BeforeEach(func() {
				desc.Path = "/DC0/vm/eng/new/nested/x"
			})
			It("creates the folders", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(session.Ops()).To(Equal([]string{"EnsureFolderPath", "Clone"}))
				Expect(result.Snapshot.Folder).To(Equal([]string{"eng", "new", "nested"}))
			})
		})

		When("the desired state is stopped", func() {
			BeforeEach(func() {
				desc.Ensure = v1alpha1.EnsureStopped
			})
			It("clones the source without power on", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(lastArg(session, "Clone").(providers.CloneArgs).PowerOn).To(BeFalse())
				Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateStopped))
			})
		})

		When("the clone is a linked clone", func() {
			BeforeEach(func() {
				desc.LinkedClone = true
			})
			It("adds a delta disk layer to the source first", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(session.Ops()).To(Equal([]string{"AddDeltaDiskLayer", "Clone"}))
				Expect(lastArg(session, "Clone").(providers.CloneArgs).Linked).To(BeTrue())
			})
		})

		When("the customization spec does not exist", func() {
			BeforeEach(func() {
				desc.CustomizationSpec = "linux"
			})
			It("reports an error", func() {
				Expect(result.Outcome).To(Equal(v1alpha1.OutcomeFailed))
				Expect(pkgerr.IsNotFound(result.Err)).To(BeTrue())
				Expect(result.Error).To(ContainSubstring(`customization spec "linux" not found`))
				Expect(result.Snapshot).To(BeNil())
			})
		})

		When("the customization spec exists", func() {
			BeforeEach(func() {
				desc.CustomizationSpec = "linux"
				session.AddCustomizationSpec("linux")
			})
			It("uses it", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(lastArg(session, "Clone").(providers.CloneArgs).CustomizationSpec).To(Equal("linux"))
			})
		})

		When("the source does not exist", func() {
			BeforeEach(func() {
				desc.Source = "/DC0/vm/missing"
			})
			It("reports an error", func() {
				Expect(pkgerr.IsNotFound(result.Err)).To(BeTrue())
				Expect(result.ErrorKind).To(Equal("NotFound"))
				Expect(session.CallCount("FindMachine")).To(Equal(1))
				Expect(session.Ops()).ToNot(ContainElement("Clone"))
			})
		})

		When("the machine does not expose its configuration in time", func() {
			BeforeEach(func() {
				session.SetNotConfiguredOnCreate(100)
			})
			It("reports the machine as still booting", func() {
				Expect(pkgerr.IsStillBooting(result.Err)).To(BeTrue())
				Expect(result.ErrorKind).To(Equal("StillBooting"))
			})
		})

		When("the machine exposes its configuration after a while", func() {
			BeforeEach(func() {
				session.SetNotConfiguredOnCreate(2)
			})
			It("succeeds", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateRunning))
			})
		})

		When("the clone fails with a fault that is not retried", func() {
			BeforeEach(func() {
				session.InjectFault("Clone", pkgerr.New(pkgerr.KindInternal, "clone", errors.New("InvalidArgument: spec.location")))
			})
			It("reports an internal error", func() {
				Expect(pkgerr.IsInternal(result.Err)).To(BeTrue())
				Expect(result.Error).To(ContainSubstring("InvalidArgument: spec.location"))
				Expect(session.CallCount("Clone")).To(Equal(1))
			})
		})
	})

	Context("a running machine has drift", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{
				PowerState: "poweredOn",
				CPUs:       1,
				MemoryMB:   512,
			})
			desc.CPUs = ptr.To[int32](2)
			desc.Memory = ptr.To[int64](1024)
		})

		It("power cycles the machine around one reconfigure", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(session.Ops()).To(Equal([]string{"PowerOff", "Reconfigure", "PowerOn"}))
			Expect(lastArg(session, "Reconfigure")).To(Equal(providers.ConfigChange{
				CPUs:     ptr.To[int32](2),
				MemoryMB: ptr.To[int64](1024),
			}))
			Expect(result.ChangedProperties()).To(Equal([]string{"cpus", "memory"}))
			Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateRunning))
			Expect(result.Snapshot.CPUs).To(BeEquivalentTo(2))
			Expect(result.Snapshot.Memory).To(BeEquivalentTo(1024))
		})

		When("only the memory differs", func() {
			BeforeEach(func() {
				desc.CPUs = ptr.To[int32](1)
			})
			It("reconfigures only the memory", func() {
				Expect(lastArg(session, "Reconfigure")).To(Equal(providers.ConfigChange{
					MemoryMB: ptr.To[int64](1024),
				}))
			})
		})

		When("the reconfigure fails", func() {
			BeforeEach(func() {
				session.InjectFault("Reconfigure", pkgerr.Userf("", "invalid memory size"))
			})
			It("powers the machine back on", func() {
				Expect(pkgerr.IsUser(result.Err)).To(BeTrue())
				Expect(session.Ops()).To(Equal([]string{"PowerOff", "Reconfigure", "PowerOn"}))
				m, _ := session.Machine(machinePath)
				Expect(m.PowerState).To(Equal("poweredOn"))
			})
		})
	})

	Context("a stopped machine has drift and must run", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{})
			desc.Ensure = v1alpha1.EnsureRunning
			desc.Annotation = ptr.To("hello")
			desc.ExtraConfig = map[string]string{"guestinfo.a": "1"}
		})
		It("reconfigures the machine before powering it on", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(session.Ops()).To(Equal([]string{"Reconfigure", "PowerOn"}))
			Expect(result.Snapshot.Annotation).To(Equal("hello"))
			Expect(result.ChangedProperties()).To(ConsistOf("annotation", "extra_config.guestinfo.a", "ensure"))
		})
	})

	Context("a machine has extra config that is not described", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{
				ExtraConfig: map[string]string{"guestinfo.a": "1", "guestinfo.b": "2"},
			})
			desc.ExtraConfig = map[string]string{"guestinfo.a": "1"}
		})
		It("is in sync", func() {
			Expect(result.Outcome).To(Equal(v1alpha1.OutcomeUnchanged))
			Expect(session.Ops()).To(BeEmpty())
		})
	})

	Context("a running machine is suspended and then reset", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{PowerState: "poweredOn"})
			desc.Ensure = v1alpha1.EnsureSuspended
		})
		It("suspends the machine and then powers it on", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(session.Ops()).To(Equal([]string{"Suspend"}))
			Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateSuspended))

			desc.Ensure = v1alpha1.EnsureReset
			result = r.Reconcile(ctx, desc)
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(session.Ops()).To(Equal([]string{"Suspend", "PowerOn"}))
			Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateRunning))

			result = r.Reconcile(ctx, desc)
			Expect(session.Ops()).To(Equal([]string{"Suspend", "PowerOn", "Reset"}))
			Expect(result.Outcome).To(Equal(v1alpha1.OutcomeChanged))
		})
	})

	Context("a suspended machine has drift", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{PowerState: "suspended"})
			desc.CPUs = ptr.To[int32](4)
		})
		It("reports an error", func() {
			Expect(pkgerr.IsUser(result.Err)).To(BeTrue())
			Expect(session.Ops()).To(BeEmpty())
		})
	})

	Context("a template has drift", func() {
		BeforeEach(func() {
			desc.Path = templatePath
			desc.Source = ""
			desc.Template = true
			desc.Annotation = ptr.To("changed")
		})
		It("reports an error", func() {
			Expect(pkgerr.IsUser(result.Err)).To(BeTrue())
			Expect(result.Error).To(ContainSubstring("template"))
			Expect(session.Ops()).To(BeEmpty())
		})
	})

	Context("a machine is removed", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{PowerState: "poweredOn"})
			desc.Ensure = v1alpha1.EnsureAbsent
		})

		It("powers off and destroys the machine", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(session.Ops()).To(Equal([]string{"PowerOff", "Destroy"}))
			Expect(result.Snapshot).To(BeNil())
			_, ok := session.Machine(machinePath)
			Expect(ok).To(BeFalse())
		})

		When("delete_from_disk is false", func() {
			BeforeEach(func() {
				desc.DeleteFromDisk = ptr.To(false)
			})
			It("unregisters the machine", func() {
				Expect(session.Ops()).To(Equal([]string{"PowerOff", "Unregister"}))
			})
		})

		When("the desired state is unregistered", func() {
			BeforeEach(func() {
				desc.Ensure = v1alpha1.EnsureUnregistered
			})
			It("unregisters the machine", func() {
				Expect(session.Ops()).To(Equal([]string{"PowerOff", "Unregister"}))
			})
		})

		When("the power state is not recognized", func() {
			BeforeEach(func() {
				desc.Path = "/DC0/vm/eng/standby"
				session.AddMachine(desc.Path, fake.MachineOptions{PowerState: "standby"})
			})
			It("destroys the machine without a power operation", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(result.Outcome).To(Equal(v1alpha1.OutcomeChanged))
				Expect(session.Ops()).To(Equal([]string{"Destroy"}))
				_, ok := session.Machine(desc.Path)
				Expect(ok).To(BeFalse())
			})
		})

		When("the machine is already absent", func() {
			BeforeEach(func() {
				desc.Path = "/DC0/vm/eng/other"
			})
			It("does nothing", func() {
				Expect(result.Outcome).To(Equal(v1alpha1.OutcomeUnchanged))
				Expect(session.Ops()).To(BeEmpty())
			})
		})
	})

	Context("a machine is registered from a datastore folder", func() {
		BeforeEach(func() {
			session.AddDatastoreFolder(fake.Datastore1, "web", fake.MachineOptions{CPUs: 1, MemoryMB: 512})
			desc.Source = "web"
			desc.SourceType = v1alpha1.SourceTypeFolder
			desc.Datastore = fake.Datastore1
			desc.CPUs = ptr.To[int32](2)
		})

		It("registers, reconfigures, and powers on the machine", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(session.Ops()).To(Equal([]string{"Register", "Reconfigure", "PowerOn"}))
			args := lastArg(session, "Register").(providers.RegisterArgs)
			Expect(args.SourceFolder).To(Equal("web"))
			Expect(args.Placement.DatastoreName).To(Equal(fake.Datastore1))
			Expect(args.Placement.Host).To(BeNil())
			Expect(result.Snapshot.CPUs).To(BeEquivalentTo(2))
			Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateRunning))
		})

		When("the datastore is not described", func() {
			BeforeEach(func() {
				session.AddDatastoreFolder(fake.Datastore0, "web", fake.MachineOptions{CPUs: 1, MemoryMB: 512})
				desc.Datastore = ""
			})
			It("registers the machine from the first datastore", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(session.Ops()).To(Equal([]string{"Register", "Reconfigure", "PowerOn"}))
				args := lastArg(session, "Register").(providers.RegisterArgs)
				Expect(args.Placement.DatastoreName).To(Equal(fake.Datastore0))
			})
		})

		When("the machine is a template", func() {
			BeforeEach(func() {
				desc.Template = true
				desc.CPUs = nil
			})
			It("registers the template on a host", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(session.Ops()).To(Equal([]string{"Register"}))
				Expect(lastArg(session, "Register").(providers.RegisterArgs).Placement.Host).ToNot(BeNil())
				Expect(result.Snapshot.State).To(Equal(v1alpha1.MachineStateTemplate))
			})
		})
	})

	Context("a machine is in another resource pool", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{})
			desc.ResourcePool = fake.ChildPool
		})
		It("relocates the machine", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(session.Ops()).To(Equal([]string{"Relocate"}))
			Expect(result.Changes).To(Equal([]v1alpha1.Change{{
				Property: "resource_pool",
				From:     fake.RootPool,
				To:       fake.ChildPool,
				Action:   "relocate",
			}}))
			Expect(result.Snapshot.ResourcePool).To(Equal(fake.ChildPool))
		})
	})

	Context("a power operation fails with transient faults", func() {
		BeforeEach(func() {
			session.AddMachine(machinePath, fake.MachineOptions{})
			desc.Ensure = v1alpha1.EnsureRunning
		})

		When("it fails fewer times than the maximum", func() {
			BeforeEach(func() {
				session.InjectFault("PowerOn", transient("powerOn"), transient("powerOn"))
			})
			It("succeeds", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(session.CallCount("PowerOn")).To(Equal(3))
			})
		})

		When("it fails as many times as the maximum", func() {
			BeforeEach(func() {
				session.InjectFault("PowerOn", transient("powerOn"), transient("powerOn"), transient("powerOn"))
			})
			It("reports the attempts", func() {
				Expect(pkgerr.IsExhausted(result.Err)).To(BeTrue())
				Expect(result.Error).To(HavePrefix("powerOn " + machinePath + " failed after 3 attempts"))
				Expect(session.CallCount("PowerOn")).To(Equal(3))
			})
		})
	})

	Context("a read-only property is described", func() {
		BeforeEach(func() {
			desc.UUID = ptr.To("42")
		})
		It("reports an error without calling vCenter", func() {
			Expect(pkgerr.IsUser(result.Err)).To(BeTrue())
			Expect(result.Error).To(ContainSubstring("uuid is read-only"))
			Expect(session.Calls()).To(BeEmpty())
		})
	})

	Context("a template describes hardware and placement", func() {
		BeforeEach(func() {
			desc.Template = true
			desc.CPUs = ptr.To[int32](4)
			desc.Memory = ptr.To[int64](2048)
			desc.ResourcePool = "/DC0_C0/RP1"
		})
		It("reports an error without calling vCenter", func() {
			Expect(pkgerr.IsUser(result.Err)).To(BeTrue())
			Expect(result.Error).To(ContainSubstring("cpus is not allowed for a template"))
			Expect(result.Error).To(ContainSubstring("resource_pool is not allowed for a template"))
			Expect(session.Calls()).To(BeEmpty())
		})
	})

	Context("the path is invalid", func() {
		BeforeEach(func() {
			desc.Path = "/DC0/x"
		})
		It("reports an error without calling vCenter", func() {
			Expect(pkgerr.IsUser(result.Err)).To(BeTrue())
			Expect(session.Calls()).To(BeEmpty())
		})
	})

	Context("a create command is described", func() {
		BeforeEach(func() {
			desc.CreateCommand = &v1alpha1.CreateCommand{
				Command:   "/bin/touch",
				Arguments: "/tmp/created",
				User:      fake.GuestUser,
				Password:  fake.GuestPasswd,
			}
		})

		It("starts the command in the guest", func() {
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(result.Process).ToNot(BeNil())
			Expect(result.Process.PID).To(BeNumerically(">", 0))
			Expect(result.Process.Name).To(Equal("/bin/touch"))
			Expect(result.Process.StartTime).ToNot(BeNil())
			Expect(result.ChangedProperties()).To(ContainElement("create_command"))
			program := lastArg(session, "StartGuestProgram").(providers.GuestProgram)
			Expect(program.WorkingDirectory).To(Equal("/"))
		})

		When("the guest agent is not ready at first", func() {
			BeforeEach(func() {
				session.InjectFault("StartGuestProgram", transient("startGuestProgram"))
			})
			It("retries", func() {
				Expect(result.Err).ToNot(HaveOccurred())
				Expect(session.CallCount("StartGuestProgram")).To(Equal(2))
			})
		})

		When("the credentials are invalid", func() {
			BeforeEach(func() {
				desc.CreateCommand.Password = "wrong"
			})
			It("reports a guest error without retrying", func() {
				Expect(pkgerr.IsGuest(result.Err)).To(BeTrue())
				Expect(result.Error).To(ContainSubstring("the guest credentials are invalid"))
				Expect(session.CallCount("ValidateGuestCredentials")).To(Equal(1))
				Expect(session.CallCount("StartGuestProgram")).To(BeZero())
			})
		})

		When("the guest tools are out of date", func() {
			BeforeEach(func() {
				session.InjectFault("StartGuestProgram", &pkgerr.Error{
					Kind:  pkgerr.KindGuest,
					Guest: pkgerr.GuestReasonToolsOutOfDate,
				})
			})
			It("reports a guest error", func() {
				Expect(pkgerr.IsGuest(result.Err)).To(BeTrue())
				Expect(result.Error).To(ContainSubstring("VMware Tools in the guest are out of date"))
			})
		})
	})
})

var _ = Describe("Reconciler reads", func() {
	var (
		ctx     context.Context
		session *fake.Session
		r       *reconciler.Reconciler
	)

	BeforeEach(func() {
		ctx = context.Background()
		session = fake.NewSession()
		session.AddMachine("/DC0/vm/a", fake.MachineOptions{PowerState: "poweredOn"})
		session.AddMachine("/DC0/vm/f/b", fake.MachineOptions{})
		r = reconciler.New(session, testOptions())
	})

	It("gets one machine", func() {
		rec, err := r.Get(ctx, "/DC0/vm/a")
		Expect(err).ToNot(HaveOccurred())
		Expect(rec.State).To(Equal(v1alpha1.MachineStateRunning))
		Expect(rec.VCenterVersion).To(Equal(ptr.To("8.0.2")))

		rec, err = r.Get(ctx, "/DC0/vm/c")
		Expect(err).ToNot(HaveOccurred())
		Expect(rec).To(BeNil())
	})

	It("lists the machines of a datacenter", func() {
		records, err := r.List(ctx, fake.Datacenter)
		Expect(err).ToNot(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Path).To(Equal("/DC0/vm/a"))
		Expect(records[1].Path).To(Equal("/DC0/vm/f/b"))
		Expect(session.CallCount("BulkQuery")).To(Equal(1))
	})

	It("reports the DRS behavior of the machines", func() {
		session.SetDRS("fullyAutomated", nil)
		rec, err := r.Get(ctx, "/DC0/vm/a")
		Expect(err).ToNot(HaveOccurred())
		Expect(rec.DRSBehavior).To(Equal(ptr.To("fullyAutomated")))
		Expect(rec.ResourcePool).To(Equal(fake.RootPool))
	})
})
