// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vsphere

import (
	"context"
	"strings"

	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	vcclient "github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/client"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/internal"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/vcenter"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/virtualmachine"
	vmutil "github.com/vmware-tanzu/vm-reconciler/pkg/util/vsphere/vm"
)

// Session is a providers.Session backed by a govmomi client.
type Session struct {
	client    *vcclient.Client
	vimClient *vim25.Client
}

var _ providers.Session = &Session{}

// NewSession logs into the vCenter server described by config.
func NewSession(ctx context.Context, config pkgcfg.VCenter) (*Session, error) {
	c, err := vcclient.NewClient(ctx, config)
	if err != nil {
		return nil, translate("login", err)
	}
	return NewSessionFromClient(c), nil
}

// NewSessionFromClient returns a session that uses an existing client.
func NewSessionFromClient(c *vcclient.Client) *Session {
	return &Session{
		client:    c,
		vimClient: c.VimClient(),
	}
}

// NewSessionFactory returns a factory that logs into a new session each time
// it is called.
func NewSessionFactory(config pkgcfg.VCenter) providers.SessionFactory {
	return func(ctx context.Context) (providers.Session, error) {
		return NewSession(ctx, config)
	}
}

func (s *Session) About() inventory.About {
	return s.client.About()
}

func (s *Session) Close(ctx context.Context) error {
	return translate("logout", s.client.Logout(ctx))
}

func (s *Session) vm(ref providers.Ref) *object.VirtualMachine {
	return object.NewVirtualMachine(s.vimClient, internal.MoRef(ref))
}

func (s *Session) FindMachine(
	ctx context.Context,
	path string) (providers.Ref, bool, error) {

	vcVM, err := vcenter.FindVirtualMachineByPath(ctx, s.vimClient, path)
	if err != nil {
		return providers.Ref{}, false, translate("findMachine", err)
	}
	if vcVM == nil {
		return providers.Ref{}, false, nil
	}
	return internal.Ref(vcVM.Reference()), true, nil
}

// datacenterFinder returns a finder scoped to the datacenter.
func (s *Session) datacenterFinder(
	ctx context.Context,
	datacenter string) (*find.Finder, *object.Datacenter, error) {

	finder := find.NewFinder(s.vimClient)
	dc, err := finder.Datacenter(ctx, datacenter)
	if err != nil {
		return nil, nil, err
	}
	finder.SetDatacenter(dc)
	return finder, dc, nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func (s *Session) ResolvePlacement(
	ctx context.Context,
	args providers.PlacementArgs) (providers.Placement, error) {

	placement, err := s.resolvePlacement(ctx, args)
	return placement, translate("resolvePlacement", err)
}

func (s *Session) resolvePlacement(
	ctx context.Context,
	args providers.PlacementArgs) (providers.Placement, error) {

	finder, _, err := s.datacenterFinder(ctx, args.Datacenter)
	if err != nil {
		return providers.Placement{}, err
	}

	var rp *object.ResourcePool
	if segments := splitPath(args.ResourcePool); len(segments) > 0 {
		rp, err = vcenter.GetResourcePoolByPath(ctx, finder, segments)
	} else {
		rp, err = vcenter.GetDefaultResourcePool(ctx, finder)
	}
	if err != nil {
		return providers.Placement{}, err
	}

	ds, err := vcenter.GetDatastore(ctx, finder, rp, args.Datastore)
	if err != nil {
		return providers.Placement{}, err
	}

	placement := providers.Placement{
		ResourcePool:  internal.Ref(rp.Reference()),
		Datastore:     internal.Ref(ds.Reference()),
		DatastoreName: ds.Name(),
	}

	if args.Template {
		host, err := vcenter.GetResourcePoolOwnerHost(ctx, rp)
		if err != nil {
			return providers.Placement{}, err
		}
		hostRef := internal.Ref(host.Reference())
		placement.Host = &hostRef
	}

	pkglog.FromContextOrDefault(ctx).V(4).Info("Resolved placement",
		"resourcePool", rp.InventoryPath,
		"datastore", placement.DatastoreName,
		"host", placement.Host)

	return placement, nil
}

func (s *Session) EnsureFolderPath(
	ctx context.Context,
	datacenter string,
	segments []string) (providers.Ref, error) {

	ref, err := s.ensureFolderPath(ctx, datacenter, segments)
	return ref, translate("ensureFolderPath", err)
}

func (s *Session) ensureFolderPath(
	ctx context.Context,
	datacenter string,
	segments []string) (providers.Ref, error) {

	_, dc, err := s.datacenterFinder(ctx, datacenter)
	if err != nil {
		return providers.Ref{}, err
	}
	folders, err := dc.Folders(ctx)
	if err != nil {
		return providers.Ref{}, err
	}
	folder, err := vcenter.EnsureFolderPath(ctx, folders.VmFolder, segments)
	if err != nil {
		return providers.Ref{}, err
	}
	return internal.Ref(folder.Reference()), nil
}

func (s *Session) Clone(
	ctx context.Context,
	args providers.CloneArgs) (providers.Ref, error) {

	moRef, err := virtualmachine.CloneVM(ctx, s.vimClient, args)
	if err != nil {
		return providers.Ref{}, translate("clone", err)
	}
	return internal.Ref(moRef), nil
}

func (s *Session) Register(
	ctx context.Context,
	args providers.RegisterArgs) (providers.Ref, error) {

	moRef, err := virtualmachine.RegisterVM(ctx, s.vimClient, args)
	if err != nil {
		return providers.Ref{}, translate("register", err)
	}
	return internal.Ref(moRef), nil
}

func (s *Session) Reconfigure(
	ctx context.Context,
	ref providers.Ref,
	change providers.ConfigChange) error {

	configSpec := virtualmachine.ConfigSpec(change)
	return translate("reconfigure", virtualmachine.Reconfigure(ctx, s.vm(ref), configSpec))
}

func (s *Session) setPowerState(
	ctx context.Context,
	op string,
	ref providers.Ref,
	desired vimtypes.VirtualMachinePowerState) error {

	result, err := vmutil.SetAndWaitOnPowerState(ctx, s.vm(ref), desired)
	if err != nil {
		return translate(op, err)
	}
	pkglog.FromContextOrDefault(ctx).V(4).Info("Set power state",
		"ref", ref, "powerState", desired, "changed", result.AnyChange())
	return nil
}

func (s *Session) PowerOn(ctx context.Context, ref providers.Ref) error {
	return s.setPowerState(ctx, "powerOn", ref, vimtypes.VirtualMachinePowerStatePoweredOn)
}

func (s *Session) PowerOff(ctx context.Context, ref providers.Ref) error {
	return s.setPowerState(ctx, "powerOff", ref, vimtypes.VirtualMachinePowerStatePoweredOff)
}

func (s *Session) Suspend(ctx context.Context, ref providers.Ref) error {
	return s.setPowerState(ctx, "suspend", ref, vimtypes.VirtualMachinePowerStateSuspended)
}

func (s *Session) Reset(ctx context.Context, ref providers.Ref) error {
	return translate("reset", vmutil.ResetAndWait(ctx, s.vm(ref)))
}

func (s *Session) Unregister(ctx context.Context, ref providers.Ref) error {
	return translate("unregister", virtualmachine.UnregisterVirtualMachine(ctx, s.vm(ref)))
}

func (s *Session) Destroy(ctx context.Context, ref providers.Ref) error {
	return translate("destroy", virtualmachine.DeleteVirtualMachine(ctx, s.vm(ref)))
}

func (s *Session) Relocate(ctx context.Context, ref, pool providers.Ref) error {
	return translate("relocate",
		virtualmachine.RelocateToResourcePool(ctx, s.vm(ref), internal.MoRef(pool)))
}

func (s *Session) AddDeltaDiskLayer(ctx context.Context, ref providers.Ref) error {
	return translate("addDeltaDiskLayer", virtualmachine.AddDeltaDiskLayer(ctx, s.vm(ref)))
}

func (s *Session) ValidateGuestCredentials(
	ctx context.Context,
	ref providers.Ref,
	auth providers.GuestAuth) error {

	return translate("validateGuestCredentials",
		virtualmachine.ValidateGuestCredentials(ctx, s.vm(ref), auth))
}

func (s *Session) StartGuestProgram(
	ctx context.Context,
	ref providers.Ref,
	auth providers.GuestAuth,
	program providers.GuestProgram) (int64, error) {

	pid, err := virtualmachine.StartGuestProgram(ctx, s.vm(ref), auth, program)
	return pid, translate("startGuestProgram", err)
}

func (s *Session) ListGuestProcesses(
	ctx context.Context,
	ref providers.Ref,
	auth providers.GuestAuth,
	pids []int64) ([]v1alpha1.GuestProcess, error) {

	processes, err := virtualmachine.ListGuestProcesses(ctx, s.vm(ref), auth, pids)
	return processes, translate("listGuestProcesses", err)
}
