// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package fake

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
)

// This fake Session simulates a vCenter with one datacenter, DC0, that has
// one cluster, DC0_C0, with one host and the resource pools Resources and
// Resources/RP1, and the datastores LocalDS_0 and LocalDS_1. Objects created
// through the session are kept in memory and reflected by BulkQuery. As a
// convenience to simulate scenarios, the session also exposes function
// variables to override certain behaviors and a queue of faults per
// operation.

const (
	Datacenter  = "DC0"
	Cluster     = "DC0_C0"
	RootPool    = "/" + Cluster
	ChildPool   = "/" + Cluster + "/RP1"
	Datastore0  = "LocalDS_0"
	Datastore1  = "LocalDS_1"
	GuestUser   = "user"
	GuestPasswd = "password"
)

// Mutating are the operations that change the inventory.
var Mutating = sets.New(
	"EnsureFolderPath",
	"Clone",
	"Register",
	"Reconfigure",
	"PowerOn",
	"PowerOff",
	"Suspend",
	"Reset",
	"Unregister",
	"Destroy",
	"Relocate",
	"AddDeltaDiskLayer",
	"StartGuestProgram",
)

type funcs struct {
	BulkQueryFn                func(ctx context.Context, root string, propertyPaths []string) ([]inventory.Node, error)
	ValidateGuestCredentialsFn func(ctx context.Context, ref providers.Ref, auth providers.GuestAuth) error
	StartGuestProgramFn        func(ctx context.Context, ref providers.Ref, auth providers.GuestAuth, program providers.GuestProgram) (int64, error)
	ListGuestProcessesFn       func(ctx context.Context, ref providers.Ref, auth providers.GuestAuth, pids []int64) ([]v1alpha1.GuestProcess, error)
}

// Call is a recorded call.
type Call struct {
	Op  string
	Ref providers.Ref
	Arg any
}

// MachineOptions are the properties of a machine added with AddMachine.
type MachineOptions struct {
	PowerState   string
	Template     bool
	CPUs         int32
	MemoryMB     int64
	Annotation   string
	ExtraConfig  map[string]string
	ResourcePool string
}

// Session is an in-memory providers.Session.
type Session struct {
	sync.Mutex
	funcs

	nodes map[providers.Ref]inventory.Node
	about inventory.About
	next  int

	vmFolder   providers.Ref
	hostFolder providers.Ref
	cluster    *inventory.ClusterComputeResource
	rootPool   providers.Ref
	host       providers.Ref
	datastores map[string]providers.Ref

	// DatastoreFolders are the machines that may be registered, keyed by
	// "[datastore] folder".
	datastoreFolders map[string]MachineOptions

	customizationSpecs sets.Set[string]
	deltaDisks         sets.Set[providers.Ref]
	notConfigured      map[providers.Ref]int
	notConfiguredNew   int
	faults             map[string][]error
	calls              []Call
	processes          map[int64]v1alpha1.GuestProcess
	nextPID            int64
	closed             bool
}

var _ providers.Session = &Session{}

// NewSession returns a new fake session.
func NewSession() *Session {
	s := &Session{}
	s.Init()
	return s
}

// Init restores the initial inventory and clears the recorded calls, the
// faults, and the function overrides.
func (s *Session) Init() {
	s.Lock()
	defer s.Unlock()

	s.funcs = funcs{}
	s.nodes = map[providers.Ref]inventory.Node{}
	s.next = 0
	s.datastores = map[string]providers.Ref{}
	s.datastoreFolders = map[string]MachineOptions{}
	s.customizationSpecs = sets.New[string]()
	s.deltaDisks = sets.New[providers.Ref]()
	s.notConfigured = map[providers.Ref]int{}
	s.notConfiguredNew = 0
	s.faults = map[string][]error{}
	s.calls = nil
	s.processes = map[int64]v1alpha1.GuestProcess{}
	s.nextPID = 1000
	s.closed = false
	s.about = inventory.About{
		Name:         "VMware vCenter Server",
		Version:      "8.0.2",
		FullVersion:  "VMware vCenter Server 8.0.2 build-22385739",
		InstanceUUID: "5a4b4c5e-3d2f-4e1a-9b8c-7d6e5f4a3b2c",
	}

	root := s.addNode(&inventory.Folder{Entity: s.entity("group-d", "Datacenters", nil)})
	dc := s.addNode(&inventory.Datacenter{Entity: s.entity("datacenter", Datacenter, &root)})
	s.vmFolder = s.addNode(&inventory.Folder{Entity: s.entity("group-v", v1alpha1.VMFolderName, &dc)})
	s.hostFolder = s.addNode(&inventory.Folder{Entity: s.entity("group-h", "host", &dc)})
	s.cluster = &inventory.ClusterComputeResource{Entity: s.entity("domain-c", Cluster, &s.hostFolder)}
	cluster := s.addNode(s.cluster)
	s.rootPool = s.addNode(&inventory.ResourcePool{Entity: s.entity("resgroup", "Resources", &cluster)})
	s.addNode(&inventory.ResourcePool{Entity: s.entity("resgroup", "RP1", &s.rootPool)})
	s.host = s.ref("host")
	s.datastores[Datastore0] = s.ref("datastore")
	s.datastores[Datastore1] = s.ref("datastore")
}

func (s *Session) ref(typ string) providers.Ref {
	s.next++
	return providers.Ref{Type: typ, Value: fmt.Sprintf("%s-%d", typ, s.next)}
}

func (s *Session) entity(typ, name string, parent *providers.Ref) inventory.Entity {
	return inventory.Entity{Ref: s.ref(typ), Name: name, Parent: parent}
}

func (s *Session) addNode(n inventory.Node) providers.Ref {
	s.nodes[n.Reference()] = n
	return n.Reference()
}

func (s *Session) graph() *inventory.Graph {
	return inventory.NewGraph(slices.Collect(maps.Values(s.nodes)), s.about)
}

// AddMachine adds a machine at the inventory path, creating its folders.
func (s *Session) AddMachine(path string, opts MachineOptions) providers.Ref {
	s.Lock()
	defer s.Unlock()

	mp, err := v1alpha1.ParsePath(path)
	if err != nil {
		panic(err)
	}
	folder := s.ensureFolders(mp.Folder)
	pool := s.rootPool
	if opts.ResourcePool != "" {
		if pool, err = s.findPool(opts.ResourcePool); err != nil {
			panic(err)
		}
	}
	if opts.PowerState == "" {
		opts.PowerState = "poweredOff"
	}
	if opts.CPUs == 0 {
		opts.CPUs = 1
	}
	if opts.MemoryMB == 0 {
		opts.MemoryMB = 512
	}
	return s.addMachine(mp.Name, folder, pool, opts)
}

func (s *Session) addMachine(
	name string,
	folder, pool providers.Ref,
	opts MachineOptions) providers.Ref {

	ref := s.ref("vm")
	vm := &inventory.VirtualMachine{
		Entity:           inventory.Entity{Ref: ref, Name: name, Parent: &folder},
		Configured:       true,
		Template:         opts.Template,
		PowerState:       opts.PowerState,
		CPUs:             opts.CPUs,
		MemoryMB:         opts.MemoryMB,
		Annotation:       opts.Annotation,
		ExtraConfig:      maps.Clone(opts.ExtraConfig),
		UUID:             fmt.Sprintf("4207%04d-0000-0000-0000-000000000000", s.next),
		InstanceUUID:     fmt.Sprintf("5007%04d-0000-0000-0000-000000000000", s.next),
		NumEthernetCards: ptr.To[int32](1),
	}
	if !opts.Template {
		vm.ResourcePool = &pool
	}
	s.nodes[ref] = vm
	return ref
}

// AddDatastoreFolder adds files for a machine that may be registered.
func (s *Session) AddDatastoreFolder(datastore, folder string, opts MachineOptions) {
	s.Lock()
	defer s.Unlock()
	s.datastoreFolders[fmt.Sprintf("[%s] %s", datastore, folder)] = opts
}

// AddCustomizationSpec adds a stored customization spec.
func (s *Session) AddCustomizationSpec(name string) {
	s.Lock()
	defer s.Unlock()
	s.customizationSpecs.Insert(name)
}

// SetDRS enables DRS on the cluster.
func (s *Session) SetDRS(defaultBehavior string, overrides map[providers.Ref]string) {
	s.Lock()
	defer s.Unlock()
	s.cluster.DRSEnabled = true
	s.cluster.DefaultDRSBehavior = defaultBehavior
	s.cluster.DRSOverrides = overrides
}

// SetNotConfigured causes the next n queries to report the machine as not
// configured.
func (s *Session) SetNotConfigured(ref providers.Ref, n int) {
	s.Lock()
	defer s.Unlock()
	s.notConfigured[ref] = n
}

// SetNotConfiguredOnCreate causes the next n queries after a machine is
// created to report it as not configured.
func (s *Session) SetNotConfiguredOnCreate(n int) {
	s.Lock()
	defer s.Unlock()
	s.notConfiguredNew = n
}

// InjectFault causes the next calls of op to return errs, in order.
func (s *Session) InjectFault(op string, errs ...error) {
	s.Lock()
	defer s.Unlock()
	s.faults[op] = append(s.faults[op], errs...)
}

// Calls returns the recorded calls.
func (s *Session) Calls() []Call {
	s.Lock()
	defer s.Unlock()
	return slices.Clone(s.calls)
}

// Ops returns the names of the recorded calls that change the inventory.
func (s *Session) Ops() []string {
	s.Lock()
	defer s.Unlock()
	var ops []string
	for _, c := range s.calls {
		if Mutating.Has(c.Op) {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

// CallCount returns the number of calls of op, including failed calls.
func (s *Session) CallCount(op string) int {
	s.Lock()
	defer s.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Machine returns a copy of the machine at path.
func (s *Session) Machine(path string) (inventory.VirtualMachine, bool) {
	s.Lock()
	defer s.Unlock()
	vm, ok := s.graph().Machine(path)
	if !ok {
		return inventory.VirtualMachine{}, false
	}
	return copyMachine(vm), true
}

// Closed returns true if Close was called.
func (s *Session) Closed() bool {
	s.Lock()
	defer s.Unlock()
	return s.closed
}

// record records the call and returns the next injected fault for op.
func (s *Session) record(op string, ref providers.Ref, arg any) error {
	s.calls = append(s.calls, Call{Op: op, Ref: ref, Arg: arg})
	if q := s.faults[op]; len(q) > 0 {
		s.faults[op] = q[1:]
		return q[0]
	}
	return nil
}

func (s *Session) About() inventory.About {
	s.Lock()
	defer s.Unlock()
	return s.about
}

func (s *Session) BulkQuery(
	ctx context.Context,
	root string,
	propertyPaths []string) ([]inventory.Node, error) {

	s.Lock()
	defer s.Unlock()

	if err := s.record("BulkQuery", providers.Ref{}, root); err != nil {
		return nil, err
	}
	if s.BulkQueryFn != nil {
		return s.BulkQueryFn(ctx, root, propertyPaths)
	}

	out := make([]inventory.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		switch tn := n.(type) {
		case *inventory.VirtualMachine:
			vm := copyMachine(tn)
			if c := s.notConfigured[tn.Ref]; c > 0 {
				vm.Configured = false
				s.notConfigured[tn.Ref] = c - 1
			}
			out = append(out, &vm)
		case *inventory.ClusterComputeResource:
			c := *tn
			c.DRSOverrides = maps.Clone(tn.DRSOverrides)
			out = append(out, &c)
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Session) FindMachine(
	_ context.Context,
	path string) (providers.Ref, bool, error) {

	s.Lock()
	defer s.Unlock()

	if err := s.record("FindMachine", providers.Ref{}, path); err != nil {
		return providers.Ref{}, false, err
	}
	vm, ok := s.graph().Machine(path)
	if !ok {
		return providers.Ref{}, false, nil
	}
	return vm.Ref, true, nil
}

func (s *Session) ResolvePlacement(
	_ context.Context,
	args providers.PlacementArgs) (providers.Placement, error) {

	s.Lock()
	defer s.Unlock()

	if err := s.record("ResolvePlacement", providers.Ref{}, args); err != nil {
		return providers.Placement{}, err
	}
	if args.Datacenter != Datacenter {
		return providers.Placement{}, pkgerr.NotFoundf("", "datacenter %q not found", args.Datacenter)
	}

	var (
		p   providers.Placement
		err error
	)
	p.ResourcePool = s.rootPool
	if args.ResourcePool != "" {
		if p.ResourcePool, err = s.findPool(args.ResourcePool); err != nil {
			return providers.Placement{}, err
		}
	}
	p.DatastoreName = args.Datastore
	if p.DatastoreName == "" {
		p.DatastoreName = Datastore0
	}
	ds, ok := s.datastores[p.DatastoreName]
	if !ok {
		return providers.Placement{}, pkgerr.NotFoundf("", "datastore %q not found", p.DatastoreName)
	}
	p.Datastore = ds
	if args.Template {
		p.Host = ptr.To(s.host)
	}
	return p, nil
}

func (s *Session) findPool(path string) (providers.Ref, error) {
	g := s.graph()
	for ref, n := range s.nodes {
		if n.Kind() != inventory.KindResourcePool {
			continue
		}
		if p, _ := g.ResourcePoolPath(ref); p == v1alpha1.JoinPath(v1alpha1.SplitPath(path)...) {
			return ref, nil
		}
	}
	return providers.Ref{}, pkgerr.NotFoundf("", "resource pool %q not found", path)
}

func (s *Session) EnsureFolderPath(
	_ context.Context,
	datacenter string,
	segments []string) (providers.Ref, error) {

	s.Lock()
	defer s.Unlock()

	if datacenter != Datacenter {
		return providers.Ref{}, pkgerr.NotFoundf("", "datacenter %q not found", datacenter)
	}

	if s.findFolders(segments) == nil {
		if err := s.record("EnsureFolderPath", providers.Ref{}, segments); err != nil {
			return providers.Ref{}, err
		}
	}
	return s.ensureFolders(segments), nil
}

// findFolders returns the folder at segments or nil if any is missing.
func (s *Session) findFolders(segments []string) *providers.Ref {
	parent := s.vmFolder
	for _, name := range segments {
		child, ok := s.child(parent, name, inventory.KindFolder)
		if !ok {
			return nil
		}
		parent = child
	}
	return &parent
}

func (s *Session) ensureFolders(segments []string) providers.Ref {
	parent := s.vmFolder
	for _, name := range segments {
		child, ok := s.child(parent, name, inventory.KindFolder)
		if !ok {
			p := parent
			child = s.addNode(&inventory.Folder{Entity: s.entity("group-v", name, &p)})
		}
		parent = child
	}
	return parent
}

func (s *Session) child(parent providers.Ref, name string, kind inventory.Kind) (providers.Ref, bool) {
	for ref, n := range s.nodes {
		if n.Kind() == kind && n.ObjectName() == name &&
			n.ParentRef() != nil && *n.ParentRef() == parent {
			return ref, true
		}
	}
	return providers.Ref{}, false
}

func (s *Session) hasChild(folder providers.Ref, name string) bool {
	for _, n := range s.nodes {
		if n.ObjectName() == name && n.ParentRef() != nil && *n.ParentRef() == folder {
			return true
		}
	}
	return false
}

func (s *Session) machine(ref providers.Ref) (*inventory.VirtualMachine, error) {
	if vm, ok := s.nodes[ref].(*inventory.VirtualMachine); ok {
		return vm, nil
	}
	return nil, &pkgerr.Error{
		Kind:   pkgerr.KindVanished,
		Reason: fmt.Sprintf("managed object %s not found", ref),
	}
}

func (s *Session) Clone(_ context.Context, args providers.CloneArgs) (providers.Ref, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.record("Clone", args.Source, args); err != nil {
		return providers.Ref{}, err
	}
	src, err := s.machine(args.Source)
	if err != nil {
		return providers.Ref{}, err
	}
	if s.hasChild(args.Folder, args.Name) {
		return providers.Ref{}, pkgerr.Userf("", "the name %q already exists", args.Name)
	}
	if args.CustomizationSpec != "" && !s.customizationSpecs.Has(args.CustomizationSpec) {
		return providers.Ref{}, pkgerr.NotFoundf("", "customization spec %q not found", args.CustomizationSpec)
	}
	if args.Linked && !s.deltaDisks.Has(args.Source) {
		return providers.Ref{}, &pkgerr.Error{
			Kind:   pkgerr.KindInternal,
			Reason: "linked clone source has no delta disk layer",
		}
	}

	opts := MachineOptions{
		PowerState:  "poweredOff",
		Template:    args.Template,
		CPUs:        src.CPUs,
		MemoryMB:    src.MemoryMB,
		Annotation:  src.Annotation,
		ExtraConfig: maps.Clone(src.ExtraConfig),
	}
	applyChange(&opts, args.Config)
	if args.PowerOn && !args.Template {
		opts.PowerState = "poweredOn"
	}
	ref := s.addMachine(args.Name, args.Folder, args.Placement.ResourcePool, opts)
	s.markNew(ref)
	return ref, nil
}

func applyChange(opts *MachineOptions, c providers.ConfigChange) {
	if c.CPUs != nil {
		opts.CPUs = *c.CPUs
	}
	if c.MemoryMB != nil {
		opts.MemoryMB = *c.MemoryMB
	}
	if c.Annotation != nil {
		opts.Annotation = *c.Annotation
	}
	if len(c.ExtraConfig) > 0 && opts.ExtraConfig == nil {
		opts.ExtraConfig = map[string]string{}
	}
	maps.Copy(opts.ExtraConfig, c.ExtraConfig)
}

func (s *Session) markNew(ref providers.Ref) {
	if s.notConfiguredNew > 0 {
		s.notConfigured[ref] = s.notConfiguredNew
	}
}

func (s *Session) Register(_ context.Context, args providers.RegisterArgs) (providers.Ref, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.record("Register", providers.Ref{}, args); err != nil {
		return providers.Ref{}, err
	}
	if args.Template && args.Placement.Host == nil {
		return providers.Ref{}, &pkgerr.Error{Kind: pkgerr.KindInternal, Reason: "a template requires a host"}
	}
	opts, ok := s.datastoreFolders[fmt.Sprintf("[%s] %s", args.Placement.DatastoreName, args.SourceFolder)]
	if !ok {
		return providers.Ref{}, pkgerr.NotFoundf("", "folder %q not found on datastore %q",
			args.SourceFolder, args.Placement.DatastoreName)
	}
	if s.hasChild(args.Folder, args.Name) {
		return providers.Ref{}, pkgerr.Userf("", "the name %q already exists", args.Name)
	}
	opts.PowerState = "poweredOff"
	opts.Template = args.Template
	ref := s.addMachine(args.Name, args.Folder, args.Placement.ResourcePool, opts)
	s.markNew(ref)
	return ref, nil
}

func (s *Session) Reconfigure(_ context.Context, ref providers.Ref, change providers.ConfigChange) error {
	s.Lock()
	defer s.Unlock()

	if err := s.record("Reconfigure", ref, change.DeepCopy()); err != nil {
		return err
	}
	vm, err := s.machine(ref)
	if err != nil {
		return err
	}
	if vm.PowerState == "poweredOn" && (change.CPUs != nil || change.MemoryMB != nil) {
		return pkgerr.Userf("", "CPU and memory hot add is not enabled")
	}
	opts := MachineOptions{
		CPUs:        vm.CPUs,
		MemoryMB:    vm.MemoryMB,
		Annotation:  vm.Annotation,
		ExtraConfig: vm.ExtraConfig,
	}
	applyChange(&opts, change)
	vm.CPUs = opts.CPUs
	vm.MemoryMB = opts.MemoryMB
	vm.Annotation = opts.Annotation
	vm.ExtraConfig = opts.ExtraConfig
	return nil
}

func (s *Session) setPowerState(op string, ref providers.Ref, from []string, to string) error {
	if err := s.record(op, ref, nil); err != nil {
		return err
	}
	vm, err := s.machine(ref)
	if err != nil {
		return err
	}
	if vm.Template {
		return pkgerr.Userf("", "%s is not supported for templates", op)
	}
	if !slices.Contains(from, vm.PowerState) {
		return pkgerr.Userf("", "%s is not allowed in power state %s", op, vm.PowerState)
	}
	vm.PowerState = to
	return nil
}

func (s *Session) PowerOn(_ context.Context, ref providers.Ref) error {
	s.Lock()
	defer s.Unlock()
	return s.setPowerState("PowerOn", ref, []string{"poweredOff", "suspended"}, "poweredOn")
}

func (s *Session) PowerOff(_ context.Context, ref providers.Ref) error {
	s.Lock()
	defer s.Unlock()
	return s.setPowerState("PowerOff", ref, []string{"poweredOn"}, "poweredOff")
}

func (s *Session) Suspend(_ context.Context, ref providers.Ref) error {
	s.Lock()
	defer s.Unlock()
	return s.setPowerState("Suspend", ref, []string{"poweredOn"}, "suspended")
}

func (s *Session) Reset(_ context.Context, ref providers.Ref) error {
	s.Lock()
	defer s.Unlock()
	return s.setPowerState("Reset", ref, []string{"poweredOn"}, "poweredOn")
}

func (s *Session) remove(op string, ref providers.Ref) error {
	if err := s.record(op, ref, nil); err != nil {
		return err
	}
	vm, err := s.machine(ref)
	if err != nil {
		return err
	}
	if vm.PowerState == "poweredOn" {
		return pkgerr.Userf("", "%s is not allowed in power state %s", op, vm.PowerState)
	}
	delete(s.nodes, ref)
	return nil
}

func (s *Session) Unregister(_ context.Context, ref providers.Ref) error {
	s.Lock()
	defer s.Unlock()
	return s.remove("Unregister", ref)
}

func (s *Session) Destroy(_ context.Context, ref providers.Ref) error {
	s.Lock()
	defer s.Unlock()
	return s.remove("Destroy", ref)
}

func (s *Session) Relocate(_ context.Context, ref providers.Ref, pool providers.Ref) error {
	s.Lock()
	defer s.Unlock()

	if err := s.record("Relocate", ref, pool); err != nil {
		return err
	}
	vm, err := s.machine(ref)
	if err != nil {
		return err
	}
	if n, ok := s.nodes[pool]; !ok || n.Kind() != inventory.KindResourcePool {
		return pkgerr.NotFoundf("", "resource pool %s not found", pool)
	}
	vm.ResourcePool = ptr.To(pool)
	return nil
}

func (s *Session) AddDeltaDiskLayer(_ context.Context, ref providers.Ref) error {
	s.Lock()
	defer s.Unlock()

	if err := s.record("AddDeltaDiskLayer", ref, nil); err != nil {
		return err
	}
	if _, err := s.machine(ref); err != nil {
		return err
	}
	s.deltaDisks.Insert(ref)
	return nil
}

func (s *Session) guestReady(ref providers.Ref) error {
	vm, err := s.machine(ref)
	if err != nil {
		return err
	}
	if vm.PowerState != "poweredOn" {
		return &pkgerr.Error{Kind: pkgerr.KindTransient, Reason: "guest operations agent is not running"}
	}
	return nil
}

func (s *Session) ValidateGuestCredentials(
	ctx context.Context,
	ref providers.Ref,
	auth providers.GuestAuth) error {

	s.Lock()
	defer s.Unlock()

	if err := s.record("ValidateGuestCredentials", ref, auth.User); err != nil {
		return err
	}
	if s.ValidateGuestCredentialsFn != nil {
		return s.ValidateGuestCredentialsFn(ctx, ref, auth)
	}
	if err := s.guestReady(ref); err != nil {
		return err
	}
	if auth.User != GuestUser || auth.Password != GuestPasswd {
		return &pkgerr.Error{Kind: pkgerr.KindGuest, Guest: pkgerr.GuestReasonInvalidLogin}
	}
	return nil
}

func (s *Session) StartGuestProgram(
	ctx context.Context,
	ref providers.Ref,
	auth providers.GuestAuth,
	program providers.GuestProgram) (int64, error) {

	s.Lock()
	defer s.Unlock()

	if err := s.record("StartGuestProgram", ref, program); err != nil {
		return 0, err
	}
	if s.StartGuestProgramFn != nil {
		return s.StartGuestProgramFn(ctx, ref, auth, program)
	}
	if err := s.guestReady(ref); err != nil {
		return 0, err
	}
	s.nextPID++
	s.processes[s.nextPID] = v1alpha1.GuestProcess{
		PID:       s.nextPID,
		Name:      program.Path,
		StartTime: ptr.To(time.Now().UTC()),
	}
	return s.nextPID, nil
}

func (s *Session) ListGuestProcesses(
	ctx context.Context,
	ref providers.Ref,
	auth providers.GuestAuth,
	pids []int64) ([]v1alpha1.GuestProcess, error) {

	s.Lock()
	defer s.Unlock()

	if err := s.record("ListGuestProcesses", ref, pids); err != nil {
		return nil, err
	}
	if s.ListGuestProcessesFn != nil {
		return s.ListGuestProcessesFn(ctx, ref, auth, pids)
	}
	var out []v1alpha1.GuestProcess
	for _, pid := range pids {
		if p, ok := s.processes[pid]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

func (s *Session) Close(_ context.Context) error {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	return nil
}

func copyMachine(vm *inventory.VirtualMachine) inventory.VirtualMachine {
	c := *vm
	c.ExtraConfig = maps.Clone(vm.ExtraConfig)
	c.CPUAffinity = slices.Clone(vm.CPUAffinity)
	c.MemoryAffinity = slices.Clone(vm.MemoryAffinity)
	return c
}
