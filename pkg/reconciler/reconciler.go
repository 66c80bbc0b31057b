// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	pkgctx "github.com/vmware-tanzu/vm-reconciler/pkg/context"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
	"github.com/vmware-tanzu/vm-reconciler/pkg/metrics"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/retry"
	"github.com/vmware-tanzu/vm-reconciler/pkg/validation"
)

// Options configure a Reconciler.
type Options struct {
	// Retry wraps every call to vCenter except guest operations.
	Retry retry.Policy

	// GuestRetry wraps guest operations.
	GuestRetry retry.Policy

	// LinkedCloneSettleDelay is the time to wait after adding a delta disk
	// layer to a source machine before cloning it.
	LinkedCloneSettleDelay time.Duration

	// Metrics is optional.
	Metrics *metrics.ReconcilerMetrics
}

// OptionsFromConfig returns the Options for the configuration.
func OptionsFromConfig(c pkgcfg.Config, m *metrics.ReconcilerMetrics) Options {
	return Options{
		Retry:                  retry.FromConfig(c.Retry).WithMetrics(m),
		GuestRetry:             retry.FromConfig(c.GuestRetry).WithMetrics(m),
		LinkedCloneSettleDelay: c.LinkedCloneSettleDelay,
		Metrics:                m,
	}
}

// Reconciler converges machines toward their descriptors using one session.
// Descriptors are reconciled one at a time.
type Reconciler struct {
	session providers.Session
	opts    Options
}

// New returns a new Reconciler.
func New(session providers.Session, opts Options) *Reconciler {
	return &Reconciler{
		session: session,
		opts:    opts,
	}
}

// newCache returns an empty inventory cache for the datacenter. A cache backs
// a single Get, List, or Reconcile so no record outlives the call that read
// it.
func (r *Reconciler) newCache(datacenter string) *inventory.Cache {
	return inventory.NewCache(r.session, v1alpha1.JoinPath(datacenter), r.opts.Retry)
}

// Get returns the record of the machine at path, or nil if there is no such
// machine.
func (r *Reconciler) Get(ctx context.Context, path string) (*v1alpha1.MachineRecord, error) {
	mp, err := v1alpha1.ParsePath(path)
	if err != nil {
		return nil, pkgerr.Userf(path, "%s", err)
	}
	return r.newCache(mp.Datacenter).Lookup(ctx, path)
}

// List returns the records of all the machines in the datacenter.
func (r *Reconciler) List(ctx context.Context, datacenter string) ([]v1alpha1.MachineRecord, error) {
	return r.newCache(datacenter).Records(ctx)
}

// Reconcile converges the machine toward the descriptor. Failures are
// reported in the result.
func (r *Reconciler) Reconcile(ctx context.Context, d v1alpha1.ResourceDescriptor) v1alpha1.Result {
	runID := uuid.NewString()
	logger := pkglog.FromContextOrDefault(ctx).WithValues("path", d.Path, "run", runID)

	mctx := &pkgctx.MachineContext{
		Context: logr.NewContext(ctx, logger),
		Logger:  logger,
		RunID:   runID,
		Desc:    d,
		Result:  &v1alpha1.Result{Path: d.Path},
	}

	logger.V(4).Info("Reconciling machine", "ensure", d.EnsureOrDefault())

	err := r.reconcile(mctx)
	r.finish(mctx, err)

	return *mctx.Result
}

func (r *Reconciler) reconcile(mctx *pkgctx.MachineContext) error {
	d := mctx.Desc

	if err := validation.ValidateDescriptor(d); err != nil {
		return err
	}

	mp, err := v1alpha1.ParsePath(d.Path)
	if err != nil {
		return pkgerr.Userf(d.Path, "%s", err)
	}
	mctx.Path = mp
	mctx.Cache = r.newCache(mp.Datacenter)

	rec, err := mctx.Cache.Lookup(mctx, d.Path)
	if err != nil {
		return err
	}

	observed := v1alpha1.MachineStateAbsent
	if rec != nil {
		observed = rec.State
	}

	steps, err := Plan(observed, d)
	if err != nil {
		return err
	}
	if len(steps) > 0 {
		mctx.Logger.Info("Changing machine state",
			"from", observed, "to", d.EnsureOrDefault(), "steps", steps.String())
	}

	var (
		ref            providers.Ref
		created        bool
		pendingPowerOn bool
		reconfigured   bool
	)
	if rec != nil {
		ref = rec.Ref

		if err := r.reconcilePlacement(mctx, *rec); err != nil {
			return err
		}

		// Reconfigure a stopped machine before powering it on.
		if rec.State == v1alpha1.MachineStateStopped && powerOnOnly(steps) {
			if err := r.reconcileProperties(mctx, *rec); err != nil {
				return err
			}
			reconfigured = true
		}
	}

	for _, s := range steps {
		switch s.Action {
		case ActionCreate:
			if ref, pendingPowerOn, err = r.create(mctx, s.PowerOn); err != nil {
				return err
			}
			created = true
		default:
			if err := r.step(mctx, ref, s.Action); err != nil {
				return err
			}
		}
	}
	if len(steps) > 0 {
		mctx.AddChanges(v1alpha1.Change{
			Property: PropertyEnsure,
			From:     string(observed),
			To:       string(d.EnsureOrDefault()),
			Action:   steps.String(),
		})
	}

	switch d.EnsureOrDefault() {
	case v1alpha1.EnsureAbsent, v1alpha1.EnsureUnregistered:
		return nil
	}

	if !reconfigured {
		rec, err := r.lookupExisting(mctx)
		if err != nil {
			return err
		}
		if err := r.reconcileProperties(mctx, *rec); err != nil {
			return err
		}
	}

	if pendingPowerOn {
		if err := r.step(mctx, ref, ActionPowerOn); err != nil {
			return err
		}
	}

	if created && d.CreateCommand != nil {
		return r.runCreateCommand(mctx, ref)
	}

	return nil
}

func powerOnOnly(steps Steps) bool {
	return len(steps) == 1 && steps[0].Action == ActionPowerOn
}

// lookupExisting returns the record of a machine that must exist.
func (r *Reconciler) lookupExisting(mctx *pkgctx.MachineContext) (*v1alpha1.MachineRecord, error) {
	rec, err := mctx.Cache.Lookup(mctx, mctx.Desc.Path)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &pkgerr.Error{
			Kind:   pkgerr.KindVanished,
			Op:     "lookup",
			Path:   mctx.Desc.Path,
			Reason: "the machine disappeared during the reconcile",
		}
	}
	return rec, nil
}

// step issues a power or removal operation.
func (r *Reconciler) step(mctx *pkgctx.MachineContext, ref providers.Ref, action Action) error {
	var fn func(context.Context, providers.Ref) error
	switch action {
	case ActionPowerOn:
		fn = r.session.PowerOn
	case ActionPowerOff:
		fn = r.session.PowerOff
	case ActionSuspend:
		fn = r.session.Suspend
	case ActionReset:
		fn = r.session.Reset
	case ActionDestroy:
		fn = r.session.Destroy
	case ActionUnregister:
		fn = r.session.Unregister
	default:
		return &pkgerr.Error{Kind: pkgerr.KindInternal, Op: string(action), Reason: "unknown action"}
	}

	mctx.Logger.V(4).Info("Issuing operation", "action", action, "ref", ref.String())

	err := r.opts.Retry.Do(mctx, string(action), func(ctx context.Context) error {
		return fn(ctx, ref)
	})
	if err != nil {
		return err
	}

	// The cached power state or topology is stale.
	mctx.Cache.Invalidate()
	return nil
}

// reconcilePlacement relocates an existing machine to the descriptor's
// resource pool.
func (r *Reconciler) reconcilePlacement(mctx *pkgctx.MachineContext, rec v1alpha1.MachineRecord) error {
	d := mctx.Desc
	if d.ResourcePool == "" || rec.Template {
		return nil
	}
	switch d.EnsureOrDefault() {
	case v1alpha1.EnsureAbsent, v1alpha1.EnsureUnregistered:
		return nil
	}
	desired := v1alpha1.JoinPath(v1alpha1.SplitPath(d.ResourcePool)...)
	if desired == rec.ResourcePool {
		return nil
	}

	placement, err := retry.Value(mctx, r.opts.Retry, "resolvePlacement",
		func(ctx context.Context) (providers.Placement, error) {
			return r.session.ResolvePlacement(ctx, providers.PlacementArgs{
				Datacenter:   mctx.Path.Datacenter,
				ResourcePool: d.ResourcePool,
			})
		})
	if err != nil {
		return err
	}

	mctx.Logger.Info("Relocating machine", "from", rec.ResourcePool, "to", desired)

	err = r.opts.Retry.Do(mctx, "relocate", func(ctx context.Context) error {
		return r.session.Relocate(ctx, rec.Ref, placement.ResourcePool)
	})
	if err != nil {
		return err
	}
	mctx.Cache.Invalidate()

	mctx.AddChanges(v1alpha1.Change{
		Property: PropertyResourcePool,
		From:     rec.ResourcePool,
		To:       desired,
		Action:   "relocate",
	})
	return nil
}

// reconcileProperties applies the mutable properties that differ from the
// record in one reconfigure task. A running machine is powered off for the
// reconfigure and powered on after it.
func (r *Reconciler) reconcileProperties(mctx *pkgctx.MachineContext, rec v1alpha1.MachineRecord) error {
	change := Diff(mctx.Desc, rec)
	if change.IsEmpty() {
		return nil
	}

	switch rec.State {
	case v1alpha1.MachineStateTemplate:
		return pkgerr.Userf(mctx.Desc.Path, "cannot change the properties of a template")
	case v1alpha1.MachineStateSuspended:
		return pkgerr.Userf(mctx.Desc.Path, "cannot change the properties of a suspended machine")
	case v1alpha1.MachineStateUnknown:
		return pkgerr.Userf(mctx.Desc.Path,
			"cannot change the properties of a machine whose power state is unknown")
	}

	changes := Changes(change, rec, "reconfigure")
	mctx.Logger.Info("Reconfiguring machine", "properties", propertyNames(changes))

	running := rec.State == v1alpha1.MachineStateRunning
	if running {
		if err := r.step(mctx, rec.Ref, ActionPowerOff); err != nil {
			return err
		}
	}

	err := r.opts.Retry.Do(mctx, "reconfigure", func(ctx context.Context) error {
		return r.session.Reconfigure(ctx, rec.Ref, change)
	})
	if err != nil {
		if running {
			if perr := r.step(mctx, rec.Ref, ActionPowerOn); perr != nil {
				mctx.Logger.Error(perr, "Failed to power on machine after a failed reconfigure")
			}
		}
		return err
	}
	mctx.Cache.Invalidate()
	mctx.AddChanges(changes...)

	if running {
		return r.step(mctx, rec.Ref, ActionPowerOn)
	}
	return nil
}

func propertyNames(changes []v1alpha1.Change) []string {
	out := make([]string, len(changes))
	for i := range changes {
		out[i] = changes[i].Property
	}
	return out
}

func (r *Reconciler) finish(mctx *pkgctx.MachineContext, err error) {
	res := mctx.Result

	switch {
	case err != nil:
		err = pkgerr.WithPath(err, mctx.Desc.Path)
		res.Outcome = v1alpha1.OutcomeFailed
		res.Err = err
		res.Error = err.Error()
		res.ErrorKind = pkgerr.KindOf(err).String()
		mctx.Logger.Error(err, "Failed to reconcile machine", "kind", res.ErrorKind)
	case len(res.Changes) > 0:
		res.Outcome = v1alpha1.OutcomeChanged
	default:
		res.Outcome = v1alpha1.OutcomeUnchanged
	}

	if err == nil && mctx.Cache != nil {
		rec, serr := mctx.Cache.Lookup(mctx, mctx.Desc.Path)
		if serr != nil {
			mctx.Logger.Error(serr, "Failed to read the machine after the reconcile")
		}
		res.Snapshot = rec
	}

	mctx.Logger.V(4).Info("Reconciled machine", "outcome", res.Outcome)

	if r.opts.Metrics != nil {
		r.opts.Metrics.RegisterReconcile(
			mctx.Logger, mctx.Desc.Path, string(res.Outcome), res.ChangedProperties())
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
