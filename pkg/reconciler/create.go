// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgctx "github.com/vmware-tanzu/vm-reconciler/pkg/context"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/retry"
)

// create clones or registers the machine. The second return value is true
// when the machine must still be powered on.
func (r *Reconciler) create(
	mctx *pkgctx.MachineContext,
	powerOn bool) (providers.Ref, bool, error) {

	d := mctx.Desc

	placement, err := retry.Value(mctx, r.opts.Retry, "resolvePlacement",
		func(ctx context.Context) (providers.Placement, error) {
			return r.session.ResolvePlacement(ctx, providers.PlacementArgs{
				Datacenter:   mctx.Path.Datacenter,
				ResourcePool: d.ResourcePool,
				Datastore:    d.Datastore,
				Template:     d.Template,
			})
		})
	if err != nil {
		return providers.Ref{}, false, err
	}

	folder, err := retry.Value(mctx, r.opts.Retry, "ensureFolderPath",
		func(ctx context.Context) (providers.Ref, error) {
			return r.session.EnsureFolderPath(ctx, mctx.Path.Datacenter, mctx.Path.Folder)
		})
	if err != nil {
		return providers.Ref{}, false, err
	}

	if d.SourceTypeOrDefault() == v1alpha1.SourceTypeFolder {
		ref, err := r.register(mctx, folder, placement)
		return ref, powerOn, err
	}

	ref, err := r.clone(mctx, folder, placement, powerOn)
	return ref, false, err
}

func (r *Reconciler) register(
	mctx *pkgctx.MachineContext,
	folder providers.Ref,
	placement providers.Placement) (providers.Ref, error) {

	d := mctx.Desc
	if d.Source == "" {
		return providers.Ref{}, pkgerr.Userf(d.Path, "source is required to register the machine")
	}

	mctx.Logger.Info("Registering machine",
		"datastore", placement.DatastoreName, "folder", d.Source, "template", d.Template)

	ref, err := retry.Value(mctx, r.opts.Retry, "register",
		func(ctx context.Context) (providers.Ref, error) {
			return r.session.Register(ctx, providers.RegisterArgs{
				Folder:       folder,
				Name:         mctx.Path.Name,
				SourceFolder: d.Source,
				Placement:    placement,
				Template:     d.Template,
			})
		})
	if err != nil {
		return providers.Ref{}, err
	}
	mctx.Cache.Invalidate()
	return ref, nil
}

func (r *Reconciler) clone(
	mctx *pkgctx.MachineContext,
	folder providers.Ref,
	placement providers.Placement,
	powerOn bool) (providers.Ref, error) {

	d := mctx.Desc

	source, err := r.findSource(mctx)
	if err != nil {
		return providers.Ref{}, err
	}

	if d.LinkedClone {
		err := r.opts.Retry.Do(mctx, "addDeltaDiskLayer", func(ctx context.Context) error {
			return r.session.AddDeltaDiskLayer(ctx, source)
		})
		if err != nil {
			return providers.Ref{}, err
		}
		if err := sleep(mctx, r.opts.LinkedCloneSettleDelay); err != nil {
			return providers.Ref{}, err
		}
	}

	mctx.Logger.Info("Cloning machine",
		"source", d.Source,
		"resourcePool", placement.ResourcePool.String(),
		"datastore", placement.DatastoreName,
		"linked", d.LinkedClone,
		"powerOn", powerOn)

	ref, err := retry.Value(mctx, r.opts.Retry, "clone",
		func(ctx context.Context) (providers.Ref, error) {
			return r.session.Clone(ctx, providers.CloneArgs{
				Source:            source,
				Folder:            folder,
				Name:              mctx.Path.Name,
				Placement:         placement,
				Linked:            d.LinkedClone,
				CustomizationSpec: d.CustomizationSpec,
				PowerOn:           powerOn,
				Template:          d.Template,
				Config:            Overrides(d),
			})
		})
	if err != nil {
		return providers.Ref{}, err
	}
	mctx.Cache.Invalidate()
	return ref, nil
}

// findSource returns the machine or template to clone. The inventory is
// searched first and the session second.
func (r *Reconciler) findSource(mctx *pkgctx.MachineContext) (providers.Ref, error) {
	d := mctx.Desc
	if d.Source == "" {
		return providers.Ref{}, pkgerr.Userf(d.Path, "source is required to create the machine")
	}

	if mp, err := v1alpha1.ParsePath(d.Source); err == nil {
		cache := mctx.Cache
		if mp.Datacenter != mctx.Path.Datacenter {
			cache = r.newCache(mp.Datacenter)
		}
		g, err := cache.Graph(mctx)
		if err != nil {
			return providers.Ref{}, err
		}
		if vm, ok := g.Machine(d.Source); ok {
			return vm.Ref, nil
		}
	}

	type found struct {
		ref providers.Ref
		ok  bool
	}
	f, err := retry.Value(mctx, r.opts.Retry, "findMachine",
		func(ctx context.Context) (found, error) {
			ref, ok, err := r.session.FindMachine(ctx, d.Source)
			return found{ref: ref, ok: ok}, err
		})
	if err != nil {
		return providers.Ref{}, err
	}
	if !f.ok {
		return providers.Ref{}, pkgerr.NotFoundf(d.Path, "source %q not found", d.Source)
	}
	return f.ref, nil
}
