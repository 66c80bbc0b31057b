// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
	"github.com/vmware-tanzu/vm-reconciler/pkg/reconciler"
)

func newGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH",
		Short: "Show the observed state of a machine",
		Long: `Show the observed state of the machine at PATH, which has the form
/<datacenter>/vm/<folder...>/<name>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := v1alpha1.ParsePath(path); err != nil {
				return pkgerr.Userf(path, "%s", err)
			}

			var rec *v1alpha1.MachineRecord
			err := opts.withReconciler(cmd.Context(), func(r *reconciler.Reconciler) error {
				var err error
				rec, err = r.Get(cmd.Context(), path)
				return err
			})
			if err != nil {
				return err
			}
			if rec == nil {
				return pkgerr.NotFoundf(path, "machine not found")
			}

			return opts.formatter.WriteRecords(cmd.OutOrStdout(), []v1alpha1.MachineRecord{*rec})
		},
	}
}

// withReconciler calls fn with a Reconciler that uses a new session. The
// session is closed when fn returns.
func (o *rootOptions) withReconciler(ctx context.Context, fn func(*reconciler.Reconciler) error) error {
	session, err := o.sessionFactory(ctx)(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			pkglog.FromContextOrDefault(ctx).Error(err, "Failed to close session")
		}
	}()

	return fn(reconciler.New(session, o.reconcilerOptions(ctx)))
}
