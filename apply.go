// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
	"github.com/vmware-tanzu/vm-reconciler/pkg/loader"
	"github.com/vmware-tanzu/vm-reconciler/pkg/reconciler"
)

func newApplyCommand(opts *rootOptions) *cobra.Command {
	var (
		file    string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Reconcile the machines described in a file",
		Long: `Reconcile the machines described in a YAML or JSON file. The file holds a
single descriptor, a list of descriptors, or a mapping with a machines list.
Use "-" to read from stdin.

A result is written for every descriptor. The command fails if any descriptor
failed to reconcile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descs, err := loader.LoadFromFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if workers <= 0 {
				workers = pkgcfg.FromContextOrDefault(ctx).MaxConcurrentReconciles
			}

			batch := reconciler.Batch{
				NewSession: opts.sessionFactory(ctx),
				Options:    opts.reconcilerOptions(ctx),
				Workers:    workers,
			}

			pkglog.FromContextOrDefault(ctx).Info("Reconciling machines",
				"file", file, "descriptors", len(descs), "workers", workers)

			results, err := batch.Run(ctx, descs)
			if err != nil {
				return err
			}

			if err := opts.formatter.WriteResults(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			if failed := countFailed(results); failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d machines failed to reconcile\n", failed, len(results))
				// PersistentPostRunE is skipped when RunE fails.
				if err := opts.writeMetrics(ctx); err != nil {
					return err
				}
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path of the descriptor file.")
	cmd.Flags().IntVar(&workers, "workers", 0,
		"Number of descriptors reconciled concurrently, each with its own vCenter session. Defaults to MAX_CONCURRENT_RECONCILES.")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func countFailed(results []v1alpha1.Result) int {
	var n int
	for _, r := range results {
		if r.Outcome == v1alpha1.OutcomeFailed {
			n++
		}
	}
	return n
}
