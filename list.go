// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	"github.com/vmware-tanzu/vm-reconciler/pkg/reconciler"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [DATACENTER]",
		Short: "List the machines in a datacenter",
		Long: `List the observed state of every machine and template in DATACENTER. The
datacenter defaults to the one in the vCenter configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datacenter := pkgcfg.FromContextOrDefault(cmd.Context()).VCenter.Datacenter
			if len(args) > 0 {
				datacenter = args[0]
			}
			if datacenter == "" {
				return fmt.Errorf("a datacenter is required when none is configured")
			}

			var records []v1alpha1.MachineRecord
			err := opts.withReconciler(cmd.Context(), func(r *reconciler.Reconciler) error {
				var err error
				records, err = r.List(cmd.Context(), datacenter)
				return err
			})
			if err != nil {
				return err
			}

			return opts.formatter.WriteRecords(cmd.OutOrStdout(), records)
		},
	}
}
