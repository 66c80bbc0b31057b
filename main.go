// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/vmware-tanzu/vm-reconciler/pkg"
	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
	"github.com/vmware-tanzu/vm-reconciler/pkg/metrics"
	"github.com/vmware-tanzu/vm-reconciler/pkg/output"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere"
	"github.com/vmware-tanzu/vm-reconciler/pkg/reconciler"
)

const defaultConfigFile = "vcenter.yaml"

// errFailed is returned when the results were written but at least one
// descriptor failed.
var errFailed = errors.New("one or more machines failed to reconcile")

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configFile      string
	envFile         string
	outputFormat    string
	verbosity       int
	metricsTextfile string

	formatter  output.Formatter
	metrics    *metrics.ReconcilerMetrics
	newSession func(pkgcfg.VCenter) providers.SessionFactory
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stdout, os.Stderr, vsphere.NewSessionFactory).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(
	stdout, stderr io.Writer,
	newSession func(pkgcfg.VCenter) providers.SessionFactory) *cobra.Command {

	opts := &rootOptions{
		newSession: newSession,
	}

	cmd := &cobra.Command{
		Use:   "vmreconcile",
		Short: "Reconcile vSphere virtual machines toward declared state",
		Long: `vmreconcile converges vSphere virtual machines toward the state declared in
resource descriptors. It creates, clones, registers, reconfigures, powers, and
removes machines as needed and reports what was changed.

The vCenter connection is read from the VCENTER_* environment variables when
any of them is set, and otherwise from the vcenter block of the config file.`,
		Version:       fmt.Sprintf("%s (commit: %s)", pkg.BuildVersion, pkg.BuildCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.complete(cmd, stderr)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.writeMetrics(cmd.Context())
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", defaultConfigFile,
		"Path of the YAML file with the vCenter connection.")
	flags.StringVar(&opts.envFile, "env-file", "",
		"Path of a dotenv file that is loaded into the environment before the configuration is read.")
	flags.StringVarP(&opts.outputFormat, "output", "o", string(output.FormatTable),
		"Output format. One of: table, json, yaml.")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 0,
		"Log verbosity. Logs are written to stderr.")
	flags.StringVar(&opts.metricsTextfile, "metrics-textfile", "",
		"Path of a node-exporter textfile that the metrics are written to on exit.")

	cmd.AddCommand(
		newApplyCommand(opts),
		newGetCommand(opts),
		newListCommand(opts),
	)

	return cmd
}

// complete sets up logging and loads the configuration.
func (o *rootOptions) complete(cmd *cobra.Command, stderr io.Writer) error {
	logger := pkglog.New(stderr, o.verbosity)
	pkglog.SetDefault(logger)

	formatter, err := output.NewFormatter(output.Format(o.outputFormat))
	if err != nil {
		return err
	}
	o.formatter = formatter

	if o.envFile != "" {
		if err := pkgcfg.LoadEnvFile(o.envFile); err != nil {
			return err
		}
	}

	config, err := pkgcfg.Load(o.configFile)
	if err != nil {
		return err
	}

	o.metrics = metrics.NewReconcilerMetrics()

	ctx := pkgcfg.WithContext(cmd.Context(), config)
	ctx = logr.NewContext(ctx, logger.WithName("vmreconcile"))
	cmd.SetContext(ctx)

	logger.V(4).Info("Loaded configuration",
		"host", config.VCenter.Host,
		"datacenter", config.VCenter.Datacenter,
		"version", pkg.BuildVersion)

	return nil
}

func (o *rootOptions) reconcilerOptions(ctx context.Context) reconciler.Options {
	return reconciler.OptionsFromConfig(pkgcfg.FromContextOrDefault(ctx), o.metrics)
}

func (o *rootOptions) sessionFactory(ctx context.Context) providers.SessionFactory {
	return o.newSession(pkgcfg.FromContextOrDefault(ctx).VCenter)
}

func (o *rootOptions) writeMetrics(ctx context.Context) error {
	if o.metricsTextfile == "" {
		return nil
	}
	if err := metrics.WriteToTextfile(o.metricsTextfile); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", o.metricsTextfile, err)
	}
	pkglog.FromContextOrDefault(ctx).V(4).Info("Wrote metrics", "path", o.metricsTextfile)
	return nil
}
