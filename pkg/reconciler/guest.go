// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	"github.com/vmware-tanzu/vm-reconciler/pkg/constants"
	pkgctx "github.com/vmware-tanzu/vm-reconciler/pkg/context"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
	"github.com/vmware-tanzu/vm-reconciler/pkg/retry"
)

// runCreateCommand starts the descriptor's create command in the guest of a
// newly created machine.
func (r *Reconciler) runCreateCommand(mctx *pkgctx.MachineContext, ref providers.Ref) error {
	cmd := mctx.Desc.CreateCommand

	rec, err := r.lookupExisting(mctx)
	if err != nil {
		return err
	}
	if rec.State != v1alpha1.MachineStateRunning {
		return pkgerr.Userf(mctx.Desc.Path,
			"create_command requires a running machine but the machine is %s", rec.State)
	}

	auth := providers.GuestAuth{
		User:     cmd.User,
		Password: cmd.Password,
	}
	program := providers.GuestProgram{
		Path:             cmd.Command,
		Arguments:        cmd.Arguments,
		WorkingDirectory: cmd.WorkingDirectory,
	}
	if program.WorkingDirectory == "" {
		program.WorkingDirectory = constants.DefaultGuestWorkingDirectory
	}

	policy := r.opts.GuestRetry

	err = policy.Do(mctx, "validateGuestCredentials", func(ctx context.Context) error {
		return r.session.ValidateGuestCredentials(ctx, ref, auth)
	})
	if err != nil {
		return err
	}

	mctx.Logger.Info("Starting guest program", "command", program.Path)

	pid, err := retry.Value(mctx, policy, "startGuestProgram",
		func(ctx context.Context) (int64, error) {
			return r.session.StartGuestProgram(ctx, ref, auth, program)
		})
	if err != nil {
		return err
	}

	mctx.AddChanges(v1alpha1.Change{
		Property: PropertyCommand,
		To:       program.Path,
		Action:   "startGuestProgram",
	})

	process := v1alpha1.GuestProcess{PID: pid, Name: program.Path}
	procs, err := retry.Value(mctx, policy, "listGuestProcesses",
		func(ctx context.Context) ([]v1alpha1.GuestProcess, error) {
			return r.session.ListGuestProcesses(ctx, ref, auth, []int64{pid})
		})
	if err != nil {
		mctx.Logger.Error(err, "Failed to read the guest program state", "pid", pid)
	} else if len(procs) > 0 {
		process = procs[0]
	}
	mctx.Result.Process = &process

	return nil
}
