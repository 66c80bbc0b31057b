// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package virtualmachine

import (
	"context"

	"github.com/vmware/govmomi/guest"
	"github.com/vmware/govmomi/object"
	vimtypes "github.com/vmware/govmomi/vim25/types"
	"k8s.io/utils/ptr"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
)

func guestAuth(auth providers.GuestAuth) *vimtypes.NamePasswordAuthentication {
	return &vimtypes.NamePasswordAuthentication{
		Username: auth.User,
		Password: auth.Password,
	}
}

// ValidateGuestCredentials checks the credentials against the guest of the
// VM.
func ValidateGuestCredentials(
	ctx context.Context,
	vm *object.VirtualMachine,
	auth providers.GuestAuth) error {

	m, err := guest.NewOperationsManager(vm.Client(), vm.Reference()).AuthManager(ctx)
	if err != nil {
		return err
	}
	return m.ValidateCredentials(ctx, guestAuth(auth))
}

// StartGuestProgram starts the program in the guest of the VM and returns its
// process ID.
func StartGuestProgram(
	ctx context.Context,
	vm *object.VirtualMachine,
	auth providers.GuestAuth,
	program providers.GuestProgram) (int64, error) {

	m, err := guest.NewOperationsManager(vm.Client(), vm.Reference()).ProcessManager(ctx)
	if err != nil {
		return 0, err
	}
	return m.StartProgram(ctx, guestAuth(auth), &vimtypes.GuestProgramSpec{
		ProgramPath:      program.Path,
		Arguments:        program.Arguments,
		WorkingDirectory: program.WorkingDirectory,
	})
}

// ListGuestProcesses returns the processes with the given IDs that were
// started in the guest of the VM.
func ListGuestProcesses(
	ctx context.Context,
	vm *object.VirtualMachine,
	auth providers.GuestAuth,
	pids []int64) ([]v1alpha1.GuestProcess, error) {

	m, err := guest.NewOperationsManager(vm.Client(), vm.Reference()).ProcessManager(ctx)
	if err != nil {
		return nil, err
	}

	infos, err := m.ListProcesses(ctx, guestAuth(auth), pids)
	if err != nil {
		return nil, err
	}

	procs := make([]v1alpha1.GuestProcess, 0, len(infos))
	for i := range infos {
		procs = append(procs, GuestProcess(infos[i]))
	}
	return procs, nil
}

// GuestProcess returns the process for the info. The exit code is only set
// once the process has ended.
func GuestProcess(info vimtypes.GuestProcessInfo) v1alpha1.GuestProcess {
	p := v1alpha1.GuestProcess{
		PID:  info.Pid,
		Name: info.Name,
	}
	if !info.StartTime.IsZero() {
		p.StartTime = ptr.To(info.StartTime.UTC())
	}
	if info.EndTime != nil {
		p.EndTime = ptr.To(info.EndTime.UTC())
		p.ExitCode = ptr.To(info.ExitCode)
	}
	return p
}
