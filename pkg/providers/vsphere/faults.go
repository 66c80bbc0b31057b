// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vsphere

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/vmware/govmomi/fault"
	"github.com/vmware/govmomi/find"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers/vsphere/vcenter"
)

// classification is the Kind and, for guest faults, the reason assigned to a
// vSphere fault.
type classification struct {
	kind  pkgerr.Kind
	guest pkgerr.GuestReason
}

// faultKinds maps the vSphere faults the reconciler distinguishes to their
// class. Faults that are not listed are classified as KindUnknown.
var faultKinds = []struct {
	fault vimtypes.BaseMethodFault
	class classification
}{
	{&vimtypes.HostCommunication{}, classification{kind: pkgerr.KindTransient}},
	{&vimtypes.SystemError{}, classification{kind: pkgerr.KindTransient}},
	{&vimtypes.DatabaseError{}, classification{kind: pkgerr.KindTransient}},
	{&vimtypes.RequestCanceled{}, classification{kind: pkgerr.KindTransient}},
	{&vimtypes.TaskInProgress{}, classification{kind: pkgerr.KindTransient}},
	{&vimtypes.GuestOperationsUnavailable{}, classification{kind: pkgerr.KindTransient}},

	{&vimtypes.ManagedObjectNotFound{}, classification{kind: pkgerr.KindVanished}},

	{&vimtypes.NotFound{}, classification{kind: pkgerr.KindNotFound}},

	{&vimtypes.GuestComponentsOutOfDate{}, classification{kind: pkgerr.KindGuest, guest: pkgerr.GuestReasonToolsOutOfDate}},
	{&vimtypes.InvalidGuestLogin{}, classification{kind: pkgerr.KindGuest, guest: pkgerr.GuestReasonInvalidLogin}},
	{&vimtypes.OperationDisabledByGuest{}, classification{kind: pkgerr.KindGuest, guest: pkgerr.GuestReasonOperationDisabled}},
	{&vimtypes.OperationNotSupportedByGuest{}, classification{kind: pkgerr.KindGuest, guest: pkgerr.GuestReasonOperationNotSupported}},

	{&vimtypes.InvalidArgument{}, classification{kind: pkgerr.KindInternal}},
	{&vimtypes.InvalidProperty{}, classification{kind: pkgerr.KindInternal}},
	{&vimtypes.InvalidType{}, classification{kind: pkgerr.KindInternal}},
	{&vimtypes.InvalidRequest{}, classification{kind: pkgerr.KindInternal}},
	{&vimtypes.MethodNotFound{}, classification{kind: pkgerr.KindInternal}},

	{&vimtypes.DuplicateName{}, classification{kind: pkgerr.KindUser}},
	{&vimtypes.InvalidName{}, classification{kind: pkgerr.KindUser}},
	{&vimtypes.InvalidPowerState{}, classification{kind: pkgerr.KindUser}},
	{&vimtypes.InvalidState{}, classification{kind: pkgerr.KindUser}},
	{&vimtypes.InvalidLogin{}, classification{kind: pkgerr.KindUser}},
	{&vimtypes.NoPermission{}, classification{kind: pkgerr.KindUser}},
}

// classify returns the class of err.
func classify(err error) classification {
	for e := err; e != nil; e = errors.Unwrap(e) {
		for i := range faultKinds {
			if fault.Is(e, faultKinds[i].fault) {
				return faultKinds[i].class
			}
		}
	}

	var (
		notFoundErr *find.NotFoundError
		netErr      net.Error
		urlErr      *url.Error
	)
	switch {
	case errors.Is(err, vcenter.ErrNotFound), errors.As(err, &notFoundErr):
		return classification{kind: pkgerr.KindNotFound}
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		return classification{kind: pkgerr.KindTransient}
	}

	return classification{kind: pkgerr.KindUnknown}
}

// translate is the only place where vSphere faults are turned into
// pkg/errors values. Errors that are already classified are returned as is.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerr.KindOf(err) != pkgerr.KindUnknown {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	c := classify(err)
	return &pkgerr.Error{
		Kind:  c.kind,
		Op:    op,
		Guest: c.guest,
		Err:   err,
	}
}
