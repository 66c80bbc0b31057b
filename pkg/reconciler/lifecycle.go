// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"strings"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
)

// Action is a remote operation issued by the reconciler.
type Action string

const (
	ActionCreate     Action = "create"
	ActionPowerOn    Action = "powerOn"
	ActionPowerOff   Action = "powerOff"
	ActionSuspend    Action = "suspend"
	ActionReset      Action = "reset"
	ActionDestroy    Action = "destroy"
	ActionUnregister Action = "unregister"
)

// Step is one structural operation.
type Step struct {
	Action Action

	// PowerOn is used by ActionCreate.
	PowerOn bool
}

func (s Step) String() string {
	if s.Action == ActionCreate && s.PowerOn {
		return string(s.Action) + "+" + string(ActionPowerOn)
	}
	return string(s.Action)
}

// Steps is an ordered list of steps.
type Steps []Step

func (s Steps) String() string {
	names := make([]string, len(s))
	for i := range s {
		names[i] = s[i].String()
	}
	return strings.Join(names, ",")
}

// inSync lists the observed states that satisfy each desired state.
var inSync = map[v1alpha1.EnsureState][]v1alpha1.MachineState{
	v1alpha1.EnsurePresent: {
		v1alpha1.MachineStateRunning,
		v1alpha1.MachineStateStopped,
		v1alpha1.MachineStateSuspended,
		v1alpha1.MachineStateTemplate,
		v1alpha1.MachineStateUnknown,
	},
	v1alpha1.EnsureRunning:      {v1alpha1.MachineStateRunning},
	v1alpha1.EnsureStopped:      {v1alpha1.MachineStateStopped},
	v1alpha1.EnsureSuspended:    {v1alpha1.MachineStateSuspended},
	v1alpha1.EnsureAbsent:       {v1alpha1.MachineStateAbsent},
	v1alpha1.EnsureUnregistered: {v1alpha1.MachineStateAbsent},
	v1alpha1.EnsureReset:        nil,
}

// InSync returns true if a machine in the observed state satisfies the
// desired state.
func InSync(desired v1alpha1.EnsureState, observed v1alpha1.MachineState) bool {
	for _, s := range inSync[desired] {
		if s == observed {
			return true
		}
	}
	return false
}

// Plan returns the structural operations that converge a machine in the
// observed state toward the descriptor's desired state. An empty plan means
// the machine is in sync. Illegal transitions return a KindUser error.
func Plan(observed v1alpha1.MachineState, d v1alpha1.ResourceDescriptor) (Steps, error) {
	ensure := d.EnsureOrDefault()

	if err := checkTemplate(observed, ensure, d); err != nil {
		return nil, err
	}
	if InSync(ensure, observed) {
		return nil, nil
	}

	illegal := func() error {
		if observed == v1alpha1.MachineStateUnknown {
			return pkgerr.Userf(d.Path,
				"cannot ensure %s: the power state of the machine is unknown", ensure)
		}
		return pkgerr.Userf(d.Path,
			"cannot ensure %s: the machine is %s", ensure, observed)
	}

	switch ensure {
	case v1alpha1.EnsurePresent, v1alpha1.EnsureRunning:
		switch observed {
		case v1alpha1.MachineStateAbsent:
			return Steps{{Action: ActionCreate, PowerOn: !d.Template}}, nil
		case v1alpha1.MachineStateStopped, v1alpha1.MachineStateSuspended:
			return Steps{{Action: ActionPowerOn}}, nil
		}

	case v1alpha1.EnsureStopped:
		switch observed {
		case v1alpha1.MachineStateAbsent:
			return Steps{{Action: ActionCreate}}, nil
		case v1alpha1.MachineStateRunning:
			return Steps{{Action: ActionPowerOff}}, nil
		case v1alpha1.MachineStateSuspended:
			return Steps{{Action: ActionPowerOn}, {Action: ActionPowerOff}}, nil
		}

	case v1alpha1.EnsureSuspended:
		if observed == v1alpha1.MachineStateRunning {
			return Steps{{Action: ActionSuspend}}, nil
		}

	case v1alpha1.EnsureReset:
		switch observed {
		case v1alpha1.MachineStateRunning:
			return Steps{{Action: ActionReset}}, nil
		case v1alpha1.MachineStateStopped, v1alpha1.MachineStateSuspended:
			return Steps{{Action: ActionPowerOn}}, nil
		}

	case v1alpha1.EnsureAbsent, v1alpha1.EnsureUnregistered:
		remove := Step{Action: ActionUnregister}
		if ensure == v1alpha1.EnsureAbsent && d.DeleteFromDiskOrDefault() {
			remove = Step{Action: ActionDestroy}
		}
		switch observed {
		case v1alpha1.MachineStateStopped, v1alpha1.MachineStateTemplate:
			return Steps{remove}, nil
		case v1alpha1.MachineStateUnknown:
			// Removal does not depend on the power state.
			return Steps{remove}, nil
		case v1alpha1.MachineStateRunning:
			return Steps{{Action: ActionPowerOff}, remove}, nil
		case v1alpha1.MachineStateSuspended:
			// A suspended machine must be resumed before it can be powered
			// off.
			return Steps{{Action: ActionPowerOn}, {Action: ActionPowerOff}, remove}, nil
		}

	default:
		return nil, pkgerr.Userf(d.Path, "invalid ensure value %q", ensure)
	}

	return nil, illegal()
}

func checkTemplate(
	observed v1alpha1.MachineState,
	ensure v1alpha1.EnsureState,
	d v1alpha1.ResourceDescriptor) error {

	switch ensure {
	case v1alpha1.EnsureAbsent, v1alpha1.EnsureUnregistered:
		return nil
	}

	switch observed {
	case v1alpha1.MachineStateAbsent:
		if d.Template && ensure != v1alpha1.EnsurePresent {
			return pkgerr.Userf(d.Path, "a template cannot be ensured %s", ensure)
		}
	case v1alpha1.MachineStateTemplate:
		if ensure != v1alpha1.EnsurePresent {
			return pkgerr.Userf(d.Path, "the machine is a template and cannot be ensured %s", ensure)
		}
		if !d.Template {
			return pkgerr.Userf(d.Path, "the machine is a template but template is false")
		}
	default:
		if d.Template {
			return pkgerr.Userf(d.Path, "the machine is not a template but template is true")
		}
	}
	return nil
}
