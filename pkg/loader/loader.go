// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

// Package loader reads resource descriptors from YAML or JSON files.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apierrorsutil "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	"github.com/vmware-tanzu/vm-reconciler/pkg/constants"
	"github.com/vmware-tanzu/vm-reconciler/pkg/validation"
)

// machinesKey is the top-level key of a file with a list of descriptors.
const machinesKey = "machines"

// LoadFromFile loads the descriptors from the file at path. A path of "-"
// reads from stdin.
func LoadFromFile(path string) ([]v1alpha1.ResourceDescriptor, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	descs, err := LoadFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return descs, nil
}

// LoadFromYAML loads descriptors from a single descriptor, a list of
// descriptors, or a mapping with a machines list. Defaults are applied and
// every descriptor is validated.
func LoadFromYAML(data []byte) ([]v1alpha1.ResourceDescriptor, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	jsonData = bytes.TrimSpace(jsonData)

	var descs []v1alpha1.ResourceDescriptor

	switch {
	case len(jsonData) == 0 || bytes.Equal(jsonData, []byte("null")):
		return nil, fmt.Errorf("no descriptors found")

	case jsonData[0] == '[':
		if err := yaml.UnmarshalStrict(jsonData, &descs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal descriptors: %w", err)
		}

	default:
		var top map[string]json.RawMessage
		if err := json.Unmarshal(jsonData, &top); err != nil {
			return nil, fmt.Errorf("failed to unmarshal descriptors: %w", err)
		}
		if machines, ok := top[machinesKey]; ok && len(top) == 1 {
			if err := yaml.UnmarshalStrict(machines, &descs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal %s: %w", machinesKey, err)
			}
		} else {
			var d v1alpha1.ResourceDescriptor
			if err := yaml.UnmarshalStrict(jsonData, &d); err != nil {
				return nil, fmt.Errorf("failed to unmarshal descriptor: %w", err)
			}
			descs = append(descs, d)
		}
	}

	if len(descs) == 0 {
		return nil, fmt.Errorf("no descriptors found")
	}

	var errs []error
	seen := make(map[string]int, len(descs))
	for i := range descs {
		ApplyDefaults(&descs[i])

		if err := validation.ValidateDescriptor(descs[i]); err != nil {
			errs = append(errs, fmt.Errorf("descriptor %d: %w", i, err))
			continue
		}
		if j, ok := seen[descs[i].Path]; ok {
			errs = append(errs, fmt.Errorf(
				"descriptor %d: path %s is also described by descriptor %d", i, descs[i].Path, j))
			continue
		}
		seen[descs[i].Path] = i
	}
	if err := apierrorsutil.NewAggregate(errs); err != nil {
		return nil, err
	}

	return descs, nil
}

// ApplyDefaults sets the optional fields that were omitted.
func ApplyDefaults(d *v1alpha1.ResourceDescriptor) {
	if d.Ensure == "" {
		d.Ensure = v1alpha1.EnsurePresent
	}
	if d.SourceType == "" {
		d.SourceType = v1alpha1.SourceTypeVM
	}
	if d.DeleteFromDisk == nil {
		d.DeleteFromDisk = ptr.To(true)
	}
	if d.CreateCommand != nil && d.CreateCommand.WorkingDirectory == "" {
		d.CreateCommand.WorkingDirectory = constants.DefaultGuestWorkingDirectory
	}
}
