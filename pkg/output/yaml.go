// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
)

// YAMLFormatter writes YAML lists.
type YAMLFormatter struct{}

func (f *YAMLFormatter) WriteResults(w io.Writer, results []v1alpha1.Result) error {
	return writeYAML(w, nonNil(results))
}

func (f *YAMLFormatter) WriteRecords(w io.Writer, records []v1alpha1.MachineRecord) error {
	return writeYAML(w, nonNil(records))
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
