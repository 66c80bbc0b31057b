// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
)

// JSONFormatter writes indented JSON arrays.
type JSONFormatter struct{}

func (f *JSONFormatter) WriteResults(w io.Writer, results []v1alpha1.Result) error {
	return writeJSON(w, nonNil(results))
}

func (f *JSONFormatter) WriteRecords(w io.Writer, records []v1alpha1.MachineRecord) error {
	return writeJSON(w, nonNil(records))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// nonNil returns an empty slice for nil so an empty list is rendered as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
