// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

// Package output renders reconcile results and machine records.
package output

import (
	"fmt"
	"io"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats are the supported formats.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// Formatter writes results and records to w.
type Formatter interface {
	WriteResults(w io.Writer, results []v1alpha1.Result) error
	WriteRecords(w io.Writer, records []v1alpha1.MachineRecord) error
}

// NewFormatter returns the formatter for the format.
func NewFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatTable, "":
		return &TableFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", format)
}
