// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
)

// TableFormatter writes human readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

func (f *TableFormatter) WriteResults(w io.Writer, results []v1alpha1.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(tw, "PATH\tOUTCOME\tSTATE\tCHANGES\tERROR")
	}
	for _, r := range results {
		state := "-"
		if r.Snapshot != nil {
			state = string(r.Snapshot.State)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Path,
			r.Outcome,
			state,
			dash(strings.Join(r.ChangedProperties(), ",")),
			dash(r.Error))
	}

	return tw.Flush()
}

func (f *TableFormatter) WriteRecords(w io.Writer, records []v1alpha1.MachineRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No machines found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(tw, "PATH\tSTATE\tCPUS\tMEMORY\tRESOURCE POOL\tGUEST IP")
	}
	for _, r := range records {
		state := string(r.State)
		if r.Template {
			state = string(v1alpha1.MachineStateTemplate)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.Path,
			state,
			r.CPUs,
			formatMemory(r.Memory),
			dash(r.ResourcePool),
			dash(derefString(r.GuestIP)))
	}

	return tw.Flush()
}

// formatMemory formats megabytes, ex. "512 MiB" or "4 GiB".
func formatMemory(mb int64) string {
	if mb >= 1024 && mb%1024 == 0 {
		return fmt.Sprintf("%d GiB", mb/1024)
	}
	return fmt.Sprintf("%d MiB", mb)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
