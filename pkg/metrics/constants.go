// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package metrics

const (
	// If this changes, the metrics collection configs (e.g. node-exporter
	// textfile dashboards) will need to be updated as well.
	metricsNamespace = "vmreconciler"

	operationLabel = "operation"
	resultLabel    = "result"
	kindLabel      = "kind"
	outcomeLabel   = "outcome"
	propertyLabel  = "property"
	pathLabel      = "path"

	resultSuccess = "success"
	resultFailure = "failure"
)
