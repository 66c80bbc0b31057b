// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

// Package v1alpha1 contains the types exchanged with callers of the
// reconciler: the descriptors of desired machines, the records of observed
// machines, and the results of reconciling one against the other.
package v1alpha1
