// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vcenter

import (
	"errors"
)

// ErrNotFound is wrapped by the errors returned when a named object does not
// exist.
var ErrNotFound = errors.New("not found")
