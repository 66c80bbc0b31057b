// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"context"
	"io"

	"github.com/go-logr/logr"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"
)

// New returns a text logger that writes to w at the given verbosity.
func New(w io.Writer, verbosity int) logr.Logger {
	return textlogger.NewLogger(
		textlogger.NewConfig(
			textlogger.Output(w),
			textlogger.Verbosity(verbosity),
		))
}

// SetDefault makes logger the logger used by klog and by FromContextOrDefault
// when a context carries no logger.
func SetDefault(logger logr.Logger) {
	klog.SetLogger(logger)
}

// FromContextOrDefault returns a Logger from ctx. If no Logger is found, this
// returns the default klog logger so we at least don't accidentally discard
// logs. Prefer using this over logr.FromContextOrDiscard().
func FromContextOrDefault(ctx context.Context) logr.Logger {
	if logger, err := logr.FromContext(ctx); err == nil {
		return logger
	}
	return klog.Background().WithName("DEFAULT")
}
