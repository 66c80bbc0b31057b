// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/metrics"
)

// Policy wraps remote calls with a bounded exponential backoff. The faults
// that are retried are selected by their pkg/errors Kind:
//
//   - KindTransient and KindVanished are retried up to MaxAttempts times.
//   - KindNotConfigured is retried up to NotConfiguredAttempts times, after
//     which a KindStillBooting error is returned.
//   - Every other error is returned immediately.
type Policy struct {
	MaxAttempts           int
	NotConfiguredAttempts int
	BaseDelay             time.Duration
	MaxDelay              time.Duration
	Factor                float64
	Jitter                float64

	// Metrics is optional.
	Metrics *metrics.ReconcilerMetrics
}

// FromConfig returns a Policy for the provided retry configuration.
func FromConfig(c pkgcfg.Retry) Policy {
	return Policy{
		MaxAttempts:           c.MaxAttempts,
		NotConfiguredAttempts: c.NotConfiguredAttempts,
		BaseDelay:             c.BaseDelay,
		MaxDelay:              c.MaxDelay,
		Factor:                c.Factor,
		Jitter:                c.Jitter,
	}
}

// WithMetrics returns a copy of the policy that records its attempts.
func (p Policy) WithMetrics(m *metrics.ReconcilerMetrics) Policy {
	p.Metrics = m
	return p
}

// Do calls fn until it succeeds, returns an error that is not retried, or the
// attempts for the kind of error it returns are exhausted.
func (p Policy) Do(
	ctx context.Context,
	op string,
	fn func(context.Context) error) error {

	var (
		logger        = logr.FromContextOrDiscard(ctx).WithValues("operation", op)
		transient     int
		notConfigured int
		backoff       = wait.Backoff{
			Duration: p.BaseDelay,
			Factor:   p.Factor,
			Jitter:   p.Jitter,
			Steps:    math.MaxInt32,
		}
	)

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if p.Metrics != nil {
			p.Metrics.RegisterRemoteCall(op, err)
		}
		if err == nil {
			return nil
		}

		kind := pkgerr.KindOf(err)
		switch kind {
		case pkgerr.KindTransient, pkgerr.KindVanished:
			transient++
			if transient >= max(p.MaxAttempts, 1) {
				return &pkgerr.Error{
					Kind:     pkgerr.KindExhausted,
					Op:       op,
					Attempts: attempt,
					Err:      err,
				}
			}
		case pkgerr.KindNotConfigured:
			notConfigured++
			if notConfigured >= max(p.NotConfiguredAttempts, 1) {
				return &pkgerr.Error{
					Kind:     pkgerr.KindStillBooting,
					Op:       op,
					Attempts: attempt,
					Err:      err,
				}
			}
		default:
			return err
		}

		delay := backoff.Step()
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}

		logger.V(4).Info("Retrying remote call",
			"kind", kind.String(),
			"attempt", attempt,
			"delay", delay.String(),
			"err", err.Error())
		if p.Metrics != nil {
			p.Metrics.RegisterRetry(logger, op, kind.String())
		}

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s interrupted after %d attempts: %w", op, attempt, err)
		}
	}
}

// Value is like Do but returns the value produced by fn.
func Value[T any](
	ctx context.Context,
	p Policy,
	op string,
	fn func(context.Context) (T, error)) (T, error) {

	var out T
	err := p.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
