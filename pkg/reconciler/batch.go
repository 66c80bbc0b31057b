// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
	"github.com/vmware-tanzu/vm-reconciler/pkg/providers"
)

// Batch reconciles descriptors concurrently. Each worker creates its own
// session and Reconciler and reconciles its descriptors one at a time.
type Batch struct {
	NewSession providers.SessionFactory
	Options    Options

	// Workers defaults to one.
	Workers int
}

// Run reconciles the descriptors and returns their results in the same
// order. An error is returned only if a worker could not create a session.
func (b Batch) Run(ctx context.Context, descs []v1alpha1.ResourceDescriptor) ([]v1alpha1.Result, error) {
	results := make([]v1alpha1.Result, len(descs))
	if len(descs) == 0 {
		return results, nil
	}

	workers := min(max(b.Workers, 1), len(descs))

	jobs := make(chan int, len(descs))
	for i := range descs {
		jobs <- i
	}
	close(jobs)

	logger := pkglog.FromContextOrDefault(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			session, err := b.NewSession(gctx)
			if err != nil {
				return fmt.Errorf("worker %d failed to create a session: %w", w, err)
			}
			defer func() {
				if err := session.Close(context.WithoutCancel(gctx)); err != nil {
					logger.Error(err, "Failed to close session", "worker", w)
				}
			}()

			r := New(session, b.Options)
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = r.Reconcile(gctx, descs[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
