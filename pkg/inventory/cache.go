// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
	"github.com/vmware-tanzu/vm-reconciler/pkg/retry"
)

// MachinePropertyPaths are the properties retrieved for every machine by a
// bulk query.
func MachinePropertyPaths() []string {
	return []string{
		"name",
		"parent",
		"resourcePool",
		"summary.config",
		"summary.runtime.powerState",
		"summary.runtime.toolsInstallerMounted",
		"summary.guest",
		"config.annotation",
		"config.extraConfig",
		"config.flags",
		"config.cpuAffinity",
		"config.memoryAffinity",
		"config.template",
	}
}

// Querier issues bulk inventory queries.
type Querier interface {
	// BulkQuery returns the nodes below root, which is the inventory path of
	// a datacenter or folder, and the nodes above it up to the root folder.
	// Machines are retrieved with propertyPaths. Objects that vanish while
	// the query runs are omitted.
	BulkQuery(ctx context.Context, root string, propertyPaths []string) ([]Node, error)

	// About returns information about the vCenter server.
	About() About
}

// Cache holds the inventory of one reconciliation run. The inventory is
// loaded by the first read and reloaded by the first read after Invalidate.
// It is safe for concurrent readers.
type Cache struct {
	querier Querier
	root    string
	policy  retry.Policy

	mu    sync.RWMutex
	graph *Graph
}

// NewCache returns a cache of the inventory below root.
func NewCache(querier Querier, root string, policy retry.Policy) *Cache {
	return &Cache{
		querier: querier,
		root:    root,
		policy:  policy,
	}
}

// Root returns the inventory path of the root of the cache.
func (c *Cache) Root() string {
	return c.root
}

// Invalidate discards the loaded inventory. It must be called after any
// operation that changes the topology of the inventory.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.graph = nil
	c.mu.Unlock()
}

// Graph returns the inventory, loading it if needed.
func (c *Cache) Graph(ctx context.Context) (*Graph, error) {
	return retry.Value(ctx, c.policy, "bulkQuery", c.load)
}

func (c *Cache) load(ctx context.Context) (*Graph, error) {
	c.mu.RLock()
	g := c.graph
	c.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.graph != nil {
		return c.graph, nil
	}

	logger := logr.FromContextOrDiscard(ctx)
	logger.V(4).Info("Loading inventory", "root", c.root)

	nodes, err := c.querier.BulkQuery(ctx, c.root, MachinePropertyPaths())
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory below %s: %w", c.root, err)
	}
	c.graph = NewGraph(nodes, c.querier.About())

	logger.V(4).Info("Loaded inventory", "root", c.root, "objects", c.graph.Len())

	return c.graph, nil
}

// Lookup returns the record of the machine at path, or nil if there is no
// such machine. A machine that has not yet exposed its configuration causes
// the inventory to be reloaded until it does, or until the attempts are
// exhausted and a KindStillBooting error is returned.
func (c *Cache) Lookup(ctx context.Context, path string) (*v1alpha1.MachineRecord, error) {
	return retry.Value(ctx, c.policy, "lookup", func(ctx context.Context) (*v1alpha1.MachineRecord, error) {
		g, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		vm, ok := g.Machine(path)
		if !ok {
			return nil, nil
		}
		if !vm.Configured {
			c.Invalidate()
			return nil, &pkgerr.Error{
				Kind:   pkgerr.KindNotConfigured,
				Op:     "lookup",
				Path:   path,
				Reason: "machine has not exposed its configuration",
			}
		}
		r := g.Record(vm)
		return &r, nil
	})
}

// Records returns the records of all the machines in the inventory. Machines
// that have not yet exposed their configuration are omitted.
func (c *Cache) Records(ctx context.Context) ([]v1alpha1.MachineRecord, error) {
	g, err := c.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return g.Records(), nil
}
