// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"slices"
	"sort"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
)

// About describes the vCenter server.
type About struct {
	Name         string
	Version      string
	FullVersion  string
	InstanceUUID string
}

// Graph is the inventory returned by one bulk query, indexed by reference.
type Graph struct {
	nodes    map[Ref]Node
	machines map[string]*VirtualMachine
	about    About
}

// NewGraph returns a graph of the provided nodes. When a reference appears
// more than once the last node wins.
func NewGraph(nodes []Node, about About) *Graph {
	g := &Graph{
		nodes:    make(map[Ref]Node, len(nodes)),
		machines: map[string]*VirtualMachine{},
		about:    about,
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		g.nodes[n.Reference()] = n
	}
	for _, n := range g.nodes {
		if vm, ok := asMachine(n); ok {
			g.machines[g.Path(vm.Ref)] = vm
		}
	}
	return g
}

func asMachine(n Node) (*VirtualMachine, bool) {
	switch vm := n.(type) {
	case *VirtualMachine:
		return vm, true
	case VirtualMachine:
		return &vm, true
	}
	return nil, false
}

// Get returns the node for the reference.
func (g *Graph) Get(ref Ref) (Node, bool) {
	n, ok := g.nodes[ref]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// About returns the information about the vCenter server.
func (g *Graph) About() About {
	return g.about
}

// Machine returns the machine at path.
func (g *Graph) Machine(path string) (*VirtualMachine, bool) {
	vm, ok := g.machines[normalize(path)]
	return vm, ok
}

// MachinePaths returns the paths of all machines in sorted order.
func (g *Graph) MachinePaths() []string {
	paths := make([]string, 0, len(g.machines))
	for p := range g.machines {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// WalkUntil follows parent references from start and returns the nodes that
// were visited, beginning with start, up to but excluding the first node for
// which boundary returns true. That node is also returned, or nil if the walk
// ran out of parents first.
func (g *Graph) WalkUntil(start Ref, boundary func(Node) bool) ([]Node, Node) {
	var (
		chain   []Node
		visited = map[Ref]struct{}{}
		ref     = &start
	)
	for ref != nil {
		if _, ok := visited[*ref]; ok {
			return chain, nil
		}
		visited[*ref] = struct{}{}

		n, ok := g.nodes[*ref]
		if !ok {
			return chain, nil
		}
		if boundary(n) {
			return chain, n
		}
		chain = append(chain, n)
		ref = n.ParentRef()
	}
	return chain, nil
}

// Path returns the inventory path of the node: the names of the node and its
// ancestors, excluding the root folder.
func (g *Graph) Path(ref Ref) string {
	chain, _ := g.WalkUntil(ref, IsRoot)
	return v1alpha1.JoinPath(reversedNames(chain)...)
}

// ResourcePoolPath returns /<compute resource>/<pool...> for a resource pool.
// The compute resource's implicit top-level pool is omitted.
func (g *Graph) ResourcePoolPath(ref Ref) (string, Node) {
	chain, compute := g.WalkUntil(ref, IsComputeBoundary)
	names := reversedNames(chain)
	if len(names) > 0 {
		names = names[1:]
	}
	if compute != nil {
		names = append([]string{compute.ObjectName()}, names...)
	}
	return v1alpha1.JoinPath(names...), compute
}

// Datacenter returns the datacenter to which the node belongs.
func (g *Graph) Datacenter(ref Ref) (Node, bool) {
	_, dc := g.WalkUntil(ref, IsDatacenter)
	return dc, dc != nil
}

func reversedNames(chain []Node) []string {
	names := make([]string, len(chain))
	for i := range chain {
		names[len(chain)-1-i] = chain[i].ObjectName()
	}
	return names
}

func normalize(p string) string {
	return v1alpha1.JoinPath(v1alpha1.SplitPath(p)...)
}

// FolderSegments returns the folder segments of a machine path, excluding
// the datacenter, the datacenter's machine folder, and the name.
func FolderSegments(path string) []string {
	mp, err := v1alpha1.ParsePath(path)
	if err != nil {
		return nil
	}
	return slices.Clone(mp.Folder)
}
