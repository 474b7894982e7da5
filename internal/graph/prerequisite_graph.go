package graph

import "fmt"

// CycleError reports an edge insertion that would close a dependency cycle.
type CycleError struct {
	TemplateID             uint64
	PrerequisiteTemplateID uint64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("adding template %d as prerequisite of template %d would create a cycle",
		e.PrerequisiteTemplateID, e.TemplateID)
}

// PrerequisiteGraph is a directed acyclic graph over task template IDs.
// An edge (template, prerequisite) means the prerequisite must be satisfied
// before the template. The graph keeps a reverse adjacency alongside the
// forward one so that "what depends on me" is as cheap as "what do I depend on".
type PrerequisiteGraph struct {
	forward map[uint64]map[uint64]struct{} // template -> direct prerequisites
	reverse map[uint64]map[uint64]struct{} // template -> direct dependents
}

// New returns an empty prerequisite graph.
func New() *PrerequisiteGraph {
	return &PrerequisiteGraph{
		forward: make(map[uint64]map[uint64]struct{}),
		reverse: make(map[uint64]map[uint64]struct{}),
	}
}

// AddEdge records that prerequisiteID must be satisfied before templateID.
// It fails with *CycleError when prerequisiteID is already reachable from
// templateID. Adding an edge that already exists is a no-op.
func (g *PrerequisiteGraph) AddEdge(templateID, prerequisiteID uint64) error {
	if templateID == prerequisiteID {
		return &CycleError{TemplateID: templateID, PrerequisiteTemplateID: prerequisiteID}
	}
	if g.HasEdge(templateID, prerequisiteID) {
		return nil
	}
	// The new edge closes a cycle iff templateID is reachable from
	// prerequisiteID following existing prerequisite edges.
	if g.reachable(g.forward, prerequisiteID, templateID) {
		return &CycleError{TemplateID: templateID, PrerequisiteTemplateID: prerequisiteID}
	}

	addEdge(g.forward, templateID, prerequisiteID)
	addEdge(g.reverse, prerequisiteID, templateID)
	return nil
}

// RemoveEdge deletes the edge if present and reports whether it was found.
func (g *PrerequisiteGraph) RemoveEdge(templateID, prerequisiteID uint64) bool {
	if !g.HasEdge(templateID, prerequisiteID) {
		return false
	}
	delete(g.forward[templateID], prerequisiteID)
	delete(g.reverse[prerequisiteID], templateID)
	return true
}

// HasEdge reports whether prerequisiteID is a direct prerequisite of templateID.
func (g *PrerequisiteGraph) HasEdge(templateID, prerequisiteID uint64) bool {
	_, ok := g.forward[templateID][prerequisiteID]
	return ok
}

// TransitiveClosure returns every template reachable from templateID via
// prerequisite edges: the full set that must ultimately be satisfied before it.
func (g *PrerequisiteGraph) TransitiveClosure(templateID uint64) map[uint64]struct{} {
	return collect(g.forward, templateID)
}

// Dependents returns every template that depends on templateID, directly or
// transitively.
func (g *PrerequisiteGraph) Dependents(templateID uint64) map[uint64]struct{} {
	return collect(g.reverse, templateID)
}

// AvailableCandidates filters allTemplateIDs down to the templates that could
// safely be added as a prerequisite of templateID: everything except the
// template itself and everything that already depends on it. Input order is
// preserved.
func (g *PrerequisiteGraph) AvailableCandidates(templateID uint64, allTemplateIDs []uint64) []uint64 {
	dependents := g.Dependents(templateID)

	candidates := make([]uint64, 0, len(allTemplateIDs))
	for _, id := range allTemplateIDs {
		if id == templateID {
			continue
		}
		if _, ok := dependents[id]; ok {
			continue
		}
		candidates = append(candidates, id)
	}
	return candidates
}

// reachable reports whether target can be reached from start in adj.
func (g *PrerequisiteGraph) reachable(adj map[uint64]map[uint64]struct{}, start, target uint64) bool {
	_, ok := collect(adj, start)[target]
	return ok
}

// collect walks adj depth-first from start and returns every node visited,
// excluding start itself unless it sits on a path back to it. The visited set
// guards diamond-shaped graphs against revisits.
func collect(adj map[uint64]map[uint64]struct{}, start uint64) map[uint64]struct{} {
	visited := make(map[uint64]struct{})
	stack := make([]uint64, 0, len(adj[start]))
	for next := range adj[start] {
		stack = append(stack, next)
	}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[curr]; seen {
			continue
		}
		visited[curr] = struct{}{}
		for next := range adj[curr] {
			if _, seen := visited[next]; !seen {
				stack = append(stack, next)
			}
		}
	}
	return visited
}

func addEdge(adj map[uint64]map[uint64]struct{}, from, to uint64) {
	if adj[from] == nil {
		adj[from] = make(map[uint64]struct{})
	}
	adj[from][to] = struct{}{}
}
