package dag

// TopoOrder computes a dependency-respecting execution order using Kahn's
// algorithm: dequeue zero-in-degree units, decrement their dependents. The
// ready queue is seeded and drained in registration order, so the result is
// deterministic for a given registry state.
//
// Units that never reach in-degree zero (cycle members and anything
// downstream of a cycle) are returned in the second slice, in registration
// order. They are reported, never silently dropped; the scheduler submits
// them after the ordered set.
func (g *Graph) TopoOrder() (order []string, unordered []string) {
	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = len(g.deps[id])
	}

	var queue []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order = make([]string, 0, len(g.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		// Walk dependents in registration order to keep ties stable.
		for _, dep := range g.order {
			if _, ok := g.dependents[id][dep]; !ok {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) == len(g.order) {
		return order, nil
	}

	placed := make(map[string]struct{}, len(order))
	for _, id := range order {
		placed[id] = struct{}{}
	}
	for _, id := range g.order {
		if _, ok := placed[id]; !ok {
			unordered = append(unordered, id)
		}
	}
	return order, unordered
}
