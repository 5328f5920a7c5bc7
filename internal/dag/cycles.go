package dag

import "sort"

// CyclicNodes finds every unit that sits on a dependency cycle, using
// depth-first traversal with an explicit recursion stack. Revisiting a node
// that is still on the stack closes a cycle; all stack entries from that node
// onward are part of it. Units that merely depend on a cycle are not
// reported here. The result is sorted for stable output.
func (g *Graph) CyclicNodes() []string {
	const (
		unvisited = iota
		onStack
		done
	)

	state := make(map[string]int, len(g.order))
	cyclic := make(map[string]struct{})
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		state[id] = onStack
		stack = append(stack, id)

		for _, dep := range g.depOrder[id] {
			switch state[dep] {
			case unvisited:
				visit(dep)
			case onStack:
				// Everything on the stack from dep onward closes the cycle.
				for i := len(stack) - 1; i >= 0; i-- {
					cyclic[stack[i]] = struct{}{}
					if stack[i] == dep {
						break
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for _, id := range g.order {
		if state[id] == unvisited {
			visit(id)
		}
	}

	if len(cyclic) == 0 {
		return nil
	}
	out := make([]string, 0, len(cyclic))
	for id := range cyclic {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
