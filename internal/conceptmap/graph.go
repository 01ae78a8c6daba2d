// Package conceptmap builds the prerequisite graph over extracted concepts
// and derives the learning order the planner consumes.
package conceptmap

import (
	"sort"
	"strings"

	"github.com/gabvrl/revisor/internal/analyzer"
)

// Node is a concept inside the dependency graph. Dependents is the inverse
// of Prerequisites, restricted to names that exist in the graph.
type Node struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	Priority      analyzer.Priority `json:"importance"`
	ExamRelevant  bool              `json:"exam_relevant"`
	Module        string            `json:"module,omitempty"`
	Prerequisites []string          `json:"prerequisites,omitempty"`
	Dependents    []string          `json:"dependents,omitempty"`
}

// Graph is the concept dependency graph. Node lookup is case-insensitive on
// the concept name; iteration order is the insertion order, which keeps every
// derived result deterministic.
type Graph struct {
	nodes      map[string]*Node
	order      []string
	categories map[string][]string
	catOrder   []string
}

// Build constructs the graph from analyzed concepts. Duplicate names keep
// the first occurrence.
func Build(concepts []analyzer.Concept) *Graph {
	g := &Graph{
		nodes:      make(map[string]*Node, len(concepts)),
		categories: make(map[string][]string),
	}
	for _, c := range concepts {
		key := nameKey(c.Name)
		if key == "" {
			continue
		}
		if _, exists := g.nodes[key]; exists {
			continue
		}
		node := &Node{
			ID:            c.ID,
			Name:          c.Name,
			Category:      c.Category,
			Priority:      c.Priority.Normalize(),
			ExamRelevant:  c.ExamRelevant,
			Module:        c.SourceModule,
			Prerequisites: append([]string(nil), c.Prerequisites...),
		}
		g.nodes[key] = node
		g.order = append(g.order, key)
		if _, seen := g.categories[c.Category]; !seen {
			g.catOrder = append(g.catOrder, c.Category)
		}
		g.categories[c.Category] = append(g.categories[c.Category], c.Name)
	}
	// Inverse edges, only for prerequisites present in the graph.
	for _, key := range g.order {
		node := g.nodes[key]
		for _, prereq := range node.Prerequisites {
			if dep, ok := g.nodes[nameKey(prereq)]; ok && dep != node {
				dep.Dependents = append(dep.Dependents, node.Name)
			}
		}
	}
	return g
}

// Len returns the number of concepts in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Node looks a concept up by name, case-insensitively.
func (g *Graph) Node(name string) (*Node, bool) {
	node, ok := g.nodes[nameKey(name)]
	return node, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.nodes[key])
	}
	return out
}

// Categories returns category names in first-seen order with their concepts.
func (g *Graph) Categories() map[string][]string {
	out := make(map[string][]string, len(g.categories))
	for cat, names := range g.categories {
		out[cat] = append([]string(nil), names...)
	}
	return out
}

// LearningOrder returns the concept names in the order the student should
// study them: a Kahn topological sort over prerequisites, breaking ties by
// priority tier and then insertion order. Concepts trapped in prerequisite
// cycles are appended afterwards in priority order rather than dropped.
func (g *Graph) LearningOrder() []string {
	inDegree := make(map[string]int, len(g.order))
	for _, key := range g.order {
		count := 0
		for _, prereq := range g.nodes[key].Prerequisites {
			pk := nameKey(prereq)
			if pk != key && g.nodes[pk] != nil {
				count++
			}
		}
		inDegree[key] = count
	}

	position := make(map[string]int, len(g.order))
	for i, key := range g.order {
		position[key] = i
	}
	less := func(a, b string) bool {
		ra, rb := g.nodes[a].Priority.Rank(), g.nodes[b].Priority.Rank()
		if ra != rb {
			return ra < rb
		}
		return position[a] < position[b]
	}

	var queue []string
	for _, key := range g.order {
		if inDegree[key] == 0 {
			queue = append(queue, key)
		}
	}

	result := make([]string, 0, len(g.order))
	emitted := make(map[string]bool, len(g.order))
	for len(queue) > 0 {
		sort.Slice(queue, func(i, j int) bool { return less(queue[i], queue[j]) })
		current := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[current].Name)
		emitted[current] = true
		for _, depName := range g.nodes[current].Dependents {
			dk := nameKey(depName)
			inDegree[dk]--
			if inDegree[dk] == 0 {
				queue = append(queue, dk)
			}
		}
	}

	// Cycle leftovers.
	var leftover []string
	for _, key := range g.order {
		if !emitted[key] {
			leftover = append(leftover, key)
		}
	}
	sort.Slice(leftover, func(i, j int) bool { return less(leftover[i], leftover[j]) })
	for _, key := range leftover {
		result = append(result, g.nodes[key].Name)
	}
	return result
}

// PrerequisiteChain returns every concept that must be understood before the
// named one, in study order. The concept itself is excluded.
func (g *Graph) PrerequisiteChain(name string) []string {
	start, ok := g.nodes[nameKey(name)]
	if !ok {
		return nil
	}
	var chain []string
	visited := map[string]bool{}
	var walk func(node *Node)
	walk = func(node *Node) {
		key := nameKey(node.Name)
		if visited[key] {
			return
		}
		visited[key] = true
		for _, prereq := range node.Prerequisites {
			if p, ok := g.nodes[nameKey(prereq)]; ok {
				walk(p)
			}
		}
		chain = append(chain, node.Name)
	}
	walk(start)
	return chain[:len(chain)-1]
}

// Impact reports which concepts depend, directly or transitively, on the
// named one.
type Impact struct {
	Concept          string   `json:"concept"`
	DirectDependents []string `json:"direct_dependents"`
	AllDependents    []string `json:"all_dependents"`
	ImpactScore      int      `json:"impact_score"`
	Foundational     bool     `json:"is_foundational"`
}

// ImpactOf computes the transitive dependent set for one concept.
func (g *Graph) ImpactOf(name string) (Impact, bool) {
	node, ok := g.nodes[nameKey(name)]
	if !ok {
		return Impact{}, false
	}
	seen := map[string]bool{}
	var all []string
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, depName := range n.Dependents {
			dk := nameKey(depName)
			if seen[dk] {
				continue
			}
			seen[dk] = true
			all = append(all, g.nodes[dk].Name)
			walk(g.nodes[dk])
		}
	}
	walk(node)
	return Impact{
		Concept:          node.Name,
		DirectDependents: append([]string(nil), node.Dependents...),
		AllDependents:    all,
		ImpactScore:      len(all),
		Foundational:     len(all) > 5,
	}, true
}

// Gap describes a concept the student has not mastered yet and what blocks it.
type Gap struct {
	Concept        string            `json:"concept"`
	Priority       analyzer.Priority `json:"importance"`
	ExamRelevant   bool              `json:"exam_relevant"`
	BlockingCount  int               `json:"blocking_count"`
	MissingPrereqs []string          `json:"missing_prereqs,omitempty"`
	ReadyToLearn   bool              `json:"ready_to_learn"`
}

// KnowledgeGaps lists unmastered concepts that matter (exam-relevant or with
// dependents), most urgent first.
func (g *Graph) KnowledgeGaps(known []string) []Gap {
	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[nameKey(name)] = true
	}
	var gaps []Gap
	for _, key := range g.order {
		if knownSet[key] {
			continue
		}
		node := g.nodes[key]
		if !node.ExamRelevant && len(node.Dependents) == 0 {
			continue
		}
		var missing []string
		for _, prereq := range node.Prerequisites {
			if !knownSet[nameKey(prereq)] {
				missing = append(missing, prereq)
			}
		}
		gaps = append(gaps, Gap{
			Concept:        node.Name,
			Priority:       node.Priority,
			ExamRelevant:   node.ExamRelevant,
			BlockingCount:  len(node.Dependents),
			MissingPrereqs: missing,
			ReadyToLearn:   len(missing) == 0,
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		ri, rj := gaps[i].Priority.Rank(), gaps[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return gaps[i].BlockingCount > gaps[j].BlockingCount
	})
	return gaps
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
