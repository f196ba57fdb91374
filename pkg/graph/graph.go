package graph

import (
	"fmt"

	"github.com/doculens/backend/pkg/common"
	"github.com/doculens/backend/pkg/logger"
)

// Graph is a directed knowledge graph built for one document's analysis pass.
// Nodes are keyed by entity text. A Graph value is immutable after Build
// returns; query operations never mutate it, so one value can serve
// concurrent requests.
type Graph struct {
	order []string
	nodes map[string]*node

	// out maps source -> target -> relation. Adding an edge for an existing
	// (source, target) pair overwrites the relation.
	out map[string]map[string]string
	in  map[string]map[string]struct{}

	// edgeOrder records first insertion of each (source, target) pair so
	// serialization stays deterministic.
	edgeOrder []edgeKey

	typeCounts map[string]int
	typeOrder  []string

	buildErr string
}

type node struct {
	typ   string
	label string
}

type edgeKey struct {
	source string
	target string
}

const defaultRelation = "related_to"

// Implicit-edge fallback bounds. At most the first 5 persons are connected to
// the first 3 organizations and the first 5 organizations to the first 3
// locations, capping synthesized edges at 30 regardless of entity volume.
const (
	implicitSubjectLimit = 5
	implicitObjectLimit  = 3
)

// Build constructs a knowledge graph from entities and relationships.
// Relationships whose subject or object is not an entity text are dropped
// silently. When no relationships are supplied, or none of them connected
// anything, implicit edges are synthesized between person/org and org/location
// entities. Build never panics past this boundary: on an internal error the
// returned graph is empty and its Data carries the error message.
func Build(entities []common.Entity, relationships []common.Relationship) (g *Graph) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Graph] Build failed", "err", r)
			g = newGraph()
			g.buildErr = fmt.Sprintf("%v", r)
		}
	}()

	g = newGraph()

	for _, entity := range entities {
		g.addNode(entity.Text, entity.Label)
		if g.typeCounts[entity.Label] == 0 {
			g.typeOrder = append(g.typeOrder, entity.Label)
		}
		g.typeCounts[entity.Label]++
	}

	for _, rel := range relationships {
		if !g.hasNode(rel.Subject) || !g.hasNode(rel.Object) {
			continue
		}
		relation := rel.Relation
		if relation == "" {
			relation = defaultRelation
		}
		g.addEdge(rel.Subject, rel.Object, relation)
	}

	if len(relationships) == 0 || g.edgeCount() == 0 {
		g.addImplicitEdges(entities)
	}

	return g
}

func newGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*node),
		out:        make(map[string]map[string]string),
		in:         make(map[string]map[string]struct{}),
		typeCounts: make(map[string]int),
	}
}

func (g *Graph) addNode(id, typ string) {
	if existing, ok := g.nodes[id]; ok {
		// Duplicate entity text: last writer wins for the type tag.
		existing.typ = typ
		existing.label = id
		return
	}
	g.nodes[id] = &node{typ: typ, label: id}
	g.order = append(g.order, id)
}

func (g *Graph) hasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) addEdge(source, target, relation string) {
	targets, ok := g.out[source]
	if !ok {
		targets = make(map[string]string)
		g.out[source] = targets
	}
	if _, exists := targets[target]; !exists {
		g.edgeOrder = append(g.edgeOrder, edgeKey{source: source, target: target})
		sources, ok := g.in[target]
		if !ok {
			sources = make(map[string]struct{})
			g.in[target] = sources
		}
		sources[source] = struct{}{}
	}
	targets[target] = relation
}

// addImplicitEdges connects entities of different types that are likely
// related when no explicit relationships survived: persons to organizations
// and organizations to locations.
func (g *Graph) addImplicitEdges(entities []common.Entity) {
	var persons, orgs, locations []string
	for _, e := range entities {
		switch e.Label {
		case "PERSON":
			persons = append(persons, e.Text)
		case "ORG":
			orgs = append(orgs, e.Text)
		case "GPE":
			locations = append(locations, e.Text)
		}
	}

	for _, person := range limit(persons, implicitSubjectLimit) {
		for _, org := range limit(orgs, implicitObjectLimit) {
			if g.hasNode(person) && g.hasNode(org) {
				g.addEdge(person, org, "associated_with")
			}
		}
	}

	for _, org := range limit(orgs, implicitSubjectLimit) {
		for _, loc := range limit(locations, implicitObjectLimit) {
			if g.hasNode(org) && g.hasNode(loc) {
				g.addEdge(org, loc, "located_in")
			}
		}
	}
}

func limit(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func (g *Graph) nodeCount() int { return len(g.order) }

func (g *Graph) edgeCount() int { return len(g.edgeOrder) }

// degree is the number of incident edges, incoming plus outgoing.
func (g *Graph) degree(id string) int {
	return len(g.out[id]) + len(g.in[id])
}

func (g *Graph) successors(id string) []string {
	targets := g.out[id]
	if len(targets) == 0 {
		return nil
	}
	// Walk edgeOrder so successor order follows edge insertion.
	out := make([]string, 0, len(targets))
	for _, ek := range g.edgeOrder {
		if ek.source == id {
			out = append(out, ek.target)
		}
	}
	return out
}

// density is edges / (n*(n-1)), the edge count relative to the maximum for a
// simple directed graph. Zero for graphs with fewer than two nodes.
func (g *Graph) density() float64 {
	n := g.nodeCount()
	if n < 2 {
		return 0
	}
	return float64(g.edgeCount()) / float64(n*(n-1))
}

// isWeaklyConnected reports whether every node is reachable from every other
// when edge direction is ignored. False for the empty graph.
func (g *Graph) isWeaklyConnected() bool {
	if g.nodeCount() == 0 {
		return false
	}

	visited := make(map[string]bool, g.nodeCount())
	stack := []string{g.order[0]}
	visited[g.order[0]] = true

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for target := range g.out[current] {
			if !visited[target] {
				visited[target] = true
				stack = append(stack, target)
			}
		}
		for source := range g.in[current] {
			if !visited[source] {
				visited[source] = true
				stack = append(stack, source)
			}
		}
	}

	return len(visited) == g.nodeCount()
}
