package graph

import "sort"

// CentralEntity ranks one node by degree centrality.
type CentralEntity struct {
	Entity      string  `json:"entity"`
	Type        string  `json:"type"`
	Centrality  float64 `json:"centrality"`
	Connections int     `json:"connections"`
}

// Neighbor is one entity reachable from a query origin.
type Neighbor struct {
	Entity string `json:"entity"`
	Type   string `json:"type"`
	Label  string `json:"label"`
}

// NeighborResult holds a neighborhood expansion and its size.
type NeighborResult struct {
	Neighbors []Neighbor `json:"neighbors"`
	Count     int        `json:"count"`
}

const (
	maxPathLength = 4
	maxPaths      = 10
)

// CentralEntities returns the topN nodes ranked by normalized degree
// centrality, descending. Ties keep node insertion order, which is the
// stable order this graph structure yields. Empty graph returns an empty
// list.
func (g *Graph) CentralEntities(topN int) []CentralEntity {
	n := g.nodeCount()
	if n == 0 {
		return []CentralEntity{}
	}

	ranked := make([]CentralEntity, 0, n)
	for _, id := range g.order {
		degree := g.degree(id)
		centrality := 1.0
		if n > 1 {
			centrality = float64(degree) / float64(n-1)
		}
		ranked = append(ranked, CentralEntity{
			Entity:      id,
			Type:        g.nodes[id].typ,
			Centrality:  centrality,
			Connections: degree,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Centrality > ranked[j].Centrality
	})

	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// FindPaths returns all simple directed paths from source to target with at
// most maxPathLength edges, capped at the first maxPaths found. Both
// endpoints must be present in the graph, otherwise the result is empty.
func (g *Graph) FindPaths(source, target string) [][]string {
	if !g.hasNode(source) || !g.hasNode(target) || source == target {
		return [][]string{}
	}

	paths := make([][]string, 0, maxPaths)
	onPath := map[string]bool{source: true}
	current := []string{source}

	var walk func(from string)
	walk = func(from string) {
		if len(paths) >= maxPaths || len(current) > maxPathLength {
			return
		}
		for _, next := range g.successors(from) {
			if onPath[next] {
				continue
			}
			if next == target {
				path := make([]string, len(current)+1)
				copy(path, current)
				path[len(current)] = target
				paths = append(paths, path)
				if len(paths) >= maxPaths {
					return
				}
				continue
			}
			onPath[next] = true
			current = append(current, next)
			walk(next)
			current = current[:len(current)-1]
			delete(onPath, next)
		}
	}
	walk(source)

	return paths
}

// Neighbors expands the neighborhood of entity following outgoing edges only.
// Depth 1 returns the direct successors; larger depths return the union of
// all nodes reached within that many hops, excluding the origin. An entity
// absent from the graph yields an empty result, not an error.
func (g *Graph) Neighbors(entity string, depth int) NeighborResult {
	if !g.hasNode(entity) {
		return NeighborResult{Neighbors: []Neighbor{}, Count: 0}
	}
	if depth < 1 {
		depth = 1
	}

	seen := make(map[string]bool)
	var found []string

	frontier := []string{entity}
	for hop := 0; hop < depth; hop++ {
		var next []string
		for _, id := range frontier {
			for _, succ := range g.successors(id) {
				if !seen[succ] {
					seen[succ] = true
					next = append(next, succ)
					if succ != entity {
						found = append(found, succ)
					}
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	neighbors := make([]Neighbor, 0, len(found))
	for _, id := range found {
		neighbors = append(neighbors, Neighbor{
			Entity: id,
			Type:   g.nodes[id].typ,
			Label:  g.nodes[id].label,
		})
	}

	return NeighborResult{Neighbors: neighbors, Count: len(neighbors)}
}
