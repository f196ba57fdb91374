package graph

import "github.com/doculens/backend/pkg/common"

// Data serializes the graph for persistence and visualization. Node sizes are
// degree+5 so better-connected entities render larger. Statistics are omitted
// when construction failed; the error message is carried instead.
func (g *Graph) Data() common.GraphData {
	if g.buildErr != "" {
		return common.GraphData{
			Nodes: []common.GraphNode{},
			Edges: []common.GraphEdge{},
			Error: g.buildErr,
		}
	}

	nodes := make([]common.GraphNode, 0, g.nodeCount())
	for _, id := range g.order {
		n := g.nodes[id]
		nodes = append(nodes, common.GraphNode{
			ID:    id,
			Label: n.label,
			Type:  n.typ,
			Size:  g.degree(id) + 5,
		})
	}

	edges := make([]common.GraphEdge, 0, g.edgeCount())
	for _, ek := range g.edgeOrder {
		relation := g.out[ek.source][ek.target]
		edges = append(edges, common.GraphEdge{
			Source:   ek.source,
			Target:   ek.target,
			Relation: relation,
			Label:    relation,
		})
	}

	entityTypes := make(map[string]int, len(g.typeCounts))
	for typ, count := range g.typeCounts {
		entityTypes[typ] = count
	}

	return common.GraphData{
		Nodes: nodes,
		Edges: edges,
		Statistics: &common.GraphStatistics{
			TotalNodes:  g.nodeCount(),
			TotalEdges:  g.edgeCount(),
			EntityTypes: entityTypes,
			Density:     g.density(),
			IsConnected: g.isWeaklyConnected(),
		},
	}
}
