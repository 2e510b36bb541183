package notes

import (
	"context"
	"fmt"

	models "lorekeeper/internal/domain/models/notes"
)

// BuildGraph assembles the renderable node/edge projection for a
// campaign: one node per live note, one synthetic node per distinct
// resolved external entity appearing as a link target, directed edges
// source note -> target.
//
// The two underlying reads are independent; the corpus may change
// between them. Edges whose endpoints vanished in the gap are dropped
// rather than surfaced - this is a visualization, not a
// correctness-critical path.
func (s *noteService) BuildGraph(ctx context.Context, campaignID string) (*models.Graph, error) {
	liveNotes, err := s.noteRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	links, err := s.linkRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	graph := &models.Graph{
		Nodes: make([]models.GraphNode, 0, len(liveNotes)),
		Edges: make([]models.GraphEdge, 0, len(links)),
	}

	noteIDs := make(map[string]bool, len(liveNotes))
	for _, n := range liveNotes {
		noteIDs[n.ID] = true
		graph.Nodes = append(graph.Nodes, models.GraphNode{
			ID:    n.ID,
			Kind:  models.KindNote,
			Label: n.Title,
		})
	}

	entitySeen := make(map[string]bool)
	for _, link := range links {
		if link.Dangling() || link.Kind == models.KindNote {
			continue
		}
		targetID := *link.TargetID
		if entitySeen[targetID] {
			continue
		}
		entitySeen[targetID] = true
		graph.Nodes = append(graph.Nodes, models.GraphNode{
			ID:    targetID,
			Kind:  link.Kind,
			Label: link.Label,
		})
	}

	for _, link := range links {
		if link.Dangling() {
			continue
		}
		if !noteIDs[link.SourceNoteID] {
			// Source tombstoned or removed between the two reads
			continue
		}
		targetID := *link.TargetID
		if link.Kind == models.KindNote && !noteIDs[targetID] {
			// Target note tombstoned; the stored row dangles until the
			// source is next saved
			continue
		}
		graph.Edges = append(graph.Edges, models.GraphEdge{
			SourceID: link.SourceNoteID,
			TargetID: targetID,
			Kind:     link.Kind,
		})
	}

	return graph, nil
}
