package notes

import (
	"context"
	"testing"

	models "lorekeeper/internal/domain/models/notes"
)

type graphIndex struct {
	nodes map[string]models.GraphNode
	edges map[[2]string]models.GraphEdge
}

func (g *graphIndex) node(id string) (models.GraphNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func indexGraph(g *models.Graph) *graphIndex {
	idx := &graphIndex{
		nodes: make(map[string]models.GraphNode),
		edges: make(map[[2]string]models.GraphEdge),
	}
	for _, n := range g.Nodes {
		idx.nodes[n.ID] = n
	}
	for _, e := range g.Edges {
		idx.edges[[2]string{e.SourceID, e.TargetID}] = e
	}
	return idx
}

func TestBuildGraph_NotesEntitiesAndEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.entities.add("camp-1", models.EntityRef{Kind: models.KindCharacter, ID: "char-greta", Name: "Greta"})

	target := env.save(t, nil, 0, draft("Harbor Town", "a quiet port"))
	source := env.save(t, nil, 0, draft("Session 3", "Docked at [[Harbor Town]] with @Greta."))

	graph, err := env.svc.BuildGraph(ctx, "camp-1")
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	idx := indexGraph(graph)
	if len(idx.nodes) != 3 {
		t.Fatalf("got %d nodes, want 3 (two notes, one character)", len(idx.nodes))
	}

	if n, ok := idx.node(target.NoteID); !ok || n.Kind != models.KindNote || n.Label != "Harbor Town" {
		t.Errorf("target note node wrong: %+v", n)
	}
	if n, ok := idx.node("char-greta"); !ok || n.Kind != models.KindCharacter || n.Label != "Greta" {
		t.Errorf("character node wrong: %+v", n)
	}

	if len(idx.edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(idx.edges))
	}
	if e, ok := idx.edges[[2]string{source.NoteID, target.NoteID}]; !ok || e.Kind != models.KindNote {
		t.Errorf("note edge wrong: %+v", e)
	}
	if e, ok := idx.edges[[2]string{source.NoteID, "char-greta"}]; !ok || e.Kind != models.KindCharacter {
		t.Errorf("character edge wrong: %+v", e)
	}
}

func TestBuildGraph_DanglingLinksExcluded(t *testing.T) {
	env := newTestEnv(t)

	source := env.save(t, nil, 0, draft("Session 1", "Rumors of [[Nowhere]] and @Stranger."))

	graph, err := env.svc.BuildGraph(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	if len(graph.Nodes) != 1 {
		t.Fatalf("dangling targets must not become nodes, got %d nodes", len(graph.Nodes))
	}
	if graph.Nodes[0].ID != source.NoteID {
		t.Errorf("only the source note should appear, got %+v", graph.Nodes[0])
	}
	if len(graph.Edges) != 0 {
		t.Errorf("dangling links must not become edges, got %+v", graph.Edges)
	}
}

func TestBuildGraph_TombstonedNotesExcluded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	target := env.save(t, nil, 0, draft("Harbor Town", "a quiet port"))
	source := env.save(t, nil, 0, draft("Session 3", "Docked at [[Harbor Town]]."))

	if err := env.svc.Delete(ctx, target.NoteID); err != nil {
		t.Fatalf("delete target: %v", err)
	}

	graph, err := env.svc.BuildGraph(ctx, "camp-1")
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	idx := indexGraph(graph)
	if _, ok := idx.node(target.NoteID); ok {
		t.Error("tombstoned note must not appear as a node")
	}
	if _, ok := idx.node(source.NoteID); !ok {
		t.Error("live source should still appear")
	}
	if len(idx.edges) != 0 {
		t.Errorf("edges into a tombstone must be dropped, got %+v", graph.Edges)
	}

	// Tombstoning the source removes its edges and node too.
	if err := env.svc.Delete(ctx, source.NoteID); err != nil {
		t.Fatalf("delete source: %v", err)
	}
	graph, err = env.svc.BuildGraph(ctx, "camp-1")
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if len(graph.Nodes) != 0 || len(graph.Edges) != 0 {
		t.Errorf("empty campaign expected, got %d nodes %d edges", len(graph.Nodes), len(graph.Edges))
	}
}

func TestBuildGraph_SharedEntityNodeDeduplicated(t *testing.T) {
	env := newTestEnv(t)

	env.entities.add("camp-1", models.EntityRef{Kind: models.KindLocation, ID: "loc-keep", Name: "Stormkeep"})

	// Two separate notes mention the same location by name.
	env.save(t, nil, 0, draft("Report A", "Holding @Stormkeep"))
	env.save(t, nil, 0, draft("Report B", "Back to @Stormkeep"))

	graph, err := env.svc.BuildGraph(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	count := 0
	for _, n := range graph.Nodes {
		if n.ID == "loc-keep" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("entity node appears %d times, want exactly once", count)
	}
}

func TestBuildGraph_EmptyCampaign(t *testing.T) {
	env := newTestEnv(t)

	graph, err := env.svc.BuildGraph(context.Background(), "camp-1")
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if graph.Nodes == nil || graph.Edges == nil {
		t.Error("graph slices should be empty, not nil")
	}
	if len(graph.Nodes) != 0 || len(graph.Edges) != 0 {
		t.Errorf("empty campaign should yield an empty graph, got %+v", graph)
	}
}
