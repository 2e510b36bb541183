package notes

// GraphNode is one renderable node of the campaign reference graph:
// either a live note, or a synthetic node for an external entity that
// appears as a resolved link target.
type GraphNode struct {
	ID    string         `json:"id"`
	Kind  LinkTargetKind `json:"kind"`
	Label string         `json:"label"`
}

// GraphEdge is one directed edge, source note -> resolved target.
type GraphEdge struct {
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	Kind     LinkTargetKind `json:"kind"`
}

// Graph is the read-only node/edge projection handed to the renderer.
// It is assembled from two independent reads and is eventually
// consistent with the link index, not transactional.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Backlink is one reverse reference: a live note whose current body or
// stored link set points at the queried note, with a short excerpt of
// the surrounding text for UI context.
type Backlink struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
}
