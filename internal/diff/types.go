package diff

// NodeData is the captured state of one node
type NodeData struct {
	ID         string // UUID
	Name       string
	Kind       string
	ParentID   string // "" for the captured root
	ParentName string
	Position   int
	Visible    bool
}

// Snapshot maps node UUIDs to their captured state
type Snapshot map[string]*NodeData

// DiffResult contains the analysis of changes between two snapshots
type DiffResult struct {
	NewNodes      map[string]*NodeData
	DeletedNodes  map[string]*NodeData
	ModifiedNodes map[string]*NodeChange
}

// Empty reports whether the two snapshots were identical
func (r *DiffResult) Empty() bool {
	return len(r.NewNodes) == 0 && len(r.DeletedNodes) == 0 && len(r.ModifiedNodes) == 0
}

// NodeChange describes what changed for a node
type NodeChange struct {
	Node              *NodeData
	OldNode           *NodeData
	NameChanged       bool
	StructureChanged  bool
	VisibilityChanged bool
}

// DiffLineType indicates the type of diff line for rendering
type DiffLineType int

const (
	DiffTypeHeader DiffLineType = iota
	DiffTypeNewSection
	DiffTypeDeletedSection
	DiffTypeModifiedSection
	DiffTypeNewItem
	DiffTypeDeletedItem
	DiffTypeModifiedItem
	DiffTypeItemDetail
	DiffTypeSummary
	DiffTypeBlank
)

// DiffLine represents a rendered line in diff output
type DiffLine struct {
	Type    DiffLineType
	Content string
	Indent  int
}
