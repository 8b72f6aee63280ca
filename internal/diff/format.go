package diff

import (
	"fmt"
	"sort"
	"strings"
)

// BuildDiffLines converts a DiffResult into formatted display lines.
// With verbose set, new nodes also show their kind and visibility.
func BuildDiffLines(result *DiffResult, verbose bool) []DiffLine {
	var lines []DiffLine

	if len(result.NewNodes) > 0 {
		lines = append(lines, DiffLine{Type: DiffTypeNewSection, Content: "New Nodes:"}, DiffLine{Type: DiffTypeBlank})
		for _, id := range getSortedIDs(result.NewNodes) {
			lines = append(lines, formatNewNode(result.NewNodes[id], verbose)...)
		}
	}

	if len(result.DeletedNodes) > 0 {
		lines = append(lines, DiffLine{Type: DiffTypeDeletedSection, Content: "Deleted Nodes:"}, DiffLine{Type: DiffTypeBlank})
		for _, id := range getSortedIDs(result.DeletedNodes) {
			lines = append(lines, formatDeletedNode(result.DeletedNodes[id])...)
		}
	}

	if len(result.ModifiedNodes) > 0 {
		lines = append(lines, DiffLine{Type: DiffTypeModifiedSection, Content: "Modified Nodes:"}, DiffLine{Type: DiffTypeBlank})
		for _, id := range getSortedIDs(result.ModifiedNodes) {
			lines = append(lines, formatModifiedNode(result.ModifiedNodes[id])...)
		}
	}

	if !result.Empty() {
		lines = append(lines,
			DiffLine{Type: DiffTypeBlank},
			DiffLine{Type: DiffTypeSummary, Content: "=== Summary ==="},
			DiffLine{
				Type: DiffTypeSummary,
				Content: fmt.Sprintf("  %d modified, %d added, %d deleted",
					len(result.ModifiedNodes), len(result.NewNodes), len(result.DeletedNodes)),
			})
	}
	return lines
}

// Render joins lines into indented text
func Render(lines []DiffLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(strings.Repeat("  ", l.Indent))
		sb.WriteString(l.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func header(n *NodeData) string {
	return fmt.Sprintf("%s: %s", shortID(n.ID), truncateText(n.Name, 60))
}

func placement(n *NodeData) string {
	if n.ParentID == "" {
		return "root"
	}
	return fmt.Sprintf("%s (%s)", n.ParentName, shortID(n.ParentID))
}

func formatNewNode(n *NodeData, verbose bool) []DiffLine {
	lines := []DiffLine{
		{Type: DiffTypeNewItem, Content: header(n), Indent: 1},
		{Type: DiffTypeItemDetail, Content: fmt.Sprintf("PARENT: %s at position %d", placement(n), n.Position), Indent: 2},
	}
	if verbose {
		lines = append(lines, DiffLine{Type: DiffTypeItemDetail, Content: fmt.Sprintf("KIND: %s, visible: %v", n.Kind, n.Visible), Indent: 2})
	}
	return append(lines, DiffLine{Type: DiffTypeBlank})
}

func formatDeletedNode(n *NodeData) []DiffLine {
	return []DiffLine{
		{Type: DiffTypeDeletedItem, Content: header(n), Indent: 1},
		{Type: DiffTypeBlank},
	}
}

func formatModifiedNode(change *NodeChange) []DiffLine {
	lines := []DiffLine{{Type: DiffTypeModifiedItem, Content: header(change.Node), Indent: 1}}
	detail := func(format string, args ...any) {
		lines = append(lines, DiffLine{Type: DiffTypeItemDetail, Content: fmt.Sprintf(format, args...), Indent: 2})
	}

	old, cur := change.OldNode, change.Node
	if change.NameChanged {
		detail("NAME: %s -> %s", truncateText(old.Name, 40), truncateText(cur.Name, 40))
	}
	if change.StructureChanged {
		if old.ParentID != cur.ParentID {
			detail("MOVED: from %s to %s", placement(old), placement(cur))
		}
		if old.Position != cur.Position {
			detail("POSITION: %d -> %d", old.Position, cur.Position)
		}
	}
	if change.VisibilityChanged {
		detail("VISIBLE: %v -> %v", old.Visible, cur.Visible)
	}
	return append(lines, DiffLine{Type: DiffTypeBlank})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncateText limits text length for display
func truncateText(text string, maxLen int) string {
	first, _, multi := strings.Cut(text, "\n")
	if multi {
		first += " ..."
	}
	if len(first) > maxLen {
		return first[:maxLen] + "..."
	}
	return first
}

// getSortedIDs returns a sorted slice of keys from a map
func getSortedIDs[T any](items map[string]T) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
