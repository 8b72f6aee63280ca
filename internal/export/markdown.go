// Package export writes a node tree as a Markdown outline.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pstuifzand/doctree/internal/model"
)

// ExportToMarkdown writes the subtree under root to a markdown file
func ExportToMarkdown(t *model.Tree, root model.NodeID, filePath string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create markdown file: %w", err)
	}
	if err := WriteMarkdown(f, t, root); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}
	return nil
}

// WriteMarkdown writes root as a heading followed by its descendants as an
// unordered list, two spaces of indentation per level. Folders and groups
// get a trailing "/", hidden nodes a "(hidden)" note. Unnamed nodes are
// skipped but their children are still written at the same depth.
func WriteMarkdown(w io.Writer, t *model.Tree, root model.NodeID) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n\n", Label(t, root))
	for child := range t.Children(root) {
		writeNodeAsMarkdown(bw, t, child, 0)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

func writeNodeAsMarkdown(w *bufio.Writer, t *model.Tree, id model.NodeID, depth int) {
	next := depth
	if strings.TrimSpace(t.Name(id)) != "" {
		fmt.Fprintf(w, "%s- %s\n", strings.Repeat("  ", depth), Label(t, id))
		next++
	}
	for child := range t.Children(id) {
		writeNodeAsMarkdown(w, t, child, next)
	}
}

// Label is a node's name with "/" for containers and " (hidden)" when its
// own flag is off
func Label(t *model.Tree, id model.NodeID) string {
	s := t.Name(id)
	if t.IsFolder(id) {
		s += "/"
	}
	if !t.Visible(id) {
		s += " (hidden)"
	}
	return s
}
