package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/qtree/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	Answered    []string
	CurrentNode string
}

// GenerateMermaid produces a Mermaid flowchart for a question tree.
// It applies semantic styling:
// - Group: ((Circle))
// - Func: [[Subroutine]]
// - Select: {{Hexagon}}
// - Input (text, number, file): [/Parallelogram/]
// Edges carry the child's condition as a label.
// It also applies overlay styles (Answered/Current) if provided.
func GenerateMermaid(root *domain.QTreeNode, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string]string)
	counter := 0
	var walk func(n *domain.QTreeNode, parentID string)
	walk = func(n *domain.QTreeNode, parentID string) {
		id := fmt.Sprintf("n%d", counter)
		counter++
		if name := n.Name(); name != "" {
			id = sanitizeMermaidID(name)
			ids[name] = id
		}

		opener, closer := "[/", "/]"
		switch n.Data.Type() {
		case domain.NodeTypeGroup:
			opener, closer = "((", "))"
		case domain.NodeTypeFunc:
			opener, closer = "[[", "]]"
		case domain.NodeTypeSingleSelect, domain.NodeTypeMultiSelect:
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, nodeLabel(n), closer))

		if parentID != "" {
			arrow := "-->"
			if n.Condition != nil {
				arrow = fmt.Sprintf("-- \"%s\" -->", describeCondition(n.Condition))
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", parentID, arrow, id))
		}

		for _, child := range n.Children {
			walk(child, id)
		}
	}
	if root != nil {
		walk(root, "")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef answered fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		answered := append([]string(nil), overlay.Answered...)
		sort.Strings(answered)
		styled := make(map[string]bool)
		for _, name := range answered {
			id, ok := ids[name]
			if !ok || styled[id] {
				continue
			}
			styled[id] = true
			sb.WriteString(fmt.Sprintf("    class %s answered;\n", id))
		}
		if id, ok := ids[overlay.CurrentNode]; ok {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", id))
		}
	}

	return sb.String()
}

func nodeLabel(n *domain.QTreeNode) string {
	name := n.Name()
	if name == "" {
		name = string(n.Data.Type())
	}
	if q := n.Question(); q != nil {
		if fq, ok := q.(*domain.FuncQuestion); ok {
			return escape(fmt.Sprintf("%s <br/> %s()", name, fq.Func))
		}
		if title := q.Base().Title; title != "" && title != name {
			return escape(fmt.Sprintf("%s <br/> %s", name, title))
		}
	}
	return escape(name)
}

// describeCondition renders the most telling rule of a condition.
func describeCondition(c *domain.Condition) string {
	target := c.Target.String()
	if c.Validation == nil {
		return escape(target)
	}
	common := c.Validation.Common()
	if common.Equals != nil {
		return escape(fmt.Sprintf("%s = %v", target, common.Equals))
	}
	switch v := c.Validation.(type) {
	case *domain.StringValidation:
		if len(v.Enum) > 0 {
			return escape(fmt.Sprintf("%s in %s", target, strings.Join(v.Enum, ", ")))
		}
		if v.Pattern != "" {
			return escape(fmt.Sprintf("%s ~ %s", target, v.Pattern))
		}
	case *domain.StringArrayValidation:
		if v.Contains != "" {
			return escape(fmt.Sprintf("%s has %s", target, v.Contains))
		}
	case *domain.RemoteFuncValidation:
		return escape(fmt.Sprintf("%s()", v.Func))
	}
	return escape(fmt.Sprintf("%s %s", target, c.Validation.Kind()))
}

func escape(s string) string {
	// Double quotes would end the Mermaid label.
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
