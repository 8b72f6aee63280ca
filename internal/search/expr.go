package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pstuifzand/doctree/internal/model"
)

// FilterExpr represents a filter expression that can match nodes
type FilterExpr interface {
	Matches(t *model.Tree, id model.NodeID) bool
	String() string // For debug output
}

// Quantifier represents how many nodes must match a filter (for multi-node filters like children, ancestors)
type Quantifier int

const (
	QuantifierSome Quantifier = iota // At least one must match (default)
	QuantifierAll                    // All must match
	QuantifierNone                   // None must match
)

func (q Quantifier) String() string {
	switch q {
	case QuantifierSome:
		return "some"
	case QuantifierAll:
		return "all"
	case QuantifierNone:
		return "none"
	default:
		return "unknown"
	}
}

// quantify applies q to the nodes in ids. emptyAll is what QuantifierAll
// yields when there is nothing to test.
func quantify(q Quantifier, t *model.Tree, ids []model.NodeID, inner FilterExpr, emptyAll bool) bool {
	switch q {
	case QuantifierSome:
		for _, id := range ids {
			if inner.Matches(t, id) {
				return true
			}
		}
		return false
	case QuantifierAll:
		if len(ids) == 0 {
			return emptyAll
		}
		for _, id := range ids {
			if !inner.Matches(t, id) {
				return false
			}
		}
		return true
	case QuantifierNone:
		for _, id := range ids {
			if inner.Matches(t, id) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TextExpr matches nodes whose name contains the search term (case-insensitive)
type TextExpr struct {
	term string
}

func NewTextExpr(term string) *TextExpr {
	return &TextExpr{term: strings.ToLower(term)}
}

func (e *TextExpr) Matches(t *model.Tree, id model.NodeID) bool {
	return strings.Contains(strings.ToLower(t.Name(id)), e.term)
}

func (e *TextExpr) String() string {
	return fmt.Sprintf("text(%q)", e.term)
}

// FuzzyExpr matches nodes whose name fuzzy-matches the search term (case-insensitive)
type FuzzyExpr struct {
	term string
}

func NewFuzzyExpr(term string) *FuzzyExpr {
	return &FuzzyExpr{term: strings.ToLower(term)}
}

func (e *FuzzyExpr) Matches(t *model.Tree, id model.NodeID) bool {
	return fuzzy.MatchFold(e.term, t.Name(id))
}

func (e *FuzzyExpr) String() string {
	return fmt.Sprintf("fuzzy(%q)", e.term)
}

// RegexExpr matches nodes whose name matches a regular expression pattern
type RegexExpr struct {
	pattern string
	re      *regexp.Regexp
}

func NewRegexExpr(pattern string) (*RegexExpr, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return &RegexExpr{pattern: pattern, re: re}, nil
}

func (e *RegexExpr) Matches(t *model.Tree, id model.NodeID) bool {
	return e.re.MatchString(t.Name(id))
}

func (e *RegexExpr) String() string {
	return fmt.Sprintf("regex(/%s/)", e.pattern)
}

// AlwaysMatchExpr matches all nodes (for empty queries)
type AlwaysMatchExpr struct{}

func NewAlwaysMatchExpr() *AlwaysMatchExpr {
	return &AlwaysMatchExpr{}
}

func (e *AlwaysMatchExpr) Matches(t *model.Tree, id model.NodeID) bool {
	return true
}

func (e *AlwaysMatchExpr) String() string {
	return "always-match"
}

// AndExpr matches if both left and right match
type AndExpr struct {
	left  FilterExpr
	right FilterExpr
}

func NewAndExpr(left, right FilterExpr) *AndExpr {
	return &AndExpr{left: left, right: right}
}

func (e *AndExpr) Matches(t *model.Tree, id model.NodeID) bool {
	return e.left.Matches(t, id) && e.right.Matches(t, id)
}

func (e *AndExpr) String() string {
	return fmt.Sprintf("(and %s %s)", e.left.String(), e.right.String())
}

// OrExpr matches if either left or right matches
type OrExpr struct {
	left  FilterExpr
	right FilterExpr
}

func NewOrExpr(left, right FilterExpr) *OrExpr {
	return &OrExpr{left: left, right: right}
}

func (e *OrExpr) Matches(t *model.Tree, id model.NodeID) bool {
	return e.left.Matches(t, id) || e.right.Matches(t, id)
}

func (e *OrExpr) String() string {
	return fmt.Sprintf("(or %s %s)", e.left.String(), e.right.String())
}

// NotExpr matches if the wrapped expression does not match
type NotExpr struct {
	expr FilterExpr
}

func NewNotExpr(expr FilterExpr) *NotExpr {
	return &NotExpr{expr: expr}
}

func (e *NotExpr) Matches(t *model.Tree, id model.NodeID) bool {
	return !e.expr.Matches(t, id)
}

func (e *NotExpr) String() string {
	return fmt.Sprintf("(not %s)", e.expr.String())
}

// DepthFilter matches nodes by their number of ancestors
type DepthFilter struct {
	op    ComparisonOp
	value int
}

func NewDepthFilter(op ComparisonOp, value string) (*DepthFilter, error) {
	var depth int
	_, err := fmt.Sscanf(value, "%d", &depth)
	if err != nil {
		return nil, fmt.Errorf("invalid depth value: %s", value)
	}
	return &DepthFilter{op: op, value: depth}, nil
}

func (e *DepthFilter) Matches(t *model.Tree, id model.NodeID) bool {
	return compare(t.Depth(id), e.op, e.value)
}

func (e *DepthFilter) String() string {
	return fmt.Sprintf("depth(%s%d)", e.op, e.value)
}

// ChildrenFilter matches nodes based on the number of children
type ChildrenFilter struct {
	op    ComparisonOp
	value int
}

func NewChildrenFilter(op ComparisonOp, value string) (*ChildrenFilter, error) {
	var count int
	_, err := fmt.Sscanf(value, "%d", &count)
	if err != nil {
		return nil, fmt.Errorf("invalid children count: %s", value)
	}
	return &ChildrenFilter{op: op, value: count}, nil
}

func (e *ChildrenFilter) Matches(t *model.Tree, id model.NodeID) bool {
	return compare(t.Count(id), e.op, e.value)
}

func (e *ChildrenFilter) String() string {
	return fmt.Sprintf("children(%s%d)", e.op, e.value)
}

// KindFilter matches nodes of one kind
type KindFilter struct {
	kind model.Kind
}

func NewKindFilter(value string) (*KindFilter, error) {
	kind, err := model.ParseKind(value)
	if err != nil {
		return nil, err
	}
	return &KindFilter{kind: kind}, nil
}

func (e *KindFilter) Matches(t *model.Tree, id model.NodeID) bool {
	return t.Kind(id) == e.kind
}

func (e *KindFilter) String() string {
	return fmt.Sprintf("kind(%s)", e.kind)
}

// VisibleFilter matches nodes by effective visibility (own flag and all ancestors)
type VisibleFilter struct {
	visible bool
}

func NewVisibleFilter(value string) (*VisibleFilter, error) {
	switch strings.ToLower(value) {
	case "yes", "true", "1":
		return &VisibleFilter{visible: true}, nil
	case "no", "false", "0":
		return &VisibleFilter{visible: false}, nil
	default:
		return nil, fmt.Errorf("invalid visible value: %s", value)
	}
}

func (e *VisibleFilter) Matches(t *model.Tree, id model.NodeID) bool {
	return t.EffectiveVisible(id) == e.visible
}

func (e *VisibleFilter) String() string {
	return fmt.Sprintf("visible(%v)", e.visible)
}

// IDFilter matches nodes whose UUID starts with a prefix
type IDFilter struct {
	prefix string
}

func NewIDFilter(prefix string) *IDFilter {
	return &IDFilter{prefix: strings.ToLower(prefix)}
}

func (e *IDFilter) Matches(t *model.Tree, id model.NodeID) bool {
	return strings.HasPrefix(t.UUID(id).String(), e.prefix)
}

func (e *IDFilter) String() string {
	return fmt.Sprintf("id(%s)", e.prefix)
}

// ParentFilter matches nodes whose parent matches the inner filter
type ParentFilter struct {
	inner FilterExpr
}

func NewParentFilter(inner FilterExpr) *ParentFilter {
	return &ParentFilter{inner: inner}
}

func (e *ParentFilter) Matches(t *model.Tree, id model.NodeID) bool {
	parent := t.Parent(id)
	if parent == model.NoNode {
		return false
	}
	return e.inner.Matches(t, parent)
}

func (e *ParentFilter) String() string {
	return fmt.Sprintf("parent(%s)", e.inner.String())
}

// AncestorFilter matches nodes based on their ancestors (parent* in search syntax)
type AncestorFilter struct {
	inner      FilterExpr
	quantifier Quantifier
}

func NewAncestorFilter(inner FilterExpr, quantifier Quantifier) *AncestorFilter {
	return &AncestorFilter{inner: inner, quantifier: quantifier}
}

func (e *AncestorFilter) Matches(t *model.Tree, id model.NodeID) bool {
	// all ancestors of a top-level node vacuously match
	return quantify(e.quantifier, t, t.Ancestors(id), e.inner, true)
}

func (e *AncestorFilter) String() string {
	if e.quantifier == QuantifierSome {
		return fmt.Sprintf("ancestor(%s)", e.inner.String())
	}
	return fmt.Sprintf("ancestor(%s,%s)", e.quantifier.String(), e.inner.String())
}

// ChildFilter matches nodes based on their immediate children (child in search syntax)
type ChildFilter struct {
	inner      FilterExpr
	quantifier Quantifier
}

func NewChildFilter(inner FilterExpr, quantifier Quantifier) *ChildFilter {
	return &ChildFilter{inner: inner, quantifier: quantifier}
}

func (e *ChildFilter) Matches(t *model.Tree, id model.NodeID) bool {
	return quantify(e.quantifier, t, t.ChildSlice(id), e.inner, false)
}

func (e *ChildFilter) String() string {
	return fmt.Sprintf("child(%s,%s)", e.quantifier.String(), e.inner.String())
}

// DescendantFilter matches nodes based on all their descendants (child* in search syntax)
type DescendantFilter struct {
	inner      FilterExpr
	quantifier Quantifier
}

func NewDescendantFilter(inner FilterExpr, quantifier Quantifier) *DescendantFilter {
	return &DescendantFilter{inner: inner, quantifier: quantifier}
}

func (e *DescendantFilter) Matches(t *model.Tree, id model.NodeID) bool {
	var descendants []model.NodeID
	for d := range t.Descendants(id) {
		descendants = append(descendants, d)
	}
	return quantify(e.quantifier, t, descendants, e.inner, false)
}

func (e *DescendantFilter) String() string {
	return fmt.Sprintf("descendant(%s,%s)", e.quantifier.String(), e.inner.String())
}

// SiblingFilter matches nodes based on their siblings (nodes with the same parent)
type SiblingFilter struct {
	inner      FilterExpr
	quantifier Quantifier
}

func NewSiblingFilter(inner FilterExpr, quantifier Quantifier) *SiblingFilter {
	return &SiblingFilter{inner: inner, quantifier: quantifier}
}

func (e *SiblingFilter) Matches(t *model.Tree, id model.NodeID) bool {
	var siblings []model.NodeID
	if parent := t.Parent(id); parent != model.NoNode {
		for c := range t.Children(parent) {
			if c != id {
				siblings = append(siblings, c)
			}
		}
	}
	return quantify(e.quantifier, t, siblings, e.inner, false)
}

func (e *SiblingFilter) String() string {
	return fmt.Sprintf("sibling(%s,%s)", e.quantifier.String(), e.inner.String())
}

// compare performs a comparison between two integers based on the operator
func compare(a int, op ComparisonOp, b int) bool {
	switch op {
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	default:
		return false
	}
}

// GetMatchingNodes returns root and the nodes below it that match, in pre-order
func GetMatchingNodes(t *model.Tree, root model.NodeID, filterExpr FilterExpr) []model.NodeID {
	var matches []model.NodeID
	t.Walk(root, func(id model.NodeID, depth int) bool {
		if filterExpr.Matches(t, id) {
			matches = append(matches, id)
		}
		return true
	})
	return matches
}

// Find parses query and returns the matching nodes under root
func Find(t *model.Tree, root model.NodeID, query string) ([]model.NodeID, error) {
	filterExpr, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return GetMatchingNodes(t, root, filterExpr), nil
}
