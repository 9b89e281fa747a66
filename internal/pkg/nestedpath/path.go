// Package nestedpath reads and writes values inside generic JSON trees
// (map[string]any / []any) addressed by dotted paths such as
// "openGraph.images[0].url".
//
// Writes are persistent: Set never mutates its input. Every container on the
// path from the root to the written leaf is copied, everything else is shared
// with the original tree.
package nestedpath

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Op is a single field edit.
type Op struct {
	Path    string `json:"path"`
	Value   any    `json:"value"`
	Numeric bool   `json:"numeric,omitempty"`
}

// Set returns a copy of root with value stored at path.
// Missing or mistyped intermediate nodes are replaced with empty containers of
// the expected kind; sequences are grown with nil holes when the index is past
// their end. A nil root is treated as an empty mapping.
func Set(root map[string]any, path string, value any, numeric bool) map[string]any {
	return setIn(root, Parse(path), Coerce(value, numeric))
}

func setIn(container map[string]any, segs []Segment, value any) map[string]any {
	out := make(map[string]any, len(container)+1)
	for k, v := range container {
		out[k] = v
	}

	seg, rest := segs[0], segs[1:]

	if seg.Kind == IndexSegment {
		seq, _ := container[seg.Name].([]any)
		size := len(seq)
		if seg.Index >= size {
			size = seg.Index + 1
		}
		grown := make([]any, size)
		copy(grown, seq)

		if len(rest) == 0 {
			grown[seg.Index] = value
		} else {
			child, _ := grown[seg.Index].(map[string]any)
			grown[seg.Index] = setIn(child, rest, value)
		}
		out[seg.Name] = grown
		return out
	}

	if len(rest) == 0 {
		out[seg.Name] = value
		return out
	}

	child, _ := container[seg.Name].(map[string]any)
	out[seg.Name] = setIn(child, rest, value)
	return out
}

// Get walks path read-only. It reports false as soon as a node is missing,
// nil, of the wrong container kind, or an index is out of range.
func Get(root map[string]any, path string) (any, bool) {
	var cur any = root
	for _, seg := range Parse(path) {
		m, ok := cur.(map[string]any)
		if !ok || m == nil {
			return nil, false
		}

		child, ok := m[seg.Name]
		if !ok || child == nil {
			return nil, false
		}

		if seg.Kind == IndexSegment {
			seq, ok := child.([]any)
			if !ok || seg.Index >= len(seq) {
				return nil, false
			}
			child = seq[seg.Index]
			if child == nil {
				return nil, false
			}
		}

		cur = child
	}
	return cur, true
}

// Coerce converts string values to float64 when numeric is set and the
// trimmed string parses as a finite number. Empty strings and anything else
// pass through unchanged, so clearing a numeric field stores "".
func Coerce(value any, numeric bool) any {
	if !numeric {
		return value
	}
	s, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return value
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return value
	}
	return f
}

// Apply folds ops into root in order.
func Apply(root map[string]any, ops []Op) map[string]any {
	if root == nil {
		root = map[string]any{}
	}
	for _, op := range ops {
		root = Set(root, op.Path, op.Value, op.Numeric)
	}
	return root
}

// Flatten lists every non-nil leaf of root keyed by its path.
// Empty containers produce no entries.
func Flatten(root map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", root)
	return out
}

func flattenInto(out map[string]any, prefix string, node any) {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			if seq, ok := v[k].([]any); ok {
				for i, elem := range seq {
					flattenInto(out, p+"["+strconv.Itoa(i)+"]", elem)
				}
				continue
			}
			flattenInto(out, p, v[k])
		}
	case nil:
	default:
		out[prefix] = v
	}
}

// Paths returns the keys of Flatten(root) in sorted order.
func Paths(root map[string]any) []string {
	flat := Flatten(root)
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
