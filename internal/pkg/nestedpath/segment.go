package nestedpath

import (
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// MaxIndex bounds how far a single index segment may grow a sequence.
// Larger indices are treated as part of a literal key.
const MaxIndex = 4096

// SegmentKind distinguishes a mapping key from a sequence position.
type SegmentKind int

const (
	KeySegment   SegmentKind = iota // name
	IndexSegment                    // name[3]
)

// Segment is one token of a parsed path.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

func (s Segment) String() string {
	if s.Kind == IndexSegment {
		return s.Name + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

var indexPattern = func() *regexp2.Regexp {
	re := regexp2.MustCompile(`^(?<name>[^\[\]]*)\[(?<index>[0-9]+)\]$`, regexp2.None)
	re.MatchTimeout = 50 * time.Millisecond
	return re
}()

// Parse splits a dotted path into segments, left to right.
// It never fails: anything that is not `name` or `name[digits]` becomes a literal key.
// So does `name[n]` with n above MaxIndex.
func Parse(path string) []Segment {
	parts := strings.Split(path, ".")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		segments = append(segments, parseSegment(part))
	}
	return segments
}

func parseSegment(part string) Segment {
	if !strings.HasSuffix(part, "]") {
		return Segment{Kind: KeySegment, Name: part}
	}

	m, err := indexPattern.FindStringMatch(part)
	if err != nil || m == nil {
		return Segment{Kind: KeySegment, Name: part}
	}

	idx, err := strconv.Atoi(m.GroupByName("index").String())
	if err != nil || idx > MaxIndex {
		return Segment{Kind: KeySegment, Name: part}
	}

	return Segment{
		Kind:  IndexSegment,
		Name:  m.GroupByName("name").String(),
		Index: idx,
	}
}

// Join renders segments back into path form.
func Join(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}
