package fsops

import (
	"strings"

	"github.com/mdbfs/mdbfs/internal/pathutil"
)

// TabularTag identifies which level of the tables/rows/columns
// hierarchy a decoded path addresses.
type TabularTag int

const (
	TagDatabase TabularTag = iota
	TagTable
	TagRow
	TagColumn
)

// TabularPath is the decoded form of a path against the tabular
// backend surface: / (database), /<table>, /<table>/<row>, or
// /<table>/<row>/<column>.
type TabularPath struct {
	Tag    TabularTag
	Table  string
	Row    string
	Column string
}

// DecodeTabularPath normalizes p and splits it into at most three
// components. It returns ok=false when p is not absolute or contains a
// fourth, non-empty component — there is no valid decoding in either
// case.
func DecodeTabularPath(p string) (TabularPath, bool) {
	norm := pathutil.Normalize(p)
	if !pathutil.IsAbsolute(norm) {
		return TabularPath{}, false
	}
	if norm == "/" {
		return TabularPath{Tag: TagDatabase}, true
	}

	segments := strings.Split(strings.TrimPrefix(norm, "/"), "/")
	if len(segments) > 3 {
		return TabularPath{}, false
	}

	var dp TabularPath
	dp.Tag = TagTable
	dp.Table = segments[0]
	if len(segments) >= 2 {
		dp.Tag = TagRow
		dp.Row = segments[1]
	}
	if len(segments) >= 3 {
		dp.Tag = TagColumn
		dp.Column = segments[2]
	}
	return dp, true
}
