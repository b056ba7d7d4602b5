package archive

import (
	"path"
	"strings"
)

// Filter selects education record files out of an entry stream and keeps
// running counters for progress reporting. The zero value is ready to use.
type Filter struct {
	Seen    int
	Matched int
}

// Match reports whether entry is an education record: a regular file with an
// .xml extension whose immediate parent directory is named "educations".
// Both checks are case-insensitive. Every call counts toward Seen; matches
// also count toward Matched.
func (f *Filter) Match(entry Entry) bool {
	f.Seen++
	if !entry.Regular {
		return false
	}
	name := entry.Path
	if !strings.EqualFold(path.Ext(name), ".xml") {
		return false
	}
	parent := path.Base(path.Dir(name))
	if !strings.EqualFold(parent, "educations") {
		return false
	}
	f.Matched++
	return true
}
