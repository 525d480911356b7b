package model

import "sort"

// DiffIndex maps repository-relative paths to the head-side line numbers
// added or modified within a CommitRange. A path present with an empty set
// was touched only by deletions. It is built once per run and read-only after.
type DiffIndex map[string]map[int]struct{}

// NewDiffIndex builds an index from a path -> lines mapping.
func NewDiffIndex(lines map[string][]int) DiffIndex {
	idx := make(DiffIndex, len(lines))
	for path, ls := range lines {
		idx.Touch(path)
		for _, l := range ls {
			idx.Add(path, l)
		}
	}
	return idx
}

// Touch records path as changed without adding any line.
func (idx DiffIndex) Touch(path string) {
	if _, ok := idx[path]; !ok {
		idx[path] = make(map[int]struct{})
	}
}

// Add records line as changed in path.
func (idx DiffIndex) Add(path string, line int) {
	idx.Touch(path)
	idx[path][line] = struct{}{}
}

// Has reports whether path is part of the diff at all.
func (idx DiffIndex) Has(path string) bool {
	_, ok := idx[path]
	return ok
}

// Contains reports whether line of path was changed. Absent paths are empty.
func (idx DiffIndex) Contains(path string, line int) bool {
	_, ok := idx[path][line]
	return ok
}

// Paths returns the indexed paths in lexical order.
func (idx DiffIndex) Paths() []string {
	paths := make([]string, 0, len(idx))
	for p := range idx {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Lines returns the sorted changed lines of path.
func (idx DiffIndex) Lines(path string) []int {
	set := idx[path]
	lines := make([]int, 0, len(set))
	for l := range set {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}
