package doctree

// linkHierarchy attaches every section to the section whose index equals its
// parent index. Parentage needs an exact match: with "1." and "1.1.1." but no
// "1.1.", section "1.1.1." stays a root. Returns the root positions in
// source order.
func linkHierarchy(sections []*Section, byIdx map[string]int) []int {
	var roots []int
	for pos, s := range sections {
		parentIdx, ok := ParentIndex(s.Idx)
		if !ok {
			roots = append(roots, pos)
			continue
		}
		parentPos, found := byIdx[parentIdx]
		if !found {
			roots = append(roots, pos)
			continue
		}
		parent := sections[parentPos]
		parent.children = append(parent.children, pos)
		s.parent = parentPos
	}
	return roots
}

// indexSections maps each normalized index to the position of its first
// occurrence.
func indexSections(sections []*Section) map[string]int {
	byIdx := make(map[string]int, len(sections))
	for pos, s := range sections {
		key := NormalizeIndex(s.Idx)
		if _, dup := byIdx[key]; !dup {
			byIdx[key] = pos
		}
	}
	return byIdx
}
