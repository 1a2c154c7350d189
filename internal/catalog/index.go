package catalog

import "github.com/google/btree"

type indexEntry struct {
	id  int64
	pos int
}

func indexLess(a, b indexEntry) bool {
	return a.id < b.id
}

// buildIndex maps product ids to their slice positions.
func buildIndex(ids []int64) *btree.BTreeG[indexEntry] {
	idx := btree.NewG[indexEntry](16, indexLess)
	for pos, id := range ids {
		idx.ReplaceOrInsert(indexEntry{id: id, pos: pos})
	}
	return idx
}
