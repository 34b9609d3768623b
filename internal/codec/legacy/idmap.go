package legacy

import (
	"fmt"
	"sort"
)

// idAllocator is the bijective canonical-id → dialect-id map built once per
// Encode call. Integer ids are assigned lazily in first-seen order starting
// at 1. Relationship branches get synthetic composite keys
// ("<relId>_branch_<i>") so every branch receives a unique integer without
// colliding with node ids.
type idAllocator struct {
	next  int
	byKey map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: 1, byKey: make(map[string]int)}
}

// id returns the integer assigned to key, allocating on first sight.
func (a *idAllocator) id(key string) int {
	if n, ok := a.byKey[key]; ok {
		return n
	}
	n := a.next
	a.next++
	a.byKey[key] = n
	return n
}

// branchKey builds the synthetic per-branch key.
func branchKey(relID string, index int) string {
	return fmt.Sprintf("%s_branch_%d", relID, index)
}

// last returns the highest id handed out so far, written to the schema's
// lastId attribute.
func (a *idAllocator) last() int {
	return a.next - 1
}

// canonical inverts the map: dialect-id → canonical key, for tests and
// debugging. Keys come back sorted by dialect id.
func (a *idAllocator) canonical() []string {
	type pair struct {
		n   int
		key string
	}
	pairs := make([]pair, 0, len(a.byKey))
	for k, n := range a.byKey {
		pairs = append(pairs, pair{n, k})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].n < pairs[j].n })
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.key
	}
	return keys
}
