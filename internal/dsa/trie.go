package dsa

import (
	"sort"

	"github.com/armon/go-radix"
)

// Trie is a typed wrapper around a compressed prefix tree.
// Lookups cost O(k) in the key length.
type Trie[V any] struct {
	tree *radix.Tree
}

// NewTrie creates an empty tree.
func NewTrie[V any]() *Trie[V] {
	return &Trie[V]{tree: radix.New()}
}

// Insert sets the value for key, replacing any previous value.
func (t *Trie[V]) Insert(key string, value V) {
	t.tree.Insert(key, value)
}

// Search looks up an exact key.
func (t *Trie[V]) Search(key string) (V, bool) {
	var zero V
	v, ok := t.tree.Get(key)
	if !ok {
		return zero, false
	}
	return v.(V), true
}

// Update applies fn to the current value of key (zero if absent) and
// stores the result.
func (t *Trie[V]) Update(key string, fn func(V) V) {
	current, _ := t.Search(key)
	t.Insert(key, fn(current))
}

// StartsWith returns the keys beginning with prefix, sorted.
func (t *Trie[V]) StartsWith(prefix string) []string {
	var keys []string
	t.tree.WalkPrefix(prefix, func(key string, _ interface{}) bool {
		keys = append(keys, key)
		return false
	})
	sort.Strings(keys)
	return keys
}

// Size returns the number of keys.
func (t *Trie[V]) Size() int {
	return t.tree.Len()
}
