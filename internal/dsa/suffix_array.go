// Package dsa provides the index structures behind session search.
package dsa

import "sort"

// SuffixArray indexes every suffix of a text for substring search.
// Search costs O(m log n) for a pattern of length m over n bytes.
type SuffixArray struct {
	text string
	sa   []int // sa[i] is the start of the i-th smallest suffix
}

// BuildSuffixArray indexes text by prefix doubling in O(n log² n).
func BuildSuffixArray(text string) *SuffixArray {
	n := len(text)
	sa := &SuffixArray{text: text, sa: make([]int, n)}
	if n == 0 {
		return sa
	}

	rank := make([]int, n)
	next := make([]int, n)
	for i := range n {
		sa.sa[i] = i
		rank[i] = int(text[i])
	}

	// second returns the rank k bytes after i, or -1 past the end.
	second := func(i, k int) int {
		if i+k < n {
			return rank[i+k]
		}
		return -1
	}

	for k := 1; ; k *= 2 {
		sort.Slice(sa.sa, func(a, b int) bool {
			i, j := sa.sa[a], sa.sa[b]
			if rank[i] != rank[j] {
				return rank[i] < rank[j]
			}
			return second(i, k) < second(j, k)
		})

		next[sa.sa[0]] = 0
		for i := 1; i < n; i++ {
			prev, cur := sa.sa[i-1], sa.sa[i]
			next[cur] = next[prev]
			if rank[prev] != rank[cur] || second(prev, k) != second(cur, k) {
				next[cur]++
			}
		}
		copy(rank, next)

		if rank[sa.sa[n-1]] == n-1 || k >= n {
			break
		}
	}

	return sa
}

// Len returns the number of indexed bytes.
func (sa *SuffixArray) Len() int {
	return len(sa.text)
}

// Search returns the byte offsets of every occurrence of pattern, ascending.
func (sa *SuffixArray) Search(pattern string) []int {
	m := len(pattern)
	if m == 0 || len(sa.sa) == 0 {
		return nil
	}

	prefix := func(i int) string {
		suffix := sa.text[sa.sa[i]:]
		if len(suffix) > m {
			return suffix[:m]
		}
		return suffix
	}

	n := len(sa.sa)
	left := sort.Search(n, func(i int) bool { return prefix(i) >= pattern })
	right := sort.Search(n, func(i int) bool { return prefix(i) > pattern })

	matches := make([]int, 0, right-left)
	for i := left; i < right; i++ {
		if prefix(i) == pattern {
			matches = append(matches, sa.sa[i])
		}
	}
	sort.Ints(matches)
	return matches
}
