package similarity

import "strings"

// popularMinLen is the length of b from which very frequent runes are left
// out of the index. Matches still extend across them.
const popularMinLen = 200

// Matcher holds the index of a fixed, lowercased second sequence b.
// It is safe for concurrent use once built.
type Matcher struct {
	b   []rune
	b2j map[rune][]int
}

// NewMatcher indexes b for repeated comparisons.
func NewMatcher(b string) *Matcher {
	rb := []rune(strings.ToLower(b))
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	if n := len(rb); n >= popularMinLen {
		ntest := n/100 + 1
		for r, idxs := range b2j {
			if len(idxs) > ntest {
				delete(b2j, r)
			}
		}
	}
	return &Matcher{b: rb, b2j: b2j}
}

// Score returns 2*M/T for a against the indexed sequence, 1.0 when both are empty.
func (m *Matcher) Score(a string) float64 {
	ra := []rune(strings.ToLower(a))
	total := len(ra) + len(m.b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(m.matched(ra)) / float64(total)
}

type span struct {
	alo, ahi, blo, bhi int
}

// matched sums the sizes of all matching blocks.
func (m *Matcher) matched(a []rune) int {
	total := 0
	queue := []span{{0, len(a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longest(a, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longest finds the longest block a[i:i+k] == b[j:j+k] within the window,
// preferring the earliest start in a, then in b.
func (m *Matcher) longest(a []rune, alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Runes dropped from the index as popular can still extend a block.
	for besti > alo && bestj > blo && a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}
