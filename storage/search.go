// SearchIndex over saved sessions.
//
// Architecture:
// - Radix trie on lower-cased names for prefix suggestions
// - Suffix array over lower-cased turn text for substring search
// - Positions in the concatenated text map back to (session, turn)
//
// The index is a snapshot; build a new one after the store changes.

package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/richinex/parley/internal/dsa"
	"github.com/richinex/parley/model"
)

// contextRunes bounds the text shown on either side of a match.
const contextRunes = 30

// SearchMatch is one occurrence of a query inside a saved transcript.
type SearchMatch struct {
	SessionID int64
	Name      string
	Turn      int // index into the transcript
	Role      model.Role
	Context   string // lower-cased match with surrounding words
}

// searchPosition maps a span of the concatenated text to a turn.
type searchPosition struct {
	sessionID int64
	turn      int
	start     int
	end       int
}

// SearchIndex answers substring and name-prefix queries over sessions.
type SearchIndex struct {
	names    *dsa.Trie[[]int64] // lower-cased name -> ids, ascending
	sessions map[int64]*model.Session

	text      *dsa.SuffixArray
	content   string
	positions []searchPosition
}

// BuildSearchIndex loads every session from store and indexes it.
func BuildSearchIndex(ctx context.Context, store SessionStore) (*SearchIndex, error) {
	infos, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(infos))
	for _, info := range infos {
		session, err := store.Get(ctx, info.ID)
		if err != nil {
			return nil, err
		}
		// Deleted between List and Get.
		if session == nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return NewSearchIndex(sessions), nil
}

// NewSearchIndex indexes sessions; they are not copied and must not be
// modified afterwards.
func NewSearchIndex(sessions []*model.Session) *SearchIndex {
	idx := &SearchIndex{
		names:    dsa.NewTrie[[]int64](),
		sessions: make(map[int64]*model.Session, len(sessions)),
	}

	var b strings.Builder
	for _, session := range sessions {
		idx.sessions[session.ID] = session
		idx.names.Update(normalize(session.Name), func(ids []int64) []int64 {
			return append(ids, session.ID)
		})

		for turn, t := range session.Transcript {
			start := b.Len()
			b.WriteString(normalize(t.Text()))
			idx.positions = append(idx.positions, searchPosition{
				sessionID: session.ID,
				turn:      turn,
				start:     start,
				end:       b.Len(),
			})
			b.WriteByte(0)
		}
	}

	idx.content = b.String()
	idx.text = dsa.BuildSuffixArray(idx.content)
	return idx
}

// Search returns up to limit matches of query in transcript text, ordered
// by session then turn. Matching ignores case. limit <= 0 means no limit.
func (idx *SearchIndex) Search(query string, limit int) []SearchMatch {
	pattern := normalize(query)
	if pattern == "" {
		return nil
	}

	var matches []SearchMatch
	for _, pos := range idx.text.Search(pattern) {
		if limit > 0 && len(matches) >= limit {
			break
		}

		// positions is sorted by start, so binary search for the span.
		i := sort.Search(len(idx.positions), func(i int) bool {
			return idx.positions[i].end > pos
		})
		if i == len(idx.positions) || pos < idx.positions[i].start {
			continue
		}
		sp := idx.positions[i]
		session := idx.sessions[sp.sessionID]

		matches = append(matches, SearchMatch{
			SessionID: sp.sessionID,
			Name:      session.Name,
			Turn:      sp.turn,
			Role:      session.Transcript[sp.turn].Role,
			Context:   snippet(idx.content[sp.start:sp.end], pos-sp.start, len(pattern)),
		})
	}
	return matches
}

// Suggest returns sessions whose names start with prefix, ignoring case,
// sorted by name then id.
func (idx *SearchIndex) Suggest(prefix string) []model.SessionInfo {
	var out []model.SessionInfo
	for _, key := range idx.names.StartsWith(normalize(prefix)) {
		ids, _ := idx.names.Search(key)
		for _, id := range ids {
			out = append(out, model.SessionInfo{ID: id, Name: idx.sessions[id].Name})
		}
	}
	return out
}

// Size returns the number of indexed sessions.
func (idx *SearchIndex) Size() int {
	return len(idx.sessions)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// snippet cuts text around [at, at+n) on rune boundaries, collapsing
// newlines so the result fits on one line.
func snippet(text string, at, n int) string {
	before := []rune(text[:at])
	after := []rune(text[at+n:])

	prefix, suffix := "", ""
	if len(before) > contextRunes {
		before = before[len(before)-contextRunes:]
		prefix = "..."
	}
	if len(after) > contextRunes {
		after = after[:contextRunes]
		suffix = "..."
	}

	out := prefix + string(before) + text[at:at+n] + string(after) + suffix
	return strings.Join(strings.Fields(out), " ")
}
