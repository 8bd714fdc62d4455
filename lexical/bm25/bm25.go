package bm25

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/hupe1980/ixcoll/lexical"
)

const (
	k1 = 1.2
	b  = 0.75
)

type document struct {
	seq    uint64
	length int
	terms  map[string]int
}

// MemoryIndex is a simple in-memory BM25 index.
type MemoryIndex[K comparable] struct {
	inverted    map[string]map[K]int
	docs        map[K]*document
	totalLength int64
	nextSeq     uint64
}

// New creates a new MemoryIndex.
func New[K comparable]() *MemoryIndex[K] {
	return &MemoryIndex[K]{
		inverted: make(map[string]map[K]int),
		docs:     make(map[K]*document),
	}
}

// Ensure MemoryIndex implements lexical.Index
var _ lexical.Index[string] = (*MemoryIndex[string])(nil)

// Tokenize lowercases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Add indexes text under key. An existing document for key is replaced.
func (idx *MemoryIndex[K]) Add(key K, text string) {
	if _, ok := idx.docs[key]; ok {
		idx.Delete(key)
	}

	tokens := Tokenize(text)
	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}

	idx.nextSeq++
	idx.docs[key] = &document{seq: idx.nextSeq, length: len(tokens), terms: tf}
	idx.totalLength += int64(len(tokens))

	for t, count := range tf {
		postings, ok := idx.inverted[t]
		if !ok {
			postings = make(map[K]int)
			idx.inverted[t] = postings
		}
		postings[key] = count
	}
}

// Delete removes key. Only the posting lists of the document's own terms are touched.
func (idx *MemoryIndex[K]) Delete(key K) {
	doc, ok := idx.docs[key]
	if !ok {
		return
	}
	for t := range doc.terms {
		postings := idx.inverted[t]
		delete(postings, key)
		if len(postings) == 0 {
			delete(idx.inverted, t)
		}
	}
	delete(idx.docs, key)
	idx.totalLength -= int64(doc.length)
}

// Len returns the number of indexed documents.
func (idx *MemoryIndex[K]) Len() int {
	return len(idx.docs)
}

// Reset drops every document.
func (idx *MemoryIndex[K]) Reset() {
	clear(idx.inverted)
	clear(idx.docs)
	idx.totalLength = 0
}

// Search scores every document containing at least one query term.
// Hits are ordered by descending score; ties keep indexing order.
func (idx *MemoryIndex[K]) Search(text string, limit int) []lexical.Hit[K] {
	if len(idx.docs) == 0 {
		return nil
	}

	avgDL := float64(idx.totalLength) / float64(len(idx.docs))
	if avgDL == 0 {
		avgDL = 1
	}

	scores := make(map[K]float64)
	seen := make(map[string]struct{})
	for _, t := range Tokenize(text) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}

		postings, ok := idx.inverted[t]
		if !ok {
			continue
		}
		idf := idx.computeIDF(len(postings))
		for key, count := range postings {
			tf := float64(count)
			docLen := float64(idx.docs[key].length)

			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(docLen/avgDL))
			scores[key] += idf * (num / denom)
		}
	}

	hits := make([]lexical.Hit[K], 0, len(scores))
	for key, score := range scores {
		hits = append(hits, lexical.Hit[K]{Key: key, Score: score})
	}
	slices.SortFunc(hits, func(x, y lexical.Hit[K]) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		return cmp.Compare(idx.docs[x.Key].seq, idx.docs[y.Key].seq)
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func (idx *MemoryIndex[K]) computeIDF(df int) float64 {
	// IDF = log(1 + (N - n + 0.5) / (n + 0.5))
	N := float64(len(idx.docs))
	n := float64(df)
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}
