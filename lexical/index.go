package lexical

// Hit is one scored search result.
type Hit[K comparable] struct {
	Key   K
	Score float64
}

// Index is the interface for a lexical search index keyed by K.
type Index[K comparable] interface {
	// Add indexes text under key, replacing any previous text for key.
	Add(key K, text string)
	// Delete removes key from the index.
	Delete(key K)
	// Search returns up to limit hits ordered by descending score.
	// A limit <= 0 returns every hit.
	Search(text string, limit int) []Hit[K]
	// Len returns the number of indexed documents.
	Len() int
}
