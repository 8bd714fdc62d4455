// Package bm25 ranks records for ixcoll.TextSearch.
//
// The index keeps term frequencies per document and document frequencies per
// term in memory, so Add and Delete are proportional to the size of one text.
// Search scores term-at-a-time with k1=1.2 and b=0.75.
//
// An index is owned by a single collection and is not safe for concurrent use.
package bm25
