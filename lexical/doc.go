// Package lexical defines keyword search indexes keyed by record id.
//
// ixcoll.TextSearch builds one index per collection from the current records
// and then keeps it current with Add and Delete. See package bm25 for the
// implementation used by default:
//
//	idx := bm25.New[string]()
//	idx.Add("doc-1", "the quick brown fox")
//	hits := idx.Search("fox", 10)
package lexical
