// Package ixcoll provides an indexed in-memory collection of records.
//
// A Collection keeps an ordered set of uniquely identified records and any
// number of indexes declared at construction. Every mutation updates the
// indexes before it returns, so reads never observe a stale index.
//
// # Quick Start
//
//	type User struct {
//	    ID    int
//	    Email string
//	    Team  string
//	}
//
//	users, _ := ixcoll.New(func(u User) int { return u.ID }, []ixcoll.Index[int, User]{
//	    ixcoll.Single[int]("email", func(u User) (string, bool) { return u.Email, u.Email != "" }),
//	    ixcoll.MultiOf[int]("team", func(u User) (string, bool) { return u.Team, u.Team != "" }),
//	    ixcoll.CountBy[int]("per_team", func(u User) (string, bool) { return u.Team, true }),
//	})
//
//	users.Add(User{ID: 1, Email: "a@example.com", Team: "core"})
//	u, err := users.By("email", "a@example.com")
//	core, _ := users.Where("team", "core")
//
// # Index Kinds
//
// Four kinds of index are available:
//
//	Single   key -> at most one record, most recently added wins
//	Multi    key -> records in the order they were added
//	Derived  one value computed from all records, optionally maintained by hooks
//	Dynamic  a stored query function, optionally maintained by hooks
//
// Asking an index for semantics of another kind, for example Where on a
// single index, returns a *KindMismatchError.
//
// # Error Tiers
//
// Misuse is reported as an error: strict lookups without a match (By),
// unregistered indexes on strict operations, kind mismatches and out-of-range
// InsertAt positions. Absent data is not an error: ByOptional, Where, First,
// Latest, GetDerived and Related return empty results, Remove and Reorder
// return false.
//
// # Validation
//
// Indexes may declare Input and Output schemas (package schema). With
// WithValidation(true) query arguments and results are checked against them;
// violations are delivered as Diagnostic values and never fail the query.
//
// # Concurrency
//
// A Collection is meant for a single goroutine. Wrap it with NewLocked to
// share it.
package ixcoll
