package ixcoll_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/hupe1980/ixcoll"
)

type user struct {
	ID    uuid.UUID
	Email string
	Team  string
	Score int
}

func userID(u user) uuid.UUID { return u.ID }

func newUser(name, team string, score int) user {
	return user{
		ID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Email: name + "@example.com",
		Team:  team,
		Score: score,
	}
}

func newUsers(indexes ...ixcoll.Index[uuid.UUID, user]) *ixcoll.Collection[uuid.UUID, user] {
	base := []ixcoll.Index[uuid.UUID, user]{
		ixcoll.Single[uuid.UUID]("email", func(u user) (string, bool) { return u.Email, u.Email != "" }),
		ixcoll.MultiOf[uuid.UUID]("team", func(u user) (string, bool) { return u.Team, u.Team != "" }),
	}
	users, err := ixcoll.New(userID, append(base, indexes...))
	if err != nil {
		log.Fatal(err)
	}
	return users
}

// Example demonstrates single and multi-value lookups.
func Example() {
	users := newUsers()
	users.Add(newUser("alice", "core", 7))
	users.Add(newUser("bob", "core", 3))
	users.Add(newUser("carol", "web", 5))

	bob, err := users.By("email", "bob@example.com")
	if err != nil {
		log.Fatal(err)
	}
	core, _ := users.Where("team", "core")

	fmt.Println(bob.Team, len(core))

	_, err = users.By("email", "dave@example.com")
	fmt.Println(errors.Is(err, ixcoll.ErrNotFound))
	// Output:
	// core 2
	// true
}

// ExampleTopN demonstrates an incrementally maintained leaderboard.
func ExampleTopN() {
	users := newUsers(
		ixcoll.TopN[uuid.UUID]("leaders", 2, func(a, b user) bool {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.Email < b.Email
		}, nil),
	)
	alice := users.Add(newUser("alice", "core", 7))
	users.Add(newUser("bob", "core", 3))
	users.Add(newUser("carol", "web", 5))

	leaders := ixcoll.Must(ixcoll.DerivedValue[[]user](users, "leaders"))
	fmt.Println(leaders[0].Email, leaders[1].Email)

	users.Remove(alice.ID)
	leaders = ixcoll.Must(ixcoll.DerivedValue[[]user](users, "leaders"))
	fmt.Println(leaders[0].Email, leaders[1].Email)
	// Output:
	// alice@example.com carol@example.com
	// carol@example.com bob@example.com
}

// ExampleTextSearch demonstrates a dynamic index queried through Query.
func ExampleTextSearch() {
	users := newUsers(
		ixcoll.TextSearch[uuid.UUID]("search", func(u user) string { return u.Email }),
	)
	users.Add(newUser("alice.smith", "core", 1))
	users.Add(newUser("bob", "core", 1))

	hits, err := users.Query("search", "smith")
	if err != nil {
		log.Fatal(err)
	}
	for _, u := range hits.([]user) {
		fmt.Println(u.Email)
	}
	// Output: alice.smith@example.com
}

// ExampleCollection_Related demonstrates resolving ids held by other values.
func ExampleCollection_Related() {
	users := newUsers()
	alice := users.Add(newUser("alice", "core", 1))
	bob := users.Add(newUser("bob", "core", 1))

	type task struct {
		Owner    uuid.UUID   `json:"owner"`
		Watchers []uuid.UUID `json:"watchers"`
	}
	tasks := []any{
		task{Owner: bob.ID, Watchers: []uuid.UUID{alice.ID, uuid.Nil}},
		map[string]any{"owner": alice.ID},
	}

	for _, u := range users.Related(tasks, "owner") {
		fmt.Println(u.Email)
	}
	fmt.Println(len(users.Related(tasks, "watchers")))
	fmt.Println(len(users.Related(tasks, "watchers[9]")))
	// Output:
	// bob@example.com
	// alice@example.com
	// 1
	// 0
}

// ExampleCollection_Rebuild demonstrates recomputing derived indexes in
// parallel.
func ExampleCollection_Rebuild() {
	perTeam := ixcoll.CountBy[uuid.UUID]("per_team", func(u user) (string, bool) { return u.Team, true })
	users, err := ixcoll.New(userID, []ixcoll.Index[uuid.UUID, user]{perTeam},
		ixcoll.WithRebuildConcurrency(4))
	if err != nil {
		log.Fatal(err)
	}
	users.AddMany([]user{newUser("a", "core", 1), newUser("b", "web", 1), newUser("c", "web", 1)})

	if err := users.Rebuild(context.Background()); err != nil {
		log.Fatal(err)
	}
	counts, _ := ixcoll.DerivedValue[map[string]int](users, "per_team")
	fmt.Println(counts["core"], counts["web"])
	// Output: 1 2
}
