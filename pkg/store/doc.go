// Package store is the data-access boundary for family data.
//
// A [Store] holds people and relationships and hands out consistent
// [family.Snapshot] values for the layout engine. Backends live in
// subpackages (memory, file, sqlite, mongo, neo4j) and only persist; the
// wrappers in this package add the rules shared by all of them:
//
//   - [Checked] validates input, assigns ids and rejects relationships
//     that reference unknown people.
//   - [Observed] notifies subscribers once per successful mutation.
//
// [Open] builds the usual stack for a configured backend:
//
//	s, err := store.Open(ctx, store.Config{Backend: store.BackendSQLite, DSN: "family.db"})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	unsubscribe := s.Subscribe(func(ev store.Event) { ... })
package store
