// Package neo4j implements a family store on Neo4j (or Memgraph). People
// are (:Person) nodes and relationships are [:RELATED] edges from
// person1 to person2 carrying the relationship id, type and meta.
package neo4j

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/firemesscode/drevorod/pkg/cache"
	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

const backend = "neo4j"

// Querier runs one Cypher query and returns all records.
type Querier interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

type driverQuerier struct {
	driver   neo4j.DriverWithContext
	database string
}

func (d *driverQuerier) ExecuteQuery(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}
	return neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer, opts...)
}

func (d *driverQuerier) Close(ctx context.Context) error { return d.driver.Close(ctx) }

// Store is a graph-backed family store.
type Store struct {
	q    Querier
	last atomic.Int64
}

// Open connects to uri, verifies connectivity and creates the id indexes.
// An empty database uses the server default. A failed connectivity check
// is marked [cache.Retryable].
func Open(ctx context.Context, uri, username, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errors.Unavailable(backend, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, cache.Retryable(errors.Unavailable(backend, err))
	}
	s := New(&driverQuerier{driver: driver, database: database})
	for _, q := range []string{
		"CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE",
		"CREATE INDEX related_id IF NOT EXISTS FOR ()-[r:RELATED]-() ON (r.id)",
	} {
		if _, err := s.q.ExecuteQuery(ctx, q, nil); err != nil {
			_ = driver.Close(context.Background())
			return nil, errors.Unavailable(backend, err)
		}
	}
	return s, nil
}

// New wraps an existing querier.
func New(q Querier) *Store { return &Store{q: q} }

func (s *Store) run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := s.q.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, errors.Unavailable(backend, err)
	}
	return res.Records, nil
}

func (s *Store) seq() int64 {
	for {
		last := s.last.Load()
		next := time.Now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if s.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

const (
	queryPeople = `MATCH (p:Person) RETURN properties(p) AS p ORDER BY p.seq`
	queryRels   = `MATCH (a:Person)-[r:RELATED]->(b:Person)
RETURN r.id AS id, a.id AS person1_id, b.id AS person2_id, r.type AS type, r.meta AS meta
ORDER BY r.seq`
	queryPerson       = `MATCH (p:Person {id: $id}) RETURN properties(p) AS p`
	queryPersonExists = `MATCH (p:Person {id: $id}) RETURN p.id AS id`
	createPerson      = `CREATE (p:Person) SET p = $props RETURN properties(p) AS p`
	updatePerson      = `MATCH (p:Person {id: $id}) SET p += $fields RETURN properties(p) AS p`
	deletePerson      = `MATCH (p:Person {id: $id}) WITH p, p.id AS id DETACH DELETE p RETURN id`
	queryRelExists    = `MATCH ()-[r:RELATED {id: $id}]->() RETURN r.id AS id`
	createRel         = `MATCH (a:Person {id: $p1}), (b:Person {id: $p2})
CREATE (a)-[r:RELATED {id: $id, type: $type, meta: $meta, seq: $seq}]->(b)
RETURN r.id AS id, a.id AS person1_id, b.id AS person2_id, r.type AS type, r.meta AS meta`
	updateRel = `MATCH (a:Person)-[r:RELATED {id: $id}]->(b:Person) SET r += $fields
RETURN r.id AS id, a.id AS person1_id, b.id AS person2_id, r.type AS type, r.meta AS meta`
	deleteRel = `MATCH ()-[r:RELATED {id: $id}]->() WITH r, r.id AS id DELETE r RETURN id`
)

func (s *Store) Snapshot(ctx context.Context) (family.Snapshot, error) {
	snap := family.Snapshot{People: []family.Person{}, Relationships: []family.Relationship{}}
	recs, err := s.run(ctx, queryPeople, nil)
	if err != nil {
		return family.Snapshot{}, err
	}
	for _, rec := range recs {
		snap.People = append(snap.People, personFrom(rec))
	}
	recs, err = s.run(ctx, queryRels, nil)
	if err != nil {
		return family.Snapshot{}, err
	}
	for _, rec := range recs {
		snap.Relationships = append(snap.Relationships, relationshipFrom(rec))
	}
	return snap, nil
}

func (s *Store) Person(ctx context.Context, id string) (family.Person, error) {
	recs, err := s.run(ctx, queryPerson, map[string]any{"id": id})
	if err != nil {
		return family.Person{}, err
	}
	if len(recs) == 0 {
		return family.Person{}, errors.PersonNotFound(id)
	}
	return personFrom(recs[0]), nil
}

func (s *Store) CreatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	recs, err := s.run(ctx, queryPersonExists, map[string]any{"id": p.ID})
	if err != nil {
		return family.Person{}, err
	}
	if len(recs) > 0 {
		return family.Person{}, errors.New(errors.ErrCodeInvalidPerson, "person %q already exists", p.ID)
	}
	props := map[string]any{
		"id":          p.ID,
		"last_name":   p.LastName,
		"first_name":  p.FirstName,
		"middle_name": p.MiddleName,
		"birth_date":  p.BirthDate,
		"death_date":  p.DeathDate,
		"birth_place": p.BirthPlace,
		"photo_url":   p.PhotoURL,
		"description": p.Description,
		"seq":         s.seq(),
	}
	recs, err = s.run(ctx, createPerson, map[string]any{"props": props})
	if err != nil {
		return family.Person{}, err
	}
	if len(recs) == 0 {
		return p, nil
	}
	return personFrom(recs[0]), nil
}

func (s *Store) UpdatePerson(ctx context.Context, id string, patch family.PersonPatch) (family.Person, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return s.Person(ctx, id)
	}
	recs, err := s.run(ctx, updatePerson, map[string]any{"id": id, "fields": fields})
	if err != nil {
		return family.Person{}, err
	}
	if len(recs) == 0 {
		return family.Person{}, errors.PersonNotFound(id)
	}
	return personFrom(recs[0]), nil
}

// DeletePerson detaches and deletes the node, which removes its
// relationships in the same statement.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	recs, err := s.run(ctx, deletePerson, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return errors.PersonNotFound(id)
	}
	return nil
}

// CreateRelationship fails with a person-not-found error when either end
// is missing, since an edge needs both nodes.
func (s *Store) CreateRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	recs, err := s.run(ctx, queryRelExists, map[string]any{"id": r.ID})
	if err != nil {
		return family.Relationship{}, err
	}
	if len(recs) > 0 {
		return family.Relationship{}, errors.New(errors.ErrCodeInvalidRelationship, "relationship %q already exists", r.ID)
	}
	recs, err = s.run(ctx, createRel, map[string]any{
		"id":   r.ID,
		"p1":   r.Person1ID,
		"p2":   r.Person2ID,
		"type": string(r.Kind),
		"meta": r.Label,
		"seq":  s.seq(),
	})
	if err != nil {
		return family.Relationship{}, err
	}
	if len(recs) == 0 {
		return family.Relationship{}, errors.New(errors.ErrCodePersonNotFound,
			"relationship %q references an unknown person (%s, %s)", r.ID, r.Person1ID, r.Person2ID)
	}
	return relationshipFrom(recs[0]), nil
}

func (s *Store) UpdateRelationship(ctx context.Context, id string, patch family.RelationshipPatch) (family.Relationship, error) {
	recs, err := s.run(ctx, updateRel, map[string]any{"id": id, "fields": patch.Fields()})
	if err != nil {
		return family.Relationship{}, err
	}
	if len(recs) == 0 {
		return family.Relationship{}, errors.RelationshipNotFound(id)
	}
	return relationshipFrom(recs[0]), nil
}

func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	recs, err := s.run(ctx, deleteRel, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return errors.RelationshipNotFound(id)
	}
	return nil
}

// Close closes the driver.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.q.Close(ctx)
}

func personFrom(rec *neo4j.Record) family.Person {
	raw, _ := rec.Get("p")
	props, _ := raw.(map[string]any)
	return family.Person{
		ID:          str(props["id"]),
		LastName:    str(props["last_name"]),
		FirstName:   str(props["first_name"]),
		MiddleName:  str(props["middle_name"]),
		BirthDate:   str(props["birth_date"]),
		DeathDate:   str(props["death_date"]),
		BirthPlace:  str(props["birth_place"]),
		PhotoURL:    str(props["photo_url"]),
		Description: str(props["description"]),
	}
}

func relationshipFrom(rec *neo4j.Record) family.Relationship {
	get := func(key string) string {
		v, _ := rec.Get(key)
		return str(v)
	}
	return family.Relationship{
		ID:        get("id"),
		Person1ID: get("person1_id"),
		Person2ID: get("person2_id"),
		Kind:      family.Kind(get("type")),
		Label:     get("meta"),
	}
}

func str(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
