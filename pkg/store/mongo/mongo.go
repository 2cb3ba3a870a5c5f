// Package mongo implements a family store on MongoDB. People and
// relationships live in the people and relationships collections; a seq
// field keeps insertion order.
package mongo

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/firemesscode/drevorod/pkg/cache"
	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

const backend = "mongo"

// DefaultDatabase is used when Open is given an empty database name.
const DefaultDatabase = "drevorod"

type personDoc struct {
	family.Person `bson:",inline"`
	Seq           int64 `bson:"seq"`
}

type relationshipDoc struct {
	family.Relationship `bson:",inline"`
	Seq                 int64 `bson:"seq"`
}

// Store is a MongoDB-backed family store.
type Store struct {
	client *mongo.Client
	people *mongo.Collection
	rels   *mongo.Collection
	last   atomic.Int64
}

// Open connects to uri and pings the primary. A failed ping is marked
// [cache.Retryable].
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Unavailable(backend, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, cache.Retryable(errors.Unavailable(backend, err))
	}
	db := client.Database(database)
	s := &Store{
		client: client,
		people: db.Collection("people"),
		rels:   db.Collection("relationships"),
	}
	_, err = s.rels.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "person1_id", Value: 1}}},
		{Keys: bson.D{{Key: "person2_id", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Unavailable(backend, err)
	}
	return s, nil
}

// seq returns a strictly increasing sequence number derived from the clock.
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

var bySeq = options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})

func (s *Store) Snapshot(ctx context.Context) (family.Snapshot, error) {
	snap := family.Snapshot{People: []family.Person{}, Relationships: []family.Relationship{}}

	cur, err := s.people.Find(ctx, bson.D{}, bySeq)
	if err != nil {
		return family.Snapshot{}, errors.Unavailable(backend, err)
	}
	var people []personDoc
	if err := cur.All(ctx, &people); err != nil {
		return family.Snapshot{}, errors.Unavailable(backend, err)
	}
	for _, d := range people {
		snap.People = append(snap.People, d.Person)
	}

	cur, err = s.rels.Find(ctx, bson.D{}, bySeq)
	if err != nil {
		return family.Snapshot{}, errors.Unavailable(backend, err)
	}
	var rels []relationshipDoc
	if err := cur.All(ctx, &rels); err != nil {
		return family.Snapshot{}, errors.Unavailable(backend, err)
	}
	for _, d := range rels {
		snap.Relationships = append(snap.Relationships, d.Relationship)
	}
	return snap, nil
}

func (s *Store) Person(ctx context.Context, id string) (family.Person, error) {
	var d personDoc
	err := s.people.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return family.Person{}, errors.PersonNotFound(id)
	}
	if err != nil {
		return family.Person{}, errors.Unavailable(backend, err)
	}
	return d.Person, nil
}

func (s *Store) CreatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	_, err := s.people.InsertOne(ctx, personDoc{Person: p, Seq: s.seq()})
	if mongo.IsDuplicateKeyError(err) {
		return family.Person{}, errors.New(errors.ErrCodeInvalidPerson, "person %q already exists", p.ID)
	}
	if err != nil {
		return family.Person{}, errors.Unavailable(backend, err)
	}
	return p, nil
}

func (s *Store) UpdatePerson(ctx context.Context, id string, patch family.PersonPatch) (family.Person, error) {
	if fields := patch.Fields(); len(fields) > 0 {
		res, err := s.people.UpdateByID(ctx, id, bson.M{"$set": fields})
		if err != nil {
			return family.Person{}, errors.Unavailable(backend, err)
		}
		if res.MatchedCount == 0 {
			return family.Person{}, errors.PersonNotFound(id)
		}
	}
	return s.Person(ctx, id)
}

// DeletePerson removes the person's relationships and then the person.
// Standalone servers have no multi-document transactions, so a failure in
// between leaves the person without relationships.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	if _, err := s.Person(ctx, id); err != nil {
		return err
	}
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "person1_id", Value: id}},
		bson.D{{Key: "person2_id", Value: id}},
	}}}
	if _, err := s.rels.DeleteMany(ctx, filter); err != nil {
		return errors.Unavailable(backend, err)
	}
	res, err := s.people.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return errors.Unavailable(backend, err)
	}
	if res.DeletedCount == 0 {
		return errors.PersonNotFound(id)
	}
	return nil
}

func (s *Store) CreateRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	_, err := s.rels.InsertOne(ctx, relationshipDoc{Relationship: r, Seq: s.seq()})
	if mongo.IsDuplicateKeyError(err) {
		return family.Relationship{}, errors.New(errors.ErrCodeInvalidRelationship, "relationship %q already exists", r.ID)
	}
	if err != nil {
		return family.Relationship{}, errors.Unavailable(backend, err)
	}
	return r, nil
}

func (s *Store) UpdateRelationship(ctx context.Context, id string, patch family.RelationshipPatch) (family.Relationship, error) {
	if fields := patch.Fields(); len(fields) > 0 {
		res, err := s.rels.UpdateByID(ctx, id, bson.M{"$set": fields})
		if err != nil {
			return family.Relationship{}, errors.Unavailable(backend, err)
		}
		if res.MatchedCount == 0 {
			return family.Relationship{}, errors.RelationshipNotFound(id)
		}
	}
	var d relationshipDoc
	err := s.rels.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return family.Relationship{}, errors.RelationshipNotFound(id)
	}
	if err != nil {
		return family.Relationship{}, errors.Unavailable(backend, err)
	}
	return d.Relationship, nil
}

func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	res, err := s.rels.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return errors.Unavailable(backend, err)
	}
	if res.DeletedCount == 0 {
		return errors.RelationshipNotFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
