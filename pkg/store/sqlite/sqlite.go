// Package sqlite implements a family store on SQLite through gorm.
package sqlite

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

const backend = "sqlite"

// Store keeps people and relationships in the people and relationships
// tables. Rows are returned in rowid order, which is insertion order.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at dsn and migrates the schema. SQL
// statements are logged at debug level when logger is non-nil.
func Open(dsn string, l *log.Logger) (*Store, error) {
	gormLogger := logger.Discard
	if l != nil {
		gormLogger = logger.New(l, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
		if l.GetLevel() <= log.DebugLevel {
			gormLogger = gormLogger.LogMode(logger.Info)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Unavailable(backend, err)
	}
	if err := db.AutoMigrate(&family.Person{}, &family.Relationship{}); err != nil {
		return nil, errors.Unavailable(backend, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Snapshot(ctx context.Context) (family.Snapshot, error) {
	snap := family.Snapshot{People: []family.Person{}, Relationships: []family.Relationship{}}
	db := s.db.WithContext(ctx)
	if err := db.Order("rowid").Find(&snap.People).Error; err != nil {
		return family.Snapshot{}, errors.Unavailable(backend, err)
	}
	if err := db.Order("rowid").Find(&snap.Relationships).Error; err != nil {
		return family.Snapshot{}, errors.Unavailable(backend, err)
	}
	return snap, nil
}

func (s *Store) Person(ctx context.Context, id string) (family.Person, error) {
	var p family.Person
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return family.Person{}, errors.PersonNotFound(id)
	}
	if err != nil {
		return family.Person{}, errors.Unavailable(backend, err)
	}
	return p, nil
}

func (s *Store) CreatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	err := s.db.WithContext(ctx).Create(&p).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return family.Person{}, errors.New(errors.ErrCodeInvalidPerson, "person %q already exists", p.ID)
	}
	if err != nil {
		return family.Person{}, errors.Unavailable(backend, err)
	}
	return p, nil
}

func (s *Store) UpdatePerson(ctx context.Context, id string, patch family.PersonPatch) (family.Person, error) {
	fields := patch.Fields()
	if len(fields) > 0 {
		result := s.db.WithContext(ctx).Model(&family.Person{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return family.Person{}, errors.Unavailable(backend, result.Error)
		}
		if result.RowsAffected == 0 {
			return family.Person{}, errors.PersonNotFound(id)
		}
	}
	return s.Person(ctx, id)
}

// DeletePerson removes the person and every relationship referencing them
// in one transaction.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person1_id = ? OR person2_id = ?", id, id).Delete(&family.Relationship{}).Error; err != nil {
			return errors.Unavailable(backend, err)
		}
		result := tx.Where("id = ?", id).Delete(&family.Person{})
		if result.Error != nil {
			return errors.Unavailable(backend, result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.PersonNotFound(id)
		}
		return nil
	})
}

func (s *Store) CreateRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	err := s.db.WithContext(ctx).Create(&r).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return family.Relationship{}, errors.New(errors.ErrCodeInvalidRelationship, "relationship %q already exists", r.ID)
	}
	if err != nil {
		return family.Relationship{}, errors.Unavailable(backend, err)
	}
	return r, nil
}

func (s *Store) UpdateRelationship(ctx context.Context, id string, patch family.RelationshipPatch) (family.Relationship, error) {
	db := s.db.WithContext(ctx)
	if fields := patch.Fields(); len(fields) > 0 {
		result := db.Model(&family.Relationship{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return family.Relationship{}, errors.Unavailable(backend, result.Error)
		}
		if result.RowsAffected == 0 {
			return family.Relationship{}, errors.RelationshipNotFound(id)
		}
	}
	var r family.Relationship
	err := db.Where("id = ?", id).First(&r).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return family.Relationship{}, errors.RelationshipNotFound(id)
	}
	if err != nil {
		return family.Relationship{}, errors.Unavailable(backend, err)
	}
	return r, nil
}

func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&family.Relationship{})
	if result.Error != nil {
		return errors.Unavailable(backend, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.RelationshipNotFound(id)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
