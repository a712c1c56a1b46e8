// Package imagestore persists downloaded image blobs keyed by their source URL.
package imagestore

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-character-list/alert"
	"github.com/goliatone/go-character-list/internal/logging"
)

// Store is the persistent tier of the image pipeline.
type Store struct {
	repo repository.Repository[*ImageRecord]
}

// New builds a Store over db. The schema must already exist, see CreateSchema.
func New(db *bun.DB) *Store {
	return &Store{repo: repository.NewRepository[*ImageRecord](db, handlers())}
}

// NewWithRepository builds a Store over an existing repository.
func NewWithRepository(repo repository.Repository[*ImageRecord]) *Store {
	return &Store{repo: repo}
}

func handlers() repository.ModelHandlers[*ImageRecord] {
	return repository.ModelHandlers[*ImageRecord]{
		NewRecord: func() *ImageRecord {
			return &ImageRecord{}
		},
		GetID: func(record *ImageRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *ImageRecord, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "image_url"
		},
	}
}

// FindByField returns every record whose field equals value.
// Only "imageUrl", "image_url" and "id" are queryable.
func (s *Store) FindByField(ctx context.Context, field, value string) ([]*ImageRecord, error) {
	column, ok := columns[field]
	if !ok {
		return nil, errors.WithContext(
			errors.Newf(alert.CodeStoreFetch, "unknown image field %q", field),
			"field", field,
		)
	}

	records, _, err := s.repo.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value).
			Order("created_at ASC")
	})
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, alert.CodeStoreFetch, "lookup image records"),
			"value", value,
		)
	}

	logger(ctx).Debug().Str("field", field).Int("matches", len(records)).Msg("image store lookup")
	return records, nil
}

// Insert persists record, assigning an ID and creation time when missing.
func (s *Store) Insert(ctx context.Context, record *ImageRecord) error {
	if record == nil {
		return errors.New(alert.CodeStoreSave, "nil image record")
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if _, err := s.repo.Create(ctx, record); err != nil {
		return errors.WithContext(
			errors.Wrap(err, alert.CodeStoreSave, "insert image record"),
			"url", record.ImageURL,
		)
	}

	logger(ctx).Debug().Str("url", record.ImageURL).Int("bytes", len(record.ImageData)).Msg("image stored")
	return nil
}

// Delete removes record.
func (s *Store) Delete(ctx context.Context, record *ImageRecord) error {
	if record == nil {
		return errors.New(alert.CodeStoreDelete, "nil image record")
	}

	if err := s.repo.Delete(ctx, record); err != nil {
		return errors.WithContext(
			errors.Wrap(err, alert.CodeStoreDelete, "delete image record"),
			"url", record.ImageURL,
		)
	}
	return nil
}

// DeleteByURL removes every record stored for url and reports how many went away.
func (s *Store) DeleteByURL(ctx context.Context, url string) (int, error) {
	records, err := s.FindByField(ctx, FieldImageURL, url)
	if err != nil {
		return 0, err
	}

	for i, record := range records {
		if err := s.Delete(ctx, record); err != nil {
			return i, err
		}
	}
	return len(records), nil
}

// Count reports how many records are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, alert.CodeStoreFetch, "count image records")
	}
	return n, nil
}

func logger(ctx context.Context) *zerolog.Logger {
	l := logging.FromContext(ctx).With().Str("component", "imagestore").Logger()
	return &l
}
