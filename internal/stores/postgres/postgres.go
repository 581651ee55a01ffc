// Package postgres stores documents as jsonb rows in a shared table keyed by
// store name, document kind and doc id.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"net/url"

	"github.com/agentstation/utc"
	_ "github.com/lib/pq" // registers the postgres driver

	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
)

// Kinds of document kept apart inside one store.
const (
	KindSystemOutput = "system_output"
	KindAnnotation   = "annotation"
)

const schema = `CREATE TABLE IF NOT EXISTS ` + constants.PostgresTable + ` (
	store      TEXT        NOT NULL,
	kind       TEXT        NOT NULL,
	doc_id     TEXT        NOT NULL,
	body       JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (store, kind, doc_id)
)`

// Store is one named store of one kind inside the documents table.
type Store struct {
	db       *sql.DB
	name     string
	kind     string
	location string
}

// Location describes a parsed postgres store location.
type Location struct {
	DSN   string
	Store string
	// Redacted is the location with any password masked.
	Redacted string
}

// ParseLocation splits the store=<name> parameter from a lib/pq connection
// URL. The store name is required.
func ParseLocation(location string) (Location, error) {
	u, err := url.Parse(location)
	if err != nil {
		return Location{}, errors.NewConfigError("postgres", "invalid location", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Location{}, errors.NewConfigError("postgres", "location must use the postgres:// scheme", nil)
	}
	q := u.Query()
	name := q.Get("store")
	if name == "" {
		return Location{}, errors.NewConfigError("postgres", "location needs a store=<name> parameter", nil)
	}
	redacted := u.Redacted()
	q.Del("store")
	u.RawQuery = q.Encode()
	return Location{DSN: u.String(), Store: name, Redacted: redacted}, nil
}

// Open connects to the database. With create set the documents table is
// created when missing; otherwise the store must already hold documents of
// the given kind.
func Open(ctx context.Context, location, kind string, create bool) (*Store, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", loc.DSN)
	if err != nil {
		return nil, errors.NewStoreError("open", loc.Redacted, "", err)
	}

	openCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(openCtx); err != nil {
		_ = db.Close()
		return nil, errors.NewStoreError("open", loc.Redacted, "", err)
	}

	s := &Store{db: db, name: loc.Store, kind: kind, location: loc.Redacted}
	if create {
		if _, err := db.ExecContext(openCtx, schema); err != nil {
			_ = db.Close()
			return nil, errors.NewStoreError("create", loc.Redacted, "", err)
		}
		return s, nil
	}

	var exists bool
	err = db.QueryRowContext(openCtx,
		`SELECT EXISTS (SELECT 1 FROM `+constants.PostgresTable+` WHERE store = $1 AND kind = $2)`,
		s.name, s.kind).Scan(&exists)
	if err != nil {
		_ = db.Close()
		return nil, errors.NewStoreError("open", loc.Redacted, "", err)
	}
	if !exists {
		_ = db.Close()
		return nil, errors.NewNotFoundError(kind+" store", loc.Redacted)
	}
	return s, nil
}

// Location returns the redacted location.
func (s *Store) Location() string {
	return s.location
}

// List returns the stored doc ids in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id FROM `+constants.PostgresTable+` WHERE store = $1 AND kind = $2 ORDER BY doc_id`,
		s.name, s.kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Get returns the raw document, or a NotFoundError.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM `+constants.PostgresTable+` WHERE store = $1 AND kind = $2 AND doc_id = $3`,
		s.name, s.kind, id).Scan(&body)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("document", id)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Put inserts or replaces the document.
func (s *Store) Put(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return errors.NewValidationError("doc_id", id, "cannot be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+constants.PostgresTable+` (store, kind, doc_id, body, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (store, kind, doc_id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		s.name, s.kind, id, string(data), utc.Now().Time)
	return err
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
