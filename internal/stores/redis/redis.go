// Package redis stores documents in Redis. Each document is a string value
// under <prefix>:<kind>:doc:<docid>; the set <prefix>:<kind>:docs holds the
// doc ids. kind keeps system output and annotations apart under one prefix.
package redis

import (
	"context"
	"net/url"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
)

// Store is a Redis backed document store.
type Store struct {
	rdb      *redis.Client
	prefix   string
	kind     string
	location string
}

// Location describes a parsed redis store location.
type Location struct {
	Options *redis.Options
	Prefix  string
	// Redacted is the location with any password masked.
	Redacted string
}

// ParseLocation parses redis://[user:password@]host:port/db?prefix=name.
// The prefix parameter defaults to constants.DefaultRedisPrefix.
func ParseLocation(location string) (Location, error) {
	u, err := url.Parse(location)
	if err != nil {
		return Location{}, errors.NewConfigError("redis", "invalid location", err)
	}
	q := u.Query()
	prefix := q.Get("prefix")
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}
	q.Del("prefix")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return Location{}, errors.NewConfigError("redis", "invalid location", err)
	}
	redacted := *u
	rq := redacted.Query()
	rq.Set("prefix", prefix)
	redacted.RawQuery = rq.Encode()
	return Location{Options: opts, Prefix: prefix, Redacted: redacted.Redacted()}, nil
}

// Open connects to redis and verifies the connection with a PING. kind
// names the document family, such as system_output or annotation.
func Open(ctx context.Context, location, kind string) (*Store, error) {
	if kind == "" {
		return nil, errors.NewValidationError("kind", kind, "cannot be empty")
	}
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(loc.Options)

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.NewStoreError("open", loc.Redacted, "", err)
	}
	return &Store{rdb: rdb, prefix: loc.Prefix, kind: kind, location: loc.Redacted}, nil
}

// Exists reports whether any document has been stored under the prefix.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.docsKey()).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Location returns the redacted location.
func (s *Store) Location() string {
	return s.location
}

// List returns the stored doc ids in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, s.docsKey()).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}

// Get returns the raw document, or a NotFoundError.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.docKey(id)).Bytes()
	if IsNilError(err) {
		return nil, errors.NewNotFoundError("document", id)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put stores the document and records its id in one transaction.
func (s *Store) Put(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return errors.NewValidationError("doc_id", id, "cannot be empty")
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(id), data, 0)
		pipe.SAdd(ctx, s.docsKey(), id)
		return nil
	})
	return err
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) docKey(id string) string {
	return s.prefix + ":" + s.kind + ":doc:" + id
}

func (s *Store) docsKey() string {
	return s.prefix + ":" + s.kind + ":docs"
}

// IsNilError reports whether err is a Redis nil (key-not-found) error.
func IsNilError(err error) bool {
	return err == redis.Nil
}
