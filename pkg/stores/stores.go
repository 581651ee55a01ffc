// Package stores defines the system output and annotation store interfaces
// and opens them from a location and a format.
package stores

import (
	"context"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/annomerge/internal/stores/cache"
	"github.com/agentstation/annomerge/internal/stores/codec"
	"github.com/agentstation/annomerge/internal/stores/files"
	"github.com/agentstation/annomerge/internal/stores/postgres"
	"github.com/agentstation/annomerge/internal/stores/redis"
	"github.com/agentstation/annomerge/internal/textlist"
	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/logging"
)

// ArgumentStore is a read-only collection of system output, one
// ArgumentOutput per document.
type ArgumentStore interface {
	Location() string
	DocIDs(ctx context.Context) ([]assessment.DocID, error)
	Read(ctx context.Context, docID assessment.DocID) (assessment.ArgumentOutput, error)
	Close() error
}

// AnnotationStore is a mutable collection of answer keys, one per document.
// Read reports a not found error for documents never written; ReadOrEmpty
// returns an empty key instead.
type AnnotationStore interface {
	Location() string
	DocIDs(ctx context.Context) ([]assessment.DocID, error)
	Read(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error)
	ReadOrEmpty(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error)
	Write(ctx context.Context, key assessment.AnswerKey) error
	Close() error
}

// Format names a store encoding.
type Format string

// Supported formats.
const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatTSV      Format = "tsv"
	FormatRedis    Format = "redis"
	FormatPostgres Format = "postgres"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatYAML, FormatJSON, FormatTSV, FormatRedis, FormatPostgres}
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "tsv":
		return FormatTSV, nil
	case "redis":
		return FormatRedis, nil
	case "postgres", "postgresql":
		return FormatPostgres, nil
	default:
		return "", errors.NewConfigError("format", "unsupported store format "+name, errors.ErrUnsupportedFormat)
	}
}

// IsDirectory reports whether the format stores one file per document.
func (f Format) IsDirectory() bool {
	return f == FormatYAML || f == FormatJSON || f == FormatTSV
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

type options struct {
	cacheTTL time.Duration
}

// Option configures how a store is opened.
type Option func(*options)

// WithCache puts a read cache with the given TTL in front of annotation
// stores. It has no effect on system output stores.
func WithCache(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// backend stores raw encoded documents by id.
type backend interface {
	Location() string
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, data []byte) error
	Close() error
}

func openBackend(ctx context.Context, location string, format Format, kind string, create bool) (backend, codec.Codec, error) {
	switch format {
	case FormatYAML, FormatJSON, FormatTSV:
		c, err := codec.ForName(string(format))
		if err != nil {
			return nil, nil, err
		}
		var s *files.Store
		if create {
			s, err = files.OpenOrCreate(location, c.Extension())
		} else {
			s, err = files.Open(location, c.Extension())
		}
		if err != nil {
			return nil, nil, err
		}
		return s, c, nil
	case FormatRedis:
		s, err := redis.Open(ctx, location, kind)
		if err != nil {
			return nil, nil, err
		}
		if !create {
			exists, err := s.Exists(ctx)
			if err != nil {
				_ = s.Close()
				return nil, nil, errors.NewStoreError("open", s.Location(), "", err)
			}
			if !exists {
				_ = s.Close()
				return nil, nil, errors.NewNotFoundError(kind+" store", s.Location())
			}
		}
		return s, codec.JSON{}, nil
	case FormatPostgres:
		s, err := postgres.Open(ctx, location, kind, create)
		if err != nil {
			return nil, nil, err
		}
		return s, codec.JSON{}, nil
	default:
		return nil, nil, errors.NewConfigError("format", "unsupported store format "+string(format), errors.ErrUnsupportedFormat)
	}
}

// OpenSystemOutput opens an existing system output store. System output is
// read once per document, so no option currently applies to it.
func OpenSystemOutput(ctx context.Context, location string, format Format, _ ...Option) (ArgumentStore, error) {
	b, c, err := openBackend(ctx, location, format, postgres.KindSystemOutput, false)
	if err != nil {
		return nil, err
	}
	return &argumentStore{backend: b, codec: c}, nil
}

// OpenOrCreateAnnotations opens an annotation store, creating it when it
// does not exist yet.
func OpenOrCreateAnnotations(ctx context.Context, location string, format Format, opts ...Option) (AnnotationStore, error) {
	return openAnnotations(ctx, location, format, true, opts)
}

// OpenAnnotations opens an existing annotation store.
func OpenAnnotations(ctx context.Context, location string, format Format, opts ...Option) (AnnotationStore, error) {
	return openAnnotations(ctx, location, format, false, opts)
}

func openAnnotations(ctx context.Context, location string, format Format, create bool, opts []Option) (AnnotationStore, error) {
	o := applyOptions(opts)
	b, c, err := openBackend(ctx, location, format, postgres.KindAnnotation, create)
	if err != nil {
		return nil, err
	}
	var store AnnotationStore = &annotationStore{backend: b, codec: c}
	if o.cacheTTL > 0 {
		store = cache.Wrap(store, o.cacheTTL)
	}
	return store, nil
}

// LoadLocations reads a newline-delimited list of store locations.
func LoadLocations(path string) ([]string, error) {
	lines, err := textlist.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("locations", "cannot read "+path, err)
	}
	return lines, nil
}

func docIDs(ctx context.Context, b backend) ([]assessment.DocID, error) {
	ids, err := b.List(ctx)
	if err != nil {
		return nil, errors.WrapStore("list", b.Location(), "", err)
	}
	out := make([]assessment.DocID, len(ids))
	for i, id := range ids {
		out[i] = assessment.DocID(id)
	}
	return out, nil
}

type argumentStore struct {
	backend backend
	codec   codec.Codec
}

func (s *argumentStore) Location() string {
	return s.backend.Location()
}

func (s *argumentStore) DocIDs(ctx context.Context) ([]assessment.DocID, error) {
	return docIDs(ctx, s.backend)
}

func (s *argumentStore) Read(ctx context.Context, docID assessment.DocID) (assessment.ArgumentOutput, error) {
	data, err := s.backend.Get(ctx, string(docID))
	if err != nil {
		return assessment.ArgumentOutput{}, errors.WrapStore("read", s.Location(), string(docID), err)
	}
	output, err := s.codec.DecodeSystemOutput(docID, data)
	if err != nil {
		return assessment.ArgumentOutput{}, errors.WrapStore("read", s.Location(), string(docID), err)
	}
	logging.FromContext(ctx).Debug().
		Int("bytes", len(data)).
		Int("responses", len(output.Responses())).
		Msg("Read system output")
	return output, nil
}

func (s *argumentStore) Close() error {
	return s.backend.Close()
}

type annotationStore struct {
	backend backend
	codec   codec.Codec
}

func (s *annotationStore) Location() string {
	return s.backend.Location()
}

func (s *annotationStore) DocIDs(ctx context.Context) ([]assessment.DocID, error) {
	return docIDs(ctx, s.backend)
}

func (s *annotationStore) Read(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error) {
	data, err := s.backend.Get(ctx, string(docID))
	if err != nil {
		return assessment.AnswerKey{}, errors.WrapStore("read", s.Location(), string(docID), err)
	}
	key, err := s.codec.DecodeAnswerKey(docID, data)
	if err != nil {
		return assessment.AnswerKey{}, errors.WrapStore("read", s.Location(), string(docID), err)
	}
	logging.FromContext(ctx).Debug().
		Int("bytes", len(data)).
		Msg("Read answer key")
	return key, nil
}

func (s *annotationStore) ReadOrEmpty(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error) {
	key, err := s.Read(ctx, docID)
	if errors.IsNotFound(err) {
		return assessment.EmptyAnswerKey(docID), nil
	}
	return key, err
}

func (s *annotationStore) Write(ctx context.Context, key assessment.AnswerKey) error {
	if key.IsZero() {
		return errors.NewValidationError("answer_key", nil, "cannot write a zero AnswerKey")
	}
	data, err := s.codec.EncodeAnswerKey(key, utc.Now())
	if err != nil {
		return errors.WrapStore("write", s.Location(), string(key.DocID()), err)
	}
	if err := s.backend.Put(ctx, string(key.DocID()), data); err != nil {
		return errors.WrapStore("write", s.Location(), string(key.DocID()), err)
	}
	logging.FromContext(ctx).Debug().
		Int("bytes", len(data)).
		Int("annotated", key.NumAnnotated()).
		Int("unannotated", key.NumUnannotated()).
		Msg("Wrote answer key")
	return nil
}

func (s *annotationStore) Close() error {
	return s.backend.Close()
}
