package errors_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/annomerge/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "document",
			ID:       "AFP_ENG_20030304.0250",
		}
		assert.Equal(t, "document with ID AFP_ENG_20030304.0250 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped in store error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("document", "DOC1")
		wrapped := pkgerrors.WrapStore("read", "/data/ann", "DOC1", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
		assert.Contains(t, wrapped.Error(), "/data/ann")
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "doc_id",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field doc_id: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "partitions overlap"}
		assert.Equal(t, "validation failed: partitions overlap", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestConfigError(t *testing.T) {
	cause := fs.ErrNotExist
	err := pkgerrors.NewConfigError("restrict-to", "cannot read document list", cause)

	assert.True(t, pkgerrors.IsConfigError(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "restrict-to")
	assert.Contains(t, err.Error(), "cannot read document list")

	bare := &pkgerrors.ConfigError{Message: "no annotation store given"}
	assert.Equal(t, "configuration error: no annotation store given", bare.Error())
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ParseError
		want string
	}{
		{
			name: "with line",
			err:  &pkgerrors.ParseError{Format: "tsv", File: "DOC1.tsv", Line: 3, Message: "expected 11 columns"},
			want: "parse error in tsv at DOC1.tsv:3: expected 11 columns",
		},
		{
			name: "file only",
			err:  &pkgerrors.ParseError{Format: "yaml", File: "DOC1.yaml", Message: "bad indent"},
			want: "parse error in yaml file DOC1.yaml: bad indent",
		},
		{
			name: "no file",
			err:  &pkgerrors.ParseError{Format: "json", Message: "unexpected EOF"},
			want: "json parse error: unexpected EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := pkgerrors.NewStoreError("write", "ann1", "DOC1", cause)
	assert.Equal(t, "store ann1: write of document DOC1: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	noDoc := pkgerrors.NewStoreError("list", "ann1", "", cause)
	assert.Equal(t, "store ann1: list: disk full", noDoc.Error())

	var storeErr *pkgerrors.StoreError
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
	assert.Equal(t, "DOC1", storeErr.DocID)
}

func TestWrapHelpersNil(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("yaml", "x", nil))
	assert.NoError(t, pkgerrors.WrapStore("read", "x", "d", nil))
	assert.NoError(t, pkgerrors.WrapValidation("f", nil))
}

func TestWrapIO(t *testing.T) {
	err := pkgerrors.WrapIO("open", "/tmp/missing", fs.ErrNotExist)
	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Operation)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWrapCanceled(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapCanceled(nil))

	err := pkgerrors.WrapCanceled(context.Canceled)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.True(t, errors.Is(err, context.Canceled))
}
