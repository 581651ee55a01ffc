package postgres

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
)

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("postgres://kbp:secret@db:5432/eval?sslmode=disable&store=annotators")
	require.NoError(t, err)
	assert.Equal(t, "annotators", loc.Store)
	assert.Equal(t, "postgres://kbp:secret@db:5432/eval?sslmode=disable", loc.DSN)
	assert.NotContains(t, loc.Redacted, "secret")

	_, err = ParseLocation("postgres://db/eval")
	assert.True(t, errors.IsConfigError(err), "store parameter is required")

	_, err = ParseLocation("mysql://db/eval?store=x")
	assert.True(t, errors.IsConfigError(err))
}

// TestStoreIntegration needs a live database; set ANNOMERGE_TEST_POSTGRES_DSN
// to a postgres:// URL.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("ANNOMERGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ANNOMERGE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	name := "test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	location := dsn + sep + "store=" + name

	_, err := Open(ctx, location, KindAnnotation, false)
	require.Error(t, err, "opening a missing store without create fails")

	s, err := Open(ctx, location, KindAnnotation, true)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM `+constants.PostgresTable+` WHERE store = $1`, name)
		_ = s.Close()
	})

	_, err = s.Get(ctx, "doc1")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.Put(ctx, "doc2", []byte(`{"b": 2}`)))
	require.NoError(t, s.Put(ctx, "doc1", []byte(`{"a": 1}`)))
	require.NoError(t, s.Put(ctx, "doc1", []byte(`{"a": 3}`)))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1", "doc2"}, ids)

	data, err := s.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 3}`, string(data))

	reopened, err := Open(ctx, location, KindAnnotation, false)
	require.NoError(t, err)
	_ = reopened.Close()
}
