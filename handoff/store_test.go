// ABOUTME: Contract tests run against both handoff stores, plus sqlite persistence across reopen.
// ABOUTME: Uses testify and temp-dir databases.
package handoff

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeImpls(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSqlite(filepath.Join(t.TempDir(), "handoff.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, KeyResearch)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, KeyResearch, []byte(`{"a":1}`)))
			require.NoError(t, s.Put(ctx, KeyLandingPageCode, []byte("<html></html>")))
			require.NoError(t, s.Put(ctx, KeyResearch, []byte(`{"a":2}`)))

			got, err := s.Get(ctx, KeyResearch)
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(got))

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []Key{KeyLandingPageCode, KeyResearch}, keys)

			require.NoError(t, s.Delete(ctx, KeyResearch))
			require.NoError(t, s.Delete(ctx, KeyResearch))
			_, err = s.Get(ctx, KeyResearch)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	buf := []byte("original")
	require.NoError(t, m.Put(ctx, KeyContent, buf))
	buf[0] = 'X'

	got, err := m.Get(ctx, KeyContent)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestSqliteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "handoff.db")

	s, err := OpenSqlite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, KeyBreakdown, []byte(`{"brdUrl":"u"}`)))
	require.NoError(t, s.Close())

	reopened, err := OpenSqlite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, KeyBreakdown)
	require.NoError(t, err)
	assert.Equal(t, `{"brdUrl":"u"}`, string(got))
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("campaign_content")
	require.NoError(t, err)
	assert.Equal(t, KeyContent, k)

	_, err = ParseKey("campaign_secrets")
	assert.ErrorIs(t, err, ErrUnknownKey)
}
