package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/workplan/internal/dbx"
	"github.com/dmitrijs2005/workplan/internal/logging"
	"github.com/dmitrijs2005/workplan/internal/repositories/metadata"
	"github.com/dmitrijs2005/workplan/internal/storage"
)

func setup(t *testing.T) metadata.Repository {
	t.Helper()
	st, err := storage.OpenSQL(context.Background(), "sqlite", ":memory:", dbx.DialectSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Metadata.Set(ctx, "team-a:users", []byte("[]")))
	require.NoError(t, st.Metadata.Set(ctx, "team-a:current_session", []byte("{}")))
	require.NoError(t, st.Metadata.Set(ctx, "team-b:users", []byte("[{}]")))
	return st.Metadata
}

func TestEntries_FiltersByPrefix(t *testing.T) {
	repo := setup(t)
	s := NewService(repo, "team-a:", logging.Discard())

	got, err := s.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Key: "current_session", Size: 2}, {Key: "users", Size: 2}}, got)
}

func TestEntries_NoPrefix(t *testing.T) {
	repo := setup(t)
	s := NewService(repo, "", logging.Discard())

	got, err := s.Entries(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "team-a:current_session", got[0].Key)
}

func TestReset_KeepsOtherPrefixes(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	s := NewService(repo, "team-a:", logging.Discard())

	n, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"team-b:users": []byte("[{}]")}, all)
}

func TestReset_NoPrefixClearsAll(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	s := NewService(repo, "", logging.Discard())

	n, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
