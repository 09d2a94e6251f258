package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkerfly38/shulpick/internal/backend"
	"github.com/parkerfly38/shulpick/internal/fixtures"
	"github.com/parkerfly38/shulpick/internal/ui"
)

type stubSearcher struct {
	members []backend.Member
	tiers   []backend.Tier
	groups  []backend.Group
	err     error
}

func (s stubSearcher) SearchMembers(context.Context, string, int) ([]backend.Member, error) {
	return s.members, s.err
}

func (s stubSearcher) SearchTiers(context.Context, string, int) ([]backend.Tier, error) {
	return s.tiers, s.err
}

func (s stubSearcher) SearchAll(context.Context, string, int) ([]backend.Group, error) {
	return s.groups, s.err
}

func (s stubSearcher) Ping(context.Context) error { return s.err }

func TestLookup_MembersTable(t *testing.T) {
	s := stubSearcher{members: []backend.Member{
		{ID: "7", FirstName: "Sarah", LastName: "Cohen", Email: "sarah.cohen@example.org"},
	}}
	var out bytes.Buffer
	require.NoError(t, lookup(context.Background(), s, ui.FieldMember, "sarah", 2, &out))

	text := out.String()
	assert.Contains(t, text, "HEBREW NAME")
	assert.Contains(t, text, "Sarah Cohen")
	assert.Contains(t, text, "sarah.cohen@example.org")
}

func TestLookup_TierPricesAreHumanized(t *testing.T) {
	s := stubSearcher{tiers: []backend.Tier{{ID: "4", Name: "Patron", Category: "Family", Price: 1800}}}
	var out bytes.Buffer
	require.NoError(t, lookup(context.Background(), s, ui.FieldTier, "pat", 2, &out))
	assert.Contains(t, out.String(), "$1,800.00")
}

func TestLookup_GroupedRows(t *testing.T) {
	s := stubSearcher{groups: []backend.Group{
		{Name: "households", Records: []backend.Record{{Kind: "households", ID: "204", Name: "Katz Family"}}},
	}}
	var out bytes.Buffer
	require.NoError(t, lookup(context.Background(), s, ui.FieldSearch, "katz", 2, &out))
	assert.Contains(t, out.String(), "households")
	assert.Contains(t, out.String(), "Katz Family")
}

func TestLookup_Errors(t *testing.T) {
	var out bytes.Buffer
	err := lookup(context.Background(), stubSearcher{}, ui.FieldMember, " a ", 2, &out)
	require.ErrorContains(t, err, "at least 2 characters")

	err = lookup(context.Background(), stubSearcher{err: &backend.StatusError{Path: "/api/members/search", Code: 500}}, ui.FieldMember, "sarah", 2, &out)
	require.Error(t, err)

	out.Reset()
	require.NoError(t, lookup(context.Background(), stubSearcher{}, ui.FieldTier, "zzz", 2, &out))
	assert.Equal(t, "no results for \"zzz\"\n", out.String())
}

func TestLookup_AgainstFixtureBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ds, err := fixtures.LoadDataset("")
	require.NoError(t, err)
	srv := httptest.NewServer(fixtures.New(fixtures.Options{Data: ds}).Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	logPath := filepath.Join(dir, "logs", "shulpick.log")
	cfg := fmt.Sprintf("api_base = %q\nlog_file = %q\n", srv.URL, logPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	var out bytes.Buffer
	err = Lookup(context.Background(), Options{
		ConfigPath: cfgPath,
		PrefsPath:  filepath.Join(dir, "prefs.toml"),
	}, ui.FieldMember, "cohen", &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Sarah Cohen")
	assert.Contains(t, lines[2], "Samuel Cohen")

	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}
