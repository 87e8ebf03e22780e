package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savethemars/dashboard/database"
	"savethemars/dashboard/models"
)

type queryCall struct {
	path, child string
	limit       int
	value       interface{}
	start, end  interface{}
}

// fakeDB serves canned nodes per path and records every call. The stores
// sort and truncate locally, so the fake does not need real query semantics.
type fakeDB struct {
	lastNodes  map[string][]database.Node
	equalNodes map[string][]database.Node
	rangeNodes map[string][]database.Node
	gets       map[string]json.RawMessage

	queryErr error
	getErr   error

	lastCalls  []queryCall
	equalCalls []queryCall
	rangeCalls []queryCall
	getCalls   []string
}

func (f *fakeDB) QueryLast(_ context.Context, path, child string, limit int) ([]database.Node, error) {
	f.lastCalls = append(f.lastCalls, queryCall{path: path, child: child, limit: limit})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.lastNodes[path], nil
}

func (f *fakeDB) QueryLastEqual(_ context.Context, path, child string, value interface{}, limit int) ([]database.Node, error) {
	f.equalCalls = append(f.equalCalls, queryCall{path: path, child: child, limit: limit, value: value})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.equalNodes[path], nil
}

func (f *fakeDB) QueryLastRange(_ context.Context, path, child string, start, end interface{}, limit int) ([]database.Node, error) {
	f.rangeCalls = append(f.rangeCalls, queryCall{path: path, child: child, limit: limit, start: start, end: end})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rangeNodes[path], nil
}

func (f *fakeDB) Get(_ context.Context, path string, v interface{}) error {
	f.getCalls = append(f.getCalls, path)
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.gets[path]
	if !ok {
		raw = json.RawMessage("null")
	}
	return json.Unmarshal(raw, v)
}

func node(key, value string) database.Node {
	return database.Node{Key: key, Value: json.RawMessage(value)}
}

func TestLatestPlayersOrdersDescendingAndTruncates(t *testing.T) {
	db := &fakeDB{lastNodes: map[string][]database.Node{
		pathPlayers: {
			node("u1", `{"Install_time": 100, "Platform": "android"}`),
			node("u2", `{"Install_time": 300, "Platform": "ios"}`),
			node("u3", `{"Install_time": 200}`),
			node("u4", `{"Install_time": 400}`),
		},
	}}
	s := NewPlayerStore(db)

	players, skipped, err := s.LatestPlayers(context.Background(), PlayerFilter{Limit: 3})
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, players, 3)

	assert.Equal(t, []string{"u4", "u2", "u3"}, []string{players[0].UID, players[1].UID, players[2].UID})
	for i := 1; i < len(players); i++ {
		assert.GreaterOrEqual(t, players[i-1].InstallTime, players[i].InstallTime)
	}

	require.Len(t, db.lastCalls, 1)
	assert.Equal(t, queryCall{path: pathPlayers, child: "Install_time", limit: 3}, db.lastCalls[0])
}

func TestLatestPlayersDefaultLimit(t *testing.T) {
	db := &fakeDB{}
	s := NewPlayerStore(db)

	_, _, err := s.LatestPlayers(context.Background(), PlayerFilter{})
	require.NoError(t, err)
	require.Len(t, db.lastCalls, 1)
	assert.Equal(t, DefaultLimit, db.lastCalls[0].limit)
}

func TestLatestPlayersSkipsMalformedRecords(t *testing.T) {
	db := &fakeDB{lastNodes: map[string][]database.Node{
		pathPlayers: {
			node("u1", `{"Install_time": 100}`),
			node("junk", `"not a mapping"`),
			node("u2", `{"Install_time": 200}`),
		},
	}}
	s := NewPlayerStore(db)

	players, skipped, err := s.LatestPlayers(context.Background(), PlayerFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, players, 2)
	assert.Equal(t, "u2", players[0].UID)
}

func TestLatestPlayersNormalizesPlatform(t *testing.T) {
	db := &fakeDB{lastNodes: map[string][]database.Node{
		pathPlayers: {
			node("u1", `{"Install_time": 100, "Platform": "IOS"}`),
			node("u2", `{"Install_time": 200, "Platform": "win"}`),
			node("u3", `{"Install_time": 300}`),
		},
	}}
	s := NewPlayerStore(db)

	players, _, err := s.LatestPlayers(context.Background(), PlayerFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, string(models.PlatformAndroid), players[0].Platform)
	assert.Equal(t, string(models.PlatformAndroid), players[1].Platform)
	assert.Equal(t, string(models.PlatformIOS), players[2].Platform)
}

func TestLatestPlayersPlatformFilterUsesCompositeIndex(t *testing.T) {
	db := &fakeDB{rangeNodes: map[string][]database.Node{
		pathPlayers: {
			// The index partition can contain stale raw tags, so local
			// re-verification after normalization must still apply.
			node("u1", `{"Install_time": 100, "Platform": "iOS", "pit": "ios_0000000000100"}`),
			node("u2", `{"Install_time": 200, "Platform": "Android", "pit": "ios_0000000000200"}`),
			node("u3", `{"Install_time": 300, "Platform": "IOS", "pit": "ios_0000000000300"}`),
		},
	}}
	s := NewPlayerStore(db)

	players, _, err := s.LatestPlayers(context.Background(), PlayerFilter{Limit: 10, Platform: models.PlatformIOS})
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "u3", players[0].UID)
	assert.Equal(t, "u1", players[1].UID)

	require.Len(t, db.rangeCalls, 1)
	call := db.rangeCalls[0]
	assert.Equal(t, pathPlayers, call.path)
	assert.Equal(t, "pit", call.child)
	assert.Equal(t, "ios_", call.start)
	assert.Equal(t, "ios_"+lastKeyChar, call.end)
}

func TestLatestPlayersSourceFilterUsesEqualityQuery(t *testing.T) {
	db := &fakeDB{equalNodes: map[string][]database.Node{
		pathPlayers: {
			node("u1", `{"Install_time": 100, "Source": "organic"}`),
			node("u2", `{"Install_time": 200, "Source": "paid"}`),
		},
	}}
	s := NewPlayerStore(db)

	players, _, err := s.LatestPlayers(context.Background(), PlayerFilter{Limit: 10, Source: "organic"})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "u1", players[0].UID)

	require.Len(t, db.equalCalls, 1)
	assert.Equal(t, "Source", db.equalCalls[0].child)
	assert.Equal(t, "organic", db.equalCalls[0].value)
}

func TestLatestPlayersQueryError(t *testing.T) {
	db := &fakeDB{queryErr: assert.AnError}
	s := NewPlayerStore(db)

	players, skipped, err := s.LatestPlayers(context.Background(), PlayerFilter{})
	assert.Error(t, err)
	assert.Nil(t, players)
	assert.Zero(t, skipped)
}

func TestPlayerByID(t *testing.T) {
	db := &fakeDB{gets: map[string]json.RawMessage{
		pathPlayers + "/u1": json.RawMessage(`{"Install_time": 100, "Geo": "US"}`),
	}}
	s := NewPlayerStore(db)

	p, err := s.PlayerByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, "US", p.Geo)
}

func TestPlayerByIDMissing(t *testing.T) {
	db := &fakeDB{}
	s := NewPlayerStore(db)

	p, err := s.PlayerByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPlayerByIDEmptyUID(t *testing.T) {
	db := &fakeDB{}
	s := NewPlayerStore(db)

	p, err := s.PlayerByID(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Empty(t, db.getCalls, "no round-trip for an empty identifier")
}
