// api/store/player_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"savethemars/dashboard/database"
	"savethemars/dashboard/models"
)

// PlayerStore reads player records from the Realtime Database.
type PlayerStore struct {
	DB Querier
}

func NewPlayerStore(db Querier) *PlayerStore {
	return &PlayerStore{DB: db}
}

// PlayerFilter narrows a LatestPlayers query. Zero values mean "no filter";
// Limit defaults to DefaultLimit.
type PlayerFilter struct {
	Limit    int
	Platform models.Platform
	Source   string
}

// LatestPlayers returns up to Limit players ordered descending by install
// time, plus a count of malformed records that were skipped.
//
// Predicates are pushed to the database to bound the download: a platform
// filter becomes a prefix range scan on the composite "pit" index, a source
// filter becomes an equality query. Both are re-verified locally after
// platform normalization, since raw tags in the store are not canonical, so
// results are identical to fetching everything and filtering here.
func (s *PlayerStore) LatestPlayers(ctx context.Context, filter PlayerFilter) ([]models.Player, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		nodes []database.Node
		err   error
	)
	switch {
	case filter.Platform != "":
		prefix := models.CompositePrefix(filter.Platform)
		nodes, err = s.DB.QueryLastRange(ctx, pathPlayers, "pit", prefix, prefix+lastKeyChar, limit)
	case filter.Source != "":
		nodes, err = s.DB.QueryLastEqual(ctx, pathPlayers, "Source", filter.Source, limit)
	default:
		nodes, err = s.DB.QueryLast(ctx, pathPlayers, "Install_time", limit)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch latest players: %w", err)
	}

	players := make([]models.Player, 0, len(nodes))
	skipped := 0
	for _, n := range nodes {
		var p models.Player
		if err := json.Unmarshal(n.Value, &p); err != nil {
			skipped++
			continue
		}
		p.UID = n.Key
		p.Platform = string(models.NormalizePlatform(p.Platform))

		if filter.Platform != "" && p.Platform != string(filter.Platform) {
			continue
		}
		if filter.Source != "" && p.Source != filter.Source {
			continue
		}
		players = append(players, p)
	}

	// Missing install times decode as 0 and sort last; ties keep retrieval
	// order.
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].InstallTime > players[j].InstallTime
	})
	if len(players) > limit {
		players = players[:limit]
	}

	log.Info().Int("count", len(players)).Int("skipped", skipped).Msg("Fetched latest players")
	return players, skipped, nil
}

// PlayerByID performs a point lookup of one player. A missing or
// non-mapping record returns (nil, nil); that is expected during enrichment
// and is not an error.
func (s *PlayerStore) PlayerByID(ctx context.Context, uid string) (*models.Player, error) {
	if uid == "" {
		return nil, nil
	}

	var p *models.Player
	if err := s.DB.Get(ctx, pathPlayers+"/"+uid, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch player %s: %w", uid, err)
	}
	if p == nil {
		return nil, nil
	}
	p.UID = uid
	return p, nil
}
