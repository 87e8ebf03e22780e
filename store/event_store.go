// api/store/event_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"savethemars/dashboard/models"
)

// EventStore reads the two nested event collections (conversions and
// purchases) and joins them to their owning players.
type EventStore struct {
	DB      Querier
	Players *PlayerStore
}

func NewEventStore(db Querier, players *PlayerStore) *EventStore {
	return &EventStore{DB: db, Players: players}
}

// LatestConversions returns up to limit conversions ordered descending by
// event time, plus a count of malformed nodes skipped while flattening.
//
// Events are nested two levels deep (owner uid → conversion id), so the
// ordered query runs against the outer collection with an over-fetch factor
// and the real ordering happens after flattening. If the over-fetch still
// yields fewer than limit events, the short result is returned as is.
func (s *EventStore) LatestConversions(ctx context.Context, limit int) ([]models.Conversion, int, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	nodes, err := s.DB.QueryLast(ctx, pathConversions, "time", limit*overFetchFactor)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch conversions: %w", err)
	}

	flat, skipped := flattenOwners(nodes)
	conversions := make([]models.Conversion, 0, len(flat))
	for _, fn := range flat {
		var c models.Conversion
		if err := json.Unmarshal(fn.Value, &c); err != nil {
			skipped++
			continue
		}
		c.UserID = fn.Owner
		c.ConversionID = fn.ID
		conversions = append(conversions, c)
	}

	sort.SliceStable(conversions, func(i, j int) bool {
		return conversions[i].Time > conversions[j].Time
	})
	if len(conversions) > limit {
		conversions = conversions[:limit]
	}

	log.Info().Int("count", len(conversions)).Int("skipped", skipped).Msg("Fetched latest conversions")
	return conversions, skipped, nil
}

// LatestPurchases is LatestConversions for the IAP collection.
func (s *EventStore) LatestPurchases(ctx context.Context, limit int) ([]models.Purchase, int, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	nodes, err := s.DB.QueryLast(ctx, pathIAP, "time", limit*overFetchFactor)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	flat, skipped := flattenOwners(nodes)
	purchases := make([]models.Purchase, 0, len(flat))
	for _, fn := range flat {
		var p models.Purchase
		if err := json.Unmarshal(fn.Value, &p); err != nil {
			skipped++
			continue
		}
		p.UserID = fn.Owner
		p.PurchaseID = fn.ID
		purchases = append(purchases, p)
	}

	sort.SliceStable(purchases, func(i, j int) bool {
		return purchases[i].Time > purchases[j].Time
	})
	if len(purchases) > limit {
		purchases = purchases[:limit]
	}

	log.Info().Int("count", len(purchases)).Int("skipped", skipped).Msg("Fetched latest purchases")
	return purchases, skipped, nil
}

// EnrichConversions joins each conversion to its owning player with one
// point lookup per event, in result order. A lookup miss or failure keeps
// the event unenriched; exactly one output is produced per input.
func (s *EventStore) EnrichConversions(ctx context.Context, conversions []models.Conversion) []models.EnrichedConversion {
	enriched := make([]models.EnrichedConversion, 0, len(conversions))
	for _, c := range conversions {
		enriched = append(enriched, models.EnrichedConversion{
			Conversion: c,
			Player:     s.lookupPlayerInfo(ctx, c.UserID),
		})
	}
	return enriched
}

// EnrichPurchases is EnrichConversions for purchases.
func (s *EventStore) EnrichPurchases(ctx context.Context, purchases []models.Purchase) []models.EnrichedPurchase {
	enriched := make([]models.EnrichedPurchase, 0, len(purchases))
	for _, p := range purchases {
		enriched = append(enriched, models.EnrichedPurchase{
			Purchase: p,
			Player:   s.lookupPlayerInfo(ctx, p.UserID),
		})
	}
	return enriched
}

func (s *EventStore) lookupPlayerInfo(ctx context.Context, uid string) *models.PlayerInfo {
	player, err := s.Players.PlayerByID(ctx, uid)
	if err != nil {
		log.Warn().Str("uid", uid).Err(err).Msg("Player lookup failed, keeping event unenriched")
		return nil
	}
	if player == nil {
		return nil
	}
	return player.Info()
}
