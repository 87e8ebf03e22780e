// api/handlers/dashboard_handlers.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"savethemars/dashboard/models"
	"savethemars/dashboard/store"
)

type DashboardHandlers struct {
	Players *store.PlayerStore
	Events  *store.EventStore
}

func NewDashboardHandlers(players *store.PlayerStore, events *store.EventStore) *DashboardHandlers {
	return &DashboardHandlers{
		Players: players,
		Events:  events,
	}
}

// renderTimeout bounds one full render pass: three range queries plus one
// point lookup per enriched event.
const renderTimeout = 30 * time.Second

// Dashboard runs the whole fetch→enrich→format pipeline from scratch and
// renders the three tables. A failed fetch degrades that section to its
// empty state; data problems never fail the page.
func (h *DashboardHandlers) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), renderTimeout)
	defer cancel()

	players, _, err := h.Players.LatestPlayers(ctx, store.PlayerFilter{Limit: store.DefaultLimit})
	if err != nil {
		log.Error().Err(err).Msg("Error fetching latest players")
		players = nil
	}

	conversions, _, err := h.Events.LatestConversions(ctx, store.DefaultLimit)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching latest conversions")
		conversions = nil
	}
	enrichedConversions := h.Events.EnrichConversions(ctx, conversions)

	purchases, _, err := h.Events.LatestPurchases(ctx, store.DefaultLimit)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching latest purchases")
		purchases = nil
	}
	enrichedPurchases := h.Events.EnrichPurchases(ctx, purchases)

	c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
		"Title": "Save the Mars Dashboard",
		"Tables": []Table{
			playersTable(players),
			conversionsTable(enrichedConversions),
			purchasesTable(enrichedPurchases),
		},
	})
}

// GetLatestPlayers serves the players table as JSON. Optional query params:
// limit, platform (normalized before filtering), source (exact match).
func (h *DashboardHandlers) GetLatestPlayers(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	filter := store.PlayerFilter{
		Limit:  limit,
		Source: c.Query("source"),
	}
	if raw := c.Query("platform"); raw != "" {
		filter.Platform = models.NormalizePlatform(raw)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), renderTimeout)
	defer cancel()

	players, skipped, err := h.Players.LatestPlayers(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching latest players")
		players, skipped = nil, 0
	}
	if players == nil {
		players = []models.Player{}
	}

	c.JSON(http.StatusOK, gin.H{"records": players, "skipped": skipped})
}

// GetLatestConversions serves the enriched conversions as JSON.
func (h *DashboardHandlers) GetLatestConversions(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), renderTimeout)
	defer cancel()

	conversions, skipped, err := h.Events.LatestConversions(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching latest conversions")
		conversions, skipped = nil, 0
	}

	enriched := h.Events.EnrichConversions(ctx, conversions)
	if enriched == nil {
		enriched = []models.EnrichedConversion{}
	}

	c.JSON(http.StatusOK, gin.H{"records": enriched, "skipped": skipped})
}

// GetLatestPurchases serves the enriched purchases as JSON.
func (h *DashboardHandlers) GetLatestPurchases(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), renderTimeout)
	defer cancel()

	purchases, skipped, err := h.Events.LatestPurchases(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching latest purchases")
		purchases, skipped = nil, 0
	}

	enriched := h.Events.EnrichPurchases(ctx, purchases)
	if enriched == nil {
		enriched = []models.EnrichedPurchase{}
	}

	c.JSON(http.StatusOK, gin.H{"records": enriched, "skipped": skipped})
}

// Health reports liveness.
func (h *DashboardHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseLimit reads the limit query param, writing a 400 response itself when
// the value is unusable.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return store.DefaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}
