// api/models/event.go
package models

// Conversion mirrors a record under CONVERSIONS/{uid}/{conversion_id}.
// The two key fields are filled in during flattening; the rest decode from
// the event value itself.
type Conversion struct {
	UserID       string `json:"user_id"`
	ConversionID string `json:"conversion_id"`
	Goal         string `json:"goal"`
	Source       string `json:"source"`
	Time         int64  `json:"time"`
}

// Purchase mirrors a record under IAP/{uid}/{purchase_id}.
type Purchase struct {
	UserID     string  `json:"user_id"`
	PurchaseID string  `json:"purchase_id"`
	Product    string  `json:"product"`
	Price      float64 `json:"price"`
	Time       int64   `json:"time"`
}

// PlayerInfo is the fixed allow-list of player fields merged into an event
// during enrichment. JSON keys carry the player_ prefix so flattened output
// never collides with the event's own fields.
type PlayerInfo struct {
	Platform           Platform `json:"player_platform"`
	Source             string   `json:"player_source"`
	Geo                string   `json:"player_geo"`
	IP                 string   `json:"player_ip"`
	Wins               int64    `json:"player_wins"`
	Impressions        int64    `json:"player_impressions"`
	AdRevenue          float64  `json:"player_ad_revenue"`
	InstallTime        int64    `json:"player_install_time"`
	LastImpressionTime int64    `json:"player_last_impression_time"`
}

// EnrichedConversion is a conversion joined to its owning player. Player is
// nil when the owner could not be found; the event is kept either way.
type EnrichedConversion struct {
	Conversion
	Player *PlayerInfo `json:"player,omitempty"`
}

// EnrichedPurchase is a purchase joined to its owning player.
type EnrichedPurchase struct {
	Purchase
	Player *PlayerInfo `json:"player,omitempty"`
}
