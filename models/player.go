// api/models/player.go
package models

import (
	"fmt"
	"strings"
)

// Platform is a canonical platform label. There are exactly two.
type Platform string

const (
	PlatformAndroid Platform = "Android"
	PlatformIOS     Platform = "iOS"
)

// Player mirrors a record under PLAYERS/{uid}. Field names match the
// database schema; the UID is the node key and is filled in after decoding.
type Player struct {
	UID                string  `json:"uid"`
	InstallTime        int64   `json:"Install_time"`
	LastImpressionTime int64   `json:"Last_Impression_time"`
	Platform           string  `json:"Platform"`
	Source             string  `json:"Source"`
	Geo                string  `json:"Geo"`
	IP                 string  `json:"IP"`
	Wins               int64   `json:"Wins"`
	Impressions        int64   `json:"Impressions"`
	AdRevenue          float64 `json:"Ad_Revenue"`
	// PlatformInstallKey is the denormalized "pit" index field: platform and
	// install time combined so a lexicographic prefix scan returns one
	// platform's players in chronological order.
	PlatformInstallKey string `json:"pit,omitempty"`
}

// NormalizePlatform maps a raw platform tag to a canonical label. Only a
// case-insensitive "ios" maps to iOS; everything else, including absent,
// empty, misspelled, or corrupted tags, maps to Android.
//
// Defaulting unknowns to the majority platform is deliberate data policy
// carried over from the write path, not a bug to fix here: a third platform
// or a corrupted tag is absorbed into the Android bucket rather than
// surfaced. Changing it would shift historical analytics.
func NormalizePlatform(raw string) Platform {
	if strings.EqualFold(strings.TrimSpace(raw), "ios") {
		return PlatformIOS
	}
	return PlatformAndroid
}

// CompositeIndexKey builds the value stored in the "pit" field: lowercase
// canonical platform, an underscore, and the install time as 13 zero-padded
// digits, so lexicographic order equals chronological order within a
// platform partition.
func CompositeIndexKey(p Platform, installMs int64) string {
	return fmt.Sprintf("%s%013d", CompositePrefix(p), installMs)
}

// CompositePrefix is the range-scan prefix selecting one platform's
// partition of the composite index.
func CompositePrefix(p Platform) string {
	return strings.ToLower(string(p)) + "_"
}

// Info copies the allow-listed player fields used for event enrichment,
// normalizing the platform tag on the way.
func (p *Player) Info() *PlayerInfo {
	return &PlayerInfo{
		Platform:           NormalizePlatform(p.Platform),
		Source:             p.Source,
		Geo:                p.Geo,
		IP:                 p.IP,
		Wins:               p.Wins,
		Impressions:        p.Impressions,
		AdRevenue:          p.AdRevenue,
		InstallTime:        p.InstallTime,
		LastImpressionTime: p.LastImpressionTime,
	}
}
