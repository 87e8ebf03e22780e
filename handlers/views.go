// api/handlers/views.go
package handlers

import (
	"strconv"

	"savethemars/dashboard/models"
	"savethemars/dashboard/utils"
)

// Table is one rendered dashboard section. Rows are pre-formatted strings;
// the template does layout only, never sorting, filtering, or joining.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
	Empty   string
}

var playerColumns = []string{
	"UID", "Install Time", "Platform", "Source", "Geo", "IP",
	"Wins", "Impressions", "Ad Revenue", "Last Impression",
}

var enrichedPlayerColumns = []string{
	"Player Platform", "Player Source", "Player Geo", "Player IP",
	"Player Wins", "Player Impressions", "Player Ad Revenue",
	"Player Install Time", "Player Last Impression",
}

func playersTable(players []models.Player) Table {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, []string{
			p.UID,
			utils.FormatTimestamp(p.InstallTime),
			p.Platform,
			p.Source,
			p.Geo,
			p.IP,
			strconv.FormatInt(p.Wins, 10),
			strconv.FormatInt(p.Impressions, 10),
			strconv.FormatFloat(p.AdRevenue, 'f', 2, 64),
			utils.FormatTimestamp(p.LastImpressionTime),
		})
	}
	return Table{
		Title:   "Latest 10 Players",
		Columns: playerColumns,
		Rows:    rows,
		Empty:   "No recent players found or Install_time field not available",
	}
}

func conversionsTable(conversions []models.EnrichedConversion) Table {
	columns := append([]string{"User ID", "Conversion ID", "Time", "Goal", "Source"}, enrichedPlayerColumns...)
	rows := make([][]string, 0, len(conversions))
	for _, ec := range conversions {
		row := []string{
			ec.UserID,
			ec.ConversionID,
			utils.FormatTimestamp(ec.Time),
			ec.Goal,
			ec.Source,
		}
		rows = append(rows, append(row, playerCells(ec.Player)...))
	}
	return Table{
		Title:   "Latest 10 Conversions (With Player Data)",
		Columns: columns,
		Rows:    rows,
		Empty:   "No conversions found. Make sure your CONVERSIONS data is properly structured.",
	}
}

func purchasesTable(purchases []models.EnrichedPurchase) Table {
	columns := append([]string{"User ID", "Purchase ID", "Time", "Product", "Price"}, enrichedPlayerColumns...)
	rows := make([][]string, 0, len(purchases))
	for _, ep := range purchases {
		row := []string{
			ep.UserID,
			ep.PurchaseID,
			utils.FormatTimestamp(ep.Time),
			ep.Product,
			strconv.FormatFloat(ep.Price, 'f', 2, 64),
		}
		rows = append(rows, append(row, playerCells(ep.Player)...))
	}
	return Table{
		Title:   "Latest 10 Purchases (With Player Data)",
		Columns: columns,
		Rows:    rows,
		Empty:   "No purchases found. Make sure your IAP data is properly structured.",
	}
}

// playerCells renders the enrichment columns; unenriched events get blanks.
func playerCells(info *models.PlayerInfo) []string {
	if info == nil {
		return make([]string, len(enrichedPlayerColumns))
	}
	return []string{
		string(info.Platform),
		info.Source,
		info.Geo,
		info.IP,
		strconv.FormatInt(info.Wins, 10),
		strconv.FormatInt(info.Impressions, 10),
		strconv.FormatFloat(info.AdRevenue, 'f', 2, 64),
		utils.FormatTimestamp(info.InstallTime),
		utils.FormatTimestamp(info.LastImpressionTime),
	}
}
