// api/store/fetch.go
package store

import (
	"context"
	"encoding/json"

	"savethemars/dashboard/database"
)

// Database paths for the three entity kinds.
const (
	pathPlayers     = "PLAYERS"
	pathConversions = "CONVERSIONS"
	pathIAP         = "IAP"
)

// DefaultLimit is the result count used when a caller does not ask for one.
const DefaultLimit = 10

// overFetchFactor compensates for the ordered query operating on the outer
// owner collection while the limit applies to the flattened event list.
const overFetchFactor = 3

// lastKeyChar is the highest code point Firebase allows in a key, used as
// the inclusive upper bound of a prefix range scan.
const lastKeyChar = "\uf8ff"

// Querier is the read surface the stores need from the database client.
// *database.FirebaseClient satisfies it; tests substitute fakes.
type Querier interface {
	QueryLast(ctx context.Context, path, child string, limit int) ([]database.Node, error)
	QueryLastEqual(ctx context.Context, path, child string, value interface{}, limit int) ([]database.Node, error)
	QueryLastRange(ctx context.Context, path, child string, start, end interface{}, limit int) ([]database.Node, error)
	Get(ctx context.Context, path string, v interface{}) error
}

// flatNode is one event lifted out of the owner→event nesting, tagged with
// both keys.
type flatNode struct {
	Owner string
	ID    string
	Value json.RawMessage
}

// flattenOwners expands a list of owner subtrees into independent event
// nodes. Owners whose value is not a mapping are skipped and counted;
// flattening is otherwise lossless.
func flattenOwners(nodes []database.Node) ([]flatNode, int) {
	var flat []flatNode
	skipped := 0
	for _, n := range nodes {
		var children map[string]json.RawMessage
		if err := json.Unmarshal(n.Value, &children); err != nil {
			skipped++
			continue
		}
		for id, raw := range children {
			flat = append(flat, flatNode{Owner: n.Key, ID: id, Value: raw})
		}
	}
	return flat, skipped
}
