// api/database/firebase.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Node is a single child returned by an ordered query: the child's key plus
// its raw JSON value. Decoding into a typed record is left to the caller so
// malformed children can be skipped individually.
type Node struct {
	Key   string
	Value json.RawMessage
}

// FirebaseClient wraps the Realtime Database client with the small query
// surface the dashboard actually uses. The system is read-only against the
// database; there is no write path.
type FirebaseClient struct {
	DB *db.Client
}

var (
	initMu sync.Mutex
	shared *FirebaseClient
)

// NewFirebaseClient initializes the Firebase Admin app and returns a Realtime
// Database client. Initialization is idempotent: repeated calls return the
// handle created by the first successful call.
//
// Configuration comes from FIREBASE_DB_URL plus either FIREBASE_CERT_PATH
// (path to a service-account JSON file) or FIREBASE_CERT_JSON (the JSON
// inline). Missing configuration is a fatal bootstrap error for the caller.
func NewFirebaseClient(ctx context.Context) (*FirebaseClient, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if shared != nil {
		log.Debug().Msg("Firebase already initialized, reusing existing client")
		return shared, nil
	}

	dbURL := os.Getenv("FIREBASE_DB_URL")
	if dbURL == "" {
		return nil, errors.New("FIREBASE_DB_URL environment variable is not set")
	}

	credOpt, err := credentialOption()
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: dbURL}, credOpt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Realtime Database client: %w", err)
	}

	log.Info().Str("database_url", dbURL).Msg("Successfully connected to Firebase Realtime Database")

	shared = &FirebaseClient{DB: client}
	return shared, nil
}

func credentialOption() (option.ClientOption, error) {
	if certPath := os.Getenv("FIREBASE_CERT_PATH"); certPath != "" {
		return option.WithCredentialsFile(certPath), nil
	}

	certJSON := os.Getenv("FIREBASE_CERT_JSON")
	if certJSON == "" {
		return nil, errors.New("FIREBASE_CERT_PATH or FIREBASE_CERT_JSON environment variable must be set")
	}

	repaired, err := repairPrivateKey([]byte(certJSON))
	if err != nil {
		return nil, err
	}
	return option.WithCredentialsJSON(repaired), nil
}

// repairPrivateKey replaces escaped newline sequences in the private_key
// field with real newlines. Inline certificates pasted through env vars or
// secret stores usually arrive with the key on one escaped line.
func repairPrivateKey(raw []byte) ([]byte, error) {
	var cert map[string]interface{}
	if err := json.Unmarshal(raw, &cert); err != nil {
		return nil, fmt.Errorf("invalid FIREBASE_CERT_JSON: %w", err)
	}
	if key, ok := cert["private_key"].(string); ok {
		cert["private_key"] = strings.ReplaceAll(key, `\n`, "\n")
	}
	return json.Marshal(cert)
}

// QueryLast returns the last limit children of path when ordered ascending by
// the named child field.
func (c *FirebaseClient) QueryLast(ctx context.Context, path, child string, limit int) ([]Node, error) {
	q := c.DB.NewRef(path).OrderByChild(child).LimitToLast(limit)
	return collectNodes(ctx, q)
}

// QueryLastEqual is QueryLast restricted to children whose ordering field
// equals value.
func (c *FirebaseClient) QueryLastEqual(ctx context.Context, path, child string, value interface{}, limit int) ([]Node, error) {
	q := c.DB.NewRef(path).OrderByChild(child).EqualTo(value).LimitToLast(limit)
	return collectNodes(ctx, q)
}

// QueryLastRange is QueryLast restricted to children whose ordering field
// falls within the lexicographic [start, end] bounds.
func (c *FirebaseClient) QueryLastRange(ctx context.Context, path, child string, start, end interface{}, limit int) ([]Node, error) {
	q := c.DB.NewRef(path).OrderByChild(child).StartAt(start).EndAt(end).LimitToLast(limit)
	return collectNodes(ctx, q)
}

// Get performs a point read of path into v. A missing key unmarshals as JSON
// null, so callers that need presence detection should pass a pointer type.
func (c *FirebaseClient) Get(ctx context.Context, path string, v interface{}) error {
	return c.DB.NewRef(path).Get(ctx, v)
}

func collectNodes(ctx context.Context, q *db.Query) ([]Node, error) {
	results, err := q.GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("ordered query failed: %w", err)
	}

	nodes := make([]Node, 0, len(results))
	for _, r := range results {
		var raw json.RawMessage
		if err := r.Unmarshal(&raw); err != nil {
			log.Debug().Str("key", r.Key()).Err(err).Msg("Skipping undecodable query node")
			continue
		}
		nodes = append(nodes, Node{Key: r.Key(), Value: raw})
	}
	return nodes, nil
}
