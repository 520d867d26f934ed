// Package config loads pantry's TOML configuration.
//
// # Overview
//
// The configuration says where the inventory lives (which document store
// backend and how to reach it), how often to re-read it, where to write logs
// and which search engine the recipe shortcut uses.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/pantry/config.toml
//  3. If the file doesn't exist, use Default()
//  4. If the file exists but fields are missing or blank, use defaults for them
//
// # TOML Format
//
//	poll_seconds = 5
//
//	[store]
//	backend = "postgres"       # memory | redis | postgres | mysql | http
//	collection = "inventory"
//	timeout_seconds = 5
//	postgres_dsn = "postgres://pantry@localhost/pantry"
//
//	[log]
//	path = "~/.local/state/pantry/pantry.log"
//	level = "info"
//
//	[recipe]
//	search_url = "https://www.google.com/search"
//
// Backend-specific keys (redis_addr, redis_password, redis_db, redis_prefix,
// mysql_dsn, http_url, http_token) are read only by the matching backend.
// poll_seconds = 0 turns background refresh off; leaving it out keeps the
// default of 5.
//
// # Path Expansion
//
// The config file location and log.path accept ~ for the home directory and
// are made absolute.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors, reported as "parse config: ..."
//   - An unknown backend name or a negative poll_seconds
//
// Missing config files are NOT an error, so pantry runs out of the box against
// the in-memory store.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return err
//	}
//	store, err := docstore.Open(ctx, cfg.StoreConfig())
package config
