// Package cmd implements the command-line interface of restkv. It provides a
// hierarchical command structure for talking to a Redis-compatible store over
// its REST API.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, delete, etc.)
//   - lock: Commands for locking operations (acquire, release)
//   - exec: Raw commands, pipelines and transactions
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// The store is configured with UPSTASH_REDIS_REST_URL and UPSTASH_REDIS_REST_TOKEN
// (also read from .env and .env.local) or with the --endpoint and --token flags.
//
// See restkv -help for a list of all commands.
package cmd
