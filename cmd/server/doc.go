// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

/*
Package main is the entry point for the Quotebook report server.

Quotebook turns the quotes a reader saved during a week into a weekly report:
an AI analysis of the week (with a deterministic fallback), up to two book
recommendations from the catalog, and a promo code.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("quotebook")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── Weekly Scheduler (cron batch over the previous ISO week)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Delivery log consumer (report.generated events)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Business calendar: fixed UTC offset, ISO weeks
 4. Store: BadgerDB (quotes, profiles, catalog, promo codes, UTM templates, reports)
 5. AI: eino OpenAI-compatible chat model (optional)
 6. Report pipeline: analyzer, matcher, promo assigner, assembler
 7. Events: Watermill GoChannel publisher and consumers
 8. Scheduler and HTTP API
 9. Supervisor Tree

# One-shot Modes

	quotebook -seed catalog.yaml   load a seed file and exit
	quotebook -backfill            recompute stored quote week coordinates and exit
	quotebook -version             print the version and exit

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server within the configured shutdown timeout and the scheduler waits for the
in-flight batch.
*/
package main
