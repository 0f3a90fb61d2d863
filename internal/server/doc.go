// Package server exposes a compiled report over HTTP for the dashboard.
//
// The server holds the latest report in memory and never analyses pages on
// a read request. POST /api/rescan runs the injected Rescanner and swaps the
// report in atomically; concurrent rescans are rejected.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/report          (optional ?filter=critical|needs-work|optimized)
//	GET  /api/pages/:id
//	GET  /api/stats
//	POST /api/rescan
//	GET  /metrics             (when metrics are enabled)
package server
