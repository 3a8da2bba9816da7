// Package server exposes glimpse over a small JSON HTTP API.
//
// Routes:
//
//	POST /upload                 multipart "files" -> per-file outcomes
//	POST /search                 {"query", "top_k"} -> ranked results
//	GET  /status                 index counters
//	GET  /screenshots/{filename} stored image bytes
//	GET  /health                 "ok"
package server
