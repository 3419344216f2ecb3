// Package handlers implements the engine diagnostics API.
//
// Handlers delegate to the services layer and only deal with request
// validation, status codes and conversion to the api/v1 types.
//
//	┌────────┬──────────────────┬────────────────────────────────────────┐
//	│ Method │ Endpoint         │ Description                            │
//	├────────┼──────────────────┼────────────────────────────────────────┤
//	│ GET    │ /engine          │ Pool status and per-worker state       │
//	│ GET    │ /engine/queue    │ Global queue in fetch order, with logs │
//	│ GET    │ /engine/workers  │ Current and maximum worker count       │
//	│ PUT    │ /engine/workers  │ Persist and apply a worker count       │
//	└────────┴──────────────────┴────────────────────────────────────────┘
//
// PUT /engine/workers takes {"count": n}. A missing count or a value outside
// [1, max] is a 400. A shut down engine is a 409.
//
// Errors use a single shape:
//
//	{ "error": "message" }
package handlers
