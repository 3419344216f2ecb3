// Package services implements the page loading layer of pageview.
//
// Services turn reader intent (the pages on screen, the pages to preload,
// the thumbnails to show) into ordered requests on the job engine. Each
// service owns one or more scheduler clients and replaces its whole order
// on every request, so pages the reader moved away from are canceled.
//
// # Service Dependency Graph
//
//	CLI / Handlers
//	    │
//	    ▼
//	Services Layer
//	    ├── PageContentService ──► Engine (page-view, page-ahead clients)
//	    ├── ThumbnailService ────► Engine (thumbnail client)
//	    ├── WorkerService ───────► Engine, PreferencesStore
//	    └── EngineService ───────► Engine
//
// # Categories
//
//	┌────────────┬──────────┬─────────────────────────────────────┐
//	│  Category  │ Priority │ Work                                │
//	├────────────┼──────────┼─────────────────────────────────────┤
//	│ page-view  │ 10       │ LoadContent of the pages on screen  │
//	│ page-ahead │ 8        │ LoadContent of the next pages       │
//	│ thumbnail  │ 5        │ LoadThumbnail                       │
//	└────────────┴──────────┴─────────────────────────────────────┘
//
// page-view and page-ahead run on the primary workers. Thumbnails run on
// the background workers, or on the single worker of a one-worker pool.
//
// # PageContentService
//
// Pages whose content is already loaded are filtered out before they reach
// the scheduler. A page asked for by both clients is queued in both
// categories; whichever job runs second finds the content loaded.
//
// Usage:
//
//	content, err := services.NewPageContentService(engine, categories)
//	_, err = content.RequestView([]models.Page{page})
//	_, err = content.RequestAhead(book.Ahead(...))
//	err = content.Wait(ctx, []models.Page{page}, 5*time.Second)
//
// # WorkerService
//
// The worker count survives restarts in the preferences table. Load applies
// the stored value, or the configured default when nothing was stored. Set
// clamps to [1, MaxWorkers], persists and resizes the pool.
//
// # Thread Safety
//
// All services are safe for concurrent use. State lives in the engine and
// the store.
package services
