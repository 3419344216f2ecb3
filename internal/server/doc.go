// Package server provides the diagnostics HTTP server.
//
// The router is built on Gin with two middlewares on every route:
// middlewares.Logger, which logs each request through zap under the "http"
// name, and ginzap.RecoveryWithZap, which turns handler panics into a 500.
//
// Routes:
//
//	GET  /healthz               liveness
//	GET  /metrics               Prometheus exposition, when a handler is given
//	/api/v1/...                 registered by the caller
//
// Mutating API routes are guarded by middlewares.Auth when authentication is
// enabled. Tokens are HS256 JWTs signed with the secret read from
// Authentication.SecretFile and must carry an expiry.
//
// In "prod" mode Gin runs in release mode; otherwise in debug mode.
//
// Usage:
//
//	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
//	    handlers.RegisterHandlers(router, h, guard)
//	}, metrics.Handler())
//	go srv.Start(ctx)
//	<-ctx.Done()
//	srv.Stop(shutdownCtx)
package server
