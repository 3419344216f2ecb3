// Package config defines the configuration structure for pageview.
//
// Configuration is organized into logical sections (Engine, Store, Server, Auth)
// and uses code generation via optgen to create functional option helpers.
//
// # Configuration Structure
//
//	Configuration
//	├── Engine         - Worker pool settings
//	├── Store          - Preference and thumbnail storage
//	├── Server         - Diagnostics HTTP server
//	├── Auth           - Authentication of mutating routes
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Engine Configuration
//
//	┌──────────────┬─────────┬─────────────────────────────────────────────┐
//	│ Field        │ Default │ Description                                 │
//	├──────────────┼─────────┼─────────────────────────────────────────────┤
//	│ WorkerCount  │ 2       │ Workers started when no preference is saved │
//	│ MaxWorkers   │ 0       │ Worker slots, 0 means max(4, NumCPU)        │
//	│ LockOSThread │ false   │ Pin each worker to an OS thread             │
//	│ WaitTimeout  │ 30s     │ How long `run` waits for the ordered pages  │
//	└──────────────┴─────────┴─────────────────────────────────────────────┘
//
// # Store Configuration
//
//	┌────────────┬─────────┬────────────────────────────────────────────────┐
//	│ Field      │ Default │ Description                                    │
//	├────────────┼─────────┼────────────────────────────────────────────────┤
//	│ DataFolder │ ""      │ Folder of pageview.duckdb, empty for in-memory │
//	└────────────┴─────────┴────────────────────────────────────────────────┘
//
// # Server Configuration
//
//	┌────────────┬─────────┬────────────────────────────────────────┐
//	│ Field      │ Default │ Description                            │
//	├────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort   │ 8000    │ HTTP server listen port                │
//	└────────────┴─────────┴────────────────────────────────────────┘
//
// # Authentication Configuration
//
//	┌────────────┬─────────┬─────────────────────────────────────────┐
//	│ Field      │ Default │ Description                             │
//	├────────────┼─────────┼─────────────────────────────────────────┤
//	│ Enabled    │ false   │ Require a bearer JWT on mutating routes │
//	│ SecretFile │ ""      │ File holding the HS256 signing secret   │
//	└────────────┴─────────┴─────────────────────────────────────────┘
//
// # Code Generation
//
//	//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Engine Store Server Authentication
//
// Generated helpers include:
//
//   - NewConfigurationWithOptionsAndDefaults(...ConfigurationOption) - Create with defaults + options
//   - WithEngine(Engine), WithServer(Server), etc. - Set nested structs
//   - DebugMap() - Returns map for debug logging (respects debugmap tags)
//
// # Usage Example
//
//	cfg := config.NewConfigurationWithOptionsAndDefaults(
//	    config.WithEngine(*config.NewEngineWithOptionsAndDefaults(
//	        config.WithWorkerCount(3),
//	    )),
//	    config.WithLogLevel("debug"),
//	)
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
