package config

import "time"

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Engine Store Server Authentication

type Configuration struct {
	Engine    Engine         `debugmap:"visible"`
	Store     Store          `debugmap:"visible"`
	Server    Server         `debugmap:"visible"`
	Auth      Authentication `debugmap:"visible"`
	LogFormat string         `debugmap:"visible" default:"console"`
	LogLevel  string         `debugmap:"visible" default:"info"`
}

type Engine struct {
	// WorkerCount is used when no preference is stored yet.
	WorkerCount int `debugmap:"visible" default:"2"`
	// MaxWorkers of zero means max(4, NumCPU).
	MaxWorkers   int           `debugmap:"visible" default:"0"`
	LockOSThread bool          `debugmap:"visible" default:"false"`
	WaitTimeout  time.Duration `debugmap:"visible" default:"30s"`
}

type Store struct {
	// DataFolder holds the DuckDB file. Empty means in-memory.
	DataFolder string `debugmap:"visible" default:""`
}

type Server struct {
	ServerMode string `debugmap:"visible" default:"dev"`
	HTTPPort   int    `debugmap:"visible" default:"8000"`
}

type Authentication struct {
	Enabled    bool   `debugmap:"visible" default:"false"`
	SecretFile string `debugmap:"visible" default:""`
}
