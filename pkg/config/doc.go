// Package config provides configuration management for Switchyard.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults. A missing
// configuration file is not an error: the tool runs with pure defaults,
// so local runtimes work with zero setup.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SWITCHYARD_SECTION_FIELD.
// For example:
//
//   - SWITCHYARD_PROVIDERS_OPENAI_API_KEY overrides providers.openai.api_key
//   - SWITCHYARD_ROUTING_PRIORITY_MODE overrides routing.priority_mode
//   - SWITCHYARD_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// The vendor-standard key variables OPENAI_API_KEY, ANTHROPIC_API_KEY,
// GEMINI_API_KEY, and GROQ_API_KEY are also honored when no key is set
// elsewhere, so existing shell setups work unchanged.
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Routing.PriorityMode)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Hot Reload
//
// A Watcher can observe the configuration file and reload the singleton
// when it changes on disk. Reload failures keep the previous
// configuration in place.
//
//	w, err := config.NewWatcher(path, logger)
//	go w.Watch(ctx, func() error { return config.ReloadConfig(path) })
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	providers:
//	  openai:
//	    api_key: "sk-..."
//	  ollama:
//	    base_url: "http://localhost:11434"
//
//	routing:
//	  priority_mode: "auto"
//
//	health:
//	  history:
//	    enabled: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
