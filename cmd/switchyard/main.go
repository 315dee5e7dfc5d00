// Switchyard is a provider routing and health subsystem for AI assistants.
//
// It multiplexes chat, vision, and code requests across cloud LLM vendors
// and local runtimes, providing:
//   - Task-aware routing with configurable priority modes
//   - Background health monitoring with latency and uptime tracking
//   - Persistent health history in SQLite
//   - Local model management (pull, remove) for Ollama-style runtimes
//   - Prometheus metrics and a diagnostics HTTP endpoint
//
// Usage:
//
//	# Send a chat message through the router
//	switchyard chat "explain goroutines"
//
//	# Stream the response as it arrives
//	switchyard chat --stream "write a haiku about latency"
//
//	# Check provider health once
//	switchyard health
//
//	# Run the diagnostics server with live health checks
//	switchyard health --serve
//
//	# List models across all available providers
//	switchyard models list
//
//	# Pull a model into the local Ollama runtime
//	switchyard models pull llama3.2
//
//	# Review a source file
//	switchyard code review main.go
//
// For complete documentation, see: https://github.com/switchyard-ai/switchyard
package main

func main() {
	Execute()
}
