// Package config handles configuration loading for openclaw-assistant.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	endpoint:
//	  url: "${OPENCLAW_ENDPOINT_URL}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	endpoint:
//	  timeout: "30s"
//	  backoff_base: "1s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Local API server:
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
// Remote tool-execution endpoint:
//
//	endpoint:
//	  url: "http://127.0.0.1:8431/mcp"
//	  protocol_version: "2025-03-26"
//	  timeout: "30s"
//	  max_retries: 3
//	  backoff_base: "1s"
//
// Message stores (one search backend per entry):
//
//	stores:
//	  - name: "telegram"
//	    url: "http://127.0.0.1:8432"
//
// Mail backend:
//
//	mail:
//	  channel: "mail"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Metrics:
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/openclaw/assistant.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
