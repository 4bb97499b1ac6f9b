// Package config loads the member-rank configuration.
//
// # Configuration Sources
//
// Values are applied in the following order, later sources winning:
//
//	1. Default()
//	2. YAML file (MEMBERRANK_CONFIG_FILE, or config.yaml / configs/config.yaml)
//	3. .env file in the working directory, loaded into the process environment
//	4. Environment variables with the MEMBERRANK_ prefix
//
// # Environment Variables
//
// Nested sections join with underscores:
//
//	MEMBERRANK_ENGINE_TOP_N=20
//	MEMBERRANK_CALENDAR_MIC=xshg
//	MEMBERRANK_LOGGING_LEVEL=debug
//	MEMBERRANK_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/member_rank.prom
//
// Validate runs after every load and rejects out-of-range limits and unknown
// enum values.
package config
