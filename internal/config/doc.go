// Package config loads the shulpick TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shulpick/config.toml
//  3. If the file doesn't exist, use the defaults
//  4. Empty or missing fields keep their defaults
//  5. SHULPICK_API_BASE and SHULPICK_API_TOKEN override the file
//
// The CLI loads a .env file from the working directory before calling Load,
// so the environment overrides can live there too.
//
// # TOML Format
//
//	api_base  = "https://shul.example.org"
//	api_token = ""
//	timeout   = "10s"
//	log_file  = "~/.local/state/shulpick/shulpick.log"
//	log_level = "info"
//
//	[endpoints]
//	members = "/api/members/search"
//	tiers   = "/api/tiers/search"
//	global  = "/api/search"
//	health  = "/health"
//
//	[search]
//	min_query_length  = 2
//	debounce          = "300ms"
//	blur_grace        = "200ms"
//	limit             = 20
//	highlight_first   = true
//	sole_match_commit = true
//
// Durations use Go syntax ("250ms", "1s"). Invalid or non-positive durations
// and non-positive counts are reported as errors naming the offending key.
package config
