// Package config loads, defaults, normalizes, and validates the TOML
// configuration shared by the daemon and the CLI.
//
// Load resolves the config path (explicit flag, then
// ~/.config/solshift/config.toml, then ./solshift.toml), decodes on top of
// Default(), and runs normalize + Validate so callers always receive a
// fully specified, internally consistent config. CreateSample materializes
// the embedded sample for `solshift config init`.
package config
