// Package config provides configuration loading and validation for wirehttp.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (WIREHTTP_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with WIREHTTP_ prefix:
//   - server.port → WIREHTTP_SERVER_PORT
//   - storage.path → WIREHTTP_STORAGE_PATH
//   - server.encodings → WIREHTTP_SERVER_ENCODINGS (comma separated)
//
// # Flags
//
// The --directory flag sets storage.path; --port and --host set the
// server listener address.
//
// # Validation
//
//   - Ports must be 1-65535 (admin.port may be 0 to disable the admin server)
//   - Limits and max_conns must not be negative
//   - Log level must be debug, info, warn, or error
package config
