// Package configs builds the configuration value for a recovery run.
//
// Settings are read, lowest precedence first, from:
//
//   - built-in defaults (backup directory, secret IDs, KDF variant)
//   - an optional TOML file (--config)
//   - .env files in the working directory
//   - process environment variables
//   - command-line flags, applied by the cmd package
//
// The access token is never read from or written to the TOML file. When it is
// not set anywhere it is looked up in the OS keyring under the organization ID.
//
// Load does not modify the process environment. The resulting *Config is
// passed explicitly to the workflows; there is no package-level state.
//
// # Environment Variables
//
//	API_URL, IDENTITY_URL, ORGANIZATION_ID, ACCESS_TOKEN, TIMESTAMP   (required)
//	BACKUP_DIR, KDF_VARIANT, BW_STATE_FILE                            (optional)
//	ENCRYPTION_PASSWORD_SECRET_ID, ZIP_PASSWORD_SECRET_ID,
//	ZIP_ATTACHMENT_PASSWORD_SECRET_ID                                 (optional)
package configs
