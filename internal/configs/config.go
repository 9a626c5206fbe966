package configs

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/secrets"
	"github.com/lazywarden/lazywarden/internal/secretstore"
)

const (
	DefaultBackupDir = "/root/lazywarden/backup-drive"

	DefaultEncryptionPasswordID = "588b0643-7ba4-4a78-ba3e-9467ad9c81a7"
	DefaultZipPasswordID        = "3bcadf27-446d-47f0-b929-b1469fa58546"
	DefaultAttachmentPasswordID = "89d458e7-9ac4-431e-9f23-95cb4b8cff86"

	defaultEnvFile = ".env"
)

type Config struct {
	APIURL         string `toml:"api_url"`
	IdentityURL    string `toml:"identity_url"`
	OrganizationID string `toml:"organization_id"`
	AccessToken    string `toml:"-"`
	Timestamp      string `toml:"timestamp"`
	BackupDir      string `toml:"backup_dir"`
	KDFVariant     string `toml:"kdf_variant"`
	StateFile      string `toml:"state_file"`

	Secrets SecretIDs `toml:"secrets"`
}

type SecretIDs struct {
	EncryptionPassword  string `toml:"encryption_password"`
	ZipPassword         string `toml:"zip_password"`
	AttachmentsPassword string `toml:"zip_attachment_password"`
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile is an optional TOML file. It must exist when set.
	ConfigFile string

	// EnvFiles are dotenv files; missing files are ignored. Defaults to ".env".
	EnvFiles []string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string

	// Keyring looks up a stored access token by organization ID. Nil disables it.
	Keyring func(organizationID string) (string, error)
}

// Default returns a Config holding only the built-in defaults.
func Default() *Config {
	return &Config{
		BackupDir:  DefaultBackupDir,
		KDFVariant: string(secrets.Argon2id),
		Secrets: SecretIDs{
			EncryptionPassword:  DefaultEncryptionPasswordID,
			ZipPassword:         DefaultZipPasswordID,
			AttachmentsPassword: DefaultAttachmentPasswordID,
		},
	}
}

// Load assembles a Config from defaults, the TOML file, dotenv files and the
// environment. It does not validate the result.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := LoadTOML(opts.ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", kerrors.ErrConfig, opts.ConfigFile, err)
		}
	}

	dotenv, err := readEnvFiles(opts.EnvFiles)
	if err != nil {
		return nil, err
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[key])
	}

	set := func(dst *string, key string) {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.APIURL, "API_URL")
	set(&cfg.IdentityURL, "IDENTITY_URL")
	set(&cfg.OrganizationID, "ORGANIZATION_ID")
	set(&cfg.AccessToken, "ACCESS_TOKEN")
	set(&cfg.Timestamp, "TIMESTAMP")
	set(&cfg.BackupDir, "BACKUP_DIR")
	set(&cfg.KDFVariant, "KDF_VARIANT")
	set(&cfg.StateFile, "BW_STATE_FILE")
	set(&cfg.Secrets.EncryptionPassword, "ENCRYPTION_PASSWORD_SECRET_ID")
	set(&cfg.Secrets.ZipPassword, "ZIP_PASSWORD_SECRET_ID")
	set(&cfg.Secrets.AttachmentsPassword, "ZIP_ATTACHMENT_PASSWORD_SECRET_ID")

	if cfg.AccessToken == "" && cfg.OrganizationID != "" && opts.Keyring != nil {
		// An unavailable keyring is the same as no stored token.
		if token, err := opts.Keyring(cfg.OrganizationID); err == nil {
			cfg.AccessToken = token
		}
	}

	return cfg, nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if files == nil {
		files = []string{defaultEnvFile}
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(present...)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", kerrors.ErrConfig, strings.Join(present, ", "), err)
	}
	return values, nil
}

// ValidateLayout checks the settings needed to resolve backup file paths.
func (c *Config) ValidateLayout() error {
	if c.BackupDir == "" {
		return fmt.Errorf("%w: BACKUP_DIR is empty", kerrors.ErrConfig)
	}
	return ValidateTimestamp(c.Timestamp)
}

// Validate checks that every setting required for a recovery run is present.
func (c *Config) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"API_URL", c.APIURL},
		{"IDENTITY_URL", c.IdentityURL},
		{"ORGANIZATION_ID", c.OrganizationID},
		{"ACCESS_TOKEN", c.AccessToken},
		{"TIMESTAMP", c.Timestamp},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", kerrors.ErrConfig, strings.Join(missing, ", "))
	}

	if err := c.ValidateLayout(); err != nil {
		return err
	}

	for _, id := range []string{c.Secrets.EncryptionPassword, c.Secrets.ZipPassword, c.Secrets.AttachmentsPassword} {
		if err := secretstore.ValidateID(id); err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrConfig, err)
		}
	}

	if _, err := c.KDFParams(); err != nil {
		return err
	}

	return nil
}

// KDFParams returns the key derivation parameters for the configured variant.
func (c *Config) KDFParams() (secrets.KDFParams, error) {
	variant, err := secrets.ParseVariant(c.KDFVariant)
	if err != nil {
		return secrets.KDFParams{}, fmt.Errorf("%w: KDF_VARIANT: %v", kerrors.ErrConfig, err)
	}
	params := secrets.DefaultKDFParams()
	params.Variant = variant
	return params, nil
}

// Bitwarden returns the secret store connection settings.
func (c *Config) Bitwarden() secretstore.BitwardenConfig {
	return secretstore.BitwardenConfig{
		APIURL:      c.APIURL,
		IdentityURL: c.IdentityURL,
		AccessToken: c.AccessToken,
		StateFile:   c.StateFile,
	}
}

// ValidateTimestamp checks that ts can be embedded in a file name.
func ValidateTimestamp(ts string) error {
	if ts == "" {
		return fmt.Errorf("%w: TIMESTAMP is empty", kerrors.ErrConfig)
	}
	if ts == "." || ts == ".." || strings.ContainsAny(ts, `/\`) || strings.ContainsRune(ts, 0) {
		return fmt.Errorf("%w: %q", kerrors.ErrInvalidTimestamp, ts)
	}
	return nil
}
