package driving

import "github.com/custodia-labs/knowbase/internal/core/domain"

// SettingsService resolves and persists application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config
	// store, then environment overrides.
	Get() (*domain.AppSettings, error)

	// Set validates and stores one configuration key.
	Set(key, value string) error

	// Values returns every stored key with its raw value.
	Values() map[string]any

	// Path returns the location of the backing config file.
	Path() string
}
