package driven

import (
	"context"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// SettingsStore persists application settings.
type SettingsStore interface {
	// Load reads the current settings, applying defaults for unset fields.
	Load() (*domain.Settings, error)

	// Save writes the settings.
	Save(settings *domain.Settings) error

	// Watch invokes onChange with freshly loaded settings whenever the
	// backing file changes, until ctx is cancelled.
	Watch(ctx context.Context, onChange func(*domain.Settings)) error
}
