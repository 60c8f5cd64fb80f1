// Package cli implements the command-line interface for convofind.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driven/config/file"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driven/session/sqlite"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/core/services"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verboseFlag bool
	configDir   string
)

// rootCmd is the base command for convofind.
var rootCmd = &cobra.Command{
	Use:   "convofind",
	Short: "Search conversation history from the terminal",
	Long: `convofind searches stored conversation history, merging results
from a conversation and, when one is linked, the conversation it was
migrated from, into a single "N of M" navigable list.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.convofind)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// loadSettings opens the settings store and loads settings.
func loadSettings() (*domain.Settings, *file.SettingsStore, error) {
	settingsStore, err := file.NewSettingsStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening settings store: %w", err)
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}
	return settings, settingsStore, nil
}

// openHistory opens the history database named by the settings.
func openHistory(settings *domain.Settings) (*sqlite.Store, error) {
	store, err := sqlite.NewStore(settings.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

// resolveConversation picks the conversation to search: the explicit
// flag when given, otherwise the sole stored conversation.
func resolveConversation(ctx context.Context, store *sqlite.Store, flag string) (domain.ConversationID, error) {
	if flag != "" {
		return domain.ConversationID(flag), nil
	}

	convs, err := store.Conversations(ctx)
	if err != nil {
		return "", fmt.Errorf("listing conversations: %w", err)
	}
	switch len(convs) {
	case 0:
		return "", domain.ErrNoHistory
	case 1:
		return convs[0], nil
	default:
		return "", fmt.Errorf("%d conversations stored, pick one with --conversation", len(convs))
	}
}

// localController builds a search controller over the history store,
// with a secondary session when the conversation is linked to a
// predecessor.
func localController(
	ctx context.Context,
	store *sqlite.Store,
	settings *domain.Settings,
	conversation domain.ConversationID,
) (*services.SearchController, error) {
	primary := sqlite.NewSession(ctx, store, conversation, settings.PageSize)

	var secondary driven.SearchSession
	predecessor, err := store.MigratedFrom(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("resolving predecessor: %w", err)
	}
	if predecessor != "" {
		logger.Debug("conversation %s migrated from %s", conversation, predecessor)
		secondary = sqlite.NewSession(ctx, store, predecessor, settings.PageSize)
	}

	return services.NewSearchController(primary, secondary), nil
}
