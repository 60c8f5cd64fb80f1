package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driven/session/remote"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/messages"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/services"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

var tuiConversation string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search interface",
	Long: `Launch the interactive terminal interface for searching a
conversation.

Controls:
  type      - Search as you type (pauses dispatch the query)
  Enter     - Search immediately
  ↑/↓       - Previous / next match
  Esc       - Clear the query
  ctrl+c    - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiConversation, "conversation", "c", "", "conversation to search")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Panic recovery to get stack traces out of the alt screen.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the tui command needs an interactive terminal")
	}

	settings, settingsStore, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openHistory(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	conversation, err := resolveConversation(ctx, store, tuiConversation)
	if err != nil && settings.RemoteURL == "" {
		return err
	}

	// The program variable is bound after construction; the dispatch
	// hook only fires once the program is running.
	var program *tea.Program

	var controller *services.SearchController
	if settings.RemoteURL != "" {
		if conversation == "" {
			return fmt.Errorf("remote search requires --conversation")
		}
		opts := remote.Options{
			BaseURL: settings.RemoteURL,
			Token:   settings.RemoteToken,
			Dispatch: func(fn func()) {
				program.Send(messages.Invoke{Fn: fn})
			},
		}
		controller = services.NewSearchController(remote.NewSession(ctx, conversation, opts), nil)
	} else {
		controller, err = localController(ctx, store, settings, conversation)
		if err != nil {
			return err
		}
	}

	ports := tui.NewPorts(controller, store)
	ports.Theme = settings.Theme

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("creating tui: %w", err)
	}
	app.WithContext(ctx)

	// Settings edits take effect on restart; surface them meanwhile.
	if err := settingsStore.Watch(ctx, func(*domain.Settings) {
		logger.Debug("settings changed on disk, restart to apply")
	}); err != nil {
		logger.Warn("settings watch unavailable: %v", err)
	}

	program = tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
