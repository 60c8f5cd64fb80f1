package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List stored conversations",
	RunE:  runConversations,
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}

func runConversations(cmd *cobra.Command, _ []string) error {
	settings, _, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openHistory(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	convs, err := store.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}
	if len(convs) == 0 {
		cmd.Println("No conversations stored. Import a transcript first.")
		return nil
	}

	for _, conv := range convs {
		predecessor, err := store.MigratedFrom(ctx, conv)
		if err != nil {
			return fmt.Errorf("resolving predecessor: %w", err)
		}
		if predecessor != "" {
			cmd.Printf("  %s (migrated from %s)\n", conv, predecessor)
		} else {
			cmd.Printf("  %s\n", conv)
		}
	}
	return nil
}
