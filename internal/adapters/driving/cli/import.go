package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// importLine is the JSONL wire format of one transcript message.
type importLine struct {
	Conversation string    `json:"conversation"`
	Message      int64     `json:"message"`
	Sender       string    `json:"sender"`
	SentAt       time.Time `json:"sent_at"`
	Body         string    `json:"body"`
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a conversation transcript",
	Long: `Imports messages from a JSONL transcript into the history
database. Each line is one message:

  {"conversation":"team","message":42,"sender":"alice","sent_at":"2026-08-27T10:00:00Z","body":"hello"}`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var linkCmd = &cobra.Command{
	Use:   "link [conversation] [predecessor]",
	Short: "Link a conversation to the one it was migrated from",
	Long: `Records that a conversation continues an older one. Searches of
the conversation will then also cover the predecessor, appending its
matches after the conversation's own.`,
	Args: cobra.ExactArgs(2),
	RunE: runLink,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(linkCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	settings, _, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openHistory(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	ctx := cmd.Context()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	imported := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line importLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if line.Conversation == "" || line.Message == 0 {
			return fmt.Errorf("line %d: conversation and message are required", lineNo)
		}

		msg := domain.Message{
			Ref: domain.MessageRef{
				Conversation: domain.ConversationID(line.Conversation),
				Message:      domain.MessageID(line.Message),
			},
			Sender: domain.PeerID(line.Sender),
			SentAt: line.SentAt,
			Body:   line.Body,
		}
		if err := store.Add(ctx, msg); err != nil {
			return fmt.Errorf("line %d: storing %s: %w", lineNo, msg.Ref, err)
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	logger.Info("imported %d messages from %s", imported, args[0])
	cmd.Printf("Imported %d messages.\n", imported)
	return nil
}

func runLink(cmd *cobra.Command, args []string) error {
	settings, _, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openHistory(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	conversation := domain.ConversationID(args[0])
	predecessor := domain.ConversationID(args[1])
	if conversation == predecessor {
		return fmt.Errorf("a conversation cannot be its own predecessor")
	}

	if err := store.SetMigratedFrom(cmd.Context(), conversation, predecessor); err != nil {
		return fmt.Errorf("linking conversations: %w", err)
	}

	cmd.Printf("Linked %s -> %s.\n", conversation, predecessor)
	return nil
}
