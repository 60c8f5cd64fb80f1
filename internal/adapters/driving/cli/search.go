package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driven/session/remote"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/core/services"
)

// remoteSearchTimeout bounds how long the one-shot search waits for
// any single remote page.
const remoteSearchTimeout = 15 * time.Second

var (
	searchConversation string
	searchFrom         string
	searchLimit        int
	searchJSON         bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search stored conversation history",
	Long: `Searches a conversation and prints every match, newest first.
If the conversation is linked to a predecessor it was migrated from,
the predecessor's matches follow the conversation's own.

A leading "from:name" word in the query filters by sender.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchConversation, "conversation", "c", "", "conversation to search")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "only matches sent by this peer")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "stop after this many results (0 = all)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := domain.ParseQuery(strings.Join(args, " "))
	if searchFrom != "" {
		query.From = domain.PeerID(searchFrom)
	}
	if query.IsEmpty() {
		return domain.ErrEmptyQuery
	}

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
	conversation, err := resolveConversation(ctx, store, searchConversation)
	if err != nil && settings.RemoteURL == "" {
		// Remote search does not need local history; defer to the
		// --conversation requirement there.
		return err
	}

	var results domain.FoundMessages
	if settings.RemoteURL != "" {
		results, err = collectRemote(ctx, settings, conversation, query)
	} else {
		controller, cerr := localController(ctx, store, settings, conversation)
		if cerr != nil {
			return cerr
		}
		results, err = collectLocal(controller, query)
	}
	if err != nil {
		return err
	}

	items := results.Items
	if searchLimit > 0 && len(items) > searchLimit {
		items = items[:searchLimit]
	}

	if searchJSON {
		return outputJSON(ctx, cmd, store, items, results.Total)
	}
	return outputTable(ctx, cmd, store, items, results.Total)
}

// collectLocal drains a controller over synchronous sessions.
func collectLocal(controller *services.SearchController, query domain.SearchQuery) (domain.FoundMessages, error) {
	controller.Search(query)
	for {
		results := controller.Results()
		if results.IsFullyLoaded() {
			return results, nil
		}
		if searchLimit > 0 && len(results.Items) >= searchLimit {
			return results, nil
		}
		before := len(results.Items)
		controller.SearchMore()
		if len(controller.Results().Items) == before {
			// No progress means the backend went quiet.
			return controller.Results(), nil
		}
	}
}

// collectRemote drains a controller over the remote API, pumping
// responses back onto this goroutine through the dispatch hook.
func collectRemote(
	ctx context.Context,
	settings *domain.Settings,
	conversation domain.ConversationID,
	query domain.SearchQuery,
) (domain.FoundMessages, error) {
	if conversation == "" {
		return domain.FoundMessages{}, errors.New("remote search requires --conversation")
	}

	pump := make(chan func(), 16)
	opts := remote.Options{
		BaseURL:  settings.RemoteURL,
		Token:    settings.RemoteToken,
		Dispatch: func(fn func()) { pump <- fn },
	}
	var primary driven.SearchSession = remote.NewSession(ctx, conversation, opts)
	controller := services.NewSearchController(primary, nil)

	controller.Search(query)
	for {
		select {
		case fn := <-pump:
			fn()
		case <-time.After(remoteSearchTimeout):
			return domain.FoundMessages{}, errors.New("timed out waiting for the search backend")
		case <-ctx.Done():
			return domain.FoundMessages{}, ctx.Err()
		}

		results := controller.Results()
		if results.IsFullyLoaded() {
			return results, nil
		}
		if searchLimit > 0 && len(results.Items) >= searchLimit {
			return results, nil
		}
		controller.SearchMore()
	}
}

// row is the JSON output shape for one match.
type row struct {
	Conversation string    `json:"conversation"`
	Message      int64     `json:"message"`
	Sender       string    `json:"sender,omitempty"`
	SentAt       time.Time `json:"sent_at,omitempty"`
	Body         string    `json:"body,omitempty"`
}

func hydrateRows(ctx context.Context, store driven.MessageStore, refs []domain.MessageRef) []row {
	rows := make([]row, 0, len(refs))
	for _, ref := range refs {
		r := row{Conversation: string(ref.Conversation), Message: int64(ref.Message)}
		if msg, err := store.Get(ctx, ref); err == nil {
			r.Sender = string(msg.Sender)
			r.SentAt = msg.SentAt
			r.Body = msg.Body
		}
		rows = append(rows, r)
	}
	return rows
}

func outputJSON(ctx context.Context, cmd *cobra.Command, store driven.MessageStore, refs []domain.MessageRef, total int) error {
	payload := struct {
		Total   int   `json:"total"`
		Results []row `json:"results"`
	}{Total: total, Results: hydrateRows(ctx, store, refs)}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputTable(ctx context.Context, cmd *cobra.Command, store driven.MessageStore, refs []domain.MessageRef, total int) error {
	if total == 0 {
		cmd.Println("No messages found.")
		return nil
	}

	rows := hydrateRows(ctx, store, refs)
	cmd.Printf("%d of %d matches:\n\n", len(rows), total)
	for i, r := range rows {
		when := ""
		if !r.SentAt.IsZero() {
			when = r.SentAt.Format("2006-01-02 15:04")
		}
		body := r.Body
		if body == "" {
			body = "(unavailable)"
		}
		cmd.Printf("  [%d] %s/%d  %s  %s\n", i+1, r.Conversation, r.Message, when, r.Sender)
		cmd.Printf("      %s\n", body)
	}
	return nil
}
