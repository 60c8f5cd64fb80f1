package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/components/counter"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/components/input"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/components/list"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/components/status"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/keymap"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/messages"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/styles"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
//
// Engine events arrive through an internal channel: the controller
// callbacks registered in NewApp convert each event into a typed
// message, and a standing waitForEvent command feeds them back into
// Update. The engine itself only runs on this loop.
type App struct {
	// ports provides access to core services.
	ports *Ports

	// ctx is the context for store reads.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keys holds the keybindings.
	keys *keymap.KeyMap

	// searchBar is the query input with debounce.
	searchBar *input.SearchBar

	// resultList shows hydrated matches, newest first.
	resultList *list.ResultList

	// counterBar shows the "N of M" cursor position.
	counterBar *counter.Bar

	// statusBar shows state and keybinding hints.
	statusBar *status.Bar

	// events carries engine callbacks back into the update loop.
	events chan tea.Msg

	// listVisible hides stale results while the query is being edited.
	listVisible bool

	// listTop is the first screen row of the result list, for mouse
	// hit testing. Recomputed on every render.
	listTop int

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := styles.NewStyles(styles.ThemeByName(ports.Theme))
	keys := keymap.DefaultKeyMap()

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keys:       keys,
		searchBar:  input.NewSearchBar(s),
		resultList: list.NewResultList(s),
		counterBar: counter.NewBar(s),
		statusBar:  status.NewBar(s, keys),
		events:     make(chan tea.Msg, 128),
	}

	ports.Search.OnUpdated(func() {
		a.events <- messages.ResultsUpdated{Total: ports.Search.Total()}
	})
	ports.Search.OnPageAppended(func() {
		a.events <- messages.PageAppended{}
	})
	ports.Search.OnCursorChanged(func(current, total int) {
		a.events <- messages.CursorMoved{Current: current, Total: total}
	})
	ports.Search.OnResolved(func(ref domain.MessageRef) {
		a.events <- messages.JumpResolved{Ref: ref}
	})

	return a, nil
}

// WithContext sets the context used for store reads.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.searchBar.Init(),
		a.waitForEvent(),
		tea.SetWindowTitle("convofind"),
	)
}

// waitForEvent blocks until the next engine event is available.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-a.events
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.searchBar.SetWidth(msg.Width)
		a.counterBar.SetWidth(msg.Width)
		a.statusBar.SetWidth(msg.Width)
		a.resultList.SetSize(msg.Width, msg.Height-8)
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case tea.MouseMsg:
		a.updateMouse(msg)
		return a, nil

	case messages.QueryChanged:
		// Edited queries hide the stale list until dispatch.
		a.listVisible = false
		a.statusBar.SetState(status.StateTyping)
		return a, nil

	case messages.DebounceElapsed:
		return a, a.searchBar.Debounce(msg)

	case messages.SearchSubmitted:
		a.statusBar.SetState(status.StateSearching)
		a.counterBar.Reset()
		a.ports.Search.Search(msg.Query)
		return a, nil

	case messages.ResultsUpdated:
		a.resultList.SetItems(a.hydrate(a.ports.Search.Results().Items))
		a.counterBar.SetCursor(a.ports.Search.Current(), msg.Total)
		a.listVisible = true
		a.statusBar.SetState(status.StateResults)
		return a, a.waitForEvent()

	case messages.PageAppended:
		items := a.ports.Search.Results().Items
		if loaded := a.resultList.Len(); loaded < len(items) {
			a.resultList.AppendItems(a.hydrate(items[loaded:]))
		}
		return a, a.waitForEvent()

	case messages.CursorMoved:
		a.counterBar.SetCursor(msg.Current, msg.Total)
		a.resultList.Select(msg.Current - 1)
		return a, a.waitForEvent()

	case messages.JumpResolved:
		a.resultList.SelectRef(msg.Ref)
		return a, a.waitForEvent()

	case messages.Invoke:
		if msg.Fn != nil {
			msg.Fn()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.statusBar.SetError(msg.Err)
		return a, a.waitForEvent()

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keys.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keys.Cancel):
		a.searchBar.Reset()
		a.resultList.SetItems(nil)
		a.counterBar.Reset()
		a.listVisible = false
		a.statusBar.SetState(status.StateReady)
		return a, nil

	case keymap.Matches(keyStr, a.keys.Submit):
		return a, a.searchBar.Submit()

	case keymap.Matches(keyStr, a.keys.Up), keymap.Matches(keyStr, a.keys.Previous):
		a.ports.Search.Previous()
		return a, nil

	case keymap.Matches(keyStr, a.keys.Down), keymap.Matches(keyStr, a.keys.Next):
		a.ports.Search.Next()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchBar, cmd = a.searchBar.Update(msg)
	return a, cmd
}

// updateMouse maps a click on a list row to a direct selection.
func (a *App) updateMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if !a.listVisible {
		return
	}

	row := msg.Y - a.listTop
	ref, ok := a.resultList.RefAt(row)
	if !ok {
		return
	}

	a.ports.Search.SelectItem(ref)
	// Resolve the jump and prefetch if the click landed near the end.
	if current := a.ports.Search.Current(); current > 0 {
		a.ports.Search.Show(current - 1)
	}
}

// hydrate loads messages for refs; rows that fail to load render a
// placeholder rather than breaking the list.
func (a *App) hydrate(refs []domain.MessageRef) []domain.Message {
	msgs := make([]domain.Message, 0, len(refs))
	for _, ref := range refs {
		m, err := a.ports.Store.Get(a.ctx, ref)
		if err != nil {
			msgs = append(msgs, domain.Message{Ref: ref, Body: "(message unavailable)"})
			continue
		}
		msgs = append(msgs, *m)
	}
	return msgs
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	title := a.styles.Title.Render("convofind")
	search := a.searchBar.View()
	counterLine := a.counterBar.View()

	var body string
	if a.listVisible {
		body = a.resultList.View()
	} else if a.searchBar.Value() != "" {
		body = a.styles.Muted.Render("Press enter to search, or pause typing")
	} else {
		body = a.styles.Muted.Render("Type to search this conversation")
	}

	head := lipgloss.JoinVertical(lipgloss.Left, title, search, counterLine)
	a.listTop = lipgloss.Height(head)

	content := lipgloss.JoinVertical(lipgloss.Left, head, body)

	statusLine := a.statusBar.View()
	gap := a.height - lipgloss.Height(content) - lipgloss.Height(statusLine)
	for i := 0; i < gap; i++ {
		content += "\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, statusLine)
}
