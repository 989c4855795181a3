package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroveil/internal/router"
	"github.com/abhisek/neuroveil/internal/screen"
	"github.com/abhisek/neuroveil/internal/screens/console"
	"github.com/abhisek/neuroveil/internal/screens/welcome"
	"github.com/abhisek/neuroveil/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Runtime *Runtime
	// SkipIntro starts on the console instead of the splash screen.
	SkipIntro bool
	// StartSession starts a session right after boot; Fast picks the short
	// test cycle.
	StartSession bool
	Fast         bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel boots the engine and builds the screen stack.
func newAppModel(ctx context.Context, opts Options) AppModel {
	rt := opts.Runtime
	rt.Engine.Boot(ctx)
	if opts.StartSession {
		rt.Engine.StartSession(ctx, opts.Fast)
	}

	consoleFactory := func() screen.Screen {
		return console.New(ctx, rt.Engine, console.Options{
			Events: rt.Events,
			Teach:  rt.Teach,
			BeforeReset: func() {
				if err := rt.Snapshot(ctx, "reset"); err != nil {
					rt.Journal.Warning(ctx, "Profile backup failed: %v", err)
				}
			},
		})
	}

	var initial screen.Screen
	if opts.SkipIntro {
		initial = consoleFactory()
	} else {
		initial = welcome.New(consoleFactory)
	}
	return AppModel{router: router.New(initial)}
}

func (m AppModel) Init() tea.Cmd {
	var cmd tea.Cmd
	if active := m.router.Active(); active != nil {
		cmd = active.Init()
	}
	return tea.Batch(cmd, console.TickCmd())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case console.TickMsg:
		// The console is always the bottom screen once the intro is done.
		cmd := m.router.UpdateBottom(msg)
		return m, tea.Batch(cmd, console.TickCmd())

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render composes header, active screen and footer for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	// The console sits at the bottom of the stack; its chips stay visible
	// on pushed screens.
	var status layout.Status
	if sp, ok := m.router.Bottom().(screen.StatusProvider); ok {
		status = sp.Status()
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, opts Options) error {
	if opts.Runtime == nil {
		return fmt.Errorf("app: runtime is required")
	}
	p := tea.NewProgram(newAppModel(ctx, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
