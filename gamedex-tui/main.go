package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrowan/gamedex/gamedex-lib/db"
)

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// Model holds the application state
type model struct {
	games  []gameInfo
	cursor int
	width  int
	height int
	err    error

	// Shelf filter
	shelfFilter string // "" = all

	// Search
	searching   bool
	searchQuery string

	// Status
	statusMsg string

	// Help overlay
	showHelp bool
}

type gameInfo struct {
	ID          int64
	Name        string
	SortName    string
	ReleaseDate int64
	HasArtwork  bool
	PlayState   string
}

// shelfCycle is the order the 's' key walks a game's shelf state through.
var shelfCycle = []string{
	"",
	db.StateWantToBuy,
	db.StateWantToPlay,
	db.StatePlaying,
	db.StateCompleted,
}

func initialModel() model {
	return model{}
}

// Init loads initial data
func (m model) Init() tea.Cmd {
	return loadGames
}

// Update handles messages
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		// Help overlay - always available
		if msg.String() == "?" {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.showHelp {
			// Any key closes help
			m.showHelp = false
			return m, nil
		}

		// Search mode handling
		if m.searching {
			switch msg.String() {
			case "enter", "esc":
				m.searching = false
				return m, nil
			case "backspace":
				if len(m.searchQuery) > 0 {
					m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
				}
			default:
				if len(msg.String()) == 1 {
					m.searchQuery += msg.String()
				}
			}
			m.cursor = 0
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.getFilteredGames())-1 {
				m.cursor++
			}
		case "pgup":
			m.cursor -= 10
			if m.cursor < 0 {
				m.cursor = 0
			}
		case "pgdown":
			m.cursor += 10
			filtered := m.getFilteredGames()
			if m.cursor >= len(filtered) {
				m.cursor = len(filtered) - 1
			}
			if m.cursor < 0 {
				m.cursor = 0
			}
		case "/":
			m.searching = true
			m.searchQuery = ""
			return m, nil
		case "esc":
			if m.searchQuery != "" || m.shelfFilter != "" {
				m.searchQuery = ""
				m.shelfFilter = ""
				m.cursor = 0
			}
		case "s":
			filtered := m.getFilteredGames()
			if m.cursor < len(filtered) {
				g := filtered[m.cursor]
				next := nextShelfState(g.PlayState)
				m.statusMsg = fmt.Sprintf("Shelving %s...", g.Name)
				return m, setShelf(g.ID, next)
			}
		case "r":
			m.statusMsg = "Refreshing..."
			return m, loadGames
		case "1", "b":
			m.shelfFilter = db.StateWantToBuy
			m.cursor = 0
		case "2", "w":
			m.shelfFilter = db.StateWantToPlay
			m.cursor = 0
		case "3", "p":
			m.shelfFilter = db.StatePlaying
			m.cursor = 0
		case "4", "c":
			m.shelfFilter = db.StateCompleted
			m.cursor = 0
		case "0", "a":
			m.shelfFilter = ""
			m.cursor = 0
		}

	case gamesMsg:
		m.games = msg.games
		m.err = msg.err
		if m.statusMsg == "Refreshing..." {
			m.statusMsg = ""
		}
		if m.cursor >= len(m.getFilteredGames()) {
			m.cursor = 0
		}

	case shelfSetMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Shelf update failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = ""
		return m, loadGames
	}

	return m, nil
}

// nextShelfState returns the state after current in the cycle.
func nextShelfState(current string) string {
	for i, s := range shelfCycle {
		if s == current {
			return shelfCycle[(i+1)%len(shelfCycle)]
		}
	}
	return shelfCycle[0]
}

func (m model) getFilteredGames() []gameInfo {
	games := m.games
	if m.shelfFilter != "" {
		var byShelf []gameInfo
		for _, g := range games {
			if g.PlayState == m.shelfFilter {
				byShelf = append(byShelf, g)
			}
		}
		games = byShelf
	}
	if m.searchQuery == "" {
		return games
	}
	var filtered []gameInfo
	for _, g := range games {
		if strings.Contains(strings.ToLower(g.Name), strings.ToLower(m.searchQuery)) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// View renders the UI
func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.viewHelp()
	}

	return m.viewMain()
}

func (m model) viewMain() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	contentStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(m.width - 4)

	selectedStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("57")).
		Foreground(lipgloss.Color("255"))

	shelfStyles := map[string]lipgloss.Style{
		db.StateWantToBuy:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		db.StateWantToPlay: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		db.StatePlaying:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		db.StateCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}

	filtered := m.getFilteredGames()

	var content string
	if m.err != nil {
		content = fmt.Sprintf("\n  Error: %v", m.err)
	} else if len(filtered) == 0 {
		content = "\n  Library is empty. Use CLI: gamedex add <name>"
		if m.searchQuery != "" || m.shelfFilter != "" {
			content = "\n  No games match."
		}
	} else {
		maxShow := m.height - 12
		if maxShow < 5 {
			maxShow = 5
		}

		start := 0
		if m.cursor >= maxShow {
			start = m.cursor - maxShow + 1
		}
		end := start + maxShow
		if end > len(filtered) {
			end = len(filtered)
		}

		for i := start; i < end; i++ {
			g := filtered[i]

			released := "    "
			if g.ReleaseDate > 0 {
				released = time.UnixMilli(g.ReleaseDate).Format("2006")
			}
			artwork := " "
			if g.HasArtwork {
				artwork = "🖼"
			}
			shelf := g.PlayState
			if shelf == "" {
				shelf = "-"
			}

			maxNameLen := m.width - 30
			if maxNameLen < 20 {
				maxNameLen = 20
			}
			name := g.Name
			if len(name) > maxNameLen {
				name = name[:maxNameLen-3] + "..."
			}

			line := fmt.Sprintf("%-*s %s %s  %s", maxNameLen, name, released, artwork, shelf)
			if i == m.cursor {
				line = selectedStyle.Render("> " + line)
			} else if style, ok := shelfStyles[g.PlayState]; ok {
				line = "  " + style.Render(line)
			} else {
				line = "  " + line
			}
			content += line + "\n"
		}
		content += fmt.Sprintf("\n  (%d/%d)", m.cursor+1, len(filtered))
	}

	// Status bar
	statusStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("241")).
		Width(m.width)
	status := fmt.Sprintf(" DB: %s | %d game(s)", getDBPath(), len(m.games))
	if m.shelfFilter != "" {
		status += fmt.Sprintf(" | shelf: %s", m.shelfFilter)
	}
	if m.statusMsg != "" {
		status = " " + m.statusMsg
	}
	if m.searching {
		status = fmt.Sprintf(" SEARCH: %s", m.searchQuery)
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	help := "j/k: nav | /: filter | s: shelve | 1-4/0: shelf filter | r: refresh | ?: help | q: quit"

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("🎮 gamedex"),
		contentStyle.Render(content),
		statusStyle.Render(status),
		helpStyle.Render(help),
	)
}

func (m model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Bold(true).
		MarginTop(1)

	var lines []string
	lines = append(lines, titleStyle.Render("⌨️  Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, sectionStyle.Render("Navigation"))
	lines = append(lines, keyStyle.Render("  j/↓")+"  "+descStyle.Render("Move down"))
	lines = append(lines, keyStyle.Render("  k/↑")+"  "+descStyle.Render("Move up"))
	lines = append(lines, keyStyle.Render("  PgUp")+"  "+descStyle.Render("Page up"))
	lines = append(lines, keyStyle.Render("  PgDn")+"  "+descStyle.Render("Page down"))
	lines = append(lines, keyStyle.Render("  Esc")+"  "+descStyle.Render("Clear filters"))

	lines = append(lines, sectionStyle.Render("Actions"))
	lines = append(lines, keyStyle.Render("  s")+"  "+descStyle.Render("Cycle shelf state of selected game"))
	lines = append(lines, keyStyle.Render("  r")+"  "+descStyle.Render("Refresh data"))
	lines = append(lines, keyStyle.Render("  /")+"  "+descStyle.Render("Filter by name"))

	lines = append(lines, sectionStyle.Render("Shelf Filters"))
	lines = append(lines, keyStyle.Render("  1/b")+"  "+descStyle.Render("Want to buy"))
	lines = append(lines, keyStyle.Render("  2/w")+"  "+descStyle.Render("Want to play"))
	lines = append(lines, keyStyle.Render("  3/p")+"  "+descStyle.Render("Playing"))
	lines = append(lines, keyStyle.Render("  4/c")+"  "+descStyle.Render("Completed"))
	lines = append(lines, keyStyle.Render("  0/a")+"  "+descStyle.Render("All games"))

	lines = append(lines, sectionStyle.Render("General"))
	lines = append(lines, keyStyle.Render("  ?")+"  "+descStyle.Render("Toggle this help"))
	lines = append(lines, keyStyle.Render("  q")+"  "+descStyle.Render("Quit"))

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("Press any key to close"))

	content := strings.Join(lines, "\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 2).
		Width(50)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content))
}

// Messages
type gamesMsg struct {
	games []gameInfo
	err   error
}

type shelfSetMsg struct {
	err error
}

// Commands
func loadGames() tea.Msg {
	database, err := db.Open(context.Background(), getDBPath())
	if err != nil {
		return gamesMsg{err: err}
	}
	defer func() { _ = database.Close() }()

	rows, err := database.Conn().Query(`
		SELECT g.id, g.name, g.sort_name, g.release_date,
			g.grid_digest IS NOT NULL,
			COALESCE(ps.state, '')
		FROM games g
		LEFT JOIN play_states ps ON ps.game_id = g.id
		ORDER BY g.sort_name
	`)
	if err != nil {
		return gamesMsg{err: err}
	}
	defer func() { _ = rows.Close() }()

	var games []gameInfo
	for rows.Next() {
		var g gameInfo
		if err := rows.Scan(&g.ID, &g.Name, &g.SortName, &g.ReleaseDate, &g.HasArtwork, &g.PlayState); err != nil {
			return gamesMsg{err: err}
		}
		games = append(games, g)
	}

	return gamesMsg{games: games}
}

func setShelf(gameID int64, state string) tea.Cmd {
	return func() tea.Msg {
		database, err := db.Open(context.Background(), getDBPath())
		if err != nil {
			return shelfSetMsg{err: err}
		}
		defer func() { _ = database.Close() }()

		if state == "" {
			_, err = database.Conn().Exec(`DELETE FROM play_states WHERE game_id = ?`, gameID)
			return shelfSetMsg{err: err}
		}
		return shelfSetMsg{err: database.SetPlayState(context.Background(), gameID, state)}
	}
}

func getDBPath() string {
	if path := os.Getenv("GAMEDEX_DB"); path != "" {
		return path
	}
	return "gamedex.db"
}
