package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/mrowan/gamedex/gamedex-lib/db"
)

func TestInitialModel(t *testing.T) {
	m := initialModel()

	assert.Equal(t, 0, m.cursor, "initial cursor should be 0")
	assert.Empty(t, m.games, "games should be empty initially")
	assert.Empty(t, m.shelfFilter, "should start without a shelf filter")
	assert.False(t, m.searching, "should not start in search mode")
}

func TestCursorNavigation(t *testing.T) {
	m := initialModel()
	m.games = []gameInfo{
		{Name: "Half-Life"},
		{Name: "Portal"},
		{Name: "Portal 2"},
	}

	// Down moves cursor
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = newM.(model)
	assert.Equal(t, 1, m.cursor)

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = newM.(model)
	assert.Equal(t, 2, m.cursor)

	// Can't go past end
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = newM.(model)
	assert.Equal(t, 2, m.cursor, "cursor should stop at end")

	// Up moves cursor back
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m = newM.(model)
	assert.Equal(t, 1, m.cursor)

	// Can't go before start
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m = newM.(model)
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	m = newM.(model)
	assert.Equal(t, 0, m.cursor, "cursor should stop at start")
}

func TestShelfFilter(t *testing.T) {
	m := initialModel()
	m.games = []gameInfo{
		{Name: "Portal", PlayState: db.StateCompleted},
		{Name: "Portal 2", PlayState: db.StatePlaying},
		{Name: "Half-Life 3"},
	}

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	m = newM.(model)
	assert.Equal(t, db.StatePlaying, m.shelfFilter)

	filtered := m.getFilteredGames()
	assert.Len(t, filtered, 1)
	assert.Equal(t, "Portal 2", filtered[0].Name)

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
	m = newM.(model)
	assert.Empty(t, m.shelfFilter)
	assert.Len(t, m.getFilteredGames(), 3)
}

func TestSearchFilter(t *testing.T) {
	m := initialModel()
	m.games = []gameInfo{
		{Name: "Portal"},
		{Name: "Portal 2"},
		{Name: "Half-Life"},
	}
	m.searchQuery = "portal"

	filtered := m.getFilteredGames()
	assert.Len(t, filtered, 2)
}

func TestSearchMode(t *testing.T) {
	m := initialModel()

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = newM.(model)
	assert.True(t, m.searching)

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = newM.(model)
	assert.Equal(t, "p", m.searchQuery)

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newM.(model)
	assert.False(t, m.searching)
	assert.Equal(t, "p", m.searchQuery, "query survives leaving search mode")
}

func TestNextShelfState(t *testing.T) {
	assert.Equal(t, db.StateWantToBuy, nextShelfState(""))
	assert.Equal(t, db.StateWantToPlay, nextShelfState(db.StateWantToBuy))
	assert.Equal(t, db.StatePlaying, nextShelfState(db.StateWantToPlay))
	assert.Equal(t, db.StateCompleted, nextShelfState(db.StatePlaying))
	assert.Equal(t, "", nextShelfState(db.StateCompleted))
	assert.Equal(t, db.StateWantToBuy, nextShelfState("garbage"))
}

func TestShelveCommand(t *testing.T) {
	m := initialModel()
	m.games = []gameInfo{{ID: 1, Name: "Portal"}}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.NotNil(t, cmd, "should return command to shelve")
}

func TestGamesMessage(t *testing.T) {
	m := initialModel()

	games := []gameInfo{
		{ID: 1, Name: "Portal", SortName: "portal", HasArtwork: true},
	}

	newM, _ := m.Update(gamesMsg{games: games})
	m = newM.(model)

	assert.Len(t, m.games, 1)
	assert.Equal(t, "Portal", m.games[0].Name)
	assert.True(t, m.games[0].HasArtwork)
}

func TestQuitCommand(t *testing.T) {
	m := initialModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd, "should return quit command")
}

func TestWindowSizeUpdate(t *testing.T) {
	m := initialModel()

	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = newM.(model)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}

func TestViewLoading(t *testing.T) {
	m := initialModel()
	// width 0 means not yet sized

	view := m.View()
	assert.Equal(t, "Loading...", view)
}
