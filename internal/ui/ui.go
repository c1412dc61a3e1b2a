package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/services"
)

// ViewState identifies which view the model is rendering.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmDeleteView
)

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type tracksFetchedMsg struct {
	export *models.PlaylistExport
	err    error
}

type playlistDeletedMsg struct {
	id  string
	err error
}

var _ tea.Model = (*Model)(nil)

// Model is the top-level bubbletea model for the playlist browser.
type Model struct {
	ctx    context.Context
	target services.TargetService

	view          ViewState
	playlistList  list.Model
	trackList     list.Model
	playlists     []models.Playlist
	selected      *models.PlaylistExport
	pendingDelete *models.Playlist

	status string
	err    error

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// NewModel constructs the browser over the target service's playlists.
func NewModel(ctx context.Context, target services.TargetService) *Model {
	delegate := list.NewDefaultDelegate()

	playlistList := list.New(nil, delegate, 0, 0)
	playlistList.Title = "Playlists"
	playlistList.SetShowHelp(false)

	trackList := list.New(nil, delegate, 0, 0)
	trackList.SetShowHelp(false)

	return &Model{
		ctx:          ctx,
		target:       target,
		view:         PlaylistListView,
		playlistList: playlistList,
		trackList:    trackList,
		keys:         newKeyMap(),
		help:         help.New(),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.target.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		export, err := m.target.ExportPlaylist(m.ctx, playlistID)
		return tracksFetchedMsg{export: export, err: err}
	}
}

func (m *Model) deletePlaylist(playlistID string) tea.Cmd {
	return func() tea.Msg {
		err := m.target.DeletePlaylist(m.ctx, playlistID)
		return playlistDeletedMsg{id: playlistID, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width, msg.Height-4)
		m.trackList.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.playlists = msg.playlists
		m.playlistList.SetItems(playlistItems(msg.playlists))
		m.status = fmt.Sprintf("%d playlists", len(msg.playlists))
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.selected = msg.export
		items := make([]list.Item, 0, len(msg.export.Tracks))
		for _, track := range msg.export.Tracks {
			items = append(items, trackItem{track: track})
		}
		m.trackList.SetItems(items)
		m.trackList.Title = msg.export.Playlist.Name
		m.view = TrackListView
		return m, nil

	case playlistDeletedMsg:
		m.pendingDelete = nil
		m.view = PlaylistListView
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = "Playlist deleted"
		return m, m.fetchPlaylists()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch m.view {
	case PlaylistListView:
		switch {
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				m.err = nil
				return m, m.fetchTracks(item.playlist.ID)
			}
			return m, nil
		case key.Matches(msg, m.keys.delete):
			if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				playlist := item.playlist
				m.pendingDelete = &playlist
				m.view = ConfirmDeleteView
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd

	case TrackListView:
		if key.Matches(msg, m.keys.back) {
			m.view = PlaylistListView
			m.selected = nil
			return m, nil
		}
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd

	case ConfirmDeleteView:
		switch {
		case key.Matches(msg, m.keys.yes):
			if m.pendingDelete != nil {
				return m, m.deletePlaylist(m.pendingDelete.ID)
			}
			m.view = PlaylistListView
			return m, nil
		case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
			m.pendingDelete = nil
			m.view = PlaylistListView
			return m, nil
		}
	}

	return m, nil
}

func (m *Model) View() string {
	var body string

	switch m.view {
	case PlaylistListView:
		body = m.playlistList.View()
	case TrackListView:
		body = m.trackList.View()
	case ConfirmDeleteView:
		name := ""
		if m.pendingDelete != nil {
			name = m.pendingDelete.Name
		}
		body = styles.title.Render("Delete playlist") + "\n" +
			styles.warn.Render(fmt.Sprintf("Delete %q? This cannot be undone.", name)) + "\n\n" +
			styles.help.Render("y: delete • n/esc: cancel")
	}

	footer := ""
	if m.err != nil {
		footer = styles.err.Render("Error: " + m.err.Error())
	} else if m.status != "" {
		footer = styles.ok.Render(m.status)
	}

	return body + "\n" + footer + "\n" + m.help.View(m.keys)
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, 0, len(playlists))
	for _, playlist := range playlists {
		items = append(items, playlistItem{playlist: playlist})
	}
	return items
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, target services.TargetService) error {
	program := tea.NewProgram(NewModel(ctx, target), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
