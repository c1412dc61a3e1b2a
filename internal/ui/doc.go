// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for reviewing Tidal playlists:
//  1. [PlaylistListView] : Browse the account's playlists
//  2. [TrackListView] : Inspect a playlist's tracks
//  3. [ConfirmDeleteView] : Confirm before deleting a playlist
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, y/n, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
