// package formatter renders run reports and playlist previews for terminal output
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/stx-music/stx/internal/models"
	"github.com/stx-music/stx/internal/tasks"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
)

// row renders a single "label: value" line with aligned labels.
func row(label string, value int) string {
	return fmt.Sprintf("  %s %d\n", labelStyle.Render(fmt.Sprintf("%-18s", label+":")), value)
}

// failRow renders like row but highlights non-zero failure counts.
func failRow(label string, value int) string {
	if value == 0 {
		return row(label, value)
	}
	return fmt.Sprintf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", label+":")), failStyle.Render(fmt.Sprintf("%d", value)))
}

// FormatMigration renders a migration run summary.
func FormatMigration(report *tasks.MigrationReport) string {
	var buf strings.Builder
	buf.WriteString(headerStyle.Render("Migration complete") + "\n")
	buf.WriteString(row("Artists", report.Artists))
	buf.WriteString(row("Reviewed", report.Reviewed))
	buf.WriteString(row("Approved", report.Approved))
	buf.WriteString(row("Declined", report.Declined))
	buf.WriteString(row("Skipped (present)", report.SkippedPresent))
	buf.WriteString(row("Skipped (declined)", report.SkippedDeclined))
	buf.WriteString(row("Tracks favorited", report.TracksFavorited))
	buf.WriteString(row("Tracks unmatched", report.TracksUnmatched))
	buf.WriteString(row("Albums favorited", report.AlbumsFavorited))
	buf.WriteString(row("Albums not found", report.AlbumsNotFound))
	buf.WriteString(failRow("Failed", report.Failed))
	return buf.String()
}

// FormatSync renders a favorites sync run summary.
func FormatSync(report *tasks.SyncReport) string {
	var buf strings.Builder
	buf.WriteString(headerStyle.Render("Sync complete") + "\n")
	buf.WriteString(row("Saved tracks", report.SavedTracks))
	buf.WriteString(row("Already present", report.AlreadyPresent))
	buf.WriteString(row("Favorited", report.Favorited))
	buf.WriteString(row("Unmatched", report.Unmatched))
	buf.WriteString(failRow("Failed", report.Failed))
	return buf.String()
}

// FormatSweep renders a playlist sweep run summary.
func FormatSweep(report *tasks.SweepReport) string {
	var buf strings.Builder
	buf.WriteString(headerStyle.Render("Sweep complete") + "\n")
	buf.WriteString(row("Playlists", report.Playlists))
	buf.WriteString(row("Tracks", report.Tracks))
	buf.WriteString(row("Already present", report.AlreadyPresent))
	buf.WriteString(row("Favorited", report.Favorited))
	buf.WriteString(row("Unmatched", report.Unmatched))
	buf.WriteString(failRow("Failed", report.Failed))
	return buf.String()
}

// FormatConvert renders a playlist-to-album conversion summary.
func FormatConvert(report *tasks.ConvertReport) string {
	var buf strings.Builder
	buf.WriteString(headerStyle.Render("Convert complete") + "\n")
	buf.WriteString(row("Playlists", report.Playlists))
	buf.WriteString(row("Albums favorited", report.AlbumsFavorited))
	buf.WriteString(failRow("Failed", report.Failed))
	return buf.String()
}

// FormatFuzzy renders a not-found resolver pass summary.
func FormatFuzzy(report *tasks.FuzzyReport) string {
	var buf strings.Builder
	buf.WriteString(headerStyle.Render("Fuzzy resolution complete") + "\n")
	buf.WriteString(row("Records", report.Records))
	buf.WriteString(row("Resolved", report.Resolved))
	buf.WriteString(row("Declined", report.Declined))
	buf.WriteString(row("Below threshold", report.BelowThreshold))
	buf.WriteString(failRow("Failed", report.Failed))
	buf.WriteString(row("Remaining", report.Residual))
	return buf.String()
}

// FormatPlaylists renders a numbered playlist listing.
func FormatPlaylists(playlists []models.Playlist) string {
	if len(playlists) == 0 {
		return labelStyle.Render("No playlists found") + "\n"
	}
	var buf strings.Builder
	buf.WriteString(headerStyle.Render(fmt.Sprintf("Playlists (%d)", len(playlists))) + "\n")
	for i, playlist := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, playlist.Name,
			labelStyle.Render(fmt.Sprintf("(%d tracks)", playlist.TrackCount))))
	}
	return buf.String()
}

// FormatTracks renders a playlist export as a numbered track listing.
func FormatTracks(export *models.PlaylistExport) string {
	var buf strings.Builder
	buf.WriteString(headerStyle.Render(export.Playlist.Name) + "\n")
	if export.Playlist.Description != "" {
		buf.WriteString(labelStyle.Render(export.Playlist.Description) + "\n")
	}
	for i, track := range export.Tracks {
		line := fmt.Sprintf("%d. %s - %s", i+1, track.Artist, track.Title)
		if track.Album != "" {
			line += labelStyle.Render(fmt.Sprintf(" (%s)", track.Album))
		}
		buf.WriteString(line + "\n")
	}
	buf.WriteString(okStyle.Render(fmt.Sprintf("%d tracks", len(export.Tracks))) + "\n")
	return buf.String()
}
