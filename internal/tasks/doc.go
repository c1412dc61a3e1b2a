// package tasks implements the catalog reconciliation engine.
//
// The core abstraction is Engine, which drives the Tidal library toward
// parity with a Spotify library: a review-gated migration of saved tracks,
// an ungated favorites sync, a bulk playlist sweep, a playlist-to-album
// conversion, and a fuzzy resolver pass over the album not-found log.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks
