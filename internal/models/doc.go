// package models defines the data model shared by the catalog reconciliation engine.
//
// Value types only: tracks, playlists and albums as they come off the two
// services, plus the persisted review record and not-found record shapes.
// Persistence lives in internal/repositories.
package models
