// package services implements the remote music service clients.
//
// Spotify is the read-only source catalog; Tidal is the target catalog and
// the only side that gets mutated. Both are consumed by the engine through
// the capability-typed interfaces in services.go.
package services
