// Package server provides the loopback HTTP plumbing for the Spotify
// OAuth2 authorization-code flow.
//
// When the user runs the auth command, a temporary server starts on the
// configured redirect address, serves exactly one /callback request,
// exchanges the authorization code for a token, and hands the result back
// over a channel so the CLI can shut the server down.
//
// The [Router] interface and [BasicRouter] keep handler registration and
// middleware application out of the OAuth handler itself; custom handlers
// implement [Handler] to register the routes they serve.
package server
