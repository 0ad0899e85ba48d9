// Package server runs the local HTTP server used once to obtain a Spotify refresh token.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] uses [http.ServeMux] internally; [Middleware] is applied in reverse order
// (last added executes first). [RequestLogger] logs each request at debug level.
//
// # OAuth Handler
//
// [OAuthHandler] serves two routes:
//   - /login redirects to the Spotify consent page with client_id, scope, redirect_uri and state
//   - /callback validates state, exchanges the code, and sends an [OAuthResult] on its channel
//
// Only the first callback is processed; later requests are rejected.
//
// # Listener
//
// [Listen] binds the configured address before returning and serves in a goroutine.
// The CLI waits on [OAuthHandler.Result], a serve error, or its timeout, then calls [Listener.Shutdown].
package server
