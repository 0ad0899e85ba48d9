// Package services implements the two remote collaborators of a sync run.
//
// # Spotify
//
// [SpotifyService] implements [TokenProvider] and [TrackFetcher].
//
// Access tokens are obtained with a refresh-token grant through [oauth2.Config.TokenSource], which sends the
// client credentials as an HTTP Basic authorization header. The same [oauth2.Config] backs the interactive
// authorization-code flow served by the server package.
//
// Top tracks are read from /me/top/tracks with a bearer token and mapped to [models.TrackRecord] by
// [ToTrackRecord], preserving the API's ordering.
//
// # Notion
//
// [NotionService] implements [RecordWriter]. Each record becomes one POST /pages request whose properties are
// built by [NotionService.Properties]. Optional properties (release date, album cover) are omitted when the
// record has no value for them.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAuthFailed] : token endpoint returned an error or no access token
//   - [shared.ErrFetchFailed] : top-tracks request failed or had no item list
//   - [shared.ErrWriteFailed] : page creation failed; wraps [NotionError] when Notion returned an error body
package services
