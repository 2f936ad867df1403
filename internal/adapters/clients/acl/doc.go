// Package acl is the anti-corruption layer between remote quote feeds and
// the domain model.
//
// Every feed has its own dialect of field names, error envelopes, and
// status code habits. None of it is allowed past this package: adapters
// built here hand the rest of the codebase domain types and domain errors
// only.
//
// # Building an adapter
//
// Embed [BaseAdapter] to get the resilient HTTP plumbing. Its Get and Post
// helpers run through the retrying, circuit-breaking client and surface
// failures as domain errors. Keep the feed's wire structs unexported,
// decode them with [DecodeResponse], and convert with a [Translator],
// using [TranslateSlice] for list payloads. [ValidateRequired] and
// [ValidatePositive] guard translated values. [PlaceholderClient] shows
// the full shape: it pulls posts from the placeholder API as quotes and
// publishes local quotes back.
//
// # Error translation
//
// A failed call can carry information in three places: the transport
// error, the HTTP status, and a JSON error body. [MapHTTPError] folds all
// three into a single domain error. 404 becomes [domain.ErrNotFound], 409
// [domain.ErrConflict], 400 and 422 [domain.ErrValidation], 401 and 403
// [domain.ErrForbidden], and everything 5xx [domain.ErrUnavailable].
// Transport failures, [clients.ErrCircuitOpen], and
// [clients.ErrMaxRetriesExceeded] also come back as
// [domain.ErrUnavailable]. Feeds that report symbolic codes rather than
// meaningful statuses go through [MapExternalCode].
package acl
