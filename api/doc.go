/*
Package api holds the wire types of the legal document registry HTTP API.

The server side lives in the httpserver package; the clients subpackage
provides a Go client for the same endpoints.

# Responses

Successful responses are JSON encodings of the types in this package:

  - DraftView for the /api/drafts endpoints
  - PublishView for draft submission and one-shot publishing
  - ListingEntryView (as a list) and DocumentView for /api/documents
  - interfaces.Confirmation for revocation
  - VerifyResponse and InfoResponse

Every failure carries an ErrorResponse. Validation failures populate its
Fields map keyed by form field name.
*/
package api
