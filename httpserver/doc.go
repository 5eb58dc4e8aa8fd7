/*
Package httpserver implements the HTTP API of the legal document registry.

Clients prepare a document in a server-side draft, attach its file and
submit it. Submission validates the form, uploads the file to the content
store and publishes the record in the on-chain registry. The same flow is
available as a single multipart request.

# API Endpoints

Drafts:

  - POST /api/drafts - open an empty draft
  - GET /api/drafts/{id} - draft state, form, last error and last result
  - PATCH /api/drafts/{id} - update form fields (JSON)
  - PUT /api/drafts/{id}/file - attach the file (multipart field "file")
  - POST /api/drafts/{id}/submit - validate, upload and publish
  - DELETE /api/drafts/{id} - discard the draft

Documents:

  - POST /api/documents - publish in one request (multipart form)
  - GET /api/documents - list every published document
  - GET /api/documents/{id} - fetch one record
  - POST /api/documents/{id}/revoke - revoke a record
  - GET /api/verify?contentHash=&timestamp=&publisher= - verify a triple
  - GET /api/info - upload limits

Health and diagnostics:

  - GET /livez, /readyz, /drain, /undrain
  - /debug/pprof when enabled

# Errors

Errors are returned as {"error": "...", "fields": {...}}, with status codes
following the error kind:

  - 400 validation failures, with per-field messages
  - 403 not authorized
  - 404 unknown draft or document
  - 409 duplicate record or submission already in flight
  - 429 draft limit reached
  - 502 content store or registry failure
  - 503 missing configuration such as credentials or signer
  - 500 anything else

# Usage

	handler := httpserver.NewHandler(publisher, lister, registry, cfg.Workflow.MaxDrafts, cfg.Storage.GatewayURL, logger)
	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
	    ListenAddr:  ":8080",
	    MetricsAddr: ":8090",
	    Log:         logger,
	}, handler)
	if err != nil {
	    return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package httpserver
