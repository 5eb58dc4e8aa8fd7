/*
Package clients provides a Go client for the legal document registry HTTP API.

DocumentClient covers every endpoint served by registry-server:

  - CreateDraft, GetDraft, UpdateDraft, AttachFile, SubmitDraft, DeleteDraft
    drive a server-side publish workflow step by step
  - Publish validates, uploads and records a document in one request
  - ListDocuments, GetDocument, RevokeDocument and Verify query and modify the registry
  - Info reports the upload constraints

Failures come back as *interfaces.ValidationError when the server rejected
form fields, and as *APIError otherwise. APIError matches the interfaces
error kinds with errors.Is, so callers handle remote and in-process failures
the same way:

	view, err := client.Publish(ctx, form)
	if errors.Is(err, interfaces.ErrDuplicateRecord) {
	    // already published
	}
*/
package clients
