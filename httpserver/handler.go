package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/ruteri/legal-document-registry/api"
	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/storage"
	"github.com/ruteri/legal-document-registry/workflow"
)

const (
	// maxBodySize is the maximum allowed JSON request body size (1MB).
	maxBodySize = 1024 * 1024

	// multipartOverhead is allowed on top of the file limit for form fields and boundaries.
	multipartOverhead = 1024 * 1024
)

// Handler serves the document registry API.
type Handler struct {
	publisher  *workflow.Publisher
	lister     *workflow.Lister
	registry   interfaces.DocumentRegistry
	drafts     *draftStore
	gatewayURL string
	log        *slog.Logger
}

// NewHandler creates a handler. maxDrafts bounds the drafts kept in memory;
// gatewayURL is the base used to link content hashes.
func NewHandler(publisher *workflow.Publisher, lister *workflow.Lister, registry interfaces.DocumentRegistry, maxDrafts int, gatewayURL string, log *slog.Logger) *Handler {
	return &Handler{
		publisher:  publisher,
		lister:     lister,
		registry:   registry,
		drafts:     newDraftStore(maxDrafts),
		gatewayURL: gatewayURL,
		log:        log,
	}
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrDuplicateRecord), errors.Is(err, interfaces.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrUpload), errors.Is(err, interfaces.ErrRegistryCall):
		return http.StatusBadGateway
	case errors.Is(err, interfaces.ErrConfig):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrDraftLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func toErrorResponse(err error) *api.ErrorResponse {
	resp := &api.ErrorResponse{Error: err.Error()}
	var verr *interfaces.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	return resp
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "err", err, slog.Int("status", status))
	}
	h.writeJSON(w, status, toErrorResponse(err))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) documentView(record *interfaces.DocumentRecord) *api.DocumentView {
	return api.NewDocumentView(record, h.gatewayURL)
}

func (h *Handler) publishView(result *workflow.Result) *api.PublishView {
	if result == nil {
		return nil
	}
	view := &api.PublishView{
		ContentHash:  result.ContentHash,
		PageCount:    result.PageCount,
		Confirmation: result.Confirmation,
		Document:     h.documentView(result.Record),
	}
	if result.FollowUpErr != nil {
		view.FollowUp = result.FollowUpErr.Error()
	}
	return view
}

func (h *Handler) draftView(id uuid.UUID, wf *workflow.PublishWorkflow) *api.DraftView {
	snapshot := wf.Snapshot()
	view := &api.DraftView{
		ID:     id,
		State:  snapshot.State,
		Form:   snapshot.Form,
		Result: h.publishView(snapshot.Last),
	}
	if f := snapshot.Form.File; f != nil {
		view.File = &api.FileView{Name: f.Name, ContentType: f.ContentType, Size: f.Size()}
	}
	if snapshot.Err != nil {
		view.Error = toErrorResponse(snapshot.Err)
	}
	return view
}

func documentIDParam(r *http.Request) (interfaces.DocumentID, error) {
	id, err := interfaces.NewDocumentIDFromHex(r.PathValue("id"))
	if err != nil {
		verr := interfaces.NewValidationError()
		verr.Add("id", err.Error())
		return interfaces.DocumentID{}, verr
	}
	return id, nil
}

func (h *Handler) draftParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, *workflow.PublishWorkflow, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		verr := interfaces.NewValidationError()
		verr.Add("id", "invalid draft id")
		h.writeError(w, verr)
		return uuid.Nil, nil, false
	}
	wf, ok := h.drafts.get(id)
	if !ok {
		h.writeError(w, fmt.Errorf("%w: draft %s", interfaces.ErrNotFound, id))
		return uuid.Nil, nil, false
	}
	return id, wf, true
}

// readFile reads the multipart "file" part, enforcing the upload limit.
func (h *Handler) readFile(w http.ResponseWriter, r *http.Request) (*interfaces.FileUpload, error) {
	maxSize := h.publisher.Policy().MaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		verr := interfaces.NewValidationError()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			verr.Add(storage.FileField, fmt.Sprintf("file exceeds the maximum size of %s", units.BytesSize(float64(maxSize))))
		} else {
			verr.Add(storage.FileField, "invalid multipart form: "+err.Error())
		}
		return nil, verr
	}

	f, header, err := r.FormFile(storage.FileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &interfaces.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// HandleCreateDraft opens an empty draft.
//
// URL format: POST /api/drafts
func (h *Handler) HandleCreateDraft(w http.ResponseWriter, r *http.Request) {
	id, wf, err := h.drafts.create(h.publisher)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Debug("Draft created", slog.String("draftID", id.String()))
	h.writeJSON(w, http.StatusCreated, h.draftView(id, wf))
}

// HandleGetDraft returns the draft's form, state, last error and last result.
//
// URL format: GET /api/drafts/{id}
func (h *Handler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, wf, ok := h.draftParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.draftView(id, wf))
}

// HandleUpdateDraft applies a JSON field patch.
//
// URL format: PATCH /api/drafts/{id}
func (h *Handler) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, wf, ok := h.draftParam(w, r)
	if !ok {
		return
	}

	var patch workflow.FormPatch
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		verr := interfaces.NewValidationError()
		verr.Add("body", "invalid JSON: "+err.Error())
		h.writeError(w, verr)
		return
	}

	if err := wf.Apply(patch); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.draftView(id, wf))
}

// HandleAttachFile sets the draft's file from the multipart "file" field.
//
// URL format: PUT /api/drafts/{id}/file
func (h *Handler) HandleAttachFile(w http.ResponseWriter, r *http.Request) {
	id, wf, ok := h.draftParam(w, r)
	if !ok {
		return
	}

	file, err := h.readFile(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if file == nil {
		verr := interfaces.NewValidationError()
		verr.Add(storage.FileField, "file is required")
		h.writeError(w, verr)
		return
	}

	if err := wf.AttachFile(*file); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.draftView(id, wf))
}

// HandleSubmitDraft validates, uploads and publishes the draft.
//
// URL format: POST /api/drafts/{id}/submit
func (h *Handler) HandleSubmitDraft(w http.ResponseWriter, r *http.Request) {
	_, wf, ok := h.draftParam(w, r)
	if !ok {
		return
	}

	// A started submission outlives the request; the workflow deadlines bound it.
	result, err := wf.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.publishView(result))
}

// HandleDeleteDraft discards a draft. Drafts with a submission in flight are kept.
//
// URL format: DELETE /api/drafts/{id}
func (h *Handler) HandleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, wf, ok := h.draftParam(w, r)
	if !ok {
		return
	}
	if err := wf.Reset(); err != nil {
		h.writeError(w, err)
		return
	}
	h.drafts.delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// HandlePublish publishes a document in one request.
//
// URL format: POST /api/documents
// Request body: multipart form with the form fields and a "file" part.
// Tags are comma separated.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	file, err := h.readFile(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	form := workflow.PublishForm{
		Title:          r.FormValue("title"),
		DocType:        r.FormValue("docType"),
		Jurisdiction:   r.FormValue("jurisdiction"),
		Author:         r.FormValue("author"),
		EffectiveDate:  r.FormValue("effectiveDate"),
		ExpirationDate: r.FormValue("expirationDate"),
		Description:    r.FormValue("description"),
		Category:       r.FormValue("category"),
		Tags:           splitTags(r.FormValue("tags")),
		File:           file,
	}

	result, err := h.publisher.Publish(context.WithoutCancel(r.Context()), form)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.publishView(result))
}

func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// HandleListDocuments lists every published document.
//
// URL format: GET /api/documents
func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	listing, err := h.lister.Load(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make([]api.ListingEntryView, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		views = append(views, api.NewListingEntryView(e, h.gatewayURL))
	}
	h.writeJSON(w, http.StatusOK, views)
}

// HandleGetDocument returns a single record.
//
// URL format: GET /api/documents/{id}
func (h *Handler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := documentIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	record, err := h.registry.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.documentView(record))
}

// HandleRevokeDocument revokes a record published by the server's signer.
//
// URL format: POST /api/documents/{id}/revoke
func (h *Handler) HandleRevokeDocument(w http.ResponseWriter, r *http.Request) {
	id, err := documentIDParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	confirmation, err := h.registry.Revoke(context.WithoutCancel(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("Document revoked",
		slog.String("documentID", id.String()),
		slog.String("txHash", confirmation.TxHash.Hex()))
	h.writeJSON(w, http.StatusOK, confirmation)
}

// HandleVerify checks a content hash, timestamp and publisher triple.
//
// URL format: GET /api/verify?contentHash=...&timestamp=...&publisher=0x...
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	verr := interfaces.NewValidationError()

	contentHash := query.Get("contentHash")
	if contentHash == "" {
		verr.Add("contentHash", "is required")
	}
	timestamp, err := strconv.ParseUint(query.Get("timestamp"), 10, 64)
	if err != nil {
		verr.Add("timestamp", "must be seconds since epoch")
	}
	publisher := query.Get("publisher")
	if !common.IsHexAddress(publisher) {
		verr.Add("publisher", "must be a hex address")
	}
	if verr.HasErrors() {
		h.writeError(w, verr)
		return
	}

	valid, err := h.registry.Verify(r.Context(), contentHash, timestamp, common.HexToAddress(publisher))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.VerifyResponse{Valid: valid})
}

// HandleInfo reports the upload constraints clients must respect.
//
// URL format: GET /api/info
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	policy := h.publisher.Policy()
	h.writeJSON(w, http.StatusOK, api.InfoResponse{
		MaxUploadSize: policy.MaxSize(),
		AllowedTypes:  policy.Allowed(),
		OpenDrafts:    h.drafts.len(),
	})
}
