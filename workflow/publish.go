package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/metrics"
	"github.com/ruteri/legal-document-registry/storage"
)

// State is the position of a publish workflow in its lifecycle.
type State int

const (
	StateEditing State = iota
	StateValidating
	StateUploading
	StateSubmitting
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateSubmitting:
		return "submitting"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for candidate := StateEditing; candidate <= StateFailed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown workflow state %q", text)
}

const (
	DefaultUploadTimeout = 2 * time.Minute
	DefaultSubmitTimeout = 3 * time.Minute
	DefaultFetchTimeout  = 30 * time.Second
)

// Timeouts bound each network step of a submission.
type Timeouts struct {
	Upload time.Duration
	Submit time.Duration
	Fetch  time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Upload <= 0 {
		t.Upload = DefaultUploadTimeout
	}
	if t.Submit <= 0 {
		t.Submit = DefaultSubmitTimeout
	}
	if t.Fetch <= 0 {
		t.Fetch = DefaultFetchTimeout
	}
	return t
}

// Result describes a confirmed publication.
type Result struct {
	ContentHash  string                     `json:"contentHash"`
	PageCount    int                        `json:"pageCount,omitempty"`
	Confirmation *interfaces.Confirmation   `json:"confirmation"`
	Record       *interfaces.DocumentRecord `json:"record,omitempty"`

	// FollowUpErr is set when the record could not be read back after
	// confirmation. The publication itself stands.
	FollowUpErr error `json:"-"`
}

// Publisher creates publish workflows sharing one store, registry and file policy.
type Publisher struct {
	store    interfaces.ContentStore
	registry interfaces.DocumentRegistry
	policy   *storage.FilePolicy
	timeouts Timeouts
	log      *slog.Logger
}

// NewPublisher creates a publisher. A nil policy accepts the default document types and size.
func NewPublisher(store interfaces.ContentStore, registry interfaces.DocumentRegistry, policy *storage.FilePolicy, timeouts Timeouts, log *slog.Logger) *Publisher {
	if policy == nil {
		policy = storage.NewFilePolicy(0, nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		store:    store,
		registry: registry,
		policy:   policy,
		timeouts: timeouts.withDefaults(),
		log:      log,
	}
}

// Policy returns the file policy applied on submit.
func (p *Publisher) Policy() *storage.FilePolicy {
	return p.policy
}

// NewWorkflow starts a workflow with an empty form.
func (p *Publisher) NewWorkflow() *PublishWorkflow {
	return &PublishWorkflow{publisher: p}
}

// PublishWorkflow takes a single form from editing through upload and
// registry submission. Methods are safe for concurrent use; a submission in
// flight rejects every other mutation with interfaces.ErrSubmissionInFlight.
type PublishWorkflow struct {
	publisher *Publisher
	inFlight  atomic.Bool

	mu      sync.Mutex
	state   State
	form    PublishForm
	lastErr error
	last    *Result
}

// Snapshot is a point-in-time copy of a workflow.
type Snapshot struct {
	State State
	Form  PublishForm
	Err   error
	Last  *Result
}

// Snapshot returns the current state, form, last error and last result.
func (w *PublishWorkflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State: w.state,
		Form:  w.form.clone(),
		Err:   w.lastErr,
		Last:  w.last,
	}
}

// State returns the current state.
func (w *PublishWorkflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Apply updates form fields.
func (w *PublishWorkflow) Apply(patch FormPatch) error {
	return w.edit(func(f *PublishForm) { patch.apply(f) })
}

// AttachFile sets the file to publish, replacing any earlier one.
func (w *PublishWorkflow) AttachFile(file interfaces.FileUpload) error {
	return w.edit(func(f *PublishForm) { f.File = &file })
}

// Reset discards the form.
func (w *PublishWorkflow) Reset() error {
	return w.edit(func(f *PublishForm) { *f = PublishForm{} })
}

// edit applies fn unless a submission is in flight. The flag is checked
// under mu, where Submit also sets it.
func (w *PublishWorkflow) edit(fn func(*PublishForm)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight.Load() {
		return interfaces.ErrSubmissionInFlight
	}
	fn(&w.form)
	w.state = StateEditing
	w.lastErr = nil
	return nil
}

func (w *PublishWorkflow) transition(state State, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = state
	w.lastErr = err
}

// Submit validates the form, uploads the file and publishes the record.
//
// Validation failures return a *interfaces.ValidationError and leave the
// workflow in StateEditing. Upload and registry failures move it to
// StateFailed with the form preserved. On success the form is cleared and the
// workflow is in StateConfirmed.
func (w *PublishWorkflow) Submit(ctx context.Context) (result *Result, err error) {
	w.mu.Lock()
	if !w.inFlight.CompareAndSwap(false, true) {
		w.mu.Unlock()
		return nil, interfaces.ErrSubmissionInFlight
	}
	w.state = StateValidating
	w.lastErr = nil
	form := w.form.clone()
	w.mu.Unlock()
	defer w.inFlight.Store(false)

	p := w.publisher
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Submission panicked", "panic", r)
			err = fmt.Errorf("%w: %v", interfaces.ErrSubmission, r)
			result = nil
			w.transition(StateFailed, err)
		}
		metrics.RecordSubmission(err)
	}()

	if err := form.Validate(p.policy); err != nil {
		w.transition(StateEditing, err)
		return nil, err
	}

	file := *form.File
	p.policy.Normalize(&file)

	w.transition(StateUploading, nil)
	contentHash, err := p.upload(ctx, file)
	if err != nil {
		err = submissionError(err)
		w.transition(StateFailed, err)
		return nil, err
	}

	result = &Result{ContentHash: contentHash}
	if storage.Extension(file.Name) == "pdf" {
		if pages, perr := storage.PageCount(file.Data); perr != nil {
			p.log.Debug("Could not count pages", "err", perr, slog.String("file", file.Name))
		} else {
			result.PageCount = pages
		}
	}

	w.transition(StateSubmitting, nil)
	submitCtx, cancel := context.WithTimeout(ctx, p.timeouts.Submit)
	confirmation, err := p.registry.Publish(submitCtx, form.Title, form.DocType, form.Jurisdiction, contentHash)
	cancel()
	if err != nil {
		err = submissionError(err)
		p.log.Warn("Registry rejected publication",
			"err", err,
			slog.String("title", form.Title),
			slog.String("contentHash", contentHash))
		w.transition(StateFailed, err)
		return nil, err
	}
	result.Confirmation = confirmation

	if confirmation.DocumentID != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, p.timeouts.Fetch)
		result.Record, result.FollowUpErr = p.registry.Get(fetchCtx, *confirmation.DocumentID)
		cancel()
		if result.FollowUpErr != nil {
			p.log.Warn("Could not read back published document",
				"err", result.FollowUpErr,
				slog.String("documentID", confirmation.DocumentID.String()))
		}
	} else {
		p.log.Warn("Publication confirmed without document id",
			slog.String("txHash", confirmation.TxHash.Hex()))
	}

	p.log.Info("Document published",
		slog.String("title", form.Title),
		slog.String("contentHash", contentHash),
		slog.String("txHash", confirmation.TxHash.Hex()))

	w.mu.Lock()
	w.state = StateConfirmed
	w.lastErr = nil
	w.form = PublishForm{}
	w.last = result
	w.mu.Unlock()

	return result, nil
}

func (p *Publisher) upload(ctx context.Context, file interfaces.FileUpload) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, p.timeouts.Upload)
	defer cancel()

	start := time.Now()
	contentHash, err := p.store.Upload(uploadCtx, file)
	metrics.RecordUpload(p.store.Name(), file.Size(), err, time.Since(start))
	if err != nil {
		p.log.Warn("Upload failed",
			"err", err,
			slog.String("store", p.store.Name()),
			slog.String("file", file.Name))
		return "", err
	}
	return contentHash, nil
}

var knownErrors = []error{
	interfaces.ErrConfig,
	interfaces.ErrValidation,
	interfaces.ErrUpload,
	interfaces.ErrDuplicateRecord,
	interfaces.ErrNotFound,
	interfaces.ErrNotAuthorized,
	interfaces.ErrRegistryCall,
	interfaces.ErrSubmission,
}

// submissionError reports unclassified failures as interfaces.ErrSubmission.
func submissionError(err error) error {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", interfaces.ErrSubmission, err)
}

// Publish runs a one-shot submission of form.
func (p *Publisher) Publish(ctx context.Context, form PublishForm) (*Result, error) {
	w := p.NewWorkflow()
	w.form = form.clone()
	return w.Submit(ctx)
}
