package viewstate

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ResetDelay is how long the contact form shows its sent state.
const ResetDelay = 3000 * time.Millisecond

const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// ContactFields lists the form inputs in display order.
var ContactFields = []string{FieldName, FieldEmail, FieldSubject, FieldMessage} //nolint:gochecknoglobals

var (
	ErrUnknownField  = errors.New("unknown contact field")
	ErrSubmitPending = errors.New("contact form already submitted")
	ErrFormClosed    = errors.New("contact form closed")
)

// MissingFieldsError reports required inputs that were left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "required contact fields missing: " + strings.Join(e.Fields, ", ")
}

type ContactValues struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (v ContactValues) Get(field string) string {
	switch field {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldSubject:
		return v.Subject
	case FieldMessage:
		return v.Message
	default:
		return ""
	}
}

// ContactForm simulates a contact submission. Nothing is sent or stored;
// Submit only flips the submitted flag, which reverts after ResetDelay.
type ContactForm struct {
	mu        sync.Mutex
	values    ContactValues
	submitted bool
	closed    bool
	// generation guards against a revert callback from an earlier submit.
	generation uint64
	timer      Timer
	scheduler  Scheduler
	delay      time.Duration
}

func NewContactForm(scheduler Scheduler) *ContactForm {
	if scheduler == nil {
		scheduler = WallClock()
	}

	return &ContactForm{scheduler: scheduler, delay: ResetDelay}
}

func (f *ContactForm) Set(field string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldName:
		f.values.Name = value
	case FieldEmail:
		f.values.Email = value
	case FieldSubject:
		f.values.Subject = value
	case FieldMessage:
		f.values.Message = value
	default:
		return ErrUnknownField
	}

	return nil
}

func (f *ContactForm) Values() ContactValues {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.values
}

func (f *ContactForm) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.submitted
}

// SubmitDisabled reports whether the submit control should be inert.
func (f *ContactForm) SubmitDisabled() bool {
	return f.Submitted()
}

// Submit marks the form as sent and schedules the revert.
func (f *ContactForm) Submit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFormClosed
	}
	if f.submitted {
		return ErrSubmitPending
	}

	var missing []string
	for _, field := range ContactFields {
		if f.values.Get(field) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	f.submitted = true
	f.generation++
	gen := f.generation
	f.timer = f.scheduler.AfterFunc(f.delay, func() { f.revert(gen) })

	return nil
}

func (f *ContactForm) revert(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.generation {
		return
	}

	f.submitted = false
	f.timer = nil
}

// Close cancels any pending revert. Later submits fail with ErrFormClosed.
func (f *ContactForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
