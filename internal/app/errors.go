package app

import "errors"

// Error kinds returned by app operations. The HTTP layer maps these to
// status codes; everything else wraps one of them with detail.
var (
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFormat means the uploaded file is neither PDF, DOCX nor text.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrNoResume means retrieval was requested before any resume ingestion.
	ErrNoResume = errors.New("please upload your resume first")
	// ErrUpstream covers embedding, completion and search backend failures.
	ErrUpstream = errors.New("upstream service error")
	// ErrModelOutputInvalid means the model reply held no usable structured payload.
	ErrModelOutputInvalid = errors.New("model output invalid")
	// ErrNotFound covers missing accounts, plans and profiles.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the supplied credentials are wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAlreadyExists means the contact is already registered.
	ErrAlreadyExists = errors.New("account already exists")
)
