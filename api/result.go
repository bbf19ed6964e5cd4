package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-elearn-client/internal/errors"
)

type Kind string

const (
	KindSuccess        Kind = "success"
	KindFailure        Kind = "failure"
	KindSessionExpired Kind = "session_expired"
)

// FailureKind classifies a failed request
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTransport FailureKind = "transport"
	FailureBusiness  FailureKind = "business"
	FailureExpired   FailureKind = "expired"
	FailureForbidden FailureKind = "forbidden"
)

// Result is the outcome of one request through the client.
// Exactly one of the three kinds applies; Envelope holds the backend body when there was one.
type Result struct {
	Kind        Kind
	FailureKind FailureKind
	StatusCode  int
	Message     string
	Envelope    Envelope
	Cause       error
}

func Success(statusCode int, env Envelope) Result {
	return Result{Kind: KindSuccess, StatusCode: statusCode, Message: env.Message, Envelope: env}
}

func Failure(kind FailureKind, statusCode int, message string, env Envelope) Result {
	return Result{Kind: KindFailure, FailureKind: kind, StatusCode: statusCode, Message: message, Envelope: env}
}

func TransportFailure(err error) Result {
	return Result{Kind: KindFailure, FailureKind: FailureTransport, Message: err.Error(), Cause: err}
}

func SessionExpired() Result {
	return Result{Kind: KindSessionExpired, StatusCode: http.StatusUnauthorized, Message: SessionExpiredMessage}
}

func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// Terminal reports whether the caller must not retry
func (r Result) Terminal() bool {
	return r.Kind == KindSessionExpired
}

// Decode unmarshals the envelope data into out
func (r Result) Decode(out any) error {
	if out == nil || len(r.Envelope.Data) == 0 || string(r.Envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Envelope.Data, out); err != nil {
		return apperrors.Wrapf(apperrors.ErrBadResponse, "decode data: %v", err)
	}
	return nil
}

// Err maps a non-success result to a wrapped sentinel error, nil on success
func (r Result) Err() error {
	switch r.Kind {
	case KindSuccess:
		return nil
	case KindSessionExpired:
		return apperrors.Wrapf(apperrors.ErrSessionExpired, "%s", r.Message)
	}

	var sentinel error
	switch r.FailureKind {
	case FailureTransport:
		sentinel = apperrors.ErrTransport
	case FailureExpired:
		sentinel = apperrors.ErrUnauthorized
	case FailureForbidden:
		sentinel = apperrors.ErrForbidden
	default:
		switch r.StatusCode {
		case http.StatusUnauthorized:
			sentinel = apperrors.ErrUnauthorized
		case http.StatusNotFound:
			sentinel = apperrors.ErrNotFound
		case http.StatusConflict:
			sentinel = apperrors.ErrConflict
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			sentinel = apperrors.ErrInvalidRequest
		default:
			sentinel = apperrors.ErrBackend
		}
	}
	return apperrors.Wrapf(sentinel, "%s", r.Message)
}
