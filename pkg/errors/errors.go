// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the class of an error. Remote faults are assigned a Kind once, when
// they are first received from vCenter, and everything else branches on it.
type Kind uint8

const (
	// KindUnknown is an error that was never classified.
	KindUnknown Kind = iota

	// KindUser is a user or configuration error. It is never retried.
	KindUser

	// KindNotFound indicates a referenced object does not exist.
	KindNotFound

	// KindTransient is a communication or backend fault that may succeed on
	// a later attempt.
	KindTransient

	// KindVanished indicates an object was removed between being listed and
	// being fetched.
	KindVanished

	// KindNotConfigured indicates a machine has not yet exposed its
	// configuration.
	KindNotConfigured

	// KindStillBooting is returned once the attempts for KindNotConfigured
	// are exhausted.
	KindStillBooting

	// KindGuest is a fault raised by a guest operation. It is never retried.
	KindGuest

	// KindInternal is a malformed request rejected by vCenter. It indicates a
	// defect in the reconciler and is never retried.
	KindInternal

	// KindExhausted is returned once the attempts for a retryable fault are
	// exhausted.
	KindExhausted
)

// String returns the stringified name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "User"
	case KindNotFound:
		return "NotFound"
	case KindTransient:
		return "Transient"
	case KindVanished:
		return "Vanished"
	case KindNotConfigured:
		return "NotConfigured"
	case KindStillBooting:
		return "StillBooting"
	case KindGuest:
		return "Guest"
	case KindInternal:
		return "Internal"
	case KindExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// GuestReason distinguishes the guest faults that are reported to users.
type GuestReason uint8

const (
	GuestReasonNone GuestReason = iota
	GuestReasonToolsOutOfDate
	GuestReasonInvalidLogin
	GuestReasonOperationDisabled
	GuestReasonOperationNotSupported
)

// String returns a description of the reason that is suitable for users.
func (r GuestReason) String() string {
	switch r {
	case GuestReasonToolsOutOfDate:
		return "VMware Tools in the guest are out of date"
	case GuestReasonInvalidLogin:
		return "the guest credentials are invalid"
	case GuestReasonOperationDisabled:
		return "guest operations are disabled by the guest"
	case GuestReasonOperationNotSupported:
		return "the guest does not support the operation"
	default:
		return ""
	}
}

// Error is a classified error.
type Error struct {
	Kind Kind

	// Op is the name of the operation that failed, ex. "clone".
	Op string

	// Path is the inventory path of the machine, if known.
	Path string

	// Reason is a human readable description.
	Reason string

	// Guest is set when Kind is KindGuest.
	Guest GuestReason

	// Attempts is the number of attempts made before the error was returned.
	Attempts int

	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
	}
	if e.Path != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(e.Path)
	}
	if e.Attempts > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "failed after %d attempts", e.Attempts)
	}
	reason := e.Reason
	if reason == "" && e.Guest != GuestReasonNone {
		reason = e.Guest.String()
	}
	for _, s := range []string{reason, errString(e.Err)} {
		if s == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}
		sb.WriteString(s)
	}
	if sb.Len() == 0 {
		return strings.ToLower(e.Kind.String()) + " error"
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// New returns an error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Userf returns a user error for the machine at path.
func Userf(path, format string, args ...any) *Error {
	return &Error{
		Kind:   KindUser,
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	}
}

// NotFoundf returns a not found error for the machine at path.
func NotFoundf(path, format string, args ...any) *Error {
	return &Error{
		Kind:   KindNotFound,
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the Kind of the error or of the first nested Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithPath returns err with the path set on the outermost Error, or err
// wrapped in an Error of KindUnknown if it was never classified.
func WithPath(err error, path string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Path == "" {
			c := *e
			c.Path = path
			return &c
		}
		return err
	}
	return &Error{Kind: KindUnknown, Path: path, Err: err}
}

// IsUser returns true if the error or a nested error is a user error.
func IsUser(err error) bool {
	return KindOf(err) == KindUser
}

// IsNotFound returns true if the error or a nested error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsGuest returns true if the error or a nested error is a guest error.
func IsGuest(err error) bool {
	return KindOf(err) == KindGuest
}

// IsInternal returns true if the error or a nested error is an internal error.
func IsInternal(err error) bool {
	return KindOf(err) == KindInternal
}

// IsStillBooting returns true if the error or a nested error indicates a
// machine did not expose its configuration in time.
func IsStillBooting(err error) bool {
	return KindOf(err) == KindStillBooting
}

// IsExhausted returns true if the error or a nested error indicates the
// retries for an operation were exhausted.
func IsExhausted(err error) bool {
	return KindOf(err) == KindExhausted
}
