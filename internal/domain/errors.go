package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the presentation layer can pick a message
// without looking at error text.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindStorage    ErrorKind = "storage"
	KindRender     ErrorKind = "render"
	KindUpload     ErrorKind = "upload"
	KindNetwork    ErrorKind = "network"
	KindUnknown    ErrorKind = "unknown"
)

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationErrors groups every field failure found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation error"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

// Fields returns field -> message, first message wins.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, v := range e {
		if _, ok := out[v.Field]; !ok {
			out[v.Field] = v.Msg
		}
	}
	return out
}

// StorageError is returned when the serial counter cannot be read or written.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("storage error: %v", e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

type RenderError struct {
	Msg string
	Err error
}

func (e RenderError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("render: %s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return "render: " + e.Msg
	case e.Err != nil:
		return fmt.Sprintf("render: %v", e.Err)
	default:
		return "render error"
	}
}

func (e RenderError) Unwrap() error { return e.Err }

// UploadError covers every hop between the renderer output and the public link.
// Network is set when the request never got a response.
type UploadError struct {
	Msg     string
	Network bool
	Err     error
}

func (e UploadError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return fmt.Sprintf("upload: %v", e.Err)
	}
	return "upload error"
}

func (e UploadError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	if errors.As(err, &target) {
		return true
	}
	var many ValidationErrors
	return errors.As(err, &many)
}

func IsStorage(err error) bool {
	var target StorageError
	return errors.As(err, &target)
}

func IsRender(err error) bool {
	var target RenderError
	return errors.As(err, &target)
}

func IsUpload(err error) bool {
	var target UploadError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// Kind reports the category of err.
func Kind(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var up UploadError
	switch {
	case IsValidation(err):
		return KindValidation
	case IsStorage(err):
		return KindStorage
	case IsRender(err):
		return KindRender
	case errors.As(err, &up):
		if up.Network {
			return KindNetwork
		}
		return KindUpload
	default:
		return KindUnknown
	}
}
