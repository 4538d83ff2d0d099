package service

import (
	"errors"
	"fmt"

	"github.com/yeisme/casefile/pkg/internal/repository"
)

// Kind 错误种类，传输层据此映射响应状态.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindOwnership   Kind = "ownership"
	KindStorage     Kind = "storage"
	KindPersistence Kind = "persistence"
	KindConflict    Kind = "conflict"
)

// Error 服务层错误.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// 按种类匹配的哨兵错误，用法 errors.Is(err, service.ErrNotFound).
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrOwnership   = &Error{Kind: KindOwnership}
	ErrStorage     = &Error{Kind: KindStorage}
	ErrPersistence = &Error{Kind: KindPersistence}
	ErrConflict    = &Error{Kind: KindConflict}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}

	if e.Op != "" {
		msg = e.Op + ": " + msg
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 仅比较 Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// KindOf 返回错误种类，非服务层错误返回空.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

func validationf(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notFound(op, what, id string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("%s %q not found", what, id)}
}

func storageErr(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Msg: "blob operation failed", Err: err}
}

// persistErr 将仓储错误映射为服务层错误.
func persistErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: KindNotFound, Op: op, Msg: "document not found", Err: err}
	case errors.Is(err, repository.ErrStale), errors.Is(err, repository.ErrDuplicate):
		return &Error{Kind: KindConflict, Op: op, Msg: "document was modified concurrently", Err: err}
	default:
		return &Error{Kind: KindPersistence, Op: op, Msg: "repository write failed", Err: err}
	}
}
