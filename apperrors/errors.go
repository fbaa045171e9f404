package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable identifier for an error class.
// Clients match on Kind, never on message text.
type Kind string

const (
	KindNotAuthorized      Kind = "NOT_AUTHORIZED"
	KindNotMember          Kind = "NOT_MEMBER"
	KindGroupNotFound      Kind = "GROUP_NOT_FOUND"
	KindUserNotFound       Kind = "USER_NOT_FOUND"
	KindGameNotStarted     Kind = "GAME_NOT_STARTED"
	KindGameAlreadyStarted Kind = "GAME_ALREADY_STARTED"
	KindInvalidCard        Kind = "INVALID_CARD"
	KindInvalidValue       Kind = "INVALID_VALUE"
	KindNoCards            Kind = "NO_CARDS"
	KindGroupFull          Kind = "GROUP_FULL"
	KindAlreadyMember      Kind = "ALREADY_MEMBER"
	KindPersistence        Kind = "PERSISTENCE_ERROR"
)

// Error pairs a Kind with a human message. Two Errors compare equal under
// errors.Is when their Kinds match, so handlers can branch on the sentinel
// values below while services wrap with context.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithMessage returns a copy of the sentinel carrying a specific message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrNotAuthorized      = &Error{Kind: KindNotAuthorized, Message: "you are not allowed to perform this action"}
	ErrNotMember          = &Error{Kind: KindNotMember, Message: "you are not a member of this group"}
	ErrGroupNotFound      = &Error{Kind: KindGroupNotFound, Message: "group not found"}
	ErrUserNotFound       = &Error{Kind: KindUserNotFound, Message: "user not found"}
	ErrGameNotStarted     = &Error{Kind: KindGameNotStarted, Message: "the game has not started yet"}
	ErrGameAlreadyStarted = &Error{Kind: KindGameAlreadyStarted, Message: "the game has already started"}
	ErrInvalidCard        = &Error{Kind: KindInvalidCard, Message: "invalid bingo card payload"}
	ErrInvalidValue       = &Error{Kind: KindInvalidValue, Message: "value must be greater than zero"}
	ErrNoCards            = &Error{Kind: KindNoCards, Message: "no cards stored for this group"}
	ErrGroupFull          = &Error{Kind: KindGroupFull, Message: "group has reached its member limit"}
	ErrAlreadyMember      = &Error{Kind: KindAlreadyMember, Message: "already a member of this group"}
	ErrPersistence        = &Error{Kind: KindPersistence, Message: "failed to persist group state"}
)

// HTTPStatus maps an error Kind to the status the handlers respond with.
// Unknown errors fall through to 500.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotAuthorized, KindNotMember:
		return http.StatusForbidden
	case KindGroupNotFound, KindUserNotFound:
		return http.StatusNotFound
	case KindGameNotStarted, KindGameAlreadyStarted, KindInvalidCard,
		KindInvalidValue, KindNoCards, KindGroupFull, KindAlreadyMember:
		return http.StatusBadRequest
	case KindPersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
