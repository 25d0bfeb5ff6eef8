package services

import (
	"errors"
	"fmt"
)

// Виды ошибок. Конкретные ошибки оборачивают один из них, обработчики сопоставляют по виду через errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrUnavailable  = errors.New("storage unavailable")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// kindErr - ошибка с собственным текстом, относящаяся к виду kind.
type kindErr struct {
	msg  string
	kind error
}

func (e *kindErr) Error() string { return e.msg }
func (e *kindErr) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &kindErr{msg: msg, kind: kind}
}

var (
	// Не найдено
	ErrTournamentNotFound       = kindError(ErrNotFound, "tournament not found")
	ErrTeamNotFound             = kindError(ErrNotFound, "team not found")
	ErrUserNotFound             = kindError(ErrNotFound, "user not found")
	ErrMembershipNotFound       = kindError(ErrNotFound, "ticket not found")
	ErrCategoryNotFound         = kindError(ErrNotFound, "category not found")
	ErrLeaderboardEntryNotFound = kindError(ErrNotFound, "leaderboard entry not found")

	// Конфликты
	ErrTeamNameConflict       = kindError(ErrConflict, "team name is already taken in this tournament")
	ErrTeamCodeConflict       = kindError(ErrConflict, "team code collision, try again")
	ErrTicketConflict         = kindError(ErrConflict, "ticket collision, try again")
	ErrAlreadyEnrolled        = kindError(ErrConflict, "user is already enrolled in this tournament")
	ErrRegistrationClosed     = kindError(ErrConflict, "tournament is not accepting registrations")
	ErrTournamentNameConflict = kindError(ErrConflict, "tournament name already exists")
	ErrTournamentClosed       = kindError(ErrConflict, "tournament is closed")
	ErrInvalidStatusChange    = kindError(ErrConflict, "invalid tournament status transition")
	ErrLeaderboardNotOpen     = kindError(ErrConflict, "leaderboard can only be edited for ongoing or closed tournaments")
	ErrLeaderboardTeamPlaced  = kindError(ErrConflict, "team already has a position in this tournament")
	ErrUserEmailConflict      = kindError(ErrConflict, "email address is already in use")

	// Ёмкость
	ErrTeamFull = kindError(ErrCapacity, "team is full")

	// Валидация
	ErrTeamNameRequired        = kindError(ErrInvalidInput, "team name is required")
	ErrJoinCodeRequired        = kindError(ErrInvalidInput, "join code is required")
	ErrTicketRequired          = kindError(ErrInvalidInput, "ticket is required")
	ErrTournamentNameRequired  = kindError(ErrInvalidInput, "tournament name is required")
	ErrInvalidTeamSize         = kindError(ErrInvalidInput, "max team size must be positive")
	ErrInvalidCoordinates      = kindError(ErrInvalidInput, "coordinates are out of range")
	ErrInvalidCategory         = kindError(ErrInvalidInput, "category does not exist")
	ErrInvalidPosition         = kindError(ErrInvalidInput, "position must be positive")
	ErrTeamNotInTournament     = kindError(ErrInvalidInput, "team does not belong to this tournament")
	ErrPasswordTooShort        = kindError(ErrInvalidInput, "password is too short")
	ErrEmailRequired           = kindError(ErrInvalidInput, "email is required")
	ErrNameRequired            = kindError(ErrInvalidInput, "first and last name are required")
	ErrPushTokenRequired       = kindError(ErrInvalidInput, "push token is required")
	ErrUnsupportedImageType    = kindError(ErrInvalidInput, "unsupported image type")
	ErrImageUploadNotAvailable = kindError(ErrUnavailable, "image storage is not configured")

	// Доступ
	ErrNotTournamentOwner = kindError(ErrForbidden, "only the tournament owner can perform this action")
	ErrInvalidCredentials = kindError(ErrUnauthorized, "invalid email or password")
)

// unavailable превращает неожиданную ошибку хранилища в ErrUnavailable.
// Исходная ошибка сохраняется только как текст.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
