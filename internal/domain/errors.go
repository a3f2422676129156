package domain

import "errors"

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrForbidden              = errors.New("forbidden")
	ErrMediaAccessDenied      = errors.New("media access denied")
	ErrScreenShareDenied      = errors.New("screen share denied")
	ErrTeardownNetwork        = errors.New("teardown network failure")
	ErrInvalidCode            = errors.New("invalid meeting code")
	ErrCodeRequired           = errors.New("meeting code required")
	ErrInvalidIdentity        = errors.New("invalid identity")
)

// UserMessage converts err into the inline message shown next to the form or preview.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthenticationRequired):
		return "Please sign in to continue"
	case errors.Is(err, ErrCodeRequired):
		return "Please enter a meeting code"
	case errors.Is(err, ErrNotFound):
		return "Meeting not found or is no longer active"
	case errors.Is(err, ErrInvalidCode):
		return "Meeting codes use 4 to 32 letters, digits or dashes"
	case errors.Is(err, ErrConflict):
		return "That meeting code is already taken"
	case errors.Is(err, ErrForbidden):
		return "Only the host can do that"
	case errors.Is(err, ErrMediaAccessDenied):
		return "Failed to access camera/microphone"
	case errors.Is(err, ErrScreenShareDenied):
		return "Failed to share screen"
	default:
		return "Something went wrong, please try again"
	}
}
