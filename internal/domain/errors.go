package domain

import "errors"

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")

	ErrInvalidCredential = errors.New("invalid credential")
	ErrVersionInvalid    = errors.New("client version missing or malformed")
	ErrVersionMismatch   = errors.New("client version incompatible")
	ErrNameTaken         = errors.New("display name already in use")
	ErrNameInvalid       = errors.New("display name invalid")

	ErrTranscode         = errors.New("transcode failed")
	ErrBroadcastDelivery = errors.New("broadcast delivery failed")

	ErrNoFile      = errors.New("no file uploaded")
	ErrBadDuration = errors.New("malformed display duration")
	ErrNotImage    = errors.New("only image files are allowed")
)

// Handshake rejection reasons as sent to the client.
const (
	ReasonInvalidCredential = "InvalidCredential"
	ReasonVersionInvalid    = "VersionInvalid"
	ReasonVersionMismatch   = "VersionMismatch"
	ReasonNameTaken         = "NameTaken"
	ReasonNameInvalid       = "NameInvalid"
)

// Reason maps an admission error to its wire reason. Unknown errors are
// reported as an invalid credential so nothing internal leaks to the client.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrVersionInvalid):
		return ReasonVersionInvalid
	case errors.Is(err, ErrVersionMismatch):
		return ReasonVersionMismatch
	case errors.Is(err, ErrNameTaken):
		return ReasonNameTaken
	case errors.Is(err, ErrNameInvalid):
		return ReasonNameInvalid
	default:
		return ReasonInvalidCredential
	}
}
