/*
Package errs provides custom error types and application-level error code constants.

These error codes identify the validation, storage and transport failures the client
can run into, and carry the notice text shown to the user when one reaches the UI.
*/
package errs

// 1xxx: Validation Errors (reported to the user, no state change)
const (
	// ErrAvatarRequired indicates that no avatar image was provided or the file was empty.
	ErrAvatarRequired = 1002

	// ErrAvatarNotImage indicates that the selected avatar file is not an image.
	ErrAvatarNotImage = 1003

	// ErrAvatarTooLarge indicates that the selected avatar file exceeds the configured size limit.
	ErrAvatarTooLarge = 1004

	// ErrAvatarReadFailed indicates that the selected avatar file could not be read.
	ErrAvatarReadFailed = 1005

	// ErrProfileRequired indicates that a message was composed before any profile was saved.
	ErrProfileRequired = 1007

	// ErrProfileIncomplete indicates that the entry form was submitted without both name and avatar.
	ErrProfileIncomplete = 1008
)

// 2xxx: Local Storage Errors
const (
	// ErrStorageUnavailable indicates that the profile could not be written to local storage.
	ErrStorageUnavailable = 2001

	// ErrStoredProfileInvalid indicates that the persisted profile record is malformed.
	ErrStoredProfileInvalid = 2002
)

// 3xxx: Transport Errors (logged, never shown per message)
const (
	// ErrNotConnected indicates that an outbound event was dropped because the channel is down.
	ErrNotConnected = 3001

	// ErrSendQueueFull indicates that the outbound queue of the current connection is full.
	ErrSendQueueFull = 3002

	// ErrInvalidPayload indicates that an inbound frame could not be decoded.
	ErrInvalidPayload = 3003
)

// 5xxx: Internal Errors
const (
	// ErrUnknown represents an unclassified client error.
	ErrUnknown = 5000
)
