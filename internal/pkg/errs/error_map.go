/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to keep
the wording of user-facing notices in a single place.
*/
package errs

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: Validation Errors
	ErrAvatarRequired:    {Code: ErrAvatarRequired, Message: "Please choose a profile photo."},
	ErrAvatarNotImage:    {Code: ErrAvatarNotImage, Message: "Choose a valid image."},
	ErrAvatarTooLarge:    {Code: ErrAvatarTooLarge, Message: "Image is too large (max %d bytes)."},
	ErrAvatarReadFailed:  {Code: ErrAvatarReadFailed, Message: "Could not read the image."},
	ErrProfileRequired:   {Code: ErrProfileRequired, Message: "You need to enter before sending messages."},
	ErrProfileIncomplete: {Code: ErrProfileIncomplete, Message: "Name and photo are required."},

	// 2xxx: Local Storage Errors
	ErrStorageUnavailable:   {Code: ErrStorageUnavailable, Message: "Could not save your profile. Please try again."},
	ErrStoredProfileInvalid: {Code: ErrStoredProfileInvalid, Message: "Saved profile is unreadable."},

	// 3xxx: Transport Errors
	ErrNotConnected:   {Code: ErrNotConnected, Message: "Not connected."},
	ErrSendQueueFull:  {Code: ErrSendQueueFull, Message: "Send queue is full."},
	ErrInvalidPayload: {Code: ErrInvalidPayload, Message: "Received an invalid payload."},

	// 5xxx: Internal Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again."},
}
