package identity

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"hzchat-client/internal/pkg/errs"
)

// EncodeAvatar converts raw image bytes into a data URL.
// The content type is sniffed from the bytes; anything that is not an image is rejected.
func EncodeAvatar(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", errs.NewError(errs.ErrAvatarRequired)
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", errs.NewError(errs.ErrAvatarTooLarge, maxBytes)
	}

	mime := mimetype.Detect(data)
	if !isImage(mime) {
		return "", errs.NewError(errs.ErrAvatarNotImage)
	}

	// Drop parameters such as "; charset=utf-8" that some detectors append.
	mediaType, _, _ := strings.Cut(mime.String(), ";")

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// isImage walks the detected type and its parents looking for an image/* type.
func isImage(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// ReadAvatarFile reads the file at path and encodes it with EncodeAvatar.
// At most maxBytes+1 bytes are read so oversized files are rejected without loading them.
func ReadAvatarFile(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errs.NewError(errs.ErrAvatarReadFailed)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errs.NewError(errs.ErrAvatarReadFailed)
	}

	return EncodeAvatar(data, maxBytes)
}

// AvatarResult is the outcome of one asynchronous avatar read.
type AvatarResult struct {
	// Token identifies the selection that started the read.
	Token uint64

	// DataURL is the encoded avatar when Err is nil.
	DataURL string

	// Err is the validation or read failure, or context.Canceled for a superseded read.
	Err error
}

// AvatarLoader reads avatar files off the caller's goroutine.
type AvatarLoader struct {
	// MaxBytes is the size limit applied to every file.
	MaxBytes int64

	// read encodes a file; replaced in tests to control timing.
	read func(path string, maxBytes int64) (string, error)
}

// NewAvatarLoader creates a loader enforcing the given size limit.
func NewAvatarLoader(maxBytes int64) *AvatarLoader {
	return &AvatarLoader{
		MaxBytes: maxBytes,
		read:     ReadAvatarFile,
	}
}

// Load starts reading path and returns a channel that receives exactly one result
// tagged with token. If ctx is cancelled first the result carries ctx.Err().
func (l *AvatarLoader) Load(ctx context.Context, token uint64, path string) <-chan AvatarResult {
	out := make(chan AvatarResult, 1)

	go func() {
		defer close(out)

		done := make(chan AvatarResult, 1)
		go func() {
			dataURL, err := l.read(path, l.MaxBytes)
			done <- AvatarResult{Token: token, DataURL: dataURL, Err: err}
		}()

		select {
		case res := <-done:
			if ctx.Err() != nil {
				res = AvatarResult{Token: token, Err: ctx.Err()}
			}
			out <- res
		case <-ctx.Done():
			out <- AvatarResult{Token: token, Err: ctx.Err()}
		}
	}()

	return out
}

// IsCanceled reports whether a result belongs to a read that was superseded or aborted.
func (r AvatarResult) IsCanceled() bool {
	return errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded)
}
