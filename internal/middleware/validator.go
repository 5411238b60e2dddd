package middleware

import (
	"bytes"
	"fmt"
	"regexp"
)

// Input validation and sanitization utilities

// MaxUploadBytes caps one uploaded recording at 50 MB, matching the
// recording client's own limit.
const MaxUploadBytes = 50 << 20

// webm files open with an EBML header.
var webmMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// ValidateUpload checks size bounds and the container format of an
// uploaded recording. Recordings are always webm (Opus audio).
func ValidateUpload(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("uploaded file is empty")
	}
	if len(data) > MaxUploadBytes {
		return fmt.Errorf("uploaded file exceeds %d bytes", MaxUploadBytes)
	}
	if len(data) < len(webmMagic) || !bytes.Equal(data[:len(webmMagic)], webmMagic) {
		return fmt.Errorf("uploaded file is not a webm container")
	}
	return nil
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks the recipient address for the welcome mail.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > 254 || !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
