package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Decoder failures. The handlers map these to 415/413/400.
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrInvalidJSON          = errors.New("invalid json")
)

// requestBody is the decoded shape shared by register, login and save.
// `user`/`pass` are legacy aliases some clients still send on register.
// Data stays raw; the service layer owns its validation.
type requestBody struct {
	Username string          `json:"username"`
	User     string          `json:"user"`
	Password string          `json:"password"`
	Pass     string          `json:"pass"`
	Data     json.RawMessage `json:"data"`
}

// decodeBody reads a bounded JSON request body.
//
// The media type must contain "application/json" (checked before the body is
// touched). The body is read through http.MaxBytesReader, so a client that
// exceeds maxBytes is cut off mid-stream rather than buffered to completion.
// An empty body decodes to the zero value; stream-level read errors propagate
// unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (*requestBody, error) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		return nil, ErrUnsupportedMediaType
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrPayloadTooLarge
		}
		return nil, err
	}

	body := &requestBody{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return body, nil
	}

	if err := json.Unmarshal(raw, body); err != nil {
		return nil, ErrInvalidJSON
	}

	return body, nil
}
