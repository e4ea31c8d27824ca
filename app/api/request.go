package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adminpro/storefront-admin/app/mutation"
)

// DefaultMaxUpload bounds multipart bodies when no limit is configured.
const DefaultMaxUpload = 10 << 20

// ParseForm reads a multipart or url-encoded body of at most maxBytes.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	err := r.ParseMultipartForm(maxBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return mutation.Errorf(mutation.Invalid, "request body exceeds %d bytes", maxBytes)
		}
		return mutation.Wrap(mutation.Invalid, err, "Invalid form data")
	}
	return nil
}

// ReadImage returns the file sent under field, or nil when there is none.
func ReadImage(r *http.Request, field string) (*mutation.Image, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, mutation.Wrap(mutation.Invalid, err, "Error reading image")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, mutation.Wrap(mutation.Invalid, err, "Error reading image")
	}
	return &mutation.Image{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

// ReadID extracts the identifier from a delete body. It accepts
// {"id": 5}, {"id": "5"}, a bare 5 or a quoted "5".
func ReadID(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<10))
	if err != nil {
		return "", mutation.Wrap(mutation.Invalid, err, "Invalid request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", nil
	}

	if body[0] == '{' {
		var in struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(body, &in); err != nil {
			return "", mutation.Errorf(mutation.Invalid, "Invalid JSON body")
		}
		body = bytes.TrimSpace(in.ID)
	}
	if len(body) > 0 && body[0] == '"' {
		s, err := strconv.Unquote(string(body))
		if err != nil {
			return "", mutation.Errorf(mutation.Invalid, "Invalid JSON body")
		}
		return s, nil
	}
	return string(body), nil
}

// Page is an offset/limit window over a list.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage reads offset and limit from q. Values that do not parse are
// ignored, a negative offset is dropped and limit is clamped to [1, maxLimit].
func ParsePage(q url.Values, defaultLimit, maxLimit int) Page {
	p := Page{Limit: defaultLimit}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o >= 0 {
		p.Offset = o
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		p.Limit = min(max(l, 1), maxLimit)
	}
	return p
}
