package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"io"
	"mime"
	"net/http"
	"net/url"
)

const (
	// IdempotencyHeader carries the key for API clients.
	IdempotencyHeader = "Idempotency-Key"

	// IdempotencyField carries the key for HTML forms, which cannot set headers.
	IdempotencyField = "idempotency_key"
)

var _ http.ResponseWriter = idemReqWriter{}

// Idempotent returns a middleware.Adapter that enables features
// of idempotency on a POST endpoint.
// GET, DELETE, PUT, & PATCH are idempotent by definition.
//
// Idempotent pulls a key (a UUID v4 string) from the Idempotency-Key header
// or, for form submissions, the idempotency_key field
// to base the uniqueness of a POST request around.
//
// If a previous request has not used that key,
// Idempotent pairs all of the following values to the key:
// - a hash of the body of the request
// - the body of the resulting response
// - the status code and Location header of the resulting response
//
// If that key has been used before (and has not expired),
// Idempotent falls into one of these scenarios:
//
//   - if a status code has not been set for that key,
//     Idempotent responds with 409 since the idempotent request is still processing
//
//   - if the newly requested resource (the URI) does not match the original,
//     Idempotent responds with 422
//
//   - if the new request's body does not match the body of the original request's,
//     Idempotent responds with 422
//
//   - otherwise, Idempotent replays the response recorded for the key
//
// If cache is nil, Idempotent keeps keys in memory.
//
// Idempotent implements the draft Idempotent HTTP Header Field specification:
// https://tools.ietf.org/id/draft-idempotency-header-01.html
func Idempotent(cache IdempotencyCacher) Adapter {
	if cache == nil {
		cache = NewIdemResMap()
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := idempotencyKey(r.Header, body)
			if key == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			sum := sha256.Sum256(body)
			ir, ok := cache.Get(r.Context(), key)
			if ok {
				if ir.Status == 0 {
					w.WriteHeader(http.StatusConflict)
					return
				}

				if ir.URI != r.URL.RequestURI() || !bytes.Equal(ir.Req, sum[:]) {
					w.WriteHeader(http.StatusUnprocessableEntity)
					return
				}

				if ir.Location != "" {
					w.Header().Set("Location", ir.Location)
				}

				w.WriteHeader(ir.Status)
				w.Write(ir.Body.Bytes())
				return
			}

			ir = NewIdemRes(r.URL.RequestURI(), sum[:])
			cache.Set(r.Context(), key, ir)

			irw := idemReqWriter{
				ctx: r.Context(),
				c:   cache,
				i:   &ir,
				k:   key,
				w:   w,
			}
			handler.ServeHTTP(irw, r)
		})
	}
}

// idempotencyKey prefers the header, falling back to a url-encoded form field.
func idempotencyKey(h http.Header, body []byte) string {
	if key := h.Get(IdempotencyHeader); key != "" {
		return key
	}

	ct, _, _ := mime.ParseMediaType(h.Get("Content-Type"))
	if ct != "application/x-www-form-urlencoded" {
		return ""
	}

	vals, err := url.ParseQuery(string(body))
	if err != nil {
		return ""
	}

	return vals.Get(IdempotencyField)
}

// An IdemRes is data from an HTTP response
// that can be reused when another request
// matches the same idempotency key.
type IdemRes struct {
	Body     *bytes.Buffer
	Location string
	Req      []byte
	Status   int
	URI      string
}

// An idemResGob is an intermediate representation of
// an IdemRes for the purposes of gob encoding/decoding.
//
// idemResGob is necessary as long as pkg gob cannot decode/encode
// fields in an IdemRes (e.g., Body).
type idemResGob struct {
	B []byte
	L string
	R []byte
	S int
	U string
}

// NewIdemRes constructs a new IdemRes.
func NewIdemRes(uri string, hashedBody []byte) IdemRes {
	return IdemRes{Body: bytes.NewBuffer(nil), URI: uri, Req: hashedBody}
}

// GobDecode unmarshals the gob-encoded []byte into fields of the *IdemRes.
//
// GobDecode implements gob.GobDecoder.
func (i *IdemRes) GobDecode(b []byte) error {
	g := new(idemResGob)
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(g); err != nil {
		return err
	}

	i.Body = bytes.NewBuffer(g.B)
	i.Location, i.Req, i.Status, i.URI = g.L, g.R, g.S, g.U
	return nil
}

// GobEncode marshals the fields of the IdemRes into a gob-encoded []byte.
//
// GobEncode implements gob.GobEncoder.
func (i IdemRes) GobEncode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	g := idemResGob{i.Body.Bytes(), i.Location, i.Req, i.Status, i.URI}
	if err := gob.NewEncoder(buf).Encode(g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// An idemReqWriter pairs an IdemRes with an http.ResponseWriter
// so both can be written to by an HTTP handler.
// Changes to the IdemRes in such a way are saved in the cache.
//
// An idemReqWriter implements http.ResponseWriter.
type idemReqWriter struct {
	ctx context.Context
	c   IdempotencyCacher
	i   *IdemRes
	k   string
	w   http.ResponseWriter
}

// Header returns the http.Header of the underlying http.ResponseWriter.
func (irw idemReqWriter) Header() http.Header { return irw.w.Header() }

// Write writes the bytes to all consumers the idemReqWriter is concerned with.
func (irw idemReqWriter) Write(b []byte) (int, error) {
	if irw.i.Status == 0 {
		irw.WriteHeader(http.StatusOK)
	}

	n, err := irw.w.Write(b)
	if err != nil {
		return n, err
	}

	if _, err = irw.i.Body.Write(b); err != nil {
		return n, err
	}

	irw.c.Set(irw.ctx, irw.k, *irw.i)
	return n, nil
}

// WriteHeader copies the status code and redirect target about to be written
// to the IdemRes for later reuse before actually writing the status code.
func (irw idemReqWriter) WriteHeader(s int) {
	irw.w.WriteHeader(s)
	irw.i.Status = s
	irw.i.Location = irw.w.Header().Get("Location")
	irw.c.Set(irw.ctx, irw.k, *irw.i)
}
