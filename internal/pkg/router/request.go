package router

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
)

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

func (r *Request) GetParamInt64(key string) (int64, error) {
	paramValue := r.GetParam(key)
	value, err := strconv.ParseInt(paramValue, 10, 64)
	if err != nil {
		return 0, goerror.NewInvalidFormat("param must integer value")
	}
	return value, nil
}

func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func (r *Request) GetQueryInt32(key string) (int32, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return 0, nil
	}

	value, err := strconv.ParseInt(queryValue, 10, 32)
	if err != nil {
		return 0, goerror.NewInvalidFormat()
	}

	return int32(value), nil
}

// DecodeBody decodes the JSON body into dst.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return goerror.NewInvalidFormat()
	}

	return nil
}

// DecodeFramedBody reads a publish payload laid out as a little-endian
// length-prefixed JSON metadata block followed by a length-prefixed crate
// archive. It decodes the metadata into dst and returns a reader over the
// archive bytes together with the archive length.
func (r *Request) DecodeFramedBody(dst any, maxMetaLen, maxDataLen uint32) (io.Reader, int64, error) {
	if r == nil || r.Body == nil {
		return nil, 0, goerror.NewInvalidFormat()
	}

	metaLen, err := readFrameLen(r.Body, maxMetaLen)
	if err != nil {
		return nil, 0, err
	}

	lr := io.LimitReader(r.Body, int64(metaLen))
	dec := json.NewDecoder(lr)
	if err := dec.Decode(dst); err != nil {
		return nil, 0, goerror.NewInvalidFormat("Invalid metadata json")
	}
	// drain the rest of the metadata frame, both what the decoder
	// buffered and what it never consumed, so the archive length frame
	// starts where declared
	if _, err := io.Copy(io.Discard, dec.Buffered()); err != nil {
		return nil, 0, goerror.NewInvalidFormat()
	}
	if _, err := io.Copy(io.Discard, lr); err != nil {
		return nil, 0, goerror.NewInvalidFormat()
	}

	dataLen, err := readFrameLen(r.Body, maxDataLen)
	if err != nil {
		return nil, 0, err
	}

	return io.LimitReader(r.Body, int64(dataLen)), int64(dataLen), nil
}

func readFrameLen(r io.Reader, maxLen uint32) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, goerror.NewInvalidFormat("Truncated payload")
	}

	n := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if n == 0 || n > maxLen {
		return 0, goerror.NewInvalidFormat("Payload length out of range")
	}
	return n, nil
}
