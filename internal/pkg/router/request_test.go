package router

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(meta any, data []byte) []byte {
	metaBytes, _ := json.Marshal(meta)

	var buf bytes.Buffer
	var lenBuf [4]byte

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(metaBytes)))
	buf.Write(lenBuf[:])
	buf.Write(metaBytes)

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.Write(data)

	return buf.Bytes()
}

func TestDecodeFramedBody(t *testing.T) {
	type meta struct {
		Name string `json:"name"`
		Vers string `json:"vers"`
	}

	archive := []byte("tarball-bytes")
	body := frame(meta{Name: "serde", Vers: "1.0.0"}, archive)

	req := &Request{Request: httptest.NewRequest("PUT", "/api/v1/crates/new", bytes.NewReader(body))}

	var got meta
	r, n, err := req.DecodeFramedBody(&got, 1<<20, 1<<20)
	require.NoError(t, err)

	assert.Equal(t, "serde", got.Name)
	assert.Equal(t, "1.0.0", got.Vers)
	assert.Equal(t, int64(len(archive)), n)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, archive, data)
}

func TestDecodeFramedBodyPaddedMetadataFrame(t *testing.T) {
	type meta struct {
		Name string `json:"name"`
	}

	// metadata frame declares more bytes than the JSON document itself;
	// the padding must be consumed so the archive frame stays aligned
	metaBytes := append([]byte(`{"name":"serde"}`), bytes.Repeat([]byte(" "), 32)...)
	archive := []byte("tarball-bytes")

	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(metaBytes)))
	buf.Write(lenBuf[:])
	buf.Write(metaBytes)
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(archive)))
	buf.Write(lenBuf[:])
	buf.Write(archive)

	req := &Request{Request: httptest.NewRequest("PUT", "/api/v1/crates/new", bytes.NewReader(buf.Bytes()))}

	var got meta
	r, n, err := req.DecodeFramedBody(&got, 1<<20, 1<<20)
	require.NoError(t, err)

	assert.Equal(t, "serde", got.Name)
	assert.Equal(t, int64(len(archive)), n)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, archive, data)
}

func TestDecodeFramedBodyRejectsOversized(t *testing.T) {
	body := frame(map[string]string{"name": "big"}, bytes.Repeat([]byte{0}, 64))

	req := &Request{Request: httptest.NewRequest("PUT", "/api/v1/crates/new", bytes.NewReader(body))}

	var got map[string]string
	_, _, err := req.DecodeFramedBody(&got, 1<<20, 16)
	assert.Error(t, err)
}

func TestDecodeFramedBodyRejectsTruncated(t *testing.T) {
	req := &Request{Request: httptest.NewRequest("PUT", "/api/v1/crates/new", bytes.NewReader([]byte{1, 2}))}

	var got map[string]string
	_, _, err := req.DecodeFramedBody(&got, 1<<20, 1<<20)
	assert.Error(t, err)
}

func TestCredentialFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bare token", header: "ciodeadbeef", want: "ciodeadbeef"},
		{name: "bearer scheme", header: "Bearer ciodeadbeef", want: "ciodeadbeef"},
		{name: "lowercase scheme", header: "bearer ciodeadbeef", want: "ciodeadbeef"},
		{name: "padded", header: "  ciodeadbeef  ", want: "ciodeadbeef"},
		{name: "empty", header: "", want: ""},
		{name: "wrong scheme", header: "Basic dXNlcg==", want: ""},
		{name: "too many parts", header: "Bearer a b", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, credentialFromHeader(tt.header))
		})
	}
}
