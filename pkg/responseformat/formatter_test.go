package responseformat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
}

func TestWriteResponse(t *testing.T) {
	f := NewFormatter()
	data := payload{Name: "home", Elevation: 12.5}

	tests := []struct {
		name        string
		url         string
		contentType string
		decode      func([]byte, any) error
	}{
		{"default json", "/x", "application/json", json.Unmarshal},
		{"unknown format falls back to json", "/x?format=xml", "application/json", json.Unmarshal},
		{"msgpack", "/x?format=msgpack", "application/x-msgpack", func(b []byte, v any) error {
			dec := msgpack.NewDecoder(bytes.NewReader(b))
			dec.SetCustomStructTag("json")
			return dec.Decode(v)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if err := f.WriteResponse(rec, req, data, map[string]string{"Cache-Control": "no-cache"}); err != nil {
				t.Fatalf("WriteResponse: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, expected %q", got, tt.contentType)
			}
			if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Error("missing CORS header")
			}
			if rec.Header().Get("Cache-Control") != "no-cache" {
				t.Error("extra header not applied")
			}

			var got payload
			if err := tt.decode(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != data {
				t.Errorf("decoded %+v, expected %+v", got, data)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := NewFormatter().WriteError(rec, http.StatusNotFound, "unknown sensor"); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "unknown sensor" {
		t.Errorf("error = %q", body.Error)
	}
}
