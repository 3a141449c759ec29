package editor

import (
	"errors"
	"testing"

	"github.com/msomdec/inkwell/internal/domain"
)

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantName string
		wantType string
		wantData string
		wantErr  bool
	}{
		{name: "base64 png", uri: "data:image/png;base64,aGk=", wantName: "pasted-image.png", wantType: "image/png", wantData: "hi"},
		{name: "jpeg extension", uri: "DATA:image/jpeg;base64,aGk=", wantName: "pasted-image.jpg", wantType: "image/jpeg", wantData: "hi"},
		{name: "unpadded base64", uri: "data:image/gif;base64,aGk", wantName: "pasted-image.gif", wantType: "image/gif", wantData: "hi"},
		{name: "percent encoded svg", uri: "data:image/svg+xml,%3Csvg%2F%3E", wantName: "pasted-image.svg", wantType: "image/svg+xml", wantData: "<svg/>"},
		{name: "parameters", uri: "data:image/webp;name=x.webp;base64,aGk=", wantName: "pasted-image.webp", wantType: "image/webp", wantData: "hi"},
		{name: "not data", uri: "https://example.com/a.png", wantErr: true},
		{name: "no comma", uri: "data:image/png;base64", wantErr: true},
		{name: "default media type", uri: "data:,hello", wantErr: true},
		{name: "empty payload", uri: "data:image/png;base64,", wantErr: true},
		{name: "bad media type", uri: "data:image/;;;base64,aGk=", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := decodeDataURI(tc.uri)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrMalformedPasteData) {
					t.Fatalf("expected ErrMalformedPasteData, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeDataURI: %v", err)
			}
			if f.Name != tc.wantName || f.ContentType != tc.wantType || string(f.Data) != tc.wantData {
				t.Fatalf("got %q %q %q", f.Name, f.ContentType, f.Data)
			}
		})
	}
}
