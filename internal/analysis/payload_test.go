package analysis

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestDecodeImagePayload(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0} // JPEG magic
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		payload string
		want    []byte
		wantErr error
	}{
		{"plain base64", encoded, raw, nil},
		{"jpeg data URI", "data:image/jpeg;base64," + encoded, raw, nil},
		{"png data URI", "data:image/png;base64," + encoded, raw, nil},
		{"empty", "", nil, ErrMissingImage},
		{"prefix only", "data:image/jpeg;base64,", nil, ErrMissingImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeImagePayload(tt.payload)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != string(tt.want) {
				t.Errorf("decoded bytes do not match: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeImagePayload_InvalidBase64(t *testing.T) {
	if _, err := DecodeImagePayload("!!not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestParseResult_Malformed(t *testing.T) {
	for _, input := range []string{"", "not json", "[1,2,3"} {
		if _, err := ParseResult([]byte(input)); err == nil {
			t.Errorf("expected parse error for %q", input)
		}
	}
}
