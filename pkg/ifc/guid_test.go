package ifc

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestExpandGlobalID(t *testing.T) {
	tests := []struct {
		compressed string
		want       string
	}{
		{"0000000000000000000000", "00000000-0000-0000-0000-000000000000"},
		{"0000000000000000000001", "00000000-0000-0000-0000-000000000001"},
		{"3$$$$$$$$$$$$$$$$$$$$$", "ffffffff-ffff-ffff-ffff-ffffffffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.compressed, func(t *testing.T) {
			got, err := ExpandGlobalID(tt.compressed)
			if err != nil {
				t.Fatalf("ExpandGlobalID: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGlobalIDRoundTrip(t *testing.T) {
	for i := 0; i < 32; i++ {
		u := uuid.New()
		compressed := CompressGlobalID(u)
		if len(compressed) != 22 {
			t.Fatalf("compressed length = %d", len(compressed))
		}
		back, err := ExpandGlobalID(compressed)
		if err != nil {
			t.Fatalf("ExpandGlobalID(%s): %v", compressed, err)
		}
		if back != u {
			t.Errorf("round trip %s -> %s -> %s", u, compressed, back)
		}
	}
}

func TestExpandGlobalIDInvalid(t *testing.T) {
	for _, s := range []string{"", "short", "4000000000000000000000", "00000000000000000000!0"} {
		if _, err := ExpandGlobalID(s); !errors.Is(err, ErrInvalidGlobalID) {
			t.Errorf("ExpandGlobalID(%q) err = %v, want ErrInvalidGlobalID", s, err)
		}
	}
}

func TestNormalizeGlobalID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2O2Fr$t4X7Zf8NOew3FLOH", want: "2O2Fr$t4X7Zf8NOew3FLOH"},
		{in: "00000000-0000-0000-0000-000000000001", want: "0000000000000000000001"},
		{in: "ffffffffffffffffffffffffffffffff", want: "3$$$$$$$$$$$$$$$$$$$$$"},
		{in: "{ffffffff-ffff-ffff-ffff-ffffffffffff}", want: "3$$$$$$$$$$$$$$$$$$$$$"},
		{in: "4000000000000000000000", wantErr: true},
		{in: "not-a-guid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeGlobalID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGlobalID) {
					t.Errorf("err = %v, want ErrInvalidGlobalID", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeGlobalID: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
