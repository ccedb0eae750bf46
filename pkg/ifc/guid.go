package ifc

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// guidChars is the 64 character alphabet of compressed GlobalIds.
const guidChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// ErrInvalidGlobalID is returned for strings that are not 22 character
// compressed GlobalIds.
var ErrInvalidGlobalID = errors.New("invalid compressed GlobalId")

// ExpandGlobalID converts a 22 character compressed GlobalId to its UUID.
// The first character carries 2 bits, every following character 6 bits.
func ExpandGlobalID(id string) (uuid.UUID, error) {
	var u uuid.UUID
	if len(id) != 22 {
		return u, ErrInvalidGlobalID
	}

	var hi, lo uint64
	for i := 0; i < len(id); i++ {
		v := strings.IndexByte(guidChars, id[i])
		if v < 0 || (i == 0 && v > 3) {
			return u, ErrInvalidGlobalID
		}
		hi = hi<<6 | lo>>58
		lo = lo<<6 | uint64(v)
	}

	for i := 0; i < 8; i++ {
		u[i] = byte(hi >> (56 - 8*i))
		u[8+i] = byte(lo >> (56 - 8*i))
	}
	return u, nil
}

// CompressGlobalID converts a UUID to its 22 character compressed form.
func CompressGlobalID(u uuid.UUID) string {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
		lo = lo<<8 | uint64(u[8+i])
	}

	out := make([]byte, 22)
	for i := 21; i >= 0; i-- {
		out[i] = guidChars[lo&63]
		lo = lo>>6 | hi<<58
		hi >>= 6
	}
	return string(out)
}

// NormalizeGlobalID returns the compressed form of id, which may be either
// a compressed GlobalId or a UUID in any form uuid.Parse accepts.
func NormalizeGlobalID(id string) (string, error) {
	if len(id) == 22 {
		if _, err := ExpandGlobalID(id); err != nil {
			return "", err
		}
		return id, nil
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidGlobalID
	}
	return CompressGlobalID(u), nil
}
