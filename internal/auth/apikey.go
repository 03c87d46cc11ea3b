// Package auth gates the data endpoints behind a shared API key.
package auth

import (
	"crypto/subtle"
	"net/http"
)

const headerName = "X-API-Key"

// KeyValidator decides whether a presented API key is acceptable.
type KeyValidator interface {
	ValidKey(key string) bool
}

// StaticKeys validates against a fixed allow-list loaded at startup.
type StaticKeys struct {
	keys []string
}

func NewStaticKeys(keys []string) *StaticKeys {
	return &StaticKeys{keys: keys}
}

func (s *StaticKeys) ValidKey(key string) bool {
	if key == "" {
		return false
	}
	for _, k := range s.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// FromRequest extracts the API key from the X-API-Key header, falling
// back to the api_key query parameter.
func FromRequest(r *http.Request) string {
	if key := r.Header.Get(headerName); key != "" {
		return key
	}
	return r.URL.Query().Get("api_key")
}
