package auth

import (
	"net/http/httptest"
	"testing"
)

func TestStaticKeys(t *testing.T) {
	v := NewStaticKeys([]string{"alpha", "beta"})

	cases := []struct {
		key  string
		want bool
	}{
		{"alpha", true},
		{"beta", true},
		{"gamma", false},
		{"alph", false},
		{"", false},
	}
	for _, c := range cases {
		if got := v.ValidKey(c.key); got != c.want {
			t.Errorf("ValidKey(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}

func TestStaticKeysEmptyList(t *testing.T) {
	v := NewStaticKeys(nil)
	if v.ValidKey("anything") {
		t.Error("expected no key to validate against an empty list")
	}
}

func TestFromRequestHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/expenses/list", nil)
	r.Header.Set("X-API-Key", "secret")

	if got := FromRequest(r); got != "secret" {
		t.Errorf("FromRequest = %q, want %q", got, "secret")
	}
}

func TestFromRequestQueryFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/expenses/list?api_key=qsecret", nil)

	if got := FromRequest(r); got != "qsecret" {
		t.Errorf("FromRequest = %q, want %q", got, "qsecret")
	}
}

func TestFromRequestHeaderWinsOverQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/expenses/list?api_key=fromquery", nil)
	r.Header.Set("X-API-Key", "fromheader")

	if got := FromRequest(r); got != "fromheader" {
		t.Errorf("FromRequest = %q, want %q", got, "fromheader")
	}
}
