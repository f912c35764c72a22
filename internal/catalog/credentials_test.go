package catalog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "abc" || tok.Type() != "Bearer" {
		t.Errorf("token = %+v", tok)
	}
}

func TestTokenFunc(t *testing.T) {
	if _, err := TokenFunc(func() (string, error) { return "", nil }).Token(); err == nil {
		t.Error("expected error for empty token")
	}

	want := errors.New("refresh failed")
	if _, err := TokenFunc(func() (string, error) { return "", want }).Token(); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestNewHTTPClient_NoCredential(t *testing.T) {
	var auth string
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPOptions{Transport: TransportOptions{Catalog: "test", Attempts: 1}}, testLogger())
	resp, err := get(t, c, srv.URL)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if sawHeader {
		t.Errorf("Authorization = %q, want no header", auth)
	}
}
