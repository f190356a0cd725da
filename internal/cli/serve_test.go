package cli

import (
	"net/http"
	"testing"
)

func TestHTTPServerBoundsHeaderReads(t *testing.T) {
	s := newHTTPServer(":8484", http.NewServeMux())
	if s.Addr != ":8484" {
		t.Errorf("addr = %q", s.Addr)
	}
	if s.Handler == nil {
		t.Error("handler not set")
	}
	if s.ReadHeaderTimeout <= 0 {
		t.Error("header reads must be bounded")
	}
}
