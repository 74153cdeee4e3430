package startup

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetRoutes(t *testing.T) {
	r := mux.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.HandleFunc("/api/convert/{to}", noop).Methods("POST")
	r.HandleFunc("/api/tools", noop).Methods("GET")
	r.HandleFunc("/health", noop).Methods("GET", "HEAD")

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}

	// /health expands to one entry per method.
	if len(routes) != 4 {
		t.Errorf("Expected 4 route entries, got %d", len(routes))
	}

	found := false
	for _, route := range routes {
		if route.Path == "/api/convert/{to}" && route.Method == "POST" {
			found = true
		}
	}
	if !found {
		t.Error("Expected POST /api/convert/{to} in route list")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/api/convert/{to}", "api/convert"},
		{"/api/tools", "api/tools"},
		{"/health", "health"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%s): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}
