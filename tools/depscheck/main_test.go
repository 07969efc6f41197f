package main

import (
	"slices"
	"strings"
	"testing"
)

func TestViolations(t *testing.T) {
	input := `{"ImportPath":"mechmania/server/internal/game","Imports":["fmt","slices"]}
{"ImportPath":"mechmania/server/internal/game/extra","Imports":["net/http","mechmania/server/internal/simulator","mechmania/server/internal/sim"]}`
	pkgs, err := decodePackages(strings.NewReader(input))
	if err != nil {
		t.Fatalf("decodePackages: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(pkgs))
	}
	got := violations(pkgs)
	want := []string{
		"mechmania/server/internal/game/extra -> mechmania/server/internal/sim",
		"mechmania/server/internal/game/extra -> net/http",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected violations:\n got %v\nwant %v", got, want)
	}
}

func TestForbiddenMatchesWholeSegments(t *testing.T) {
	cases := map[string]bool{
		"net/http":                              true,
		"net/http/httptest":                     true,
		"net/httpx":                             false,
		"mechmania/server/internal/net/ws":      true,
		"mechmania/server/internal/game":        false,
		"github.com/gorilla/websocket":          true,
		"mechmania/server/internal/replayutils": false,
	}
	for imp, want := range cases {
		if got := forbidden(imp); got != want {
			t.Fatalf("forbidden(%q) = %t, want %t", imp, got, want)
		}
	}
}
