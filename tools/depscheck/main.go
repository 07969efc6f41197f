// Command depscheck fails when the game model imports transport, replay or
// orchestration packages.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

var forbiddenPrefixes = []string{
	"mechmania/server/internal/app",
	"mechmania/server/internal/net",
	"mechmania/server/internal/replay",
	"mechmania/server/internal/sim",
	"github.com/gorilla/websocket",
	"net/http",
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/game/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	pkgs, err := decodePackages(bytes.NewReader(output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}

	if found := violations(pkgs); len(found) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range found {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

// decodePackages reads the concatenated JSON objects go list emits.
func decodePackages(r io.Reader) ([]packageInfo, error) {
	decoder := json.NewDecoder(r)
	var pkgs []packageInfo
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				return pkgs, nil
			}
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
}

func violations(pkgs []packageInfo) []string {
	var found []string
	for _, pkg := range pkgs {
		for _, imp := range pkg.Imports {
			if forbidden(imp) {
				found = append(found, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
			}
		}
	}
	sort.Strings(found)
	return found
}

func forbidden(imp string) bool {
	for _, prefix := range forbiddenPrefixes {
		if imp == prefix || strings.HasPrefix(imp, prefix+"/") {
			return true
		}
	}
	return false
}
