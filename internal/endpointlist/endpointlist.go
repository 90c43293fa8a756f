// Package endpointlist reads the scan target file (spec.md 6's "Input file
// format" collaborator) into scanner.Endpoint values.
package endpointlist

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-mclib/mcprobe/scanner"
)

// Load reads path and returns one scanner.Endpoint per non-blank,
// non-comment line, in file order. Blank lines and lines whose first
// non-whitespace character is '#' are ignored. Each remaining line is
// HOST or HOST:PORT; a malformed or missing port falls back to
// defaultPort (spec.md 6), mirroring original_source/src/main.rs's
// line.split_once(':') with parse().unwrap_or(25565).
func Load(path string, defaultPort uint16) ([]scanner.Endpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoint list %s: %w", path, err)
	}
	defer f.Close()

	var endpoints []scanner.Endpoint
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		endpoints = append(endpoints, parseLine(line, defaultPort))
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read endpoint list %s: %w", path, err)
	}

	return endpoints, nil
}

func parseLine(line string, defaultPort uint16) scanner.Endpoint {
	host, portStr, found := strings.Cut(line, ":")
	if !found {
		return scanner.Endpoint{Host: line, Port: defaultPort}
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return scanner.Endpoint{Host: host, Port: defaultPort}
	}
	return scanner.Endpoint{Host: host, Port: uint16(port)}
}
