// Package hostsfile parses the static hosts description listing the remote
// compute nodes of a run, one record per line in the form ip:port:core.
package hostsfile

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
)

var ErrMalformedEntry = errors.New("malformed host entry")

// Entry is one parsed host record.
type Entry struct {
	IP   netip.Addr
	Port uint16
	Core uint16
}

// Parse parses a full hosts description. Blank lines are skipped. Any
// malformed record fails the whole parse; callers must not use a partial
// result on error.
func Parse(text string) ([]Entry, error) {
	var entries []Entry

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ParseFile reads and parses the hosts description at path.
func ParseFile(path string) ([]Entry, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hosts file: %w", err)
	}
	return Parse(string(contents))
}

func parseLine(line string) (Entry, error) {
	// Records must be exactly <ip>:<port>:<core>.
	fields := strings.Split(line, ":")
	if len(fields) != 3 {
		return Entry{}, fmt.Errorf("%w: %q splits into %d fields, want 3", ErrMalformedEntry, line, len(fields))
	}

	ip, err := netip.ParseAddr(fields[0])
	if err != nil || !ip.Is4() {
		return Entry{}, fmt.Errorf("%w: %q is not an IPv4 dotted-quad", ErrMalformedEntry, fields[0])
	}

	port, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: bad port %q: %v", ErrMalformedEntry, fields[1], err)
	}

	core, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: bad core %q: %v", ErrMalformedEntry, fields[2], err)
	}

	return Entry{IP: ip, Port: uint16(port), Core: uint16(core)}, nil
}
