package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
)

// DefaultSmbConf is the Samba configuration consulted when share resolution
// runs in smb.conf mode.
const DefaultSmbConf = "/etc/samba/smb.conf"

var (
	// Matches `path = "/abs/path"` outside of a leading comment.
	smbPathPattern = regexp.MustCompile(`^[^#]*path\s*=\s*"(.*)"`)
	// A trailing comment carrying the token "protected" excludes the share.
	smbProtectedPattern = regexp.MustCompile(`#.*protected`)
)

// ParseSmbConf extracts share root paths from a Samba configuration. Every
// line matching `path = "…"` contributes a share, except lines whose
// trailing comment contains the token "protected".
func ParseSmbConf(r io.Reader) ([]string, error) {
	var roots []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		m := smbPathPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if smbProtectedPattern.MatchString(line) {
			continue
		}
		roots = append(roots, m[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read smb.conf: %w", err)
	}
	return roots, nil
}

// LoadSmbConf reads share roots from the Samba configuration at path, or
// from DefaultSmbConf when path is empty.
func LoadSmbConf(path string) ([]string, error) {
	if path == "" {
		path = DefaultSmbConf
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open smb.conf: %w", err)
	}
	defer f.Close()
	return ParseSmbConf(f)
}
