// Package magnet extracts info hashes from magnet URIs.
package magnet

import (
	"fmt"
	"net/url"
	"strings"
)

// Hash returns the info hash embedded in a magnet URI's xt parameter.
// The hash is the last colon-separated element, e.g.
// "magnet:?xt=urn:btih:ABC123" yields "ABC123".
func Hash(magnetURI string) (string, error) {
	u, err := url.Parse(magnetURI)
	if err != nil {
		return "", fmt.Errorf("invalid magnet URI: %w", err)
	}

	xt := u.Query().Get("xt")
	if xt == "" {
		return "", fmt.Errorf("magnet URI has no xt parameter: %s", magnetURI)
	}

	parts := strings.Split(xt, ":")
	return parts[len(parts)-1], nil
}
