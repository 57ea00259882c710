package booru

import (
	"fmt"
	"strings"
)

// Provider names a supported image board.
type Provider string

// Supported providers.
const (
	Rule34   Provider = "rule34"
	Gelbooru Provider = "gelbooru"
	E621     Provider = "e621"
)

// Default API endpoints.
var defaultEndpoints = map[Provider]string{
	Rule34:   "https://rule34.xxx/index.php",
	Gelbooru: "https://gelbooru.com/index.php",
	E621:     "https://e621.net/posts.json",
}

// Providers lists the supported providers.
func Providers() []Provider {
	return []Provider{Rule34, E621, Gelbooru}
}

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := defaultEndpoints[p]; !ok {
		return "", fmt.Errorf("unknown provider %q (want one of %v)", name, Providers())
	}
	return p, nil
}

// usesDAPI reports whether p speaks the Gelbooru-style DAPI.
func (p Provider) usesDAPI() bool {
	return p != E621
}
