package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/booruterm/booruterm/internal/booru"
)

// ProviderParams builds the request parameters for provider from its config
// section. The auth key holds a query string that is merged in, tags holds
// base tags that extraTags are appended to, and every other key is passed
// through. A missing file or section yields nil.
func ProviderParams(configPath string, provider booru.Provider, extraTags []string) (url.Values, error) {
	doc, err := readTOML(configPath)
	if err != nil || doc == nil {
		return nil, err
	}
	section, ok := doc[string(provider)].(map[string]any)
	if !ok {
		return nil, nil
	}

	params := url.Values{}
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := section[key]
		switch key {
		case "auth":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("[%s] auth must be a query string", provider)
			}
			auth, err := url.ParseQuery(s)
			if err != nil {
				return nil, fmt.Errorf("[%s] parse auth: %w", provider, err)
			}
			for k, vals := range auth {
				params[k] = append(params[k], vals...)
			}
		case "tags":
			params.Set("tags", joinTags(value))
		default:
			params.Set(key, fmt.Sprint(value))
		}
	}

	if len(extraTags) > 0 {
		tags := strings.TrimSpace(params.Get("tags") + " " + strings.Join(extraTags, " "))
		params.Set("tags", tags)
	}
	return params, nil
}

// joinTags accepts tags as one string or as an array of strings.
func joinTags(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}
