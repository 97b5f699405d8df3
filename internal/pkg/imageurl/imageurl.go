package imageurl

import "strings"

// Resolve joins a stored media path with the public base URL. Absolute URLs
// and empty paths pass through untouched, so re-resolving is harmless.
func Resolve(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return path
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

// Resolver binds a base URL once so callers can pass a single function around.
type Resolver struct {
	baseURL string
}

func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: baseURL}
}

func (r *Resolver) Resolve(path string) string {
	if r == nil {
		return Resolve("", path)
	}
	return Resolve(r.baseURL, path)
}
