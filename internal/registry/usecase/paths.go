package usecase

import "strings"

// CratePath is the object key of a version archive.
func CratePath(name, version string) string {
	return "crates/" + name + "/" + name + "-" + version + ".crate"
}

// ReadmePath is the object key of a rendered readme.
func ReadmePath(name, version string) string {
	return "readmes/" + name + "/" + name + "-" + version + ".html"
}

// escapeVersion makes a version safe for use inside a URL path. Build
// metadata uses +, which proxies treat as a space.
func escapeVersion(version string) string {
	return strings.ReplaceAll(version, "+", "%2B")
}

// crateLocation is the public URL of a version archive when a CDN host
// fronts the bucket. Empty when no CDN is configured.
func crateLocation(cdnHost, name, version string) string {
	if cdnHost == "" {
		return ""
	}
	return "https://" + cdnHost + "/" + CratePath(name, escapeVersion(version))
}
