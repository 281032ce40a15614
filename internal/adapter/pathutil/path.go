package pathutil

import (
	"regexp"
	"strings"
)

var (
	separators  = regexp.MustCompile(`[\\/]+`)
	drivePrefix = regexp.MustCompile(`^\w+:`)
	rootPrefix  = regexp.MustCompile(`^(\.\./|/)+`)
)

// Unixify rewrites a host path to forward slashes, collapses repeated
// separators and drops a leading drive letter. Win32 namespace paths
// (\\?\ and \\.\) keep their leading "//".
func Unixify(p string) string {
	prefix := ""
	if len(p) > 4 && p[3] == '\\' && (p[2] == '?' || p[2] == '.') && strings.HasPrefix(p, `\\`) {
		p = p[2:]
		prefix = "//"
	}
	p = prefix + separators.ReplaceAllString(p, "/")
	return drivePrefix.ReplaceAllString(p, "")
}

// Sanitize returns a path that is safe to use as an archive entry name:
// unixified and with any leading "../" or "/" segments stripped.
func Sanitize(p string) string {
	return rootPrefix.ReplaceAllString(Unixify(p), "")
}

// TrailingSlash appends "/" when s does not already end with one.
func TrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
