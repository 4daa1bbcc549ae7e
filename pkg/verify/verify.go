package verify

import (
	"regexp"
	"strings"
)

// Platform names accepted across campaigns and linked accounts.
const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformYouTube   = "youtube"
)

var patterns = map[string]*regexp.Regexp{
	PlatformInstagram: regexp.MustCompile(`^https?://(www\.)?instagram\.com/[a-zA-Z0-9_.]+/?(\?.*)?$`),
	PlatformTikTok:    regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[a-zA-Z0-9_.]+/?(\?.*)?$`),
	PlatformYouTube:   regexp.MustCompile(`^https?://(www\.)?youtube\.com/(@[a-zA-Z0-9_-]+|(c|channel|user)/[a-zA-Z0-9_-]+)/?(\?.*)?$`),
}

// KnownPlatform reports whether the platform name is supported.
func KnownPlatform(platform string) bool {
	_, ok := patterns[platform]
	return ok
}

// ValidateURL checks that the URL matches the canonical profile shape of
// the given platform.
func ValidateURL(platform, url string) bool {
	re, ok := patterns[platform]
	if !ok {
		return false
	}
	return re.MatchString(url)
}

// ProfileName extracts the trailing username segment from a profile URL.
func ProfileName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 {
		return ""
	}
	name := parts[len(parts)-1]
	return strings.TrimPrefix(name, "@")
}
