package supertest

import (
	"mime"
	"strings"
)

// contentType resolves a short media alias such as "json", "html" or ".xml", or a full
// media type such as "text/plain", into a Content-Type value. JSON and text types get
// a utf-8 charset unless one is given.
func contentType(alias string) (string, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return "", usageErrorf("empty media type")
	}

	ct := alias
	if !strings.Contains(alias, "/") {
		ext := strings.ToLower(alias)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		ct = mime.TypeByExtension(ext)
		if ct == "" {
			return "", usageErrorf("unknown media type %q", alias)
		}
	}

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", usageErrorf("invalid media type %q: %v", alias, err)
	}
	if _, ok := params["charset"]; !ok && wantsCharset(mediaType) {
		params["charset"] = "utf-8"
	}
	return mime.FormatMediaType(mediaType, params), nil
}

func wantsCharset(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/") || isStructured(mediaType)
}

// isStructured reports whether a Content-Type value declares a JSON body.
func isStructured(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}
