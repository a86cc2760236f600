package supertest

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/publicsuffix"
)

// CookieStore keeps the cookies a client has been given and hands them back on later
// requests. Cookies are scoped by domain and path and dropped once expired.
// It is safe for concurrent use.
type CookieStore struct {
	jar *cookiejar.Jar
}

// NewCookieStore returns an empty store.
func NewCookieStore() *CookieStore {
	// cookiejar.New only fails on options it does not currently validate.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &CookieStore{jar: jar}
}

// CookieHeaderFor returns the Cookie header value for a request to domain and path:
// matching name=value pairs joined by "; ". Cookies with longer paths come first,
// then cookies in the order they were first stored. It returns "" when nothing matches.
func (s *CookieStore) CookieHeaderFor(domain, path string) string {
	cookies := s.jar.Cookies(cookieURL(domain, path))
	if len(cookies) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// Absorb stores every parseable Set-Cookie value as if it was received from domain and path.
// A cookie with the same name, domain and path replaces the stored one. Malformed values are
// skipped without affecting the others; the returned error lists them and is informational only.
func (s *CookieStore) Absorb(setCookieValues []string, domain, path string) error {
	var errs *multierror.Error
	cookies := make([]*http.Cookie, 0, len(setCookieValues))
	for _, raw := range setCookieValues {
		c, err := http.ParseSetCookie(raw)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("skipping cookie %q: %w", raw, err))
			continue
		}
		cookies = append(cookies, c)
	}
	if len(cookies) > 0 {
		s.jar.SetCookies(cookieURL(domain, path), cookies)
	}
	return errs.ErrorOrNil()
}

func cookieURL(domain, path string) *url.URL {
	path, _, _ = strings.Cut(path, "?")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &url.URL{Scheme: "http", Host: domain, Path: path}
}
