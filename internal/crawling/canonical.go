package crawling

import (
	"errors"
	"net/url"
	"strings"
)

// CanonicalURL normalises a document URL so that equivalent spellings collide:
// scheme and host are lower-cased, default ports and fragments dropped, and the path
// is re-encoded from its decoded form ("é", "%c3%a9" and "%C3%A9" all become "%C3%A9").
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &url.Error{Op: "canonicalize", URL: raw, Err: errNotAbsolute}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	// drop the original escaping so String() re-encodes Path uniformly
	u.RawPath = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

var errNotAbsolute = errors.New("URL must have a scheme and host")
