package services

import (
	"log"
	"net/url"
	"strings"
)

const DefaultProxyPrefix = "/api/n8n"

// DevProxy routes webhook calls through the local reverse proxy during
// development. Outside development Rewrite is the identity.
type DevProxy struct {
	Enabled bool
	Prefix  string
}

// Rewrite swaps the URL's origin for the proxy prefix, keeping path, query
// and fragment. Anything that is not an absolute URL comes back unchanged.
func (p DevProxy) Rewrite(raw string) string {
	if !p.Enabled || raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		log.Printf("dev proxy: invalid webhook URL %q, using it as is", raw)
		return raw
	}

	prefix := p.Prefix
	if prefix == "" {
		prefix = DefaultProxyPrefix
	}

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(prefix, "/"))
	b.WriteString(u.EscapedPath())
	if u.RawQuery != "" || u.ForceQuery {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}
	return b.String()
}

// resolveEndpoint turns a proxied relative path back into something an HTTP
// client can dial.
func resolveEndpoint(endpoint, baseURL string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return endpoint, nil
	}
	if baseURL == "" {
		return "", &url.Error{Op: "resolve", URL: endpoint, Err: errNoBaseURL}
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
