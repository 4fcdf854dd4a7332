package handlers

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// NewWebhookProxy forwards requests under prefix to the origin of webhookURL,
// with the prefix stripped and Host set to the upstream.
func NewWebhookProxy(webhookURL, prefix string) (http.Handler, error) {
	u, err := url.Parse(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("parse webhook URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("webhook URL %q is not absolute", webhookURL)
	}
	target := &url.URL{Scheme: u.Scheme, Host: u.Host}
	prefix = strings.TrimRight(prefix, "/")

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host

			path := strings.TrimPrefix(pr.In.URL.Path, prefix)
			if path == "" {
				path = "/"
			}
			pr.Out.URL.Path = path
			pr.Out.URL.RawPath = ""
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("webhook proxy: %s %s: %v", r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusBadGateway, errorResp("PROXY_ERROR", "Webhook is unreachable", r))
		},
	}
	return proxy, nil
}
