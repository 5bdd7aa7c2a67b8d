// Package policy implements the allow/deny domain rules applied to every
// discovered URL before any keyword evaluation happens.
package policy

import (
	"net/url"
	"strings"

	"github.com/blkoutuk/research-agent/internal/config"
)

// ContentType selects which whitelist applies; the blacklist is shared.
type ContentType string

const (
	ContentNews   ContentType = "news"
	ContentEvents ContentType = "events"
	ContentGrants ContentType = "grants"
)

// DomainPolicy holds an immutable snapshot of the configured domain lists.
// Membership tests are substring matches against the normalized host.
type DomainPolicy struct {
	blacklist      []string
	newsWhitelist  []string
	eventWhitelist []string
}

func New(cfg config.DomainPolicyConfig) *DomainPolicy {
	return &DomainPolicy{
		blacklist:      lowerAll(cfg.Blacklist),
		newsWhitelist:  lowerAll(cfg.NewsWhitelist),
		eventWhitelist: lowerAll(cfg.EventWhitelist),
	}
}

// IsAcceptable reports whether rawURL may proceed to keyword scoring.
// Blacklist entries hard-reject; whitelist entries accept; everything else is
// provisionally acceptable and left to the keyword stage. Unlisted domains
// are never hard-rejected here: at this stage recall beats precision.
func (p *DomainPolicy) IsAcceptable(rawURL string, contentType ContentType) bool {
	host := NormalizeHost(rawURL)
	if host == "" {
		return true
	}

	for _, blocked := range p.blacklist {
		if strings.Contains(host, blocked) {
			return false
		}
	}

	for _, allowed := range p.whitelist(contentType) {
		if strings.Contains(host, allowed) || strings.HasSuffix(host, allowed) {
			return true
		}
	}

	return true
}

// IsWhitelisted reports whether the host matches the preferred-source list
// for the content type. Callers may use this to bypass keyword rejection for
// trusted platforms.
func (p *DomainPolicy) IsWhitelisted(rawURL string, contentType ContentType) bool {
	host := NormalizeHost(rawURL)
	if host == "" {
		return false
	}
	for _, allowed := range p.whitelist(contentType) {
		if strings.Contains(host, allowed) {
			return true
		}
	}
	return false
}

func (p *DomainPolicy) whitelist(contentType ContentType) []string {
	if contentType == ContentEvents {
		return p.eventWhitelist
	}
	return p.newsWhitelist
}

// NormalizeHost extracts the host from a URL: scheme stripped, leading
// "www." stripped, lowercased. Unparseable URLs yield "".
func NormalizeHost(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	if host == "" && u.Scheme == "" {
		// Bare "example.com/path" parses as a path; retry with a scheme.
		u, err = url.Parse("https://" + strings.TrimSpace(rawURL))
		if err != nil {
			return ""
		}
		host = strings.ToLower(u.Host)
	}
	return strings.TrimPrefix(host, "www.")
}

// SourceName derives a readable source label from a URL host, used when the
// search backend does not supply one.
func SourceName(rawURL string) string {
	host := NormalizeHost(rawURL)
	if host == "" {
		return "Unknown"
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	name := parts[len(parts)-2]
	// Skip the registry label in hosts like pinknews.co.uk.
	if len(parts) >= 3 && (name == "co" || name == "org" || name == "ac" || name == "gov") {
		name = parts[len(parts)-3]
	}
	if name == "" {
		return host
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
