// Package notify sends digest emails through the Resend API. Notification
// delivery is best effort: a missing key or failed send is logged and
// reported as false, never as a pipeline failure.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/store"
)

const resendEndpoint = "https://api.resend.com/emails"

// Notifier sends transactional email via Resend.
type Notifier struct {
	cfg        config.NotifyConfig
	httpClient *http.Client
	endpoint   string
}

func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   resendEndpoint,
	}
}

// SendGrantsDigest emails the grant research digest. It reports whether an
// email was actually sent; an empty digest or missing API key skips quietly.
func (n *Notifier) SendGrantsDigest(ctx context.Context, newGrants, topPriority []store.GrantSummary, stats model.RunStats) bool {
	if len(newGrants) == 0 && len(topPriority) == 0 {
		log.Printf("notify: no grants to report, skipping email")
		return false
	}

	subject := fmt.Sprintf("BLKOUT Grants Digest: %d new opportunities found", len(newGrants))
	body := buildGrantsEmail(newGrants, topPriority, stats, time.Now().UTC())

	return n.send(ctx, subject, body)
}

func (n *Notifier) send(ctx context.Context, subject, htmlBody string) bool {
	if n.cfg.APIKey == "" {
		log.Printf("notify: RESEND_API_KEY not configured, skipping email")
		return false
	}

	payload, err := json.Marshal(map[string]any{
		"from":    n.cfg.FromEmail,
		"to":      []string{n.cfg.ToEmail},
		"subject": subject,
		"html":    htmlBody,
	})
	if err != nil {
		log.Printf("notify: encoding email: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		log.Printf("notify: building request: %v", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Printf("notify: email error: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("notify: email failed: %d - %s", resp.StatusCode, detail)
		return false
	}

	log.Printf("notify: email sent: %s", subject)
	return true
}

func buildGrantsEmail(newGrants, topPriority []store.GrantSummary, stats model.RunStats, now time.Time) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #1a1a2e; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
.section { background: #f8f9fa; padding: 20px; margin-bottom: 2px; }
.section h2 { color: #1a1a2e; margin-top: 0; font-size: 18px; border-bottom: 2px solid #e74c3c; padding-bottom: 8px; }
.grant { background: white; padding: 15px; margin-bottom: 10px; border-radius: 6px; border-left: 4px solid #3498db; }
.grant.high { border-left-color: #e74c3c; }
.grant.medium { border-left-color: #f39c12; }
.grant .meta { font-size: 13px; color: #666; margin-bottom: 8px; }
.grant .score { display: inline-block; background: #e74c3c; color: white; padding: 2px 8px; border-radius: 12px; font-size: 12px; font-weight: bold; }
.stats { background: #1a1a2e; color: white; padding: 15px 20px; border-radius: 0 0 8px 8px; }
.stats span { margin-right: 20px; }
.footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
</style>
</head>
<body>
<div class="header">
<h1>BLKOUT Grant Research</h1>
<p>%s</p>
</div>
`, now.Format("02 January 2006, 15:04 UTC"))

	if len(newGrants) > 0 {
		b.WriteString(`<div class="section"><h2>New Discoveries</h2>`)
		for _, g := range limitGrants(newGrants, 10) {
			writeGrantCard(&b, g, "")
		}
		b.WriteString(`</div>`)
	}

	if len(topPriority) > 0 {
		b.WriteString(`<div class="section"><h2>Top Priority Opportunities</h2>`)
		for i, g := range limitGrants(topPriority, 10) {
			writeGrantCard(&b, g, fmt.Sprintf("#%d ", i+1))
		}
		b.WriteString(`</div>`)
	}

	fmt.Fprintf(&b, `<div class="stats">
<span>Discovered: %d</span>
<span>New: %d</span>
<span>Duplicates: %d</span>
</div>
<div class="footer">
<p>BLKOUT Research Agent &bull; Automated grant discovery</p>
</div>
</body>
</html>
`, stats.Discovered, stats.Inserted, stats.Skipped)

	return b.String()
}

func writeGrantCard(b *bytes.Buffer, g store.GrantSummary, rank string) {
	class := ""
	switch g.Priority {
	case "high":
		class = " high"
	case "medium":
		class = " medium"
	}

	funder := g.FunderName
	if funder == "" {
		funder = "Unknown Funder"
	}
	deadline := ""
	if g.Deadline != "" {
		deadline = fmt.Sprintf(" &bull; <strong>Deadline: %s</strong>", html.EscapeString(g.Deadline))
	}

	fmt.Fprintf(b, `<div class="grant%s">
<h3>%s<a href="%s">%s</a></h3>
<div class="meta"><strong>%s</strong>%s &bull; <span class="score">%d%% fit</span></div>
`, class, rank, html.EscapeString(g.URL), html.EscapeString(clip(g.Title, 80)),
		html.EscapeString(funder), deadline, g.FitScore)

	if g.FunderAdvice != "" {
		fmt.Fprintf(b, `<div class="description">%s</div>
`, html.EscapeString(clip(g.FunderAdvice, 200)))
	}
	b.WriteString("</div>\n")
}

func limitGrants(grants []store.GrantSummary, max int) []store.GrantSummary {
	if len(grants) <= max {
		return grants
	}
	return grants[:max]
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
