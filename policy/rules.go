// Package policy holds the routing, danger and gating rule tables plus the
// role/danger permission matrix. It is the single source of dispatch policy:
// both the classifier and the approval gate consume it, so an action flagged
// dangerous here is dangerous everywhere.
package policy

import (
	"regexp"
	"strings"
)

// EscalationMarker forces a message straight to the high-capability model,
// skipping the keyword and cheap-model passes.
const EscalationMarker = "!escalate"

// HasEscalationMarker reports whether the message carries the explicit
// force-escalate marker.
func HasEscalationMarker(message string) bool {
	return strings.Contains(strings.ToLower(message), EscalationMarker)
}

// RouteRule maps a set of keywords to a handler domain. Rules are checked
// in table order; when several rules match, the longest matched keyword
// wins.
type RouteRule struct {
	Keywords []string
	Domain   string
	Action   string
	Handler  string
}

// Intent returns the rule's intent in domain/action form.
func (r RouteRule) Intent() string {
	return r.Domain + "/" + r.Action
}

// RouteTable is the deterministic keyword routing table (classifier pass 1).
// Order matters only for equal-length keyword ties: earlier rules are more
// specific and win.
var RouteTable = []RouteRule{
	{Keywords: []string{"deploy to production", "production deploy", "deploy", "rollback", "incident", "pager"}, Domain: "sre", Action: "deploy", Handler: "sre-handler"},
	{Keywords: []string{"research", "look up", "find out", "investigate", "summarize"}, Domain: "research", Action: "lookup", Handler: "research-handler"},
	{Keywords: []string{"write code", "refactor", "implement", "bugfix", "unit test"}, Domain: "code", Action: "generate", Handler: "code-handler"},
	{Keywords: []string{"send an email", "send email", "email", "inbox", "reply to"}, Domain: "email", Action: "send", Handler: "email-handler"},
	{Keywords: []string{"post a tweet", "post-tweet", "tweet", "social post", "publish post"}, Domain: "social", Action: "post", Handler: "social-handler"},
	{Keywords: []string{"analytics", "dashboard", "metrics report", "query the data", "sql"}, Domain: "analytics", Action: "query", Handler: "analytics-handler"},
	{Keywords: []string{"remember", "store this", "recall", "memory"}, Domain: "memory", Action: "store", Handler: "memory-handler"},
}

// handlers maps a routing domain to its specialist handler, for intents that
// come back from a model rather than the keyword table.
var handlers = map[string]string{
	"sre":       "sre-handler",
	"research":  "research-handler",
	"code":      "code-handler",
	"email":     "email-handler",
	"social":    "social-handler",
	"analytics": "analytics-handler",
	"memory":    "memory-handler",
}

// FallbackHandler receives everything no domain claims.
const FallbackHandler = "triage-handler"

// HandlerFor returns the handler responsible for a domain.
func HandlerFor(domain string) string {
	if h, ok := handlers[domain]; ok {
		return h
	}
	return FallbackHandler
}

// MatchRoute runs the keyword table against a message. It returns the
// winning rule and the keyword that matched, or nil when no rule fires.
// The longest matched keyword wins; ties go to the earlier rule.
func MatchRoute(message string) (*RouteRule, string) {
	msg := strings.ToLower(message)

	var best *RouteRule
	bestKeyword := ""
	for i := range RouteTable {
		for _, kw := range RouteTable[i].Keywords {
			if strings.Contains(msg, kw) && len(kw) > len(bestKeyword) {
				best = &RouteTable[i]
				bestKeyword = kw
			}
		}
	}
	return best, bestKeyword
}

// DangerRule tags a pattern with the risk category it detects.
type DangerRule struct {
	Tag     string
	Pattern *regexp.Regexp
}

// DangerTable is the fixed danger-pattern list. It is matched independently
// of classification outcome against the message and any serialized payload.
var DangerTable = []DangerRule{
	{Tag: "mass-messaging", Pattern: regexp.MustCompile(`(?i)\b(mass|bulk)[- ](message|messaging|email|e-mail|sms|dm)s?\b`)},
	{Tag: "destructive", Pattern: regexp.MustCompile(`(?i)\b(delete|purge|drop|wipe|truncate)\b`)},
	{Tag: "payment", Pattern: regexp.MustCompile(`(?i)\b(payment|billing|invoice|refund|charge|transfer funds?)\b`)},
	{Tag: "credentials", Pattern: regexp.MustCompile(`(?i)\b(credential|secret|api[- ]key|password|token)s?\b.*\b(change|rotate|update|reset|reveal)\b|\b(change|rotate|update|reset|reveal)\b.*\b(credential|secret|api[- ]key|password|token)s?\b`)},
	{Tag: "production-deploy", Pattern: regexp.MustCompile(`(?i)\b(deploy|push|ship|release)\b.*\bprod(uction)?\b|\bprod(uction)?\b.*\b(deploy|push|ship|release)\b`)},
	{Tag: "bulk-campaign", Pattern: regexp.MustCompile(`(?i)\bcampaign\b|\bblast\b|\bnewsletter to (all|every)\b`)},
	{Tag: "direct-outreach", Pattern: regexp.MustCompile(`(?i)\b(contact|message|call|text)\b.*\b(customer|client|user|lead)s\b`)},
}

// DangerTags returns the tags of every danger rule that matches the text.
func DangerTags(text string) []string {
	var tags []string
	for _, rule := range DangerTable {
		if rule.Pattern.MatchString(text) {
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}

// IsDangerous reports whether any danger rule matches the text.
func IsDangerous(text string) bool {
	return len(DangerTags(text)) > 0
}

// alwaysGatedDomains are gated independent of danger detection: anything
// posted to the outside world goes through a human.
var alwaysGatedDomains = map[string]bool{
	"social": true,
	"email":  true,
}

// gatedActionPatterns recognize always-gated actions by name when no domain
// is known (the gate is called with free-form action strings).
var gatedActionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(tweet|social|post)\b`),
	regexp.MustCompile(`(?i)\b(bulk[- ]?|mass[- ]?)?email\b`),
	regexp.MustCompile(`(?i)\bnewsletter\b`),
}

// IsAlwaysGatedDomain reports whether a routing domain is gated regardless
// of danger detection.
func IsAlwaysGatedDomain(domain string) bool {
	return alwaysGatedDomains[domain]
}

// IsAlwaysGatedAction reports whether an action string names an
// always-gated capability.
func IsAlwaysGatedAction(action string) bool {
	for _, p := range gatedActionPatterns {
		if p.MatchString(action) {
			return true
		}
	}
	return false
}
