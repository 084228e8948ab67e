package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/example/switchboard/internal/domain"
	"github.com/example/switchboard/policy"
)

const classifySystemPrompt = `You are an intent classifier for a multi-agent dispatch system.
Classify the user's request into exactly one intent of the form "domain/action",
where domain is one of: sre, research, code, email, social, analytics, memory.
Respond with strict JSON only, no prose:
{"intent": "domain/action", "confidence": <integer 0-100>}`

// ladderStep is one rung of the classifier's escalation ladder. The ladder
// is an ordered list evaluated top to bottom; each rung is tried before
// the next, and the first accepted parse wins.
type ladderStep struct {
	tier          domain.ModelTier
	model         string
	attempts      int
	minConfidence int
}

// escalationLadder returns the model rungs (passes 2 and 3). Pass 1, the
// keyword table, costs nothing and is handled before any model call.
func (s *Service) escalationLadder() []ladderStep {
	return []ladderStep{
		{tier: domain.TierEscalated1, model: s.config.CheapModel, attempts: 2, minConfidence: 80},
		{tier: domain.TierEscalated2, model: s.config.PowerModel, attempts: 1, minConfidence: 0},
	}
}

// Classify routes a free-text message to a specialist handler through the
// three-pass escalation ladder. Danger detection runs independently of
// routing: a message matching a danger pattern is dangerous no matter
// which pass classified it.
func (s *Service) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.RoutingDecision, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message is required")
	}

	text := req.Message
	if req.Context != "" {
		text += " " + req.Context
	}
	tags := policy.DangerTags(text)
	forced := policy.HasEscalationMarker(req.Message)

	var decision *domain.RoutingDecision
	modelUsed := "keyword"

	// Pass 1: the deterministic keyword table. Free, so always first
	// unless the caller forced the expensive path.
	if !forced {
		if rule, kw := policy.MatchRoute(req.Message); rule != nil {
			decision = &domain.RoutingDecision{
				Intent:        rule.Intent(),
				TargetHandler: rule.Handler,
				ModelTier:     domain.TierFree,
				Reason:        fmt.Sprintf("keyword match on %q", kw),
			}
		}
	}

	// Passes 2 and 3: walk the model ladder in order.
	if decision == nil {
		ladder := s.escalationLadder()
		if forced {
			ladder = ladder[len(ladder)-1:]
		}
		for _, step := range ladder {
			if decision != nil {
				break
			}
			for attempt := 0; attempt < step.attempts; attempt++ {
				content, err := s.llmClient.Complete(ctx, step.model, classifySystemPrompt, req.Message)
				if err != nil {
					log.Printf("WARN: classify %s attempt %d failed: %v", step.tier, attempt+1, err)
					continue
				}
				intent, confidence, err := parseIntentReply(content)
				if err != nil {
					log.Printf("WARN: classify %s attempt %d unparseable: %v", step.tier, attempt+1, err)
					continue
				}
				if confidence < step.minConfidence {
					log.Printf("WARN: classify %s attempt %d below confidence floor (%d < %d)", step.tier, attempt+1, confidence, step.minConfidence)
					continue
				}
				decision = &domain.RoutingDecision{
					Intent:        intent,
					TargetHandler: policy.HandlerFor(domainOf(intent)),
					ModelTier:     step.tier,
					Escalated:     step.tier == domain.TierEscalated2,
					Reason:        fmt.Sprintf("model classification (confidence %d)", confidence),
				}
				modelUsed = step.model
				break
			}
		}
	}

	// Every tier exhausted: hand the request to a human.
	if decision == nil {
		decision = &domain.RoutingDecision{
			Intent:           domain.UnknownIntent,
			TargetHandler:    policy.FallbackHandler,
			ModelTier:        domain.TierEscalated2,
			RequiresApproval: true,
			Escalated:        true,
			Reason:           "all escalation tiers exhausted; flagged for human review",
		}
		modelUsed = s.config.PowerModel
	}

	decision.Dangerous = len(tags) > 0
	decision.DangerTags = tags
	if decision.Dangerous || policy.IsAlwaysGatedDomain(domainOf(decision.Intent)) {
		decision.RequiresApproval = true
	}

	s.audit(ctx, "INFO", "classifier", "classify", decision.Intent, modelUsed,
		req.UserRole, decision.Escalated, fmt.Sprintf("source=%s dangerous=%t", req.Source, decision.Dangerous))

	return decision, nil
}

var intentPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*/[a-z][a-z0-9_-]*$`)

type intentReply struct {
	Intent     string `json:"intent"`
	Confidence int    `json:"confidence"`
}

// parseIntentReply extracts a strict domain/action intent plus confidence
// from a model reply. Anything that does not parse is treated the same as
// a backend failure by the caller.
func parseIntentReply(content string) (string, int, error) {
	raw := stripCodeFence(content)

	var reply intentReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return "", 0, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	intent := strings.ToLower(strings.TrimSpace(reply.Intent))
	if !intentPattern.MatchString(intent) {
		return "", 0, fmt.Errorf("intent %q is not of the form domain/action", reply.Intent)
	}
	if reply.Confidence < 0 || reply.Confidence > 100 {
		return "", 0, fmt.Errorf("confidence %d out of range", reply.Confidence)
	}
	return intent, reply.Confidence, nil
}

// domainOf returns the domain half of a domain/action intent.
func domainOf(intent string) string {
	if i := strings.IndexByte(intent, '/'); i > 0 {
		return intent[:i]
	}
	return intent
}

// stripCodeFence unwraps ```json ... ``` fences some models insist on.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
