package specialist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	promptx "github.com/tanpawarit/llm-honeypot-agents/agent/prompt"
)

const localModel = "local-rules"

type threatLevel struct {
	name            string
	score           float64
	timeline        string
	priority        string
	recommendations []string
	mitigations     []string
}

var (
	levelLow = threatLevel{
		name:     "low",
		score:    0.2,
		timeline: "1 month",
		priority: "low",
		recommendations: []string{
			"Keep monitoring the honeypot feeds",
			"Review access controls",
		},
		mitigations: []string{"Enable comprehensive logging"},
	}
	levelMedium = threatLevel{
		name:     "medium",
		score:    0.5,
		timeline: "2 weeks",
		priority: "medium",
		recommendations: []string{
			"Implement additional monitoring",
			"Update security protocols",
			"Review access controls",
		},
		mitigations: []string{"Rate limit exposed services", "Enable comprehensive logging"},
	}
	levelHigh = threatLevel{
		name:     "high",
		score:    0.75,
		timeline: "1 week",
		priority: "high",
		recommendations: []string{
			"Block offending sources at the edge",
			"Rotate credentials on exposed services",
			"Update incident response plan",
		},
		mitigations: []string{"Implement 2FA", "Update dependencies", "Enable comprehensive logging"},
	}
	levelCritical = threatLevel{
		name:     "critical",
		score:    0.95,
		timeline: "24 hours",
		priority: "critical",
		recommendations: []string{
			"Isolate affected hosts",
			"Start incident response",
			"Preserve forensic evidence",
		},
		mitigations: []string{"Isolate network segment", "Revoke active sessions", "Restore from known good backups"},
	}
)

// indicatorRules is checked most severe first.
var indicatorRules = []struct {
	level    threatLevel
	keywords []string
}{
	{levelCritical, []string{"ransomware", "exfiltration", "privilege escalation", "remote code execution", "rce", "rootkit"}},
	{levelHigh, []string{"brute force", "brute-force", "credential stuffing", "sql injection", "sqli", "malware", "command and control", "c2", "xss"}},
	{levelMedium, []string{"port-scan", "port scan", "portscan", "reconnaissance", "recon", "probe", "phishing", "enumeration"}},
}

// SecurityAnalyst assesses threats locally from the indicators in the payload.
// It makes no outbound call and needs no credentials.
type SecurityAnalyst struct {
	instructions promptx.Instructions
}

var _ contractx.Handler = (*SecurityAnalyst)(nil)

func NewSecurityAnalyst(ins promptx.Instructions) *SecurityAnalyst {
	return &SecurityAnalyst{instructions: ins}
}

func (s *SecurityAnalyst) Name() contractx.HandlerName {
	return contractx.HandlerSecurityAnalyst
}

func (s *SecurityAnalyst) Process(ctx context.Context, payload contractx.TaskPayload) contractx.Envelope {
	return s.run(ctx, contractx.OperationProcess, payload, func(level threatLevel, matched []string) any {
		return map[string]any{
			"threat_level":       level.name,
			"matched_indicators": matched,
			"recommendations":    level.recommendations,
		}
	})
}

func (s *SecurityAnalyst) Analyze(ctx context.Context, payload contractx.TaskPayload) contractx.Envelope {
	return s.run(ctx, contractx.OperationAnalyze, payload, func(level threatLevel, matched []string) any {
		return map[string]any{
			"risk_score":       level.score,
			"vulnerabilities":  matched,
			"mitigation_steps": level.mitigations,
		}
	})
}

func (s *SecurityAnalyst) Collaborate(ctx context.Context, payload contractx.TaskPayload) contractx.Envelope {
	return s.run(ctx, contractx.OperationCollaborate, payload, func(level threatLevel, matched []string) any {
		items := append([]string{"Review security policies"}, level.recommendations...)
		return map[string]any{
			"action_items": items,
			"timeline":     level.timeline,
			"priority":     level.priority,
		}
	})
}

func (s *SecurityAnalyst) run(
	ctx context.Context,
	op contractx.Operation,
	payload contractx.TaskPayload,
	render func(threatLevel, []string) any,
) (env contractx.Envelope) {
	name := s.Name()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("handler", string(name)).Interface("panic", r).Msg("security assessment panicked")
			env = contractx.Failed(contractx.KindInternal, fmt.Sprintf("%s %s: %v", name, op, r)).For(name, op)
		}
	}()

	if err := ctx.Err(); err != nil {
		return contractx.FailedFromError(fmt.Errorf("%s %s: %w", name, op, err)).For(name, op)
	}

	level, matched := assess(payload)
	return contractx.Succeeded(map[string]any{
		op.ResultKey(): render(level, matched),
		"model":        localModel,
		"analyst":      s.instructions.Persona,
	}).For(name, op)
}

// assess returns the most severe level whose keywords appear anywhere in the payload.
func assess(payload contractx.TaskPayload) (threatLevel, []string) {
	var texts []string
	collectText(map[string]any(payload), &texts)
	corpus := strings.ToLower(strings.Join(texts, "\n"))

	for _, rule := range indicatorRules {
		var matched []string
		for _, kw := range rule.keywords {
			if containsWord(corpus, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			sort.Strings(matched)
			return rule.level, matched
		}
	}
	return levelLow, []string{}
}

func collectText(v any, out *[]string) {
	switch val := v.(type) {
	case string:
		*out = append(*out, val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectText(val[k], out)
		}
	case contractx.TaskPayload:
		collectText(map[string]any(val), out)
	case []any:
		for _, item := range val {
			collectText(item, out)
		}
	case []string:
		*out = append(*out, val...)
	}
}

// containsWord matches kw only on non-alphanumeric boundaries, so "c2" does
// not fire on "abc2".
func containsWord(corpus, kw string) bool {
	for start := 0; ; {
		idx := strings.Index(corpus[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(kw)
		if (idx == 0 || !isWordByte(corpus[idx-1])) && (end == len(corpus) || !isWordByte(corpus[end])) {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
