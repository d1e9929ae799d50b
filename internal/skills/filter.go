package skills

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"kareerbot/pkg/ai"
)

const extractSystemPrompt = "You extract technology and skill names from chat messages. " +
	"Respond with ONLY a JSON array of strings, one entry per distinct skill mentioned. " +
	"Respond with [] when the message mentions no skills."

// knownSkills is the fallback vocabulary used when the model path yields
// nothing. Matching is case-insensitive on token boundaries.
var knownSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "Golang", "C++", "C#",
	"Rust", "Ruby", "PHP", "Swift", "Kotlin", "Scala", "SQL", "PostgreSQL",
	"MySQL", "MongoDB", "Redis", "Elasticsearch", "Kafka", "Docker",
	"Kubernetes", "AWS", "Azure", "GCP", "Terraform", "Ansible", "Jenkins",
	"Linux", "Git", "React", "Angular", "Vue", "Node.js", "Django", "Flask",
	"Spring", "GraphQL", "gRPC", "REST", "HTML", "CSS", "Pandas", "NumPy",
	"TensorFlow", "PyTorch", "Machine Learning", "Deep Learning", "NLP",
	"Excel", "Tableau",
}

var knownSkillPatterns = compileSkillPatterns(knownSkills)

// Filter extracts skill mentions from chat messages: model-first with a
// lenient JSON-array parse, fixed-vocabulary matching as the fallback.
type Filter struct {
	generator ai.TextGenerator
}

// NewFilter builds a filter over the given generator.
func NewFilter(generator ai.TextGenerator) *Filter {
	return &Filter{generator: generator}
}

// Extract returns the deduplicated, sorted set of skill names found in
// message. It never fails: model errors degrade to the vocabulary fallback,
// and an empty result is a valid outcome.
func (f *Filter) Extract(ctx context.Context, message string) []string {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	if found := f.extractWithModel(ctx, message); len(found) > 0 {
		return found
	}
	return matchKnownSkills(message)
}

func (f *Filter) extractWithModel(ctx context.Context, message string) []string {
	if f.generator == nil {
		return nil
	}
	reply, err := f.generator.GenerateText(ctx, extractSystemPrompt, message)
	if err != nil {
		slog.Warn("skill extraction model call failed, using fallback vocabulary", "err", err)
		return nil
	}
	var raw []string
	if !ai.DecodeArray(reply, &raw) {
		slog.Warn("skill extraction reply had no parseable array, using fallback vocabulary")
		return nil
	}
	return dedupe(raw)
}

func matchKnownSkills(message string) []string {
	var found []string
	for i, pattern := range knownSkillPatterns {
		if pattern.MatchString(message) {
			found = append(found, knownSkills[i])
		}
	}
	return dedupe(found)
}

func dedupe(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func compileSkillPatterns(skills []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(skills))
	for i, skill := range skills {
		// Tokens like C++ and Node.js rule out \b, so boundaries are
		// anything that is not a word, plus, or sharp character.
		patterns[i] = regexp.MustCompile(`(?i)(^|[^\w+#])` + regexp.QuoteMeta(skill) + `($|[^\w+#])`)
	}
	return patterns
}
