package prompt

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// Category is the intent bucket a user message falls into. Order is
// significant: rules are tried top to bottom and the first match wins.
type Category string

const (
	CategoryIdentity   Category = "identity"
	CategoryTechnical  Category = "technical"
	CategoryCreative   Category = "creative"
	CategoryAnalytical Category = "analytical"
	CategoryDefault    Category = "default"
)

var identityPatterns = compileAll(
	`who (made|created|built|developed|designed) you`,
	`who are you`,
	`tell me about (yourself|your (creators?|makers?|developers?|designers?|team))`,
	`what( kind of)? (system|model|ai|assistant) are you`,
	`how (were you|was this) (made|created|built|developed|designed)`,
	`what company (made|created|built|developed|designed) you`,
	`what is (neural trinity|your team)`,
	`who is (karthikeya|abhinav|adithya)`,
	`what is your (version|release)`,
	`when were you (made|created|built|developed|designed)`,
	`what can you do`,
	`what are your capabilities`,
	`system prompt`,
)

var (
	technicalPattern  = compile(`code|program|function|algorithm|api|debug|error|syntax|framework`)
	creativePattern   = compile(`create|generate|write|design|story|poem|script|imagine`)
	analyticalPattern = compile(`why|how|explain|analyze|compare|difference|relationship|impact`)
)

type rule struct {
	category Category
	match    func(message string) bool
	wrap     func(system, message string) string
}

// Rules are evaluated short-circuit top to bottom; a message that matches
// both an identity pattern and a technical keyword resolves to identity.
var rules = []rule{
	{
		category: CategoryIdentity,
		match:    func(m string) bool { return matchAny(m, identityPatterns) },
		wrap: func(system, message string) string {
			return fmt.Sprintf("%s\n\n[USER INQUIRY ABOUT SYSTEM IDENTITY]: %s\n\nRespond comprehensively about your identity as Trinity-GPT, developed by the Neural Trinity team.", system, message)
		},
	},
	{
		category: CategoryTechnical,
		match:    func(m string) bool { return matches(technicalPattern, m) },
		wrap: func(system, message string) string {
			return fmt.Sprintf("%s\n\n[TECHNICAL QUERY]: %s\n\nProvide a technically precise response with code examples where appropriate.", system, message)
		},
	},
	{
		category: CategoryCreative,
		match:    func(m string) bool { return matches(creativePattern, m) },
		wrap: func(system, message string) string {
			return fmt.Sprintf("%s\n\n[CREATIVE REQUEST]: %s\n\nUtilize your NEXUS framework for this creative task.", system, message)
		},
	},
	{
		category: CategoryAnalytical,
		match:    func(m string) bool { return matches(analyticalPattern, m) },
		wrap: func(system, message string) string {
			return fmt.Sprintf("%s\n\n[ANALYTICAL QUERY]: %s\n\nApply your QUANTUM reasoning framework to provide a nuanced response.", system, message)
		},
	},
	{
		category: CategoryDefault,
		match:    func(string) bool { return true },
		wrap: func(system, message string) string {
			return fmt.Sprintf("%s\n\n[STANDARD QUERY]: %s", system, message)
		},
	},
}

// Classify returns the intent category for a raw user message.
func Classify(message string) Category {
	for _, r := range rules {
		if r.match(message) {
			return r.category
		}
	}
	return CategoryDefault
}

// Enhance wraps a user message with the persona block and the instruction
// suffix of its intent category.
func Enhance(message, username string, now time.Time) string {
	system := SystemPrompt(username, now)
	for _, r := range rules {
		if r.match(message) {
			return r.wrap(system, message)
		}
	}
	return system + "\n\n[STANDARD QUERY]: " + message
}

func compile(pattern string) *regexp2.Regexp {
	return regexp2.MustCompile(pattern, regexp2.IgnoreCase)
}

func compileAll(patterns ...string) []*regexp2.Regexp {
	res := make([]*regexp2.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = compile(p)
	}
	return res
}

func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

func matchAny(s string, res []*regexp2.Regexp) bool {
	for _, re := range res {
		if matches(re, s) {
			return true
		}
	}
	return false
}
