package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/certibase/backend/pkg/expression"
)

// Renderer substitutes {{placeholder}} tokens in document templates
// (certificates, contracts, proposals). A token is either a bare field name
// looked up in the environment or an expression handed to the expression
// engine, so templates can compute values like
// {{DATE_ADD(issue_date, 1095)}} or {{UPPER(client_name)}}.
type Renderer struct {
	engine *expression.Engine
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// NewRenderer creates a renderer with a fresh expression engine.
func NewRenderer() *Renderer {
	return &Renderer{engine: expression.NewEngine()}
}

// Render substitutes every placeholder in body against env. Unknown bare
// fields render as an empty string; expression errors fail the render so a
// broken template never produces a half-filled certificate.
func (r *Renderer) Render(body string, env map[string]interface{}) (string, error) {
	var renderErr error
	out := placeholderRe.ReplaceAllStringFunc(body, func(match string) string {
		if renderErr != nil {
			return match
		}
		token := strings.TrimSpace(placeholderRe.FindStringSubmatch(match)[1])

		// Bare field lookup first; cheaper and tolerant of missing fields.
		if isIdentifier(token) {
			if v, ok := env[token]; ok {
				return Stringify(v)
			}
			return ""
		}

		result, err := r.engine.Evaluate(token, env)
		if err != nil {
			renderErr = fmt.Errorf("template expression %q: %w", token, err)
			return match
		}
		return Stringify(result)
	})

	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}

// Validate checks every expression placeholder compiles against env.
func (r *Renderer) Validate(body string, env map[string]interface{}) error {
	for _, m := range placeholderRe.FindAllStringSubmatch(body, -1) {
		token := strings.TrimSpace(m[1])
		if isIdentifier(token) {
			continue
		}
		if err := r.engine.Validate(token, env); err != nil {
			return fmt.Errorf("template expression %q: %w", token, err)
		}
	}
	return nil
}

// Placeholders returns the distinct tokens referenced by a template body.
func Placeholders(body string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(body, -1) {
		token := strings.TrimSpace(m[1])
		if !seen[token] {
			seen[token] = true
			out = append(out, token)
		}
	}
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Stringify renders an evaluated value the way documents expect:
// dates as YYYY-MM-DD, floats without trailing zeros.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
