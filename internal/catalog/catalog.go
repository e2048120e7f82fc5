// Package catalog asks a text generator for a synthetic app catalog and
// parses the answer into domain apps.
package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"appsearch/internal/domain"
)

const minCount = 3

// Generator produces a catalog with exactly one provider call.
type Generator struct {
	text       domain.TextGenerator
	minApps    int
	minActions int
}

// NewGenerator returns a generator requesting at least minApps apps with at
// least minActions actions each. Counts below three are raised to three.
func NewGenerator(text domain.TextGenerator, minApps, minActions int) *Generator {
	return &Generator{
		text:       text,
		minApps:    max(minApps, minCount),
		minActions: max(minActions, minCount),
	}
}

// Generate calls the provider once and parses its answer. No retries.
func (g *Generator) Generate(ctx context.Context) ([]domain.App, error) {
	out, err := g.text.Generate(ctx, Prompt(g.minApps, g.minActions))
	if err != nil {
		return nil, domain.Wrap(domain.KindGeneration, "generate catalog", err)
	}
	if strings.TrimSpace(out) == "" {
		return nil, domain.Errorf(domain.KindGeneration, "generate catalog", "provider returned no content")
	}
	return Parse(out)
}

type wireAction struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type wireApp struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Actions     *[]wireAction `json:"actions"`
}

// Parse decodes generated text into apps. The text must be a JSON array of
// objects with string name and description and an actions array of objects
// with string name and description. One enclosing Markdown code fence is
// tolerated; anything else malformed fails with a parse error.
func Parse(text string) ([]domain.App, error) {
	const op = "parse catalog"

	body := stripFence(text)
	var wire []wireApp
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, domain.Wrap(domain.KindParse, op, err)
	}
	if wire == nil {
		return nil, domain.Errorf(domain.KindParse, op, "expected a JSON array of apps")
	}
	if len(wire) == 0 {
		return nil, domain.Errorf(domain.KindParse, op, "catalog is empty")
	}

	apps := make([]domain.App, 0, len(wire))
	for i, w := range wire {
		if w.Name == nil || w.Description == nil || w.Actions == nil {
			return nil, domain.Errorf(domain.KindParse, op, "app %d: name, description and actions are required", i)
		}
		app := domain.App{
			Name:        *w.Name,
			Description: *w.Description,
			Actions:     make([]domain.Action, 0, len(*w.Actions)),
		}
		for j, a := range *w.Actions {
			if a.Name == nil || a.Description == nil {
				return nil, domain.Errorf(domain.KindParse, op, "app %q action %d: name and description are required", app.Name, j)
			}
			app.Actions = append(app.Actions, domain.Action{Name: *a.Name, Description: *a.Description})
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// stripFence removes a single Markdown code fence wrapping the whole text.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := s[3 : len(s)-3]
	nl := strings.IndexByte(inner, '\n')
	if nl < 0 {
		return s
	}
	// the info string (e.g. "json") sits on the opening fence line
	if strings.ContainsAny(strings.TrimSpace(inner[:nl]), " \t{[") {
		return s
	}
	return strings.TrimSpace(inner[nl+1:])
}

