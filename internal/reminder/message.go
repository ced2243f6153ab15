package reminder

import (
	"fmt"
	"strings"
)

// Message is the display copy for one reminder.
type Message struct {
	Title string
	Body  string
}

// Resolver maps (recipe, kind) to display copy. Implementations must be
// total: every input yields a usable message, falling back to generic
// project-name copy when the recipe is absent or unknown.
type Resolver interface {
	Resolve(recipeKey, projectName string, k Kind) Message
}

// CatalogResolver resolves copy from a built-in recipe catalog.
type CatalogResolver struct {
	catalog map[string]recipeCopy
}

type recipeCopy struct {
	display    string
	completion string
	progress   string
}

// NewCatalogResolver returns a resolver preloaded with the built-in recipes.
func NewCatalogResolver() *CatalogResolver {
	return &CatalogResolver{catalog: map[string]recipeCopy{
		"plum-wine": {
			display:    "Plum wine",
			completion: "The plums have given all they have. Time to strain and bottle.",
			progress:   "Give the jar a gentle swirl and check the plums are submerged.",
		},
		"coffee-liqueur": {
			display:    "Coffee liqueur",
			completion: "The coffee beans are done steeping. Strain before it turns bitter.",
			progress:   "Taste a spoonful; pull the beans early if it's already bold enough.",
		},
		"limoncello": {
			display:    "Limoncello",
			completion: "The lemon peels are spent. Strain, sweeten, and chill.",
			progress:   "Check the peels; cloudy gold means the oils are extracting well.",
		},
		"ginger-brew": {
			display:    "Ginger brew",
			completion: "Fermentation window is closing. Bottle it today.",
			progress:   "Burp the jar and check carbonation.",
		},
	}}
}

func (r *CatalogResolver) Resolve(recipeKey, projectName string, k Kind) Message {
	name := strings.TrimSpace(projectName)
	if name == "" {
		name = "Your infusion"
	}
	rc, known := r.catalog[strings.ToLower(strings.TrimSpace(recipeKey))]
	if known {
		name = rc.display
	}

	switch {
	case k == CompletionDay:
		body := fmt.Sprintf("%s is ready today.", name)
		if known {
			body = rc.completion
		}
		return Message{Title: fmt.Sprintf("%s: ready today", name), Body: body}
	case k == OneDayBefore:
		return Message{
			Title: fmt.Sprintf("%s: 1 day to go", name),
			Body:  fmt.Sprintf("%s finishes tomorrow. Get strainers and bottles ready.", name),
		}
	case k == ThreeDaysBefore:
		return Message{
			Title: fmt.Sprintf("%s: 3 days to go", name),
			Body:  fmt.Sprintf("%s is almost there. Plan time for straining and bottling.", name),
		}
	case k == MidpointCheck:
		body := fmt.Sprintf("%s is halfway. A quick look now catches problems early.", name)
		if known {
			body = rc.progress
		}
		return Message{Title: fmt.Sprintf("%s: halfway check", name), Body: body}
	case k.IsDaily():
		body := fmt.Sprintf("%s is in its final days. Keep an eye on it.", name)
		if known {
			body = rc.progress
		}
		return Message{Title: fmt.Sprintf("%s: daily check", name), Body: body}
	default:
		return Message{
			Title: name,
			Body:  fmt.Sprintf("%s needs attention.", name),
		}
	}
}
