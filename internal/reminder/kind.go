package reminder

import (
	"fmt"
	"time"
)

// Kind is a tagged reminder variant. The mapping from Kind to identifier
// suffix is total and lives only here, so the scheduling and cancellation
// paths can never drift apart.
type Kind struct {
	slug    string
	ordinal int // daily check ordinal (1-based); 0 for fixed kinds
}

var (
	ThreeDaysBefore = Kind{slug: "3days"}
	OneDayBefore    = Kind{slug: "1day"}
	CompletionDay   = Kind{slug: "completion"}
	MidpointCheck   = Kind{slug: "midpoint"}
)

// maxDailyChecks bounds the daily-check ladder; dailyWindowDays is the
// days-until-completion window in which daily checks apply at all.
const (
	maxDailyChecks  = 3
	dailyWindowDays = 7
)

// DailyCheck returns the n-th daily progress check kind (n >= 1).
func DailyCheck(n int) Kind { return Kind{slug: "daily", ordinal: n} }

func (k Kind) IsDaily() bool { return k.slug == "daily" }

// IsCompletion reports whether k belongs to the completion ladder
// (gated by the completion-reminders settings toggle).
func (k Kind) IsCompletion() bool {
	return k == ThreeDaysBefore || k == OneDayBefore || k == CompletionDay
}

// IsProgress reports whether k is a progress check
// (gated by the progress-checks settings toggle).
func (k Kind) IsProgress() bool { return k == MidpointCheck || k.IsDaily() }

// Suffix returns the identifier suffix for this kind.
func (k Kind) Suffix() string {
	if k.IsDaily() {
		return fmt.Sprintf("daily-%d", k.ordinal)
	}
	return k.slug
}

func (k Kind) String() string { return k.Suffix() }

// Identifier returns the deterministic registration identifier for this kind
// of reminder on the given project.
func (k Kind) Identifier(projectID string) string {
	return projectID + "-" + k.Suffix()
}

// PossibleKinds returns every kind a single project can ever have scheduled:
// the fixed kinds plus the bounded daily-check ordinals.
func PossibleKinds() []Kind {
	kinds := []Kind{CompletionDay, OneDayBefore, ThreeDaysBefore, MidpointCheck}
	for n := 1; n <= maxDailyChecks; n++ {
		kinds = append(kinds, DailyCheck(n))
	}
	return kinds
}

// PossibleIdentifiers is the one and only cancellation list for a project.
func PossibleIdentifiers(projectID string) []string {
	kinds := PossibleKinds()
	ids := make([]string, 0, len(kinds))
	for _, k := range kinds {
		ids = append(ids, k.Identifier(projectID))
	}
	return ids
}

// Event is a single computed reminder: the kind, the instant it should fire,
// and the identifier it will be registered under. Events are transient; they
// are recomputed from project state on every schedule pass.
type Event struct {
	Kind       Kind
	At         time.Time
	Identifier string
}
