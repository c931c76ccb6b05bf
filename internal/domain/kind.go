package domain

import "strings"

// SeriesKind represents the kind of weekly series to compute
type SeriesKind string

const (
	SeriesKindCommits      SeriesKind = "commits"
	SeriesKindContributors SeriesKind = "contributors"
	SeriesKindStarsOpened  SeriesKind = "starsOpened"
	SeriesKindIssuesOpened SeriesKind = "issuesOpened"
	SeriesKindIssuesClosed SeriesKind = "issuesClosed"
)

// AllSeriesKinds lists every supported kind in display order
var AllSeriesKinds = []SeriesKind{
	SeriesKindCommits,
	SeriesKindContributors,
	SeriesKindStarsOpened,
	SeriesKindIssuesOpened,
	SeriesKindIssuesClosed,
}

// ParseSeriesKind accepts the canonical names as well as snake and kebab case aliases
func ParseSeriesKind(s string) (SeriesKind, bool) {
	normalized := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(s)))
	for _, kind := range AllSeriesKinds {
		if strings.ToLower(string(kind)) == normalized {
			return kind, true
		}
	}
	switch normalized {
	case "stars":
		return SeriesKindStarsOpened, true
	case "commitactivity":
		return SeriesKindCommits, true
	}
	return "", false
}

// WeeklySeries represents a computed series for a repository
type WeeklySeries struct {
	Kind   SeriesKind `json:"kind"`
	Owner  string     `json:"owner"`
	Repo   string     `json:"repo"`
	Points Series     `json:"points"`
}

// Dashboard holds every series of a single repository computed from the same instant
type Dashboard struct {
	Owner       string                `json:"owner"`
	Repo        string                `json:"repo"`
	GeneratedAt int64                 `json:"generated_at"`
	Series      map[SeriesKind]Series `json:"series"`
}
