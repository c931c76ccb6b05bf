package domain

import "time"

// CommitActivityWeek represents one week of the commit activity statistics
type CommitActivityWeek struct {
	Week  WeekBucket
	Total int
	Days  []int
}

// Star represents a stargazer record
type Star struct {
	User      string
	StarredAt *time.Time
}

// Issue represents an issue record. The source reports pull requests through the
// same endpoint, flagged by IsPullRequest.
type Issue struct {
	Number        int
	IsPullRequest bool
	CreatedAt     *time.Time
	ClosedAt      *time.Time
}

// ContributorWeek represents a contributor's commits in a single week
type ContributorWeek struct {
	Week    WeekBucket
	Commits int
}

// ContributorActivity represents a contributor and their weekly commit counts
type ContributorActivity struct {
	ContributorID string
	Login         string
	Weeks         []ContributorWeek
}
