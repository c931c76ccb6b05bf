package collector

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

// MockSource is a mock implementation of Source for testing.
type MockSource struct {
	mock.Mock
}

var _ Source = &MockSource{} // Compile-time check

// CommitActivity implements the Source interface.
func (m *MockSource) CommitActivity(ctx context.Context, owner, repo string) ([]domain.CommitActivityWeek, error) {
	args := m.Called(ctx, owner, repo)
	weeks, _ := args.Get(0).([]domain.CommitActivityWeek)
	return weeks, args.Error(1)
}

// ContributorStats implements the Source interface.
func (m *MockSource) ContributorStats(ctx context.Context, owner, repo string) ([]domain.ContributorActivity, error) {
	args := m.Called(ctx, owner, repo)
	contributors, _ := args.Get(0).([]domain.ContributorActivity)
	return contributors, args.Error(1)
}

// Stargazers implements the Source interface.
func (m *MockSource) Stargazers(ctx context.Context, owner, repo string, req PageRequest) ([]domain.Star, error) {
	args := m.Called(ctx, owner, repo, req)
	stars, _ := args.Get(0).([]domain.Star)
	return stars, args.Error(1)
}

// Issues implements the Source interface.
func (m *MockSource) Issues(ctx context.Context, owner, repo string, req PageRequest) ([]domain.Issue, error) {
	args := m.Called(ctx, owner, repo, req)
	issues, _ := args.Get(0).([]domain.Issue)
	return issues, args.Error(1)
}
