package stats

import (
	"context"

	goSession "github.com/fraudlens/goSession"
)

// NameValue is one named data point in a distribution series.
type NameValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// FlowNode is one node of the fraud-flow sankey diagram. Category indexes
// the stage: 0 channel, 1 pattern, 2 tactic.
type FlowNode struct {
	Name     string `json:"name"`
	Category int    `json:"category"`
}

// FlowLink connects two flow nodes by index, weighted by case count.
type FlowLink struct {
	Source int   `json:"source"`
	Target int   `json:"target"`
	Value  int64 `json:"value"`
}

// Flow is the full sankey data set.
type Flow struct {
	Nodes []FlowNode `json:"nodes"`
	Links []FlowLink `json:"links"`
}

// YearlyCases is one year of reported/filed fraud case counts.
type YearlyCases struct {
	Year          int   `json:"year"`
	ReportedCases int64 `json:"reported_cases"`
	FiledCases    int64 `json:"filed_cases"`
}

// PlatformStatistics is the platform-wide payload from
// GET /statistics/platform/.
type PlatformStatistics struct {
	FraudTypeDistribution []NameValue   `json:"fraud_type_distribution"`
	TacticFrequency       []NameValue   `json:"tactic_frequency"`
	EmotionalTriggers     []NameValue   `json:"emotional_triggers"`
	FraudFlow             Flow          `json:"fraud_flow"`
	FraudCasesYearly      []YearlyCases `json:"fraud_cases_yearly"`
}

// Achievement is one per-user achievement progress entry.
type Achievement struct {
	Type     string  `json:"achievement_type"`
	Progress float64 `json:"progress"`
}

// Skill is one per-user skill score entry.
type Skill struct {
	Type  string  `json:"skill_type"`
	Score float64 `json:"score"`
}

// UserStatistics is the per-user payload from GET /statistics/user/.
type UserStatistics struct {
	Achievements []Achievement `json:"achievements"`
	Skills       []Skill       `json:"skills"`
}

// Client fetches statistics through an authenticated session.
type Client struct {
	session *goSession.Session
}

// NewClient wraps session.
func NewClient(session *goSession.Session) *Client {
	return &Client{session: session}
}

// Platform fetches the platform-wide statistics. The endpoint is public but
// still goes through the session client for consistent headers and limits.
func (c *Client) Platform(ctx context.Context) (*PlatformStatistics, error) {
	var out PlatformStatistics
	if err := c.session.GetJSON(ctx, "/statistics/platform/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// User fetches the calling user's statistics. Requires an authenticated
// session; a mid-flight token expiry is recovered by the session transport.
func (c *Client) User(ctx context.Context) (*UserStatistics, error) {
	var out UserStatistics
	if err := c.session.GetJSON(ctx, "/statistics/user/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
