package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mlecoq/estimation-ia-api/internal/logger"
	"github.com/mlecoq/estimation-ia-api/internal/model"
	"golang.org/x/time/rate"
)

const (
	githubBaseURL = "https://api.github.com"

	// GitHubPageSize : nombre de tickets fermés analysés
	GitHubPageSize = 100
)

// GitHubClient calcule la vélocité historique depuis les issues fermées d'un dépôt
type GitHubClient struct {
	token      string
	owner      string
	repo       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGitHubClient crée un nouveau client GitHub
func NewGitHubClient(token, owner, repo string) *GitHubClient {
	return &GitHubClient{
		token:      token,
		owner:      owner,
		repo:       repo,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Configured indique si le client dispose de ses credentials
func (c *GitHubClient) Configured() bool {
	return c.token != "" && c.owner != "" && c.repo != ""
}

type githubIssue struct {
	CreatedAt   time.Time       `json:"created_at"`
	ClosedAt    *time.Time      `json:"closed_at"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
}

// Velocity analyse les derniers tickets fermés et retourne le résumé normalisé.
// Les pull requests sont écartées : seules les issues comptent.
func (c *GitHubClient) Velocity(ctx context.Context) (*model.VelocitySummary, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: GitHub (GITHUB_TOKEN, GITHUB_OWNER, GITHUB_REPO)", model.ErrSourceNotConfigured)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues?state=closed&per_page=%d", githubBaseURL, c.owner, c.repo, GitHubPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("créer requête: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requête GitHub: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: token GitHub refusé", model.ErrSourceNotConfigured)
	case http.StatusTooManyRequests:
		return nil, model.ErrRateLimited
	default:
		return nil, fmt.Errorf("GitHub status %d", resp.StatusCode)
	}

	var issues []githubIssue
	if err := json.NewDecoder(resp.Body).Decode(&issues); err != nil {
		return nil, fmt.Errorf("décoder issues: %w", err)
	}

	// Ne garde que les issues fermées avec dates exploitables
	type span struct{ created, closed time.Time }
	var spans []span
	for _, i := range issues {
		if len(i.PullRequest) > 0 || i.ClosedAt == nil || i.CreatedAt.IsZero() {
			continue
		}
		spans = append(spans, span{created: i.CreatedAt, closed: *i.ClosedAt})
	}

	summary := &model.VelocitySummary{Source: model.SourceGitHub}
	if len(spans) == 0 {
		return summary, nil
	}

	minClosed, maxClosed := spans[0].closed, spans[0].closed
	var totalResolution time.Duration
	for _, s := range spans {
		if s.closed.Before(minClosed) {
			minClosed = s.closed
		}
		if s.closed.After(maxClosed) {
			maxClosed = s.closed
		}
		totalResolution += s.closed.Sub(s.created)
	}

	weeks := int(maxClosed.Sub(minClosed).Hours()/(24*7) + 0.5)
	if weeks < 1 {
		weeks = 1
	}

	summary.TotalClosed = len(spans)
	summary.WeeksAnalyzed = weeks
	summary.UnitsPerWeek = float64(len(spans)) / float64(weeks)
	summary.AvgResolutionDays = totalResolution.Hours() / 24 / float64(len(spans))

	logger.Get(ctx).Info().
		Str("source", summary.Source).
		Float64("avg_per_week", summary.UnitsPerWeek).
		Float64("avg_duration", summary.AvgResolutionDays).
		Int("total_closed", summary.TotalClosed).
		Int("weeks", summary.WeeksAnalyzed).
		Msg("Vélocité calculée")

	return summary, nil
}
