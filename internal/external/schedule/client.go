package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/KingJoefa/AFBParley-sub002/internal/contracts"
	"github.com/KingJoefa/AFBParley-sub002/pkg/config"
	"github.com/KingJoefa/AFBParley-sub002/pkg/httputil"
	"github.com/KingJoefa/AFBParley-sub002/pkg/logger"
)

// Client fetches the weekly NFL slate from the schedule source. All
// schedule lookups go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.ScheduleConfig
}

// Game is one scheduled matchup.
type Game struct {
	Matchup contracts.Matchup `json:"matchup"`
	Kickoff time.Time         `json:"kickoff"`
}

// NewClient creates a new schedule client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg.Schedule,
	}
}

// Fallback returns the configured season and week used when the source
// is unreachable or a request names neither.
func (c *Client) Fallback() (season, week int) {
	return c.cfg.FallbackSeason, c.cfg.FallbackWeek
}

// FetchWeek fetches and parses one week's slate.
func (c *Client) FetchWeek(ctx context.Context, season, week int) ([]Game, error) {
	url := fmt.Sprintf("%s/years/%d/week_%d.htm", c.cfg.BaseURL, season, week)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	games, err := parseWeekHTML(string(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"season": season,
		"week":   week,
		"games":  len(games),
	}).Debug("Fetched schedule")

	return games, nil
}

// parseWeekHTML pulls matchups out of the week page. Each game sits in
// a summary table carrying one row per team; the visitor row precedes
// the home row.
func parseWeekHTML(html string) ([]Game, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var games []Game

	doc.Find("div.game_summary").Each(func(i int, game *goquery.Selection) {
		var teams []string
		game.Find("table.teams tbody tr").Each(func(j int, row *goquery.Selection) {
			name := strings.TrimSpace(row.Find("td a").First().Text())
			if name != "" {
				teams = append(teams, name)
			}
		})

		if len(teams) < 2 {
			return
		}

		g := Game{
			Matchup: contracts.Matchup{Away: teams[0], Home: teams[1]},
		}
		if dateText := strings.TrimSpace(game.Find("tr.date td").First().Text()); dateText != "" {
			if t, err := time.Parse("Jan 2, 2006", dateText); err == nil {
				g.Kickoff = t
			}
		}
		games = append(games, g)
	})

	if len(games) == 0 {
		return nil, fmt.Errorf("no games found in schedule page")
	}

	return games, nil
}
