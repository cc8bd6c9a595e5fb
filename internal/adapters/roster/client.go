// Package roster reads tournament team rosters from the bracket provider.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/rosterrank/internal/domain/model"
	"github.com/okian/rosterrank/pkg/logger"
	"github.com/okian/rosterrank/pkg/metrics"
)

// Provider is the metrics label for roster requests.
const Provider = "roster"

// Default client settings.
const (
	DefaultPageSize = 500
	DefaultTimeout  = 30 * time.Second
)

// Client pages through a tournament's teams.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPageSize sets the page limit sent to the provider.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a roster client for the provider at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wire shapes
type teamDTO struct {
	Name    string      `json:"name"`
	Players []playerDTO `json:"players"`
}

type playerDTO struct {
	InGameName string `json:"inGameName"`
}

// Teams returns every team of the tournament. Pages are requested until one
// comes back empty; a non-200 page counts as empty.
func (c *Client) Teams(ctx context.Context, tournamentID string) ([]model.RosterTeam, error) {
	if strings.TrimSpace(tournamentID) == "" {
		return nil, ErrNoTournament
	}

	var teams []model.RosterTeam
	for page := 1; ; page++ {
		batch, err := c.page(ctx, tournamentID, page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		teams = append(teams, batch...)
	}

	c.log.Debug(ctx, "roster fetched",
		logger.String("tournament_id", tournamentID),
		logger.Int("teams", len(teams)))
	return teams, nil
}

func (c *Client) page(ctx context.Context, tournamentID string, page int) ([]model.RosterTeam, error) {
	metrics.RecordRosterPage()

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.pageSize))
	fullURL := c.baseURL + "/tournaments/" + url.PathEscape(tournamentID) + "/teams?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordHTTPRequest(Provider, 0)
		return nil, fmt.Errorf("%w: page %d: %w", ErrRequest, page, err)
	}
	defer resp.Body.Close()
	metrics.RecordHTTPRequest(Provider, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		c.log.Warn(ctx, "roster page not available",
			logger.Int("page", page),
			logger.Int("status_code", resp.StatusCode))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	var dtos []teamDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrDecode, page, err)
	}
	return toTeams(dtos), nil
}

func toTeams(dtos []teamDTO) []model.RosterTeam {
	teams := make([]model.RosterTeam, 0, len(dtos))
	for _, d := range dtos {
		t := model.RosterTeam{Name: d.Name, Players: make([]model.RosterPlayer, 0, len(d.Players))}
		for _, p := range d.Players {
			t.Players = append(t.Players, model.RosterPlayer{DisplayName: p.InGameName})
		}
		teams = append(teams, t)
	}
	return teams
}
