// Package ladder reads ranked ladder data from the game's public data API.
package ladder

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

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/okian/rosterrank/internal/domain/model"
	"github.com/okian/rosterrank/pkg/logger"
	"github.com/okian/rosterrank/pkg/metrics"
)

// Provider is the metrics label for ladder requests.
const Provider = "ladder"

// RegionPlaceholder is replaced by the region in the base URL.
const RegionPlaceholder = "{region}"

// Default client settings.
const (
	DefaultLocale            = "en_US"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 90
	DefaultRequestBurst      = 10

	// queueID and teamType select the 1v1 ladders.
	queueID  = 201
	teamType = 0
)

// Client is a rate-limited, authenticated ladder API client.
type Client struct {
	baseURL    string
	locale     string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     oauth2.TokenSource
	log        logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLocale sets the locale query parameter.
func WithLocale(locale string) ClientOption {
	return func(c *Client) {
		if locale != "" {
			c.locale = locale
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit throttles requests. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a ladder client. baseURL may contain {region}.
func NewClient(baseURL string, tokens oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		locale:     DefaultLocale,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(DefaultRequestsPerSecond, DefaultRequestBurst),
		tokens:     tokens,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate obtains a token so credential problems surface before any
// data is requested.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("%w: no token source", ErrToken)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrToken, err)
	}
	return tok, nil
}

// wire shapes
type seasonDTO struct {
	ID int `json:"id"`
}

type leagueDTO struct {
	Tier []struct {
		Division []struct {
			LadderID *int `json:"ladder_id"`
		} `json:"division"`
	} `json:"tier"`
}

type ladderDTO struct {
	Team []struct {
		Rating int `json:"rating"`
		Member []struct {
			CharacterLink struct {
				BattleTag string `json:"battle_tag"`
			} `json:"character_link"`
			LegacyLink struct {
				Name string `json:"name"`
			} `json:"legacy_link"`
			PlayedRaceCount []struct {
				Race struct {
					EnUS string `json:"en_US"`
				} `json:"race"`
			} `json:"played_race_count"`
		} `json:"member"`
	} `json:"team"`
}

// CurrentSeason returns the id of the region's current season, 0 when absent.
func (c *Client) CurrentSeason(ctx context.Context, region string) (int, error) {
	var out seasonDTO
	if err := c.get(ctx, region, "/data/sc2/season/current", &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// LadderIDs lists the ladder ids of every division of one league.
func (c *Client) LadderIDs(ctx context.Context, region string, season, tier int) ([]int, error) {
	path := fmt.Sprintf("/data/sc2/league/%d/%d/%d/%d", season, queueID, teamType, tier)
	var out leagueDTO
	if err := c.get(ctx, region, path, &out); err != nil {
		return nil, err
	}

	var ids []int
	for _, t := range out.Tier {
		for _, d := range t.Division {
			if d.LadderID != nil && *d.LadderID >= 0 {
				ids = append(ids, *d.LadderID)
			}
		}
	}
	return ids, nil
}

// Ladder returns the ranked records of one ladder.
func (c *Client) Ladder(ctx context.Context, region string, ladderID int) ([]model.LadderRecord, error) {
	var out ladderDTO
	if err := c.get(ctx, region, "/data/sc2/ladder/"+strconv.Itoa(ladderID), &out); err != nil {
		return nil, err
	}

	records := make([]model.LadderRecord, 0, len(out.Team))
	for _, t := range out.Team {
		rec := model.LadderRecord{Rating: t.Rating, Members: make([]model.LadderMember, 0, len(t.Member))}
		for _, m := range t.Member {
			member := model.LadderMember{
				PrimaryTag:  m.CharacterLink.BattleTag,
				LegacyAlias: m.LegacyLink.Name,
			}
			for _, prc := range m.PlayedRaceCount {
				if prc.Race.EnUS != "" {
					member.Races = append(member.Races, prc.Race.EnUS)
				}
			}
			rec.Members = append(rec.Members, member)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) regionURL(region string) string {
	return strings.ReplaceAll(c.baseURL, RegionPlaceholder, url.PathEscape(region))
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, region, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequest, path, err)
	}
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("locale", c.locale)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.regionURL(region)+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordHTTPRequest(Provider, 0)
		return fmt.Errorf("%w: %s: %w", ErrRequest, path, err)
	}
	defer resp.Body.Close()
	metrics.RecordHTTPRequest(Provider, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Debug(ctx, "ladder request rejected",
			logger.String("region", region),
			logger.String("path", path),
			logger.Int("status_code", resp.StatusCode))
		return &APIError{StatusCode: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}
