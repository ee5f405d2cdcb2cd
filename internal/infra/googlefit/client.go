// Package googlefit implements the fit.Provider contract over the Google
// OAuth 2.0 and Fitness REST endpoints.
package googlefit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fitness_assistant_bot/internal/domain/calendar"
	"fitness_assistant_bot/internal/domain/fit"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL   = "https://oauth2.googleapis.com/token"
	defaultFitnessURL = "https://www.googleapis.com/fitness/v1/users/me/dataset:aggregate"

	activityScope = "https://www.googleapis.com/auth/fitness.activity.read"

	stepsDataType    = "com.google.step_count.delta"
	caloriesDataType = "com.google.calories.expended"
)

// ErrUnauthorized is returned when Google rejects the token or code.
var ErrUnauthorized = errors.New("google fit: unauthorized")

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Client talks to Google. Endpoint fields default to the public Google URLs.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time

	AuthEndpoint    string
	TokenEndpoint   string
	FitnessEndpoint string
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		cfg:             cfg,
		httpClient:      httpClient,
		now:             func() time.Time { return time.Now().UTC() },
		AuthEndpoint:    defaultAuthURL,
		TokenEndpoint:   defaultTokenURL,
		FitnessEndpoint: defaultFitnessURL,
	}
}

// AuthURL returns the consent page URL; state comes back with the code.
func (c *Client) AuthURL(state string) string {
	q := url.Values{
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURL},
		"response_type": {"code"},
		"scope":         {activityScope},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
		"state":         {state},
	}
	return c.AuthEndpoint + "?" + q.Encode()
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*fit.Token, error) {
	return c.token(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.cfg.RedirectURL},
	})
}

// RefreshToken obtains a new access token. Google usually omits the refresh
// token in the reply, in which case the returned RefreshToken is empty.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*fit.Token, error) {
	return c.token(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context, form url.Values) (*fit.Token, error) {
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp tokenResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("token response has no access_token")
	}
	return &fit.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       c.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

type aggregateRequest struct {
	AggregateBy  []aggregateBy `json:"aggregateBy"`
	BucketByTime bucketByTime  `json:"bucketByTime"`
	StartMillis  int64         `json:"startTimeMillis"`
	EndMillis    int64         `json:"endTimeMillis"`
}

type aggregateBy struct {
	DataTypeName string `json:"dataTypeName"`
}

type bucketByTime struct {
	DurationMillis int64 `json:"durationMillis"`
}

type aggregateResponse struct {
	Bucket []struct {
		Dataset []struct {
			Point []struct {
				DataTypeName string `json:"dataTypeName"`
				Value        []struct {
					IntVal *int64   `json:"intVal"`
					FpVal  *float64 `json:"fpVal"`
				} `json:"value"`
			} `json:"point"`
		} `json:"dataset"`
	} `json:"bucket"`
}

// GetDailyActivity sums steps and expended calories over day's UTC date.
func (c *Client) GetDailyActivity(ctx context.Context, accessToken string, day time.Time) (*fit.DailyActivity, error) {
	start := calendar.StartOfDay(day)
	body, err := json.Marshal(aggregateRequest{
		AggregateBy:  []aggregateBy{{DataTypeName: stepsDataType}, {DataTypeName: caloriesDataType}},
		BucketByTime: bucketByTime{DurationMillis: (24 * time.Hour).Milliseconds()},
		StartMillis:  start.UnixMilli(),
		EndMillis:    start.AddDate(0, 0, 1).UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode aggregate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.FitnessEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp aggregateResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("aggregate request failed: %w", err)
	}

	var steps int64
	var calories float64
	for _, b := range resp.Bucket {
		for _, ds := range b.Dataset {
			for _, p := range ds.Point {
				for _, v := range p.Value {
					switch {
					case strings.HasPrefix(p.DataTypeName, stepsDataType) && v.IntVal != nil:
						steps += *v.IntVal
					case strings.HasPrefix(p.DataTypeName, caloriesDataType) && v.FpVal != nil:
						calories += *v.FpVal
					}
				}
			}
		}
	}
	return &fit.DailyActivity{Steps: int(steps), Calories: int(calories)}, nil
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, res.StatusCode)
	case res.StatusCode == http.StatusBadRequest && bytes.Contains(data, []byte("invalid_grant")):
		return fmt.Errorf("%w: invalid_grant", ErrUnauthorized)
	case res.StatusCode >= 300:
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, truncate(data, 200))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
