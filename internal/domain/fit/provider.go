package fit

import (
	"context"
	"time"
)

// DailyActivity is what the provider reports for one UTC day.
type DailyActivity struct {
	Steps    int
	Calories int
}

// Token is an access credential issued by the provider.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Provider is the external fitness data source.
type Provider interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*Token, error)
	GetDailyActivity(ctx context.Context, accessToken string, day time.Time) (*DailyActivity, error)
}
