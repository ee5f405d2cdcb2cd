package scenarios

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"strconv"
	"strings"
)

// ConnectExternalFit links a Google Fit account through the OAuth code flow.
type ConnectExternalFit struct{ base }

func (s *ConnectExternalFit) Kind() scenario.Kind { return scenario.KindConnectExternalFit }

func (s *ConnectExternalFit) Step(ctx context.Context, in scenario.Input, sc *scenario.Context) scenario.Result {
	switch sc.Step {
	case 0:
		if s.Fit == nil {
			return s.fail(in, errors.New("fit provider is not configured"), "Google Fit is not available right now.")
		}
		if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return s.fail(in, err, "Please register first with /start.")
			}
			return s.fail(in, err, genericFailure)
		}
		url := s.Fit.AuthURL(strconv.FormatInt(in.UserID, 10))
		return s.ask(in, sc, "Open this link, allow access and paste the code you get back here:\n"+url)
	case 1:
		code := strings.TrimSpace(in.Text)
		if code == "" {
			return s.retry(in, "Please paste the authorization code.")
		}
		return s.connect(ctx, in, code)
	default:
		return scenario.Completed()
	}
}

func (s *ConnectExternalFit) connect(ctx context.Context, in scenario.Input, code string) scenario.Result {
	token, err := s.Fit.ExchangeCode(ctx, code)
	if err != nil {
		return s.fail(in, err, "Could not connect Google Fit. Please try again with /connectfit.")
	}

	u, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return s.fail(in, err, genericFailure)
	}
	u.Fit = &user.FitCredential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return s.fail(in, err, genericFailure)
	}
	s.reply(in, "Google Fit connected. Your steps and calories will sync automatically.")
	return scenario.Completed()
}
