package services

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"pennywise/internal/config"
	apperrors "pennywise/internal/errors"
)

// googleIdentity exchanges authorization codes with Google and reads the
// signed-in user's profile.
type googleIdentity struct {
	oauthConfig *oauth2.Config
}

// NewGoogleIdentity creates a GoogleIdentity from the server's Google settings.
func NewGoogleIdentity(cfg config.Google) GoogleIdentity {
	return &googleIdentity{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{googleoauth.UserinfoEmailScope, googleoauth.UserinfoProfileScope},
		},
	}
}

// Exchange trades code for a token and fetches the user info it grants.
func (g *googleIdentity) Exchange(ctx context.Context, code, redirectURI string) (*GoogleProfile, error) {
	if g.oauthConfig.ClientID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrOAuthExchange, "Google sign-in is not configured")
	}

	var opts []oauth2.AuthCodeOption
	if redirectURI != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	}
	token, err := g.oauthConfig.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrOAuthExchange, fmt.Errorf("exchanging code: %w", err))
	}

	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(g.oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrOAuthExchange, fmt.Errorf("creating userinfo client: %w", err))
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrOAuthExchange, fmt.Errorf("fetching userinfo: %w", err))
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, apperrors.WithMessage(apperrors.ErrOAuthExchange, "Google account email is not verified")
	}

	return &GoogleProfile{Subject: info.Id, Email: info.Email, Name: info.Name}, nil
}
