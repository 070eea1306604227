package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
)

const securetokenURL = "https://securetoken.googleapis.com/v1/token"

// A refresher exchanges a refresh token for a fresh ID token.
//
// The securetoken endpoint speaks the OAuth2 refresh_token grant,
// returning the new ID token as an extra field.
type refresher struct {
	conf *oauth2.Config
}

func newRefresher(tokenURL, apiKey string) *refresher {
	return &refresher{
		conf: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL + "?key=" + url.QueryEscape(apiKey),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

func (r *refresher) Refresh(ctx context.Context, creds Credentials) (Credentials, error) {
	if creds.RefreshToken == "" {
		return Credentials{}, fmt.Errorf("%w: no refresh token", ErrInvalidCredentials)
	}

	tok, err := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < 500 {
			return Credentials{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
		}

		return Credentials{}, err
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return Credentials{}, fmt.Errorf("%w: refresh returned no id_token", ErrUnexpected)
	}

	next := creds
	next.IDToken = idToken
	next.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}

	if uid, ok := tok.Extra("user_id").(string); ok && uid != "" {
		next.UID = uid
	}

	return next, nil
}
