package auth

import (
	"encoding/json"

	"golang.org/x/oauth2"
)

// Endpoint is Strava's OAuth endpoint. Strava wants credentials in the form body.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Scope lets the dashboard read private rides and their streams.
// Strava expects one comma-separated scope parameter.
const Scope = "read,activity:read_all"

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenURL     string // overrides Endpoint.TokenURL when set
}

// NewOAuthConfig builds the oauth2 config for the Strava app
func NewOAuthConfig(cfg Config) *oauth2.Config {
	endpoint := Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{Scope},
	}
}

// AuthResult is a granted token and the athlete it belongs to
type AuthResult struct {
	Token     *oauth2.Token
	AthleteID int64
}

// ExtractAthleteID reads the athlete Strava embeds in code exchange
// responses. Refresh responses carry none and yield 0.
func ExtractAthleteID(token *oauth2.Token) int64 {
	if token == nil {
		return 0
	}
	athlete, ok := token.Extra("athlete").(map[string]interface{})
	if !ok {
		return 0
	}
	switch id := athlete["id"].(type) {
	case float64:
		return int64(id)
	case json.Number:
		n, _ := id.Int64()
		return n
	}
	return 0
}
