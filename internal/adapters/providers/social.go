package providers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/okian/nitecap/pkg/logger"
)

// providerSocial is the rate limiter bucket for social-profile lookups.
const providerSocial = "instagram"

const (
	socialRequestTimeout = 8 * time.Second
	socialRetryMax       = 2
	defaultSocialBaseURL = "https://graph.instagram.com"
)

// bioKeywords are the profile-bio cues that make a website count as a
// nightlife social presence.
var bioKeywords = []string{
	"bar", "club", "cocktails", "nightlife", "speakeasy",
	"draft", "taproom", "mixology", "djs", "dancing",
}

// Gate is the outbound admission control consulted before every provider
// call. Implemented by the rate limiter.
type Gate interface {
	Allow(provider string) bool
}

// SocialOption applies a configuration option to the SocialValidator.
type SocialOption func(*SocialValidator)

// WithGate sets the outbound admission gate.
func WithGate(g Gate) SocialOption {
	return func(v *SocialValidator) {
		v.gate = g
	}
}

// WithToken sets the provider access token. Without a token the validator
// answers false for everything rather than calling out.
func WithToken(token string) SocialOption {
	return func(v *SocialValidator) {
		v.token = token
	}
}

// WithBaseURL overrides the provider endpoint. Tests point this at a local
// server.
func WithBaseURL(base string) SocialOption {
	return func(v *SocialValidator) {
		if base != "" {
			v.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithSocialLogger sets a custom logger for the validator.
func WithSocialLogger(log logger.Logger) SocialOption {
	return func(v *SocialValidator) {
		if log != nil {
			v.log = log
		}
	}
}

// SocialValidator checks whether a venue's website points at a social
// profile whose bio reads like a nightlife business. It implements the
// scoring engine's SocialValidator capability.
//
// Every failure mode — missing token, rate-limit denial, transport error,
// unparseable body — is "false", never an error: enrichment continues with
// whatever fields are already present.
type SocialValidator struct {
	client  *retryablehttp.Client
	gate    Gate
	baseURL string
	token   string
	log     logger.Logger
}

// NewSocialValidator builds a validator with a retrying HTTP client.
func NewSocialValidator(opts ...SocialOption) *SocialValidator {
	client := retryablehttp.NewClient()
	client.RetryMax = socialRetryMax
	client.HTTPClient.Timeout = socialRequestTimeout
	client.Logger = nil

	v := &SocialValidator{
		client:  client,
		baseURL: defaultSocialBaseURL,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate implements scoring.SocialValidator.
func (v *SocialValidator) Validate(website string) bool {
	handle := handleFromWebsite(website)
	if handle == "" || v.token == "" {
		return false
	}

	if v.gate != nil && !v.gate.Allow(providerSocial) {
		return false
	}

	reqURL := fmt.Sprintf("%s/%s?fields=biography&access_token=%s",
		v.baseURL, url.PathEscape(handle), url.QueryEscape(v.token))

	resp, err := v.client.Get(reqURL)
	if err != nil {
		v.warn("social profile lookup failed", logger.String("handle", handle), logger.Error(err))
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}

	bio := strings.ToLower(gjson.GetBytes(body, "biography").String())
	for _, kw := range bioKeywords {
		if strings.Contains(bio, kw) {
			return true
		}
	}
	return false
}

// handleFromWebsite extracts a profile handle from a profile URL, or passes
// a bare handle through.
func handleFromWebsite(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}

	if !strings.Contains(website, "/") {
		return strings.TrimPrefix(website, "@")
	}

	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	if u.Host != "" && !strings.Contains(strings.ToLower(u.Host), "instagram.") {
		return ""
	}
	return strings.Trim(u.Path, "/")
}

func (v *SocialValidator) warn(msg string, fields ...logger.Field) {
	if v.log == nil {
		return
	}
	v.log.Warn(context.Background(), msg, fields...)
}
