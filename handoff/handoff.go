// ABOUTME: Cross-view artifact handoff: fixed keys, payload builders, and the Store interface.
// ABOUTME: The dashboard writes a payload under a key; the web views read it back by the same key.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2389-research/campaigndash/campaign"
)

// Key names a handed-off artifact.
type Key string

const (
	KeyResearch        Key = "campaign_research"
	KeyBreakdown       Key = "campaign_breakdown"
	KeyLandingPageCode Key = "campaign_landingPageCode"
	KeyContent         Key = "campaign_content"
)

// Keys lists every known key.
var Keys = []Key{KeyResearch, KeyBreakdown, KeyLandingPageCode, KeyContent}

// ParseKey validates a key taken from a URL or CLI argument.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

var (
	// ErrNotFound is returned when nothing has been handed off under a key.
	ErrNotFound = errors.New("handoff not found")
	// ErrUnknownKey is returned for key names outside Keys.
	ErrUnknownKey = errors.New("unknown handoff key")
)

// Store persists handoff payloads. Entries never expire.
type Store interface {
	Put(ctx context.Context, key Key, value []byte) error
	Get(ctx context.Context, key Key) ([]byte, error)
	Delete(ctx context.Context, key Key) error
	Keys(ctx context.Context) ([]Key, error)
	Close() error
}

// ResearchPayload is stored under KeyResearch.
type ResearchPayload struct {
	ResearchData ResearchData `json:"researchData"`
}

// ResearchData mirrors the research slice with the backend's field names.
type ResearchData struct {
	AudiencePersona any `json:"audience_persona"`
	CoreMessaging   any `json:"core_messaging"`
}

// BreakdownPayload is stored under KeyBreakdown.
type BreakdownPayload struct {
	BRDURL           string `json:"brdUrl,omitempty"`
	StrategyMarkdown string `json:"strategyMarkdown,omitempty"`
}

// ContentPayload is stored under KeyContent.
type ContentPayload struct {
	ContentData     *ContentData `json:"contentData"`
	GeneratedAssets any          `json:"generatedAssets"`
}

// ContentData mirrors the content slice with the backend's field names.
type ContentData struct {
	WebinarDetails any `json:"webinar_details"`
	SocialPosts    any `json:"social_posts"`
}

// BuildResearch returns the research payload, or nil when research has not
// reported.
func BuildResearch(s campaign.Snapshot) ([]byte, error) {
	if s.Research == nil {
		return nil, nil
	}
	return json.Marshal(ResearchPayload{ResearchData: ResearchData{
		AudiencePersona: s.Research.AudiencePersona,
		CoreMessaging:   s.Research.CoreMessaging,
	}})
}

// BuildBreakdown returns the breakdown payload when either field is present.
func BuildBreakdown(s campaign.Snapshot) ([]byte, error) {
	b := s.Breakdown
	if b.BRDURL == "" && b.StrategyMarkdown == "" {
		return nil, nil
	}
	return json.Marshal(BreakdownPayload{BRDURL: b.BRDURL, StrategyMarkdown: b.StrategyMarkdown})
}

// BuildLandingPage returns the raw landing page source, unencoded.
func BuildLandingPage(s campaign.Snapshot) []byte {
	if s.Web.LandingPageCode == "" {
		return nil
	}
	return []byte(s.Web.LandingPageCode)
}

// BuildContent returns the content payload when content or assets are present.
func BuildContent(s campaign.Snapshot) ([]byte, error) {
	if s.Content == nil && s.Design.GeneratedAssets == nil {
		return nil, nil
	}
	p := ContentPayload{GeneratedAssets: s.Design.GeneratedAssets}
	if s.Content != nil {
		p.ContentData = &ContentData{
			WebinarDetails: s.Content.WebinarDetails,
			SocialPosts:    s.Content.SocialPosts,
		}
	}
	return json.Marshal(p)
}
