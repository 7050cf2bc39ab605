// ABOUTME: Publisher hands a card's artifact to the web views and opens the matching page in a browser.
// ABOUTME: Not-ready cards are ignored; payloads are written only when there is something to write.
package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/browser"

	"github.com/2389-research/campaigndash/campaign"
)

// Web view paths.
const (
	PathResearch  = "/research"
	PathBreakdown = "/breakdown"
	PathWebEditor = "/web-editor"
	PathPostmaker = "/postmaker"
	PathControl   = "/control"
)

// ErrNotReady is returned when a card or the research view lacks its data.
var ErrNotReady = errors.New("not ready")

// Publisher writes handoff payloads and opens views.
type Publisher struct {
	store   Store
	baseURL string
	open    func(url string) error
	logger  *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithOpener replaces the browser launcher.
func WithOpener(fn func(url string) error) PublisherOption {
	return func(p *Publisher) { p.open = fn }
}

// WithPublisherLogger sets the diagnostic logger.
func WithPublisherLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// NewPublisher returns a Publisher that opens views under baseURL.
func NewPublisher(store Store, baseURL string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		open:    browser.OpenURL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OpenCard writes the card's payload and opens its view. It returns the URL
// opened, or ErrNotReady when the card's readiness predicate is false.
func (p *Publisher) OpenCard(ctx context.Context, id campaign.CardID, s campaign.Snapshot) (string, error) {
	if !id.Ready(s) {
		return "", fmt.Errorf("card %s: %w", id, ErrNotReady)
	}

	var (
		key     Key
		payload []byte
		path    string
		err     error
	)
	switch id {
	case campaign.CardBreakdown:
		key, path = KeyBreakdown, PathBreakdown
		payload, err = BuildBreakdown(s)
	case campaign.CardLandingPage:
		key, path = KeyLandingPageCode, PathWebEditor
		payload = BuildLandingPage(s)
	case campaign.CardContent:
		key, path = KeyContent, PathPostmaker
		payload, err = BuildContent(s)
	case campaign.CardControl:
		path = PathControl
	default:
		return "", fmt.Errorf("unknown card %d", int(id))
	}
	if err != nil {
		return "", fmt.Errorf("build %s payload: %w", key, err)
	}

	if key != "" && payload != nil {
		if err := p.store.Put(ctx, key, payload); err != nil {
			return "", fmt.Errorf("put %s: %w", key, err)
		}
	}
	return p.openPath(path)
}

// OpenResearch writes the research payload and opens the research view.
func (p *Publisher) OpenResearch(ctx context.Context, s campaign.Snapshot) (string, error) {
	if !campaign.ResearchReady(s) {
		return "", fmt.Errorf("research: %w", ErrNotReady)
	}
	payload, err := BuildResearch(s)
	if err != nil {
		return "", fmt.Errorf("build %s payload: %w", KeyResearch, err)
	}
	if err := p.store.Put(ctx, KeyResearch, payload); err != nil {
		return "", fmt.Errorf("put %s: %w", KeyResearch, err)
	}
	return p.openPath(PathResearch)
}

func (p *Publisher) openPath(path string) (string, error) {
	url := p.baseURL + path
	p.logger.Info("opening view", slog.String("url", url))
	if err := p.open(url); err != nil {
		return url, fmt.Errorf("open %s: %w", url, err)
	}
	return url, nil
}
