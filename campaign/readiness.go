// ABOUTME: Readiness predicates that gate dashboard affordances on which stages have reported.
// ABOUTME: Pure functions of a Snapshot; no caching beyond the store itself.
package campaign

import "fmt"

// CardID identifies one of the campaign tool cards.
type CardID int

const (
	CardBreakdown   CardID = 1 // requirements doc and strategy
	CardLandingPage CardID = 2 // generated landing page
	CardContent     CardID = 3 // social content and generated assets
	CardControl     CardID = 4 // control center, always available
)

// Card describes a tool card shown on the dashboard.
type Card struct {
	ID          CardID
	Title       string
	Description string
}

// Cards lists the tool cards in display order.
var Cards = []Card{
	{ID: CardBreakdown, Title: "Campaign Breakdown", Description: "Business requirements and go-to-market strategy."},
	{ID: CardLandingPage, Title: "Landing Page", Description: "Generated landing page, ready to preview and edit."},
	{ID: CardContent, Title: "Content Studio", Description: "Webinar details, social posts, and brand assets."},
	{ID: CardControl, Title: "Control Center", Description: "Campaign controls and automation."},
}

// String returns the two-digit card number used on the dashboard.
func (id CardID) String() string {
	return fmt.Sprintf("%02d", int(id))
}

// Ready reports whether the card has the data it needs to open. The content
// card waits for both the content slice and generated assets; the browser
// dashboard seeded assets with {} and so opened it on content alone.
func (id CardID) Ready(s Snapshot) bool {
	switch id {
	case CardBreakdown:
		return s.Breakdown.BRDURL != "" && s.Breakdown.StrategyMarkdown != ""
	case CardLandingPage:
		return s.Web.LandingPageCode != ""
	case CardContent:
		return s.Content != nil && s.Design.GeneratedAssets != nil
	case CardControl:
		return true
	default:
		return false
	}
}

// ResearchReady reports whether the research view can be opened.
func ResearchReady(s Snapshot) bool {
	return s.Research != nil
}

// CardByID returns the card definition for id.
func CardByID(id CardID) (Card, bool) {
	for _, c := range Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}
