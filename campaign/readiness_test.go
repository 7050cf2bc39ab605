// ABOUTME: Tests for card and research readiness predicates.
// ABOUTME: Each card flips to ready only when every slice it depends on has reported.
package campaign

import "testing"

func TestCardReady_EmptyStore(t *testing.T) {
	snap := NewStore().Snapshot()
	for _, c := range Cards {
		want := c.ID == CardControl
		if got := c.ID.Ready(snap); got != want {
			t.Errorf("card %s Ready() = %v, want %v", c.ID, got, want)
		}
	}
	if ResearchReady(snap) {
		t.Error("ResearchReady() = true on empty store")
	}
}

func TestCardReady_BreakdownNeedsBothFields(t *testing.T) {
	s := NewStore()
	s.Apply(BRDUpdate{URL: "https://docs/brd"})
	if CardBreakdown.Ready(s.Snapshot()) {
		t.Error("breakdown ready with only the BRD URL")
	}
	s.Apply(StrategyUpdate{Markdown: "# Plan"})
	if !CardBreakdown.Ready(s.Snapshot()) {
		t.Error("breakdown not ready after both fields arrived")
	}
}

func TestCardReady_LandingPage(t *testing.T) {
	s := NewStore()
	s.Apply(WebUpdate{LandingPageCode: "<html></html>"})
	if !CardLandingPage.Ready(s.Snapshot()) {
		t.Error("landing page not ready after code arrived")
	}
}

func TestCardReady_ContentNeedsContentAndAssets(t *testing.T) {
	s := NewStore()
	s.Apply(ContentUpdate{Slice: ContentSlice{WebinarDetails: map[string]any{}, SocialPosts: []any{}}})
	if CardContent.Ready(s.Snapshot()) {
		t.Error("content card ready without generated assets")
	}

	s2 := NewStore()
	s2.Apply(DesignUpdate{GeneratedAssets: map[string]any{"logo": "x"}})
	if CardContent.Ready(s2.Snapshot()) {
		t.Error("content card ready without content slice")
	}

	s2.Apply(ContentUpdate{Slice: ContentSlice{WebinarDetails: map[string]any{}, SocialPosts: []any{}}})
	if !CardContent.Ready(s2.Snapshot()) {
		t.Error("content card not ready with both content and assets")
	}
}

func TestResearchReady(t *testing.T) {
	s := NewStore()
	s.Apply(ResearchUpdate{Slice: ResearchSlice{AudiencePersona: map[string]any{}, CoreMessaging: map[string]any{}}})
	if !ResearchReady(s.Snapshot()) {
		t.Error("ResearchReady() = false after research update")
	}
}

func TestCardByID(t *testing.T) {
	c, ok := CardByID(CardLandingPage)
	if !ok || c.Title != "Landing Page" {
		t.Errorf("CardByID(2) = %+v, %v", c, ok)
	}
	if _, ok := CardByID(CardID(9)); ok {
		t.Error("CardByID(9) found a card")
	}
	if CardID(9).Ready(NewStore().Snapshot()) {
		t.Error("unknown card reported ready")
	}
	if got := CardControl.String(); got != "04" {
		t.Errorf("CardControl.String() = %q, want 04", got)
	}
}
