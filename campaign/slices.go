// ABOUTME: Typed per-stage slices and the StageUpdate variants that replace or accumulate them.
// ABOUTME: Each update variant carries its own payload shape and knows which slice it writes.
package campaign

// PlannerSlice holds the campaign plan fields. A nil field means the backend
// did not send a usable value for it.
type PlannerSlice struct {
	Goal           any
	Topic          any
	TargetAudience any
	SourceDocsURL  any
	CampaignDate   any
}

// Fields returns the slice as a key/value mapping using the backend's field names.
func (s PlannerSlice) Fields() map[string]any {
	return map[string]any{
		"goal":            s.Goal,
		"topic":           s.Topic,
		"target_audience": s.TargetAudience,
		"source_docs_url": s.SourceDocsURL,
		"campaign_date":   s.CampaignDate,
	}
}

// ResearchSlice holds the audience research. Missing values default to empty objects.
type ResearchSlice struct {
	AudiencePersona any
	CoreMessaging   any
}

// Fields returns the slice as a key/value mapping using the backend's field names.
func (s ResearchSlice) Fields() map[string]any {
	return map[string]any{
		"audience_persona": s.AudiencePersona,
		"core_messaging":   s.CoreMessaging,
	}
}

// ContentSlice holds generated content. Missing details default to an empty
// object and missing posts to an empty list.
type ContentSlice struct {
	WebinarDetails any
	SocialPosts    any
}

// Fields returns the slice as a key/value mapping using the backend's field names.
func (s ContentSlice) Fields() map[string]any {
	return map[string]any{
		"webinar_details": s.WebinarDetails,
		"social_posts":    s.SocialPosts,
	}
}

// DesignSlice accumulates generated assets. GeneratedAssets stays nil until a
// design payload carries them.
type DesignSlice struct {
	GeneratedAssets any
}

// WebSlice accumulates the landing page source.
type WebSlice struct {
	LandingPageCode string
}

// BreakdownSlice accumulates the requirements doc link and strategy text, each
// written by its own backend node.
type BreakdownSlice struct {
	BRDURL           string
	StrategyMarkdown string
}

// StageUpdate is a decoded, typed change to one stage slice. The set of
// implementations is closed to this package.
type StageUpdate interface {
	Stage() StageID
	apply(s *Store)
}

// PlannerUpdate replaces the planner slice.
type PlannerUpdate struct{ Slice PlannerSlice }

// ResearchUpdate replaces the research slice.
type ResearchUpdate struct{ Slice ResearchSlice }

// ContentUpdate replaces the content slice.
type ContentUpdate struct{ Slice ContentSlice }

// DesignUpdate sets generated assets when present; nil leaves them unchanged.
type DesignUpdate struct{ GeneratedAssets any }

// WebUpdate sets the landing page code when non-empty.
type WebUpdate struct{ LandingPageCode string }

// BRDUpdate sets the requirements doc URL when non-empty.
type BRDUpdate struct{ URL string }

// StrategyUpdate sets the strategy markdown when non-empty.
type StrategyUpdate struct{ Markdown string }

func (PlannerUpdate) Stage() StageID  { return StagePlanner }
func (ResearchUpdate) Stage() StageID { return StageResearch }
func (ContentUpdate) Stage() StageID  { return StageContent }
func (DesignUpdate) Stage() StageID   { return StageDesign }
func (WebUpdate) Stage() StageID      { return StageWeb }
func (BRDUpdate) Stage() StageID      { return StageBreakdown }
func (StrategyUpdate) Stage() StageID { return StageBreakdown }

func (u PlannerUpdate) apply(s *Store) {
	slice := u.Slice
	s.planner = &slice
}

func (u ResearchUpdate) apply(s *Store) {
	slice := u.Slice
	s.research = &slice
}

func (u ContentUpdate) apply(s *Store) {
	slice := u.Slice
	s.content = &slice
}

func (u DesignUpdate) apply(s *Store) {
	if u.GeneratedAssets != nil {
		s.design.GeneratedAssets = u.GeneratedAssets
	}
}

func (u WebUpdate) apply(s *Store) {
	if u.LandingPageCode != "" {
		s.web.LandingPageCode = u.LandingPageCode
	}
}

func (u BRDUpdate) apply(s *Store) {
	if u.URL != "" {
		s.breakdown.BRDURL = u.URL
	}
}

func (u StrategyUpdate) apply(s *Store) {
	if u.Markdown != "" {
		s.breakdown.StrategyMarkdown = u.Markdown
	}
}
