// ABOUTME: Tests for payload builders and the Publisher's write-then-open behavior per card.
// ABOUTME: The browser opener is replaced with a recorder so no real browser starts.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/campaigndash/campaign"
)

func readySnapshot() campaign.Snapshot {
	s := campaign.NewStore()
	s.Apply(campaign.ResearchUpdate{Slice: campaign.ResearchSlice{
		AudiencePersona: map[string]any{"pain_point": "time"},
		CoreMessaging:   map[string]any{},
	}})
	s.Apply(campaign.ContentUpdate{Slice: campaign.ContentSlice{
		WebinarDetails: map[string]any{"title": "Bake"},
		SocialPosts:    []any{"post"},
	}})
	s.Apply(campaign.DesignUpdate{GeneratedAssets: map[string]any{"logo": "l.png"}})
	s.Apply(campaign.WebUpdate{LandingPageCode: "<h1>Hi</h1>"})
	s.Apply(campaign.BRDUpdate{URL: "https://docs/brd"})
	s.Apply(campaign.StrategyUpdate{Markdown: "# Go"})
	return s.Snapshot()
}

type openRecorder struct {
	urls []string
	err  error
}

func (o *openRecorder) open(url string) error {
	o.urls = append(o.urls, url)
	return o.err
}

func TestBuilders_PayloadShapes(t *testing.T) {
	snap := readySnapshot()

	research, err := BuildResearch(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"researchData":{"audience_persona":{"pain_point":"time"},"core_messaging":{}}}`, string(research))

	breakdown, err := BuildBreakdown(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"brdUrl":"https://docs/brd","strategyMarkdown":"# Go"}`, string(breakdown))

	assert.Equal(t, "<h1>Hi</h1>", string(BuildLandingPage(snap)))

	content, err := BuildContent(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contentData":{"webinar_details":{"title":"Bake"},"social_posts":["post"]},"generatedAssets":{"logo":"l.png"}}`, string(content))
}

func TestBuilders_EmptySnapshot(t *testing.T) {
	empty := campaign.NewStore().Snapshot()

	r, err := BuildResearch(empty)
	require.NoError(t, err)
	assert.Nil(t, r)

	b, err := BuildBreakdown(empty)
	require.NoError(t, err)
	assert.Nil(t, b)

	assert.Nil(t, BuildLandingPage(empty))

	c, err := BuildContent(empty)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestPublisher_OpenCard(t *testing.T) {
	tests := []struct {
		id      campaign.CardID
		key     Key
		wantURL string
	}{
		{campaign.CardBreakdown, KeyBreakdown, "http://127.0.0.1:5173/breakdown"},
		{campaign.CardLandingPage, KeyLandingPageCode, "http://127.0.0.1:5173/web-editor"},
		{campaign.CardContent, KeyContent, "http://127.0.0.1:5173/postmaker"},
		{campaign.CardControl, "", "http://127.0.0.1:5173/control"},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			store := NewMemoryStore()
			rec := &openRecorder{}
			p := NewPublisher(store, "http://127.0.0.1:5173/", WithOpener(rec.open))

			url, err := p.OpenCard(context.Background(), tt.id, readySnapshot())
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, []string{tt.wantURL}, rec.urls)

			keys, err := store.Keys(context.Background())
			require.NoError(t, err)
			if tt.key == "" {
				assert.Empty(t, keys)
			} else {
				assert.Equal(t, []Key{tt.key}, keys)
			}
		})
	}
}

func TestPublisher_NotReadyDoesNothing(t *testing.T) {
	store := NewMemoryStore()
	rec := &openRecorder{}
	p := NewPublisher(store, "http://x", WithOpener(rec.open))
	empty := campaign.NewStore().Snapshot()

	for _, id := range []campaign.CardID{campaign.CardBreakdown, campaign.CardLandingPage, campaign.CardContent} {
		_, err := p.OpenCard(context.Background(), id, empty)
		assert.ErrorIs(t, err, ErrNotReady)
	}
	_, err := p.OpenResearch(context.Background(), empty)
	assert.ErrorIs(t, err, ErrNotReady)

	assert.Empty(t, rec.urls)
	keys, _ := store.Keys(context.Background())
	assert.Empty(t, keys)
}

func TestPublisher_OpenResearch(t *testing.T) {
	store := NewMemoryStore()
	rec := &openRecorder{}
	p := NewPublisher(store, "http://x", WithOpener(rec.open))

	url, err := p.OpenResearch(context.Background(), readySnapshot())
	require.NoError(t, err)
	assert.Equal(t, "http://x/research", url)

	raw, err := store.Get(context.Background(), KeyResearch)
	require.NoError(t, err)
	var payload ResearchPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.NotNil(t, payload.ResearchData.AudiencePersona)
}

func TestPublisher_OpenerFailureKeepsPayload(t *testing.T) {
	store := NewMemoryStore()
	rec := &openRecorder{err: errors.New("no browser")}
	p := NewPublisher(store, "http://x", WithOpener(rec.open))

	url, err := p.OpenCard(context.Background(), campaign.CardLandingPage, readySnapshot())
	require.Error(t, err)
	assert.Equal(t, "http://x/web-editor", url)

	got, err := store.Get(context.Background(), KeyLandingPageCode)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", string(got))
}

// failingStore rejects every write.
type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) Put(context.Context, Key, []byte) error { return f.err }

func TestPublisher_StoreErrorsNameTheKey(t *testing.T) {
	diskFull := errors.New("disk full")
	rec := &openRecorder{}
	p := NewPublisher(failingStore{MemoryStore: NewMemoryStore(), err: diskFull}, "http://127.0.0.1:5173", WithOpener(rec.open))

	_, err := p.OpenCard(context.Background(), campaign.CardLandingPage, readySnapshot())
	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "put "+string(KeyLandingPageCode))

	_, err = p.OpenResearch(context.Background(), readySnapshot())
	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "put "+string(KeyResearch))

	assert.Empty(t, rec.urls)
}
