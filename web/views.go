// ABOUTME: gomponents views for the landing page and every handoff view.
// ABOUTME: Pages share one layout; handed-off JSON is rendered generically as nested lists.
package web

import (
	"fmt"
	"sort"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/2389-research/campaigndash/handoff"
)

const pageCSS = `
body{margin:0;font-family:Urbanist,system-ui,sans-serif;background:#0b0b0f;color:#e5e7eb}
a{color:#f472b6}
.container{max-width:72rem;margin:0 auto;padding:2rem 1rem}
.badge{display:inline-block;padding:.25rem .75rem;border:1px solid #374151;border-radius:999px;font-size:.75rem;color:#9ca3af}
.grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(14rem,1fr));gap:1.5rem}
.card{padding:1.5rem;border:2px solid #1f2937;border-radius:1rem;background:#111827}
.muted{color:#9ca3af}
pre{background:#111827;padding:1rem;border-radius:.5rem;overflow:auto}
iframe{width:100%;height:32rem;border:1px solid #1f2937;border-radius:.5rem;background:#fff}
dt{font-weight:700;margin-top:.5rem}
footer{border-top:1px solid #1f2937;margin-top:4rem}
`

type feature struct {
	title       string
	description string
}

var features = []feature{
	{"AI Breakdown", "Get structured, actionable steps with comprehensive analysis. Intelligent recommendations tailored to your startup needs."},
	{"Website Generation", "Professional, responsive websites created instantly. Production-ready code with SEO optimization and mobile-first design."},
	{"Social Media", "Auto-generate engaging content for Instagram and Twitter. AI-powered copy and visuals that drive engagement."},
	{"Smart Automation", "Integrated call management and automated responses. Streamline customer engagement with intelligent routing."},
}

var steps = []feature{
	{"Describe Your Idea", "Tell us about your startup concept, target market, and goals. Our AI analyzes everything to create a comprehensive plan."},
	{"Research & Analyze", "Get deep market insights, competitive analysis, and strategic recommendations tailored to your specific industry."},
	{"Generate Assets", "Launch with everything you need: website, marketing copy, social media content, and brand guidelines."},
	{"Scale & Iterate", "Monitor performance, get AI-driven optimization suggestions, and continuously improve your campaigns."},
}

func layout(title string, content ...g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(title+" | Foundry")),
				StyleEl(g.Raw(pageCSS)),
			),
			Body(
				Nav(Class("container"), A(Href("/"), Strong(g.Text("Foundry"))), g.Text(" "), A(Href("/control"), g.Text("Control Center"))),
				Main(Class("container"), g.Group(content)),
				pageFooter(),
			),
		),
	})
}

func pageFooter() g.Node {
	return Footer(
		Div(Class("container muted"),
			P(g.Text("Campaign planning made intelligent.")),
			P(A(Href("/#features"), g.Text("Features")), g.Text(" · "), A(Href("/#how-it-works"), g.Text("How It Works"))),
		),
	)
}

func landingPage() g.Node {
	return layout("Campaign Planning Made Intelligent",
		Section(ID("hero"),
			Span(Class("badge"), g.Text("AI-Powered Campaign Builder")),
			H1(g.Text("Campaign Planning Made Intelligent")),
			P(Class("muted"), g.Text("Create, plan, and execute your marketing campaigns in minutes with AI-powered assistance. No complexity. Just results.")),
			P(g.Text("Start a run from the terminal with "), Code(g.Text("campaigndash dashboard")), g.Text(".")),
		),
		Section(ID("features"),
			Span(Class("badge"), g.Text("FEATURES")),
			H2(g.Text("Everything You Need")),
			Div(Class("grid"), g.Map(features, func(f feature) g.Node {
				return Div(Class("card"), H3(g.Text(f.title)), P(Class("muted"), g.Text(f.description)))
			})),
		),
		Section(ID("how-it-works"),
			Span(Class("badge"), g.Text("HOW IT WORKS")),
			H2(g.Text("From Idea to Launch")),
			Div(Class("grid"), g.Map(indexed(steps), func(s indexedFeature) g.Node {
				return Div(Class("card"),
					Span(Class("badge"), g.Textf("%02d", s.n)),
					H3(g.Text(s.title)),
					P(Class("muted"), g.Text(s.description)),
				)
			})),
		),
	)
}

type indexedFeature struct {
	feature
	n int
}

func indexed(fs []feature) []indexedFeature {
	out := make([]indexedFeature, len(fs))
	for i, f := range fs {
		out[i] = indexedFeature{feature: f, n: i + 1}
	}
	return out
}

// emptyView is shown when nothing has been handed off under the view's key.
func emptyView(title string, key handoff.Key) g.Node {
	return layout(title,
		H1(g.Text(title)),
		P(Class("muted"), g.Textf("Nothing handed off yet. Open this view from the dashboard once %s is ready.", key)),
	)
}

func researchView(p handoff.ResearchPayload) g.Node {
	return layout("Research",
		H1(g.Text("Audience Research")),
		Section(Class("card"), H2(g.Text("Audience Persona")), anyNode(p.ResearchData.AudiencePersona)),
		Section(Class("card"), H2(g.Text("Core Messaging")), anyNode(p.ResearchData.CoreMessaging)),
	)
}

func breakdownView(p handoff.BreakdownPayload) g.Node {
	return layout("Campaign Breakdown",
		H1(g.Text("Campaign Breakdown")),
		g.If(p.BRDURL != "",
			P(A(Href(p.BRDURL), Target("_blank"), Rel("noopener"), g.Text("Open the business requirements document"))),
		),
		Section(Class("card strategy"), g.Raw(markdownToHTML(p.StrategyMarkdown))),
	)
}

func webEditorView(code string) g.Node {
	return layout("Landing Page",
		H1(g.Text("Landing Page")),
		IFrame(Src("/web-editor/preview"), g.Attr("sandbox", "allow-scripts"), TitleAttr("Landing page preview")),
		H2(g.Text("Source")),
		Pre(Code(g.Text(code))),
	)
}

func postmakerView(p handoff.ContentPayload) g.Node {
	var webinar, posts any
	if p.ContentData != nil {
		webinar, posts = p.ContentData.WebinarDetails, p.ContentData.SocialPosts
	}
	return layout("Content Studio",
		H1(g.Text("Content Studio")),
		Section(Class("card"), H2(g.Text("Webinar Details")), anyNode(webinar)),
		Section(Class("card"), H2(g.Text("Social Posts")), anyNode(posts)),
		Section(Class("card"), H2(g.Text("Generated Assets")), anyNode(p.GeneratedAssets)),
	)
}

type viewLink struct {
	key   handoff.Key
	title string
	path  string
}

var viewLinks = []viewLink{
	{handoff.KeyBreakdown, "Campaign Breakdown", handoff.PathBreakdown},
	{handoff.KeyLandingPageCode, "Landing Page", handoff.PathWebEditor},
	{handoff.KeyContent, "Content Studio", handoff.PathPostmaker},
	{handoff.KeyResearch, "Research", handoff.PathResearch},
}

func controlView(available map[handoff.Key]bool) g.Node {
	return layout("Control Center",
		H1(g.Text("Control Center")),
		P(Class("muted"), g.Text("Campaign controls and automation. Views light up as the dashboard hands off artifacts.")),
		Div(Class("grid"), g.Map(viewLinks, func(l viewLink) g.Node {
			status := "waiting"
			if available[l.key] {
				status = "ready"
			}
			return Div(Class("card"),
				H3(A(Href(l.path), g.Text(l.title))),
				P(Class("muted"), g.Text(status)),
			)
		})),
	)
}

// anyNode renders decoded JSON: objects as definition lists, arrays as
// bullet lists, scalars as text.
func anyNode(v any) g.Node {
	switch t := v.(type) {
	case nil:
		return P(Class("muted"), g.Text("None"))
	case map[string]any:
		if len(t) == 0 {
			return P(Class("muted"), g.Text("None"))
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return Dl(g.Map(keys, func(k string) g.Node {
			return g.Group([]g.Node{Dt(g.Text(k)), Dd(anyNode(t[k]))})
		}))
	case []any:
		if len(t) == 0 {
			return P(Class("muted"), g.Text("None"))
		}
		return Ul(g.Map(t, func(item any) g.Node { return Li(anyNode(item)) }))
	case string:
		return Span(g.Text(t))
	default:
		return Span(g.Text(fmt.Sprint(t)))
	}
}
