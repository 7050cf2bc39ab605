// ABOUTME: Defines the finite set of campaign pipeline stages and the backend node names that feed them.
// ABOUTME: The node table here is the wire contract with the generation backend; treat changes as API changes.
package campaign

import "strings"

// StageID identifies one phase of the external campaign-generation pipeline.
type StageID int

const (
	StagePlanner   StageID = iota // campaign plan: goal, topic, audience, dates
	StageResearch                 // audience persona and core messaging
	StageContent                  // webinar details and social posts
	StageDesign                   // generated brand assets
	StageWeb                      // landing page source
	StageBreakdown                // business requirements doc and strategy
)

// Stages lists every stage in pipeline order.
var Stages = []StageID{StagePlanner, StageResearch, StageContent, StageDesign, StageWeb, StageBreakdown}

// String returns the lowercase name of the stage.
func (s StageID) String() string {
	switch s {
	case StagePlanner:
		return "planner"
	case StageResearch:
		return "research"
	case StageContent:
		return "content"
	case StageDesign:
		return "design"
	case StageWeb:
		return "web"
	case StageBreakdown:
		return "breakdown"
	default:
		return "unknown"
	}
}

// Backend node names, as sent in the envelope's "node" field.
const (
	NodePlanner  = "planner_agent"
	NodeResearch = "research_agent"
	NodeContent  = "content_agent"
	NodeDesign   = "design_agent"
	NodeWeb      = "web_agent"
	NodeBRD      = "brd_agent"
	NodeStrategy = "strategy_agent"
)

// nodeStages maps each known node to the stage it updates. Two nodes (brd and
// strategy) feed the breakdown stage, each owning one of its fields.
var nodeStages = map[string]StageID{
	NodePlanner:  StagePlanner,
	NodeResearch: StageResearch,
	NodeContent:  StageContent,
	NodeDesign:   StageDesign,
	NodeWeb:      StageWeb,
	NodeBRD:      StageBreakdown,
	NodeStrategy: StageBreakdown,
}

// StageForNode returns the stage fed by the named node. The bool is false for
// node names this client does not know about.
func StageForNode(node string) (StageID, bool) {
	s, ok := nodeStages[node]
	return s, ok
}

// NodeLabel returns the uppercase display label for a node name.
func NodeLabel(node string) string {
	if node == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(node)
}
