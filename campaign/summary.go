// ABOUTME: Builds the one-line activity log summary for a stage payload.
// ABOUTME: Each known node picks one nested field to report, with "N/A" when it is absent.
package campaign

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// notAvailable is shown in place of a summary field the payload did not carry.
const notAvailable = "N/A"

// Summarize returns the activity log message for a step payload from node.
func Summarize(node string, payload []byte) string {
	get := func(path string) gjson.Result { return gjson.GetBytes(payload, path) }

	switch node {
	case NodePlanner:
		return "Planned topic: " + stringOr(get("topic"), notAvailable)
	case NodeResearch:
		return "Found pain point: " + stringOr(get("audience_persona.pain_point"), notAvailable)
	case NodeContent:
		return fmt.Sprintf("Wrote %d emails.", lengthOf(get("email_sequence")))
	case NodeDesign:
		return "Created logo prompt: " + stringOr(get("brand_kit.logo_prompt"), notAvailable)
	default:
		return "Updated landing_page_url: " + stringOr(get("landing_page_url"), notAvailable)
	}
}

// lengthOf counts array elements or string characters; anything else is zero.
func lengthOf(r gjson.Result) int {
	switch {
	case r.IsArray():
		return len(r.Array())
	case r.Type == gjson.String:
		return len([]rune(r.Str))
	default:
		return 0
	}
}
