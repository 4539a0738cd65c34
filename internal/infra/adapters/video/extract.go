package video

import "strings"

// inlinePrefix marks a locator that carries the artifact itself, base64
// encoded, instead of a downloadable URI.
const inlinePrefix = "inline:"

// locatorExtractor probes one known response shape and returns the result
// locator, or "" when the shape does not match.
type locatorExtractor struct {
	name string
	fn   func(envelope map[string]any) string
}

// locatorExtractors are tried in priority order against the JSON form of a
// completed operation; the first non-empty match is authoritative. The
// upstream envelope is not contractually stable, so each historical shape
// gets its own entry here rather than one chain of nested lookups.
var locatorExtractors = []locatorExtractor{
	{
		// Current SDK shape: response.generatedVideos[0].video.uri
		name: "generated_videos_uri",
		fn: func(env map[string]any) string {
			v := dig(env, "response", "generatedVideos", "0", "video", "uri")
			s, _ := v.(string)
			return s
		},
	},
	{
		// Older REST envelope: response.generateVideoResponse.generatedSamples[0].video.uri
		name: "generated_samples_uri",
		fn: func(env map[string]any) string {
			v := dig(env, "response", "generateVideoResponse", "generatedSamples", "0", "video", "uri")
			s, _ := v.(string)
			return s
		},
	},
	{
		// Inline bytes instead of a URI: response.generatedVideos[0].video.videoBytes
		name: "generated_videos_inline",
		fn: func(env map[string]any) string {
			v := dig(env, "response", "generatedVideos", "0", "video", "videoBytes")
			s, _ := v.(string)
			if s == "" {
				return ""
			}
			return inlinePrefix + s
		},
	},
}

// extractLocator runs the extractor list and returns the first match.
func extractLocator(envelope map[string]any) (locator, shape string) {
	for _, ex := range locatorExtractors {
		if loc := ex.fn(envelope); loc != "" {
			return loc, ex.name
		}
	}
	return "", ""
}

// dig walks a decoded JSON tree by key; a numeric key indexes into a slice.
func dig(v any, keys ...string) any {
	cur := v
	for _, k := range keys {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[k]
		case []any:
			idx := int(k[0] - '0')
			if len(k) != 1 || idx < 0 || idx >= len(node) {
				return nil
			}
			cur = node[idx]
		default:
			return nil
		}
	}
	return cur
}

func isInline(locator string) bool { return strings.HasPrefix(locator, inlinePrefix) }

func inlinePayload(locator string) string { return strings.TrimPrefix(locator, inlinePrefix) }
