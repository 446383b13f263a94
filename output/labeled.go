package output

import (
	"regexp"
	"strings"
)

// Canonical field names shared by the parser and the normalizer.
const (
	FieldTitle              = "title"
	FieldHook               = "hook"
	FieldNarrator           = "narrator"
	FieldDescription        = "description"
	FieldHashtags           = "hashtags"
	FieldAudio              = "audioRecommendation"
	FieldSlug               = "slug"
	FieldInternalLinks      = "internalLinks"
	FieldExternalReferences = "externalReferences"
	FieldFeaturedSnippet    = "featuredSnippet"
)

// labelAliases maps a squashed label (lower case, no spaces, dashes or
// underscores) to its field.
var labelAliases = map[string]string{
	"title":               FieldTitle,
	"judul":               FieldTitle,
	"hook":                FieldHook,
	"narrator":            FieldNarrator,
	"narration":           FieldNarrator,
	"narasi":              FieldNarrator,
	"script":              FieldNarrator,
	"naskah":              FieldNarrator,
	"body":                FieldNarrator,
	"description":         FieldDescription,
	"deskripsi":           FieldDescription,
	"caption":             FieldDescription,
	"hashtags":            FieldHashtags,
	"hashtag":             FieldHashtags,
	"tags":                FieldHashtags,
	"audiorecommendation": FieldAudio,
	"audio":               FieldAudio,
	"music":               FieldAudio,
	"musik":               FieldAudio,
	"slug":                FieldSlug,
	"internallinks":       FieldInternalLinks,
	"externalreferences":  FieldExternalReferences,
	"references":          FieldExternalReferences,
	"featuredsnippet":     FieldFeaturedSnippet,
}

var listFields = map[string]bool{
	FieldHashtags:           true,
	FieldInternalLinks:      true,
	FieldExternalReferences: true,
}

var multilineFields = map[string]bool{
	FieldNarrator:    true,
	FieldDescription: true,
}

// labelLine matches "Label: value" with optional list or heading markers and
// markdown emphasis around the label.
var labelLine = regexp.MustCompile(`^[\s\-*#>]*[*_]*\s*([A-Za-z][A-Za-z _-]{0,40}?)\s*[*_]*\s*[:：]\s*[*_]*\s*(.*)$`)

var listSplit = regexp.MustCompile(`[\s,;]+`)

// ParseLabeled builds an object from "Label: value" lines. Lines without a
// known label continue the last seen field. It returns nil unless one of
// title, hook, narrator or description was found.
func ParseLabeled(text string) map[string]any {
	collected := make(map[string][]string)
	current := ""

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if m := labelLine.FindStringSubmatch(line); m != nil {
			if field, ok := labelAliases[squash(m[1])]; ok {
				current = field
				if v := strings.TrimSpace(m[2]); v != "" {
					collected[field] = append(collected[field], v)
				}
				continue
			}
		}
		if current != "" {
			collected[current] = append(collected[current], line)
		}
	}

	out := make(map[string]any, len(collected))
	for field, lines := range collected {
		switch {
		case listFields[field]:
			var items []any
			for _, l := range lines {
				for _, tok := range listSplit.Split(strings.TrimLeft(l, "-*• "), -1) {
					if tok != "" {
						items = append(items, tok)
					}
				}
			}
			if len(items) > 0 {
				out[field] = items
			}
		case multilineFields[field]:
			out[field] = strings.Join(lines, "\n")
		default:
			out[field] = strings.Join(lines, " ")
		}
	}

	for _, required := range []string{FieldTitle, FieldHook, FieldNarrator, FieldDescription} {
		if s, ok := out[required].(string); ok && strings.TrimSpace(s) != "" {
			return out
		}
	}
	return nil
}

func squash(label string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(label))
}

// ParsePath names how an object was recovered from a reply.
type ParsePath string

const (
	ParsePathJSON    ParsePath = "json"
	ParsePathLabeled ParsePath = "labeled"
	ParsePathNone    ParsePath = ""
)

// Parse runs ExtractJSON and falls back to ParseLabeled.
func Parse(text string) (map[string]any, ParsePath) {
	if obj := ExtractJSON(text); obj != nil {
		return obj, ParsePathJSON
	}
	if obj := ParseLabeled(text); obj != nil {
		return obj, ParsePathLabeled
	}
	return nil, ParsePathNone
}
