package output

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/laptopkerja/contentgen/contract"
	"github.com/laptopkerja/contentgen/types"
)

// fieldAliases lists the accepted keys per field, compared case-insensitively.
var fieldAliases = map[string][]string{
	FieldTitle:              {"title"},
	FieldHook:               {"hook"},
	FieldNarrator:           {"narrator", "narration", "script", "body", "content"},
	FieldDescription:        {"description", "caption"},
	FieldHashtags:           {"hashtags", "hashtag", "tags"},
	FieldAudio:              {"audioRecommendation", "audio_recommendation", "audio", "music"},
	FieldSlug:               {"slug"},
	FieldInternalLinks:      {"internalLinks", "internal_links"},
	FieldExternalReferences: {"externalReferences", "external_references", "references"},
	FieldFeaturedSnippet:    {"featuredSnippet", "featured_snippet"},
}

// Normalize maps a parsed object onto the canonical content shape for
// platform. Every field prefers the parsed value and falls back to fallback.
// Article platforms get an empty audio field and derived SEO fields; other
// platforms keep audio and drop the article-only fields.
func Normalize(parsed map[string]any, fallback types.Content, platform, topic string) types.NormalizedContent {
	c := contract.Resolve(platform)
	fields := lowerKeys(parsed)

	out := types.NormalizedContent{
		Title:       firstText(lookupText(fields, FieldTitle), fallback.Title),
		Hook:        firstText(lookupText(fields, FieldHook), fallback.Hook),
		Narrator:    firstText(lookupText(fields, FieldNarrator), fallback.Narrator),
		Description: firstText(lookupText(fields, FieldDescription), fallback.Description),
	}
	out.Hook = Truncate(out.Hook, c.HookMax)
	out.Description = Truncate(out.Description, c.DescriptionMaxChars)

	out.Hashtags = NormalizeHashtags(lookup(fields, FieldHashtags), c.HashtagCap())
	if len(out.Hashtags) == 0 {
		out.Hashtags = NormalizeHashtags(fallback.Hashtags, c.HashtagCap())
	}

	if !c.IsArticle() {
		out.AudioRecommendation = firstText(AudioText(lookup(fields, FieldAudio)), fallback.AudioRecommendation)
		return out
	}

	out.AudioRecommendation = ""
	out.Slug = firstText(
		Slugify(lookupText(fields, FieldSlug), contract.SlugMaxWords),
		Slugify(fallback.Slug, contract.SlugMaxWords),
		Slugify(out.Title, contract.SlugMaxWords),
		Slugify(topic, contract.SlugMaxWords),
		"untitled",
	)

	internal := filterList(listValue(lookup(fields, FieldInternalLinks)), isSiteRelative, contract.MaxInternalLinks)
	if len(internal) == 0 {
		internal = filterList(fallback.InternalLinks, isSiteRelative, contract.MaxInternalLinks)
	}
	out.InternalLinks = internal

	external := filterList(listValue(lookup(fields, FieldExternalReferences)), isHTTPSURL, contract.MaxExternalReferences)
	if len(external) == 0 {
		external = filterList(fallback.ExternalReferences, isHTTPSURL, contract.MaxExternalReferences)
	}
	out.ExternalReferences = external

	out.FeaturedSnippet = firstText(lookupText(fields, FieldFeaturedSnippet), fallback.FeaturedSnippet, out.Hook)
	return out
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, exists := out[key]; !exists {
			out[key] = v
		}
	}
	return out
}

// lookup returns the value of the first alias present and not null.
func lookup(fields map[string]any, field string) any {
	for _, alias := range fieldAliases[field] {
		if v, ok := fields[strings.ToLower(alias)]; ok && v != nil {
			return v
		}
	}
	return nil
}

func lookupText(fields map[string]any, field string) string {
	return Text(lookup(fields, field))
}

// Text coerces a parsed value to trimmed text. Lists are joined by newlines;
// objects yield "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := Text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func firstText(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// =============================================================================
// audio
// =============================================================================

var audioKeys = []struct{ key, label string }{
	{"genre", "Genre"},
	{"mood", "Mood"},
	{"tempo", "Tempo"},
	{"instruments", "Instruments"},
	{"usage", "Usage"},
}

// AudioText renders an audio recommendation. Objects are flattened into the
// five-field line; missing fields are shown as "-".
func AudioText(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return Text(v)
	}
	fields := lowerKeys(obj)
	found := false
	parts := make([]string, 0, len(audioKeys))
	for _, k := range audioKeys {
		val := strings.ReplaceAll(Text(fields[k.key]), "\n", ", ")
		if val == "" {
			val = "-"
		} else {
			found = true
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k.label, val))
	}
	if !found {
		return ""
	}
	return strings.Join(parts, " | ")
}

// =============================================================================
// hashtags
// =============================================================================

var hashtagStrip = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// NormalizeHashtags accepts a list or a delimited string and returns unique
// '#'-prefixed tags made of letters, digits and underscores, at most limit.
func NormalizeHashtags(v any, limit int) []string {
	out := []string{}
	if limit <= 0 {
		return out
	}
	seen := make(map[string]bool)
	for _, raw := range listValue(v) {
		for _, tok := range listSplit.Split(raw, -1) {
			tag := hashtagStrip.ReplaceAllString(strings.TrimLeft(tok, "#"), "")
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, "#"+tag)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// listValue flattens strings, []string and []any into trimmed strings. A
// single string is split on newlines.
func listValue(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range t {
			out = append(out, listValue(s)...)
		}
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case map[string]any:
				fields := lowerKeys(it)
				out = append(out, listValue(firstText(Text(fields["url"]), Text(fields["href"]), Text(fields["path"])))...)
			default:
				out = append(out, listValue(Text(it))...)
			}
		}
	}
	return out
}

// =============================================================================
// article fields
// =============================================================================

func filterList(items []string, keep func(string) bool, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, item := range items {
		item = strings.TrimLeft(strings.TrimSpace(item), "-*• ")
		if !keep(item) || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

func isSiteRelative(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") && !strings.ContainsAny(s, " \t")
}

func isHTTPSURL(s string) bool {
	if !strings.HasPrefix(s, "https://") || strings.ContainsAny(s, " \t") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify folds diacritics, lower-cases and joins at most maxWords
// alphanumeric words with '-'. It returns "" when nothing is left.
func Slugify(s string, maxWords int) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	words := strings.FieldsFunc(slugSeparators.ReplaceAllString(strings.ToLower(folded), " "), unicode.IsSpace)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, "-")
}

// Truncate shortens s to at most limit runes, cutting at the last space when
// one falls in the second half.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	cut := string(r[:limit])
	if i := strings.LastIndexAny(cut, " \n\t"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \t\n,;:-")
}
