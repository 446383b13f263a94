// Package contract maps a publishing platform to the output constraints a
// generated content object must satisfy.
package contract

import "strings"

// Mode separates short-form video platforms from long-form articles.
type Mode string

const (
	ModeShortForm Mode = "short_form"
	ModeArticle   Mode = "article"
)

// MaxHashtags is the hard ceiling on hashtags for any platform.
const MaxHashtags = 12

// Article-mode bounds shared by every blog platform.
const (
	ArticleWordsMin        = 900
	ArticleWordsMax        = 1500
	MetaDescriptionMinChar = 140
	MetaDescriptionMaxChar = 160
	FAQMinItems            = 3
	SlugMaxWords           = 12
	MaxInternalLinks       = 5
	MaxExternalReferences  = 5
)

// PlatformContract holds the shape rules for one platform. Values are looked
// up by platform name and never mutated.
type PlatformContract struct {
	Platform                string `json:"platform"`
	Mode                    Mode   `json:"mode"`
	HookMin                 int    `json:"hookMin"`
	HookMax                 int    `json:"hookMax"`
	DescriptionMinSentences int    `json:"descriptionMinSentences"`
	DescriptionMaxSentences int    `json:"descriptionMaxSentences"`
	DescriptionMaxChars     int    `json:"descriptionMaxChars"`
	HashtagMin              int    `json:"hashtagMin"`
	HashtagMax              int    `json:"hashtagMax"`
	RequireCTAInDescription bool   `json:"requireCtaInDescription"`
	CTAStyle                string `json:"ctaStyle"`
}

// IsArticle reports whether the platform expects long-form SEO output.
func (c PlatformContract) IsArticle() bool {
	return c.Mode == ModeArticle
}

// HashtagCap is the number of hashtags normalization keeps.
func (c PlatformContract) HashtagCap() int {
	return min(MaxHashtags, c.HashtagMax)
}

var defaultContract = PlatformContract{
	Platform:                "Default",
	Mode:                    ModeShortForm,
	HookMin:                 15,
	HookMax:                 100,
	DescriptionMinSentences: 1,
	DescriptionMaxSentences: 3,
	DescriptionMaxChars:     400,
	HashtagMin:              3,
	HashtagMax:              6,
	RequireCTAInDescription: true,
	CTAStyle:                "generic",
}

func shortForm(name string, hookMin, hookMax, sMin, sMax, chars, tagMin, tagMax int, cta bool, style string) PlatformContract {
	return PlatformContract{
		Platform:                name,
		Mode:                    ModeShortForm,
		HookMin:                 hookMin,
		HookMax:                 hookMax,
		DescriptionMinSentences: sMin,
		DescriptionMaxSentences: sMax,
		DescriptionMaxChars:     chars,
		HashtagMin:              tagMin,
		HashtagMax:              tagMax,
		RequireCTAInDescription: cta,
		CTAStyle:                style,
	}
}

func article(name string) PlatformContract {
	return PlatformContract{
		Platform:                name,
		Mode:                    ModeArticle,
		HookMin:                 40,
		HookMax:                 160,
		DescriptionMinSentences: 1,
		DescriptionMaxSentences: 2,
		DescriptionMaxChars:     MetaDescriptionMaxChar,
		HashtagMin:              0,
		HashtagMax:              5,
		RequireCTAInDescription: false,
		CTAStyle:                "none",
	}
}

// contracts is built once and only read afterwards.
var contracts = map[string]PlatformContract{
	"tiktok":          shortForm("TikTok", 15, 90, 1, 3, 300, 3, 5, true, "soft-comment"),
	"youtube shorts":  shortForm("YouTube Shorts", 15, 100, 2, 4, 500, 3, 5, true, "subscribe"),
	"instagram reels": shortForm("Instagram Reels", 15, 90, 2, 4, 600, 5, 10, true, "save-share"),
	"facebook reels":  shortForm("Facebook Reels", 15, 100, 1, 3, 400, 2, 4, true, "comment"),
	"threads":         shortForm("Threads", 10, 80, 1, 3, 400, 0, 3, false, "conversational"),
	"x (twitter)":     shortForm("X (Twitter)", 10, 80, 1, 2, 240, 1, 3, false, "reply"),
	"linkedin":        shortForm("LinkedIn", 20, 120, 2, 5, 1200, 3, 5, true, "professional"),
	"shopee video":    shortForm("Shopee Video", 10, 80, 1, 3, 300, 3, 6, true, "checkout"),
	"blog blogger":    article("Blog Blogger"),
	"blog wordpress":  article("Blog WordPress"),
}

var aliases = map[string]string{
	"tik tok":        "tiktok",
	"youtube":        "youtube shorts",
	"shorts":         "youtube shorts",
	"yt shorts":      "youtube shorts",
	"instagram":      "instagram reels",
	"reels":          "instagram reels",
	"ig reels":       "instagram reels",
	"facebook":       "facebook reels",
	"fb reels":       "facebook reels",
	"x":              "x (twitter)",
	"twitter":        "x (twitter)",
	"x/twitter":      "x (twitter)",
	"shopee":         "shopee video",
	"blogger":        "blog blogger",
	"wordpress":      "blog wordpress",
	"blog":           "blog blogger",
	"linked in":      "linkedin",
	"threads meta":   "threads",
	"wordpress blog": "blog wordpress",
}

// Resolve returns the contract for platform. Matching ignores case and
// surrounding whitespace; unknown names get the default contract. Resolve
// never fails.
func Resolve(platform string) PlatformContract {
	key := normalizeName(platform)
	if c, ok := contracts[key]; ok {
		return c
	}
	if target, ok := aliases[key]; ok {
		return contracts[target]
	}
	return defaultContract
}

// Default returns the contract used for unknown platforms.
func Default() PlatformContract {
	return defaultContract
}

// Platforms lists the canonical platform names.
func Platforms() []string {
	out := make([]string, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, c.Platform)
	}
	return out
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
