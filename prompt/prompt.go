// Package prompt assembles the system instruction and user message sent to a
// generation backend. Output is plain instructional text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/laptopkerja/contentgen/contract"
	"github.com/laptopkerja/contentgen/types"
)

// DefaultLanguage is used when the request names none.
const DefaultLanguage = "Indonesian"

// AudioFormat is the fixed five-field audio recommendation line.
const AudioFormat = "Genre: <genre> | Mood: <mood> | Tempo: <slow/medium/fast or BPM> | Instruments: <main instruments> | Usage: <where the track sits in the video>"

// ForbiddenPhrases must never open or frame the generated copy.
var ForbiddenPhrases = []string{
	"Here is",
	"Here's",
	"Sure!",
	"Certainly!",
	"As an AI",
	"As a language model",
	"I hope this helps",
	"Berikut adalah",
	"Berikut ini",
	"Tentu!",
	"Sebagai AI",
}

// BuildSystemPrompt returns the system instruction for platform in language.
func BuildSystemPrompt(language, platform string) string {
	c := contract.Resolve(platform)
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = DefaultLanguage
	}
	if c.IsArticle() {
		return buildArticleSystem(lang, c)
	}
	return buildShortFormSystem(lang, c)
}

func buildShortFormSystem(lang string, c contract.PlatformContract) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a short-form video scriptwriter for %s. Write every value in %s.\n", c.Platform, lang)
	sb.WriteString("Return exactly one JSON object and nothing else, with these keys:\n")
	sb.WriteString("- title: a scroll-stopping title.\n")
	fmt.Fprintf(&sb, "- hook: the first spoken line, %d-%d characters.\n", c.HookMin, c.HookMax)
	sb.WriteString("- narrator: the voice-over split into scenes, one line per scene, formatted \"Scene 1: ...\".\n")
	fmt.Fprintf(&sb, "- description: %d-%d sentences, at most %d characters.",
		c.DescriptionMinSentences, c.DescriptionMaxSentences, c.DescriptionMaxChars)
	if c.RequireCTAInDescription {
		fmt.Fprintf(&sb, " End with a call to action in a %s style.", c.CTAStyle)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "- hashtags: an array of %d-%d hashtags, each starting with #, no spaces.\n", c.HashtagMin, c.HashtagMax)
	sb.WriteString("- audioRecommendation: one line in this exact format:\n")
	sb.WriteString("  " + AudioFormat + "\n")
	writeForbidden(&sb)
	return sb.String()
}

func buildArticleSystem(lang string, c contract.PlatformContract) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an SEO article writer for %s. Write every value in %s.\n", c.Platform, lang)
	sb.WriteString("Return exactly one JSON object and nothing else, with these keys:\n")
	sb.WriteString("- title: an SEO title containing the main keyword.\n")
	fmt.Fprintf(&sb, "- hook: the opening paragraph lead, %d-%d characters.\n", c.HookMin, c.HookMax)
	fmt.Fprintf(&sb, "- narrator: the full article body in Markdown, %d-%d words, with H2/H3 headings and a FAQ section of at least %d questions with answers.\n",
		contract.ArticleWordsMin, contract.ArticleWordsMax, contract.FAQMinItems)
	fmt.Fprintf(&sb, "- description: the meta description, %d-%d characters.\n",
		contract.MetaDescriptionMinChar, contract.MetaDescriptionMaxChar)
	fmt.Fprintf(&sb, "- hashtags: an array of %d-%d topic tags, each starting with #.\n", c.HashtagMin, c.HashtagMax)
	fmt.Fprintf(&sb, "- slug: lowercase kebab-case, at most %d words.\n", contract.SlugMaxWords)
	fmt.Fprintf(&sb, "- internalLinks: up to %d site-relative paths such as /category/post-name.\n", contract.MaxInternalLinks)
	fmt.Fprintf(&sb, "- externalReferences: up to %d https:// URLs of authoritative sources.\n", contract.MaxExternalReferences)
	sb.WriteString("- featuredSnippet: a 40-60 word direct answer suitable for a search snippet.\n")
	sb.WriteString("Do not include an audioRecommendation.\n")
	writeForbidden(&sb)
	return sb.String()
}

func writeForbidden(sb *strings.Builder) {
	sb.WriteString("Never use meta phrases such as: ")
	for i, p := range ForbiddenPhrases {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", p)
	}
	sb.WriteString(".\n")
}

// BuildUserPrompt wraps the caller's compiled prompt with platform and topic.
func BuildUserPrompt(prompt, platform, topic string) string {
	c := contract.Resolve(platform)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Platform: %s\n", c.Platform)
	if t := strings.TrimSpace(topic); t != "" {
		if c.IsArticle() {
			fmt.Fprintf(&sb, "Main keyword: %s\n", t)
		} else {
			fmt.Fprintf(&sb, "Topic: %s\n", t)
		}
	}
	if p := strings.TrimSpace(prompt); p != "" {
		sb.WriteString("\nBrief:\n")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRespond with the JSON object only.")
	return sb.String()
}

// ImageNote describes images that could not be sent to the backend. Remote
// URLs are listed; inline images are only counted.
func ImageNote(refs []types.ImageReference) string {
	if len(refs) == 0 {
		return ""
	}
	var urls []string
	inline := 0
	for _, r := range refs {
		if r.Kind == types.ImageKindURL {
			urls = append(urls, r.URL)
		} else {
			inline++
		}
	}
	var sb strings.Builder
	sb.WriteString("\n\nReference images were provided but cannot be viewed by this model.")
	if len(urls) > 0 {
		sb.WriteString(" Image URLs:\n")
		for _, u := range urls {
			sb.WriteString("- " + u + "\n")
		}
	}
	if inline > 0 {
		fmt.Fprintf(&sb, " %d inline image(s) omitted.", inline)
	}
	sb.WriteString(" Base the content on the brief and topic.")
	return sb.String()
}
