package utils

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	sanitizer = bluemonday.UGCPolicy()

	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// RenderMarkdown converts markdown to sanitized HTML. Sanitization runs on
// the rendered output so raw HTML embedded in the markdown cannot carry
// scripts through.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		if Sugar != nil {
			Sugar.Warnf("markdown render failed: %v", err)
		}
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}

// MarkdownToPlainText renders markdown, strips all markup and collapses
// whitespace. When maxLength > 0 the result is truncated there with a
// trailing ellipsis. Used for excerpt derivation only.
func MarkdownToPlainText(source string, maxLength int) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		if Sugar != nil {
			Sugar.Warnf("markdown render failed: %v", err)
		}
		return ""
	}
	text := tagPattern.ReplaceAllString(buf.String(), "")
	text = strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))

	if runes := []rune(text); maxLength > 0 && len(runes) > maxLength {
		return strings.TrimSpace(string(runes[:maxLength])) + "..."
	}
	return text
}
