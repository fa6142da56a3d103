package utils

import (
	"bytes"
	"hash/fnv"
	"html/template"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Keep the author's line breaks
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return RenderPlain(source)
	}
	sanitized := policy.SanitizeBytes(buf.Bytes())
	return EnhanceHTMLContent(string(sanitized))
}

// RenderPlain escapes the body and keeps whitespace exactly as written.
func RenderPlain(source string) template.HTML {
	return template.HTML(`<p class="post-body" style="white-space: pre-wrap">` +
		template.HTMLEscapeString(source) + `</p>`)
}

// BodyRenderer turns post bodies into display HTML. Markdown output is
// cached per post id and body hash, so edits invalidate naturally.
type BodyRenderer struct {
	markdown bool
	cache    *Cache[template.HTML]
}

func NewBodyRenderer(markdown bool, cacheSize int) (*BodyRenderer, error) {
	cache, err := NewCache[template.HTML](cacheSize, 30*time.Minute)
	if err != nil {
		return nil, err
	}
	return &BodyRenderer{markdown: markdown, cache: cache}, nil
}

func (r *BodyRenderer) Render(postID, body string) template.HTML {
	if r == nil || !r.markdown {
		return RenderPlain(body)
	}
	h := fnv.New64a()
	h.Write([]byte(body))
	key := postID + ":" + strconv.FormatUint(h.Sum64(), 16)
	if out, ok := r.cache.Get(key); ok {
		return out
	}
	out := RenderMarkdown(body)
	r.cache.Set(key, out)
	return out
}
