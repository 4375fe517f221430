package chat

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"

	"github.com/memexlabs/prometheus/pkg/llm"
)

const generatePageToolName = "generate_page"

func generatePageToolSpec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: generatePageToolName,
		Description: "Generate a standalone HTML page from Markdown content. Use this to create " +
			"wiki entries, blog posts, workflow docs, or any content the user wants as a shareable page.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title":            map[string]interface{}{"type": "string", "description": "Page title"},
				"content_markdown": map[string]interface{}{"type": "string", "description": "Page content in Markdown format"},
				"screenshot_paths": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Screenshot filenames to embed in the page",
				},
			},
			"required": []interface{}{"title", "content_markdown"},
		},
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{title}}</title>
<style>
body { max-width: 760px; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.6; }
figure.screenshot { margin: 1rem 0; }
figure.screenshot img { max-width: 100%; border-radius: 4px; }
figcaption { font-size: 0.85rem; color: #666; }
.page-meta { color: #888; font-size: 0.85rem; margin-bottom: 2rem; }
</style>
</head>
<body>
<h1>{{title}}</h1>
<div class="page-meta">{{instance}} &middot; {{date}}</div>
{{content}}
</body>
</html>
`

// generatePage renders contentMarkdown to HTML, embeds any referenced
// screenshots, and writes the result under pagesDir with a collision-safe
// slug. Grounded on original_source/prometheus/server/chat_handler.py's
// generate_page/_slugify.
func generatePage(pagesDir, instanceName string, args map[string]interface{}) (map[string]interface{}, error) {
	title, _ := args["title"].(string)
	contentMD, _ := args["content_markdown"].(string)
	if title == "" || contentMD == "" {
		return nil, fmt.Errorf("title and content_markdown are required")
	}

	contentHTML := string(markdown.ToHTML([]byte(contentMD), nil, nil))

	var screenshotPaths []string
	if raw, ok := args["screenshot_paths"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				screenshotPaths = append(screenshotPaths, s)
			}
		}
	}
	if len(screenshotPaths) > 0 {
		contentHTML += "\n" + renderScreenshotGallery(instanceName, screenshotPaths)
	}

	now := time.Now()
	replacer := strings.NewReplacer(
		"{{title}}", html.EscapeString(title),
		"{{content}}", contentHTML,
		"{{date}}", now.Format("January 2, 2006"),
		"{{instance}}", html.EscapeString(instanceName),
	)
	page := replacer.Replace(pageTemplate)

	slug := slugify(title)
	if slug == "" {
		slug = "page"
	}

	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pages dir: %w", err)
	}
	finalSlug, path := uniqueSlugPath(pagesDir, slug)
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return nil, fmt.Errorf("write page: %w", err)
	}

	return map[string]interface{}{
		"url":        fmt.Sprintf("/pages/%s", finalSlug),
		"title":      title,
		"slug":       finalSlug,
		"size_bytes": len(page),
	}, nil
}

func renderScreenshotGallery(instanceName string, paths []string) string {
	var b strings.Builder
	b.WriteString(`<div class="screenshots-gallery">`)
	for _, p := range paths {
		filename := filepath.Base(p)
		if filename == "." || filename == string(filepath.Separator) || strings.Contains(filename, "..") {
			continue
		}
		caption := strings.TrimSuffix(strings.TrimSuffix(filename, ".png"), ".jpg")
		caption = strings.ReplaceAll(caption, "_", " ")
		src := fmt.Sprintf("/screenshots/%s/%s", instanceName, filename)
		fmt.Fprintf(&b, `<figure class="screenshot"><img src="%s" alt="%s" loading="lazy"><figcaption>%s</figcaption></figure>`,
			html.EscapeString(src), html.EscapeString(caption), html.EscapeString(caption))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// slugify mirrors the reference's regex-based slug rules: lowercase,
// collapse runs of characters other than a-z and 0-9 to a single dash, trim to 80
// characters, trim leading/trailing dashes.
func slugify(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 80 {
		out = out[:80]
	}
	return strings.Trim(out, "-")
}

// uniqueSlugPath appends a numeric suffix until it finds a slug with no
// existing page file, matching the reference's collision-avoidance loop.
func uniqueSlugPath(pagesDir, slug string) (string, string) {
	finalSlug := slug
	path := filepath.Join(pagesDir, finalSlug+".html")
	counter := 1
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return finalSlug, path
		}
		finalSlug = fmt.Sprintf("%s-%d", slug, counter)
		path = filepath.Join(pagesDir, finalSlug+".html")
		counter++
	}
}
