package chat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePageWritesHTMLAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	result, err := generatePage(dir, "personal", map[string]interface{}{
		"title":            "My Test Page!",
		"content_markdown": "# Hello\n\nSome *text*.",
	})
	require.NoError(t, err)
	assert.Equal(t, "/pages/my-test-page", result["url"])
	assert.Equal(t, "my-test-page", result["slug"])

	body, err := os.ReadFile(filepath.Join(dir, "my-test-page.html"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "<h1>Hello</h1>")
}

func TestGeneratePageRequiresTitleAndContent(t *testing.T) {
	dir := t.TempDir()
	_, err := generatePage(dir, "personal", map[string]interface{}{"title": "x"})
	assert.Error(t, err)
}

func TestGeneratePageHandlesSlugCollision(t *testing.T) {
	dir := t.TempDir()
	args := map[string]interface{}{"title": "Duplicate Title", "content_markdown": "one"}

	first, err := generatePage(dir, "personal", args)
	require.NoError(t, err)
	second, err := generatePage(dir, "personal", args)
	require.NoError(t, err)

	assert.NotEqual(t, first["slug"], second["slug"])
	assert.Equal(t, "duplicate-title-1", second["slug"])
}

func TestGeneratePageEmbedsScreenshotsAndNormalizesTraversal(t *testing.T) {
	dir := t.TempDir()
	result, err := generatePage(dir, "personal", map[string]interface{}{
		"title":            "With Screenshots",
		"content_markdown": "body",
		"screenshot_paths": []interface{}{"2026-07-30T10-00-00_screen_0.jpg", "../../etc/passwd"},
	})
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(dir, result["slug"].(string)+".html"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "/screenshots/personal/2026-07-30T10-00-00_screen_0.jpg")
	// filepath.Base strips any directory traversal from the embedded src —
	// the literal ".." sequence must never reach the rendered page.
	assert.NotContains(t, string(body), "..")
}

func TestSlugifyMatchesExpectedShape(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("  Hello, World!  "))
	assert.Equal(t, "a-b-c", slugify("a_b__c"))
}
