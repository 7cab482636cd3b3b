package shortcode

import (
	"context"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateRenderer(t *testing.T, templates map[string]string) (*TemplateRenderer, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	for name, source := range templates {
		require.NoError(t, storage.Save(context.Background(), &StoredTemplate{Name: name, Source: source}))
	}
	renderer, err := NewTemplateRenderer(storage, nil)
	require.NoError(t, err)
	return renderer, storage
}

func TestNewTemplateRenderer_NilStorage(t *testing.T) {
	_, err := NewTemplateRenderer(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNilStorage)
}

func TestTemplateRenderer_RenderTemplate(t *testing.T) {
	ctx := context.Background()
	renderer, storage := newTemplateRenderer(t, map[string]string{
		"video":  `<iframe src="https://www.youtube.com/embed/{{.id}}"></iframe>`,
		"note":   `<aside class="{{default "info" .type}}">{{.content}}</aside>`,
		"shout":  `{{upper .content}}|{{lower .shortcode.Name}}|{{trim .pad}}`,
		"broken": `{{.content`,
		"exec":   `{{index .content 99}}`,
	})

	t.Run("attributes as fields", func(t *testing.T) {
		sc := &Shortcode{Name: "youtube", Params: ParseParams(`id="abc"`)}
		out, err := renderer.RenderTemplate(ctx, "video", sc.Variables())
		require.NoError(t, err)
		assert.Equal(t, `<iframe src="https://www.youtube.com/embed/abc"></iframe>`, out)
	})

	t.Run("default helper", func(t *testing.T) {
		sc := &Shortcode{Name: "note", Params: ParseParams(""), Content: "Hi"}
		out, err := renderer.RenderTemplate(ctx, "note", sc.Variables())
		require.NoError(t, err)
		assert.Equal(t, `<aside class="info">Hi</aside>`, out)

		sc.Params = ParseParams("type=warning")
		out, err = renderer.RenderTemplate(ctx, "note", sc.Variables())
		require.NoError(t, err)
		assert.Equal(t, `<aside class="warning">Hi</aside>`, out)
	})

	t.Run("string helpers and shortcode field", func(t *testing.T) {
		sc := &Shortcode{Name: "shout", Params: ParseParams(`pad="  x  "`), Content: "hey"}
		out, err := renderer.RenderTemplate(ctx, "shout", sc.Variables())
		require.NoError(t, err)
		assert.Equal(t, "HEY|shout|x", out)
	})

	t.Run("missing template", func(t *testing.T) {
		_, err := renderer.RenderTemplate(ctx, "absent", map[string]any{})
		require.Error(t, err)
		assert.True(t, IsTemplateNotFound(err))
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := renderer.RenderTemplate(ctx, "broken", map[string]any{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgTemplateParse)
	})

	t.Run("execution error", func(t *testing.T) {
		sc := &Shortcode{Name: "exec", Content: "x"}
		_, err := renderer.RenderTemplate(ctx, "exec", sc.Variables())
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgTemplateExec)
	})

	t.Run("new version is picked up", func(t *testing.T) {
		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "video", Source: `v2:{{.id}}`}))

		sc := &Shortcode{Name: "youtube", Params: ParseParams(`id="abc"`)}
		out, err := renderer.RenderTemplate(ctx, "video", sc.Variables())
		require.NoError(t, err)
		assert.Equal(t, "v2:abc", out)
	})
}

func TestTemplateRenderer_TemplateExists(t *testing.T) {
	ctx := context.Background()
	renderer, storage := newTemplateRenderer(t, map[string]string{"video": "x"})

	assert.True(t, renderer.TemplateExists(ctx, "video"))
	assert.False(t, renderer.TemplateExists(ctx, "absent"))

	require.NoError(t, storage.Close())
	assert.False(t, renderer.TemplateExists(ctx, "video"), "storage errors count as missing")
}

func TestTemplateRenderer_Funcs(t *testing.T) {
	ctx := context.Background()
	renderer, _ := newTemplateRenderer(t, map[string]string{"slug": `{{slug .content}}`})

	renderer.Funcs(template.FuncMap{
		"slug": func(s string) string { return strings.ReplaceAll(strings.ToLower(s), " ", "-") },
	})

	sc := &Shortcode{Name: "slug", Content: "Hello World"}
	out, err := renderer.RenderTemplate(ctx, "slug", sc.Variables())
	require.NoError(t, err)
	assert.Equal(t, "hello-world", out)
	assert.NotNil(t, renderer.Storage())
}

func TestTemplateRenderer_WithEngine(t *testing.T) {
	ctx := context.Background()
	renderer, _ := newTemplateRenderer(t, map[string]string{
		"video": `<iframe src="https://www.youtube.com/embed/{{.id}}"></iframe>`,
	})
	engine := MustNew(
		WithTagLookup(TagMapping{"youtube": "video", "vimeo": "vimeo-player"}),
		WithRenderer(renderer),
	)

	out, err := engine.Compile(ctx, `Watch: [youtube id="abc" /] or [vimeo id=1 /] [[youtube]]`)
	require.NoError(t, err)
	assert.Equal(t,
		`Watch: <iframe src="https://www.youtube.com/embed/abc"></iframe> or [vimeo id=1 /] [youtube]`,
		out)
}
