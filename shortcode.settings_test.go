package shortcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testYAMLSettings = `
default_method: render
cache:
  ttl: 1m
  negative_ttl: 10s
  max_entries: 50
shortcodes:
  youtube: video
  vimeo: video
  note: note-card
templates:
  video: '<iframe src="https://www.youtube.com/embed/{{.id}}"></iframe>'
  note-card: '<aside class="{{default "info" .type}}">{{.content}}</aside>'
`

const testHCLSettings = `
default_method = "render"

cache {
  ttl         = "1m"
  max_entries = 50
}

shortcode "youtube" {
  template = "video"
}

shortcode "note" {
  template = "note-card"
}

template "video" {
  source = "<iframe src=\"https://www.youtube.com/embed/{{.id}}\"></iframe>"
}
`

func TestParseSettings_YAML(t *testing.T) {
	s, err := ParseSettings([]byte(testYAMLSettings), SettingsFormatYAML, "test.yaml")
	require.NoError(t, err)

	assert.Equal(t, "render", s.DefaultMethod)
	assert.Equal(t, []string{"note", "vimeo", "youtube"}, s.Names())
	assert.Equal(t, TagMapping{"youtube": "video", "vimeo": "video", "note": "note-card"}, s.TagMapping())
	assert.Len(t, s.Templates, 2)

	require.NotNil(t, s.Cache)
	config, err := s.cacheConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, config.MaxEntries)
	assert.Equal(t, "1m0s", config.TTL.String())
	assert.Equal(t, "10s", config.NegativeCacheTTL.String())
}

func TestParseSettings_HCL(t *testing.T) {
	s, err := ParseSettings([]byte(testHCLSettings), SettingsFormatHCL, "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "render", s.DefaultMethod)
	assert.Equal(t, TagMapping{"youtube": "video", "note": "note-card"}, s.TagMapping())
	assert.Equal(t, `<iframe src="https://www.youtube.com/embed/{{.id}}"></iframe>`, s.Templates["video"])
	assert.Empty(t, s.Storage.Driver)
	require.NotNil(t, s.Cache)
	assert.Equal(t, 50, s.Cache.MaxEntries)
}

func TestParseSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  string
		wantMsg string
	}{
		{name: "unknown format", data: "x", format: "toml", wantMsg: ErrMsgSettingsFormat},
		{name: "bad yaml", data: "shortcodes: [", format: SettingsFormatYAML, wantMsg: ErrMsgSettingsParse},
		{name: "bad hcl", data: "shortcode {", format: SettingsFormatHCL, wantMsg: ErrMsgSettingsParse},
		{
			name:    "hcl block without template",
			data:    `shortcode "note" {}`,
			format:  SettingsFormatHCL,
			wantMsg: ErrMsgSettingsParse,
		},
		{
			name:    "empty tag name",
			data:    "shortcodes:\n  ' ': video\n",
			format:  SettingsFormatYAML,
			wantMsg: ErrMsgSettingsEmptyTag,
		},
		{
			name:    "empty target",
			data:    "shortcodes:\n  note: ''\n",
			format:  SettingsFormatYAML,
			wantMsg: ErrMsgSettingsEmptyTarget,
		},
		{
			name:    "bad duration",
			data:    "cache:\n  ttl: soon\n",
			format:  SettingsFormatYAML,
			wantMsg: ErrMsgSettingsParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.data), tt.format, "settings")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "shortcodes.yml")
		require.NoError(t, os.WriteFile(path, []byte(testYAMLSettings), 0o644))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.Len(t, s.Shortcodes, 3)
	})

	t.Run("hcl", func(t *testing.T) {
		path := filepath.Join(dir, "shortcodes.hcl")
		require.NoError(t, os.WriteFile(path, []byte(testHCLSettings), 0o644))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.Len(t, s.Shortcodes, 2)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(dir, "shortcodes.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgSettingsFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgSettingsRead)
	})
}

func TestSettings_NewEngine(t *testing.T) {
	ctx := context.Background()
	s, err := ParseSettings([]byte(testYAMLSettings), SettingsFormatYAML, "test.yaml")
	require.NoError(t, err)

	engine, storage, err := s.NewEngine(ctx)
	require.NoError(t, err)
	defer storage.Close()

	assert.IsType(t, &CachedStorage{}, storage)
	assert.Equal(t, 3, engine.Count())
	assert.True(t, engine.Exists("vimeo"))
	assert.Equal(t, "render", engine.Registry().DefaultMethod())

	out, err := engine.Compile(ctx, `[youtube id="abc" /] [note type=warning]Back up.[/note] [[note]]`)
	require.NoError(t, err)
	assert.Equal(t,
		`<iframe src="https://www.youtube.com/embed/abc"></iframe> <aside class="warning">Back up.</aside> [note]`,
		out)

	assert.True(t, engine.Contains(ctx, "[vimeo id=1 /]", "vimeo"))
	assert.Equal(t, "a  b", engine.Strip(ctx, "a [note]x[/note] b"))
}

func TestSettings_NewEngine_MissingTemplate(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	s := &Settings{Shortcodes: map[string]string{"gallery": "gallery-grid"}}

	engine, storage, err := s.NewEngine(ctx, WithLogger(zap.New(core)))
	require.NoError(t, err)
	defer storage.Close()

	out, err := engine.Compile(ctx, "[gallery cols=3 /]")
	require.NoError(t, err)
	assert.Equal(t, "[gallery cols=3 /]", out)
	assert.Equal(t, 1, logs.FilterMessage(LogMsgMissingTemplate).Len())
}

func TestSettings_OpenStorage_Filesystem(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := &Settings{
		Storage:   StorageSettings{Driver: StorageDriverNameFilesystem, Connection: root},
		Templates: map[string]string{"video": "v1"},
	}

	storage, err := s.OpenStorage(ctx)
	require.NoError(t, err)
	require.NoError(t, storage.Close())
	assert.FileExists(t, filepath.Join(root, "video"+FilesystemTemplateExt))

	t.Run("unchanged source is not saved again", func(t *testing.T) {
		storage, err := s.OpenStorage(ctx)
		require.NoError(t, err)
		defer storage.Close()

		versions, err := storage.ListVersions(ctx, "video")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, versions)
	})

	t.Run("changed source is saved as a new version", func(t *testing.T) {
		s.Templates["video"] = "v2"
		storage, err := s.OpenStorage(ctx)
		require.NoError(t, err)
		defer storage.Close()

		got, err := storage.Get(ctx, "video")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Source)
		assert.Equal(t, 2, got.Version)
	})
}

func TestSettings_OpenStorage_UnknownDriver(t *testing.T) {
	s := &Settings{Storage: StorageSettings{Driver: "carrier-pigeon"}}
	_, err := s.OpenStorage(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgStorageDriverNotFound)
}

func TestSettings_Apply(t *testing.T) {
	backend := &stubBackend{existing: map[TemplateID]bool{"card": true}}
	engine := MustNew()
	s := &Settings{Shortcodes: map[string]string{"note": "card", "tip": "card"}}

	require.NoError(t, s.Apply(engine, backend))
	assert.Equal(t, 2, engine.Count())

	out, err := engine.Compile(context.Background(), "[tip /]")
	require.NoError(t, err)
	assert.Equal(t, "{card}", out)
}
