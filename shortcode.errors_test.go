package shortcode

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRenderError tests render error creation with and without a cause
func TestNewRenderError(t *testing.T) {
	t.Run("with cause error", func(t *testing.T) {
		cause := errors.New("template exploded")
		err := NewRenderError(ErrMsgRenderFailed, "note", TemplateID("note-card"), cause)

		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgRenderFailed)
		assert.True(t, errors.Is(err, cause))

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))

		name, ok := customErr.GetMetadata(MetaKeyShortcode)
		assert.True(t, ok)
		assert.Equal(t, "note", name)

		tmpl, ok := customErr.GetMetadata(MetaKeyTemplate)
		assert.True(t, ok)
		assert.Equal(t, "note-card", tmpl)
	})

	t.Run("without cause error", func(t *testing.T) {
		err := NewRenderError(ErrMsgMissingShortcodeVar, "note", "note", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMissingShortcodeVar)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
	})
}

// TestNewConfigError tests settings error creation
func TestNewConfigError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewConfigError(ErrMsgSettingsRead, "/etc/shortcodes.yaml", cause)

	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	path, ok := customErr.GetMetadata(MetaKeyPath)
	assert.True(t, ok)
	assert.Equal(t, "/etc/shortcodes.yaml", path)
}

// TestRegistryErrors tests the registry error constructors
func TestRegistryErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		metaKey string
		metaVal string
	}{
		{
			name:    "registry error",
			err:     NewRegistryError(ErrMsgEmptyCallback, "note"),
			wantMsg: ErrMsgEmptyCallback,
			metaKey: MetaKeyShortcode,
			metaVal: "note",
		},
		{
			name:    "shortcode not found",
			err:     NewShortcodeNotFoundError("note"),
			wantMsg: ErrMsgShortcodeNotFound,
			metaKey: MetaKeyShortcode,
			metaVal: "note",
		},
		{
			name:    "type not found",
			err:     NewTypeNotFoundError("Media"),
			wantMsg: ErrMsgTypeNotFound,
			metaKey: MetaKeyTypeName,
			metaVal: "Media",
		},
		{
			name:    "func not found",
			err:     NewFuncNotFoundError("renderNote"),
			wantMsg: ErrMsgFuncNotFound,
			metaKey: MetaKeyFuncName,
			metaVal: "renderNote",
		},
		{
			name:    "method not found",
			err:     NewMethodNotFoundError("Media", "image"),
			wantMsg: ErrMsgMethodNotFound,
			metaKey: MetaKeyMethod,
			metaVal: "image",
		},
		{
			name:    "method signature",
			err:     NewMethodSignatureError("Media", "broken", "func(int) string"),
			wantMsg: ErrMsgMethodSignature,
			metaKey: MetaKeyReason,
			metaVal: "func(int) string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Contains(t, tt.err.Error(), tt.wantMsg)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(tt.err, &customErr))
			val, ok := customErr.GetMetadata(tt.metaKey)
			assert.True(t, ok)
			assert.Equal(t, tt.metaVal, val)
		})
	}
}
