package shortcode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		input      string
		wantKind   CallbackKind
		wantType   string
		wantMethod string
		wantString string
	}{
		{input: "Media@image", wantKind: CallbackKindMethod, wantType: "Media", wantMethod: "image", wantString: "Media@image"},
		{input: " Media @ image ", wantKind: CallbackKindMethod, wantType: "Media", wantMethod: "image", wantString: "Media@image"},
		{input: "renderNote", wantKind: CallbackKindFunc, wantString: "renderNote"},
		{input: "Media@", wantKind: CallbackKindMethod, wantType: "Media", wantString: "Media@"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cb := ParseCallback(tt.input)
			assert.Equal(t, tt.wantKind, cb.Kind())
			assert.Equal(t, tt.wantType, cb.TypeName())
			assert.Equal(t, tt.wantMethod, cb.Method())
			assert.Equal(t, tt.wantString, cb.String())
		})
	}
}

func TestCallback_IsZero(t *testing.T) {
	handler := func(ctx context.Context, sc *Shortcode) (string, error) { return "", nil }

	tests := []struct {
		name string
		cb   Callback
		want bool
	}{
		{name: "zero value", cb: Callback{}, want: true},
		{name: "func", cb: FuncCallback("fn"), want: false},
		{name: "empty func", cb: FuncCallback("  "), want: true},
		{name: "type", cb: TypeCallback("Media"), want: false},
		{name: "empty type", cb: TypeCallback(""), want: true},
		{name: "method", cb: MethodCallback("Media", "image"), want: false},
		{name: "method without name", cb: ParseCallback("Media@"), want: true},
		{name: "method without type", cb: ParseCallback("@image"), want: true},
		{name: "inline", cb: InlineCallback(handler), want: false},
		{name: "nil inline", cb: InlineCallback(nil), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cb.IsZero())
		})
	}
}

func TestCallbackKind_String(t *testing.T) {
	assert.Equal(t, CallbackKindNameNone, CallbackKindNone.String())
	assert.Equal(t, CallbackKindNameFunc, CallbackKindFunc.String())
	assert.Equal(t, CallbackKindNameType, CallbackKindType.String())
	assert.Equal(t, CallbackKindNameMethod, CallbackKindMethod.String())
	assert.Equal(t, CallbackKindNameInline, CallbackKindInline.String())
	assert.Equal(t, CallbackKindNameNone, CallbackKind(42).String())
}

func TestCallback_String_Inline(t *testing.T) {
	cb := InlineCallback(func(ctx context.Context, sc *Shortcode) (string, error) { return "", nil })
	assert.Equal(t, CallbackInlineLabel, cb.String())
	assert.Equal(t, "", Callback{}.String())
	assert.Equal(t, "Media", TypeCallback("Media").String())
}
