package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "Echoes input back",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(_ context.Context, input json.RawMessage) (string, error) {
			return string(input), nil
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	tb := New()
	tb.Register(echoTool("a"), echoTool("b"))

	got, ok := tb.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)

	_, ok = tb.Get("missing")
	assert.False(t, ok)
}

func TestRegistrationOrderPreserved(t *testing.T) {
	tb := New()
	tb.Register(echoTool("c"), echoTool("a"), echoTool("b"))

	names := make([]string, 0, 3)
	for _, tool := range tb.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestRegisterReplaceKeepsPosition(t *testing.T) {
	tb := New()
	tb.Register(echoTool("a"), echoTool("b"))

	replacement := echoTool("a")
	replacement.Description = "replaced"
	tb.Register(replacement)

	tools := tb.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "a", tools[0].Name)
	assert.Equal(t, "replaced", tools[0].Description)
}

func TestMerge(t *testing.T) {
	a := New()
	a.Register(echoTool("one"))

	b := New()
	b.Register(echoTool("two"), echoTool("three"))

	a.Merge(b)

	names := make([]string, 0, 3)
	for _, tool := range a.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"one", "two", "three"}, names)
}

func TestCall(t *testing.T) {
	tb := New()
	tb.Register(echoTool("echo"))

	result, err := tb.Call(context.Background(), "echo", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, result)
}

func TestCallUnknownTool(t *testing.T) {
	tb := New()

	_, err := tb.Call(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool not found: nope")
}

func TestCallHandlerError(t *testing.T) {
	tb := New()
	tb.Register(Tool{
		Name: "fail",
		Handler: func(_ context.Context, _ json.RawMessage) (string, error) {
			return "", errors.New("boom")
		},
	})

	_, err := tb.Call(context.Background(), "fail", nil)
	require.EqualError(t, err, "boom")
}

func TestAnnotationFields(t *testing.T) {
	tool := Tool{Name: "ro", ReadOnly: true, Idempotent: true}
	assert.True(t, tool.ReadOnly)
	assert.True(t, tool.Idempotent)
}
