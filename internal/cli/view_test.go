package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestRenderCheck(t *testing.T) {
	out := renderCheck("https://deno.land", nil)
	assert.Contains(t, out, "https://deno.land")
	assert.Contains(t, out, "provides import completions")

	out = renderCheck("https://deno.land", errors.New("connection refused"))
	assert.Contains(t, out, "connection refused")
}

func TestRenderCompletions(t *testing.T) {
	items := []protocol.CompletionItem{
		{Label: "v1.0.1", Detail: "(version)", SortText: "0000000002"},
		{Label: "v1.0.0", Detail: "(version)", SortText: "0000000001"},
		{Label: "mod.ts", Kind: protocol.CompletionItemKindFile, SortText: "0000000003"},
	}
	out := renderCompletions("https://deno.land/x/a@", items)
	assert.Contains(t, out, "Completions for https://deno.land/x/a@")
	assert.Less(t, strings.Index(out, "v1.0.0"), strings.Index(out, "v1.0.1"))
	assert.Contains(t, out, "(version)")
}

func TestRenderCompletions_Empty(t *testing.T) {
	out := renderCompletions("https://deno.land/x/", nil)
	assert.Contains(t, out, "(none)")
}

func TestRenderStatus(t *testing.T) {
	out := renderStatus("/home/user/importls.yml", "/home/user/.cache/importls",
		[]string{"https://deno.land"})
	assert.Contains(t, out, "/home/user/importls.yml")
	assert.Contains(t, out, "/home/user/.cache/importls")
	assert.Contains(t, out, "https://deno.land")

	out = renderStatus("", "/tmp/cache", nil)
	assert.Contains(t, out, "(none)")
}
