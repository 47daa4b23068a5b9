package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/importls/importls/internal/pathtemplate"
)

// ExistsFunc reports whether a specifier is already materialized on the host,
// which suppresses the cache-trigger command on final suggestions.
type ExistsFunc func(specifier string) bool

// GetCompletions builds the candidate set for a partially typed specifier
// with the edit cursor at the given character offset. The returned boolean
// distinguishes "no structural match, let other completion sources
// contribute" (false) from a definitive result (true), which may be an empty
// set meaning no completions should be offered at all.
func (r *Registry) GetCompletions(ctx context.Context, currentSpecifier string, offset int, rng protocol.Range, specifierExists ExistsFunc) ([]protocol.CompletionItem, bool) {
	specifier, err := url.Parse(currentSpecifier)
	if err == nil && specifier.IsAbs() && specifier.Host != "" {
		origin := baseURL(specifier)
		originLen := utf8.RuneCountInString(origin)
		if offset >= originLen {
			r.mu.RLock()
			registries, enabled := r.origins[origin]
			r.mu.RUnlock()
			if enabled {
				return r.pathCompletions(ctx, specifier, registries,
					currentSpecifier, offset, originLen, rng, specifierExists)
			}
		}
	}
	return r.GetOriginCompletions(currentSpecifier, rng)
}

// GetOriginCompletions suggests every enabled origin whose serialization
// starts with the typed specifier.
func (r *Registry) GetOriginCompletions(currentSpecifier string, rng protocol.Range) ([]protocol.CompletionItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []protocol.CompletionItem
	for origin := range r.origins {
		origin = strings.TrimSuffix(origin, "/")
		if !strings.HasPrefix(origin, currentSpecifier) {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label:    origin,
			Kind:     protocol.CompletionItemKindFolder,
			Detail:   "(registry)",
			SortText: "2",
			TextEdit: &protocol.TextEdit{Range: rng, NewText: origin},
		})
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// pathCompletions tries every registry of the matched origin against the path
// portion of the specifier, collecting candidates deduplicated by their raw
// item text. Earlier registries win ties.
func (r *Registry) pathCompletions(ctx context.Context, specifier *url.URL, registries []Configuration, currentSpecifier string, offset, originLen int, rng protocol.Range, specifierExists ExistsFunc) ([]protocol.CompletionItem, bool) {
	path := specifier.RequestURI()
	pathOffset := offset - originLen
	origin := baseURL(specifier)

	completions := make(map[string]protocol.CompletionItem)
	didMatch := false
	for i := range registries {
		reg := &registries[i]
		tokens, err := pathtemplate.Parse(reg.Schema)
		if err != nil {
			r.log.Error().Str("origin", origin).Err(err).
				Msg("Error parsing registry schema")
			return nil, false
		}
		lastKeyName := ""
		if len(tokens) > 0 {
			if last := tokens[len(tokens)-1]; last.IsKey() {
				lastKeyName = last.Key.Name
			}
		}

		_, match, err := findMatch(tokens, path)
		if err != nil {
			r.log.Error().Str("origin", origin).Err(err).
				Msg("Error creating matcher for schema")
			return nil, false
		}
		if match == nil {
			if len(tokens) > 0 {
				r.fallbackCompletions(ctx, reg, tokens, path, specifier,
					lastKeyName, rng, specifierExists, completions)
			}
			continue
		}

		didMatch = true
		switch c := completorTypeAt(pathOffset, tokens, match).(type) {
		case literalCompletor:
			completeLiteral(c.text, completions, currentSpecifier, offset, rng)
		case keyCompletor:
			r.keyCompletions(ctx, reg, tokens, match, c, lastKeyName,
				specifier, rng, specifierExists, completions)
		case nil:
			// Cursor on an ambiguous key boundary, nothing to offer.
		}
	}

	if len(completions) == 0 && !didMatch {
		return nil, false
	}
	items := make([]protocol.CompletionItem, 0, len(completions))
	for _, item := range completions {
		items = append(items, item)
	}
	return items, true
}

// keyCompletions fetches the candidate values for the key under the cursor
// and synthesizes one completion per value. The inserted text is the token
// subsequence up to and including the key, re-rendered with the candidate
// substituted in, resolved against the origin.
func (r *Registry) keyCompletions(ctx context.Context, reg *Configuration, tokens []pathtemplate.Token, match *pathtemplate.MatchResult, c keyCompletor, lastKeyName string, specifier *url.URL, rng protocol.Range, specifierExists ExistsFunc, completions map[string]protocol.CompletionItem) {
	urlTemplate, ok := reg.URLForKey(c.key.Name)
	if !ok {
		return
	}
	items := r.variableItems(ctx, urlTemplate, tokens, match)
	if len(items) == 0 {
		return
	}
	compiler, err := pathtemplate.NewCompiler(tokens[:c.index+1])
	if err != nil {
		r.log.Error().Str("schema", reg.Schema).Err(err).
			Msg("Error creating compiler for schema")
		return
	}
	originURL := &url.URL{Scheme: specifier.Scheme, Host: specifier.Host}

	for idx, item := range items {
		if _, dup := completions[item]; dup {
			continue
		}
		label := item
		if c.prefix != "" {
			label = c.prefix + item
		}
		kind := protocol.CompletionItemKindFolder
		if c.key.Name == lastKeyName {
			kind = protocol.CompletionItemKindFile
		}

		params := make(map[string]pathtemplate.Value, len(match.Params)+1)
		for name, v := range match.Params {
			params[name] = v
		}
		params[c.key.Name] = pathtemplate.ValueForKey(item, c.key)
		path, err := compiler.ToPath(params)
		if err != nil {
			path = ""
		}
		itemSpecifier, err := originURL.Parse(path)
		if err != nil {
			continue
		}
		fullText := itemSpecifier.String()

		var command *protocol.Command
		if kind == protocol.CompletionItemKindFile && !specifierExists(fullText) {
			command = cacheCommand(fullText)
		}
		completions[item] = protocol.CompletionItem{
			Label:      label,
			Kind:       kind,
			Detail:     "(" + c.key.Name + ")",
			SortText:   fmt.Sprintf("%010d", idx+1),
			FilterText: fullText,
			TextEdit:   &protocol.TextEdit{Range: rng, NewText: fullText},
			Command:    command,
		}
	}
}

// fallbackCompletions handles paths too short for any token prefix to match.
// A first literal token that starts with the path is offered directly; a
// first key token whose prefix starts with the path gets its unparameterized
// item list. A first key without a prefix yields nothing.
func (r *Registry) fallbackCompletions(ctx context.Context, reg *Configuration, tokens []pathtemplate.Token, path string, specifier *url.URL, lastKeyName string, rng protocol.Range, specifierExists ExistsFunc, completions map[string]protocol.CompletionItem) {
	first := tokens[0]
	if !first.IsKey() {
		s := first.Text
		if !strings.HasPrefix(s, path) {
			return
		}
		if _, dup := completions[s]; dup {
			return
		}
		u := *specifier
		u.Path = s
		u.RawPath = ""
		fullText := u.String()
		completions[s] = protocol.CompletionItem{
			Label:      s,
			Kind:       protocol.CompletionItemKindFolder,
			SortText:   "1",
			FilterText: fullText,
			TextEdit:   &protocol.TextEdit{Range: rng, NewText: fullText},
		}
		return
	}

	k := first.Key
	if k.Prefix == "" || !strings.HasPrefix(k.Prefix, path) {
		return
	}
	urlTemplate, ok := reg.URLForKey(k.Name)
	if !ok {
		return
	}
	items := r.items(ctx, urlTemplate)
	originURL := &url.URL{Scheme: specifier.Scheme, Host: specifier.Host}
	for idx, item := range items {
		if _, dup := completions[item]; dup {
			continue
		}
		itemSpecifier, err := originURL.Parse(k.Prefix + item)
		if err != nil {
			continue
		}
		fullText := itemSpecifier.String()
		kind := protocol.CompletionItemKindFolder
		if k.Name == lastKeyName {
			kind = protocol.CompletionItemKindFile
		}
		var command *protocol.Command
		if kind == protocol.CompletionItemKindFile && !specifierExists(fullText) {
			command = cacheCommand(fullText)
		}
		completions[item] = protocol.CompletionItem{
			Label:      item,
			Kind:       kind,
			Detail:     "(" + k.Name + ")",
			SortText:   fmt.Sprintf("%010d", idx+1),
			FilterText: fullText,
			TextEdit:   &protocol.TextEdit{Range: rng, NewText: fullText},
			Command:    command,
		}
	}
}

// completeLiteral offers the remaining literal text, spliced into the current
// specifier at the cursor. Literals sort before dynamic items.
func completeLiteral(text string, completions map[string]protocol.CompletionItem, currentSpecifier string, offset int, rng protocol.Range) {
	if _, dup := completions[text]; dup {
		return
	}
	b := byteOffset(currentSpecifier, offset)
	fullText := currentSpecifier[:b] + text + currentSpecifier[b:]
	completions[text] = protocol.CompletionItem{
		Label:      text,
		Kind:       protocol.CompletionItemKindFolder,
		SortText:   "1",
		FilterText: fullText,
		TextEdit:   &protocol.TextEdit{Range: rng, NewText: fullText},
	}
}

// byteOffset converts a character offset into a byte offset within s.
func byteOffset(s string, runes int) int {
	count := 0
	for i := range s {
		if count == runes {
			return i
		}
		count++
	}
	return len(s)
}

// cacheCommand signals the host to eagerly materialize a suggested specifier
// that does not exist yet.
func cacheCommand(specifier string) *protocol.Command {
	return &protocol.Command{
		Title:     "",
		Command:   "deno.cache",
		Arguments: []interface{}{[]string{specifier}},
	}
}

// variableItems expands a variable's endpoint template with the captured
// parameters and fetches its item list. Failures are logged and yield no
// items, keeping completion best-effort.
func (r *Registry) variableItems(ctx context.Context, urlTemplate string, tokens []pathtemplate.Token, match *pathtemplate.MatchResult) []string {
	endpoint, err := endpointURL(urlTemplate, tokens, match)
	if err != nil {
		r.log.Error().Str("url", urlTemplate).Err(err).
			Msg("Internal error mapping endpoint")
		return nil
	}
	return r.items(ctx, endpoint.String())
}

// items fetches an endpoint and decodes its body as a JSON array of strings.
func (r *Registry) items(ctx context.Context, endpoint string) []string {
	body, err := r.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		r.log.Error().Str("url", endpoint).Err(err).
			Msg("Internal error fetching endpoint")
		return nil
	}
	var items []string
	if err := json.Unmarshal(body, &items); err != nil {
		r.log.Error().Str("url", endpoint).Err(err).
			Msg("Error parsing response from endpoint")
		return nil
	}
	r.log.Debug().Str("url", endpoint).Int("count", len(items)).
		Msg("Fetched completion items")
	return items
}
