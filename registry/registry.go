// Package registry implements the schema registry: it owns every schema
// handle and file-pattern association, decides which schema applies to a
// resource, delegates $ref dereferencing to the resolution engine, and
// keeps the caches honest when documents change.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/reglet-schema/fetch"
	"github.com/reglet-dev/reglet-schema/future"
	"github.com/reglet-dev/reglet-schema/parser"
	"github.com/reglet-dev/reglet-schema/schema"
)

// SchemaContribution is a built-in schema shipped by the host.
type SchemaContribution struct {
	ID      string
	Content any
}

// AssociationContribution binds file patterns to schema identifiers.
type AssociationContribution struct {
	Patterns []string
	IDs      []string
}

type externalAssociation struct {
	owner string
	assoc *FilePatternAssociation
}

type resourceCacheEntry struct {
	resource string
	fut      *future.Value[*schema.Resolved] // nil when no schema applies
}

// Registry implements SchemaService with in-memory state. Registration and
// invalidation are expected to happen from one control flow at a time; the
// internal locking only covers the get-or-create points that concurrent
// resolutions hit.
type Registry struct {
	logger       *slog.Logger
	fetcher      fetch.Fetcher
	pathResolver parser.PathResolver

	mu                   sync.RWMutex
	handles              map[string]*SchemaHandle
	registered           map[string]struct{}
	contribSchemas       []SchemaContribution
	contribAssociations  []*FilePatternAssociation
	externalAssociations []externalAssociation
	cachedResource       *resourceCacheEntry
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger for load and invalidation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithFetcher replaces the transport used to load schema text.
func WithFetcher(f fetch.Fetcher) Option {
	return func(r *Registry) { r.fetcher = f }
}

// WithPathResolver replaces the relative-reference resolver.
func WithPathResolver(p parser.PathResolver) Option {
	return func(r *Registry) { r.pathResolver = p }
}

// New creates an empty schema registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		handles:      map[string]*SchemaHandle{},
		registered:   map[string]struct{}{},
		pathResolver: parser.URLResolver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.fetcher == nil {
		r.fetcher = fetch.Default()
	}
	return r
}

// getOrAddHandle returns the handle owning id, creating it on first
// reference. Idempotent: concurrent callers with the same identifier get
// the same handle instance.
func (r *Registry) getOrAddHandle(id string) *SchemaHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrAddHandleLocked(id)
}

func (r *Registry) getOrAddHandleLocked(id string) *SchemaHandle {
	if h, ok := r.handles[id]; ok {
		return h
	}
	h := newSchemaHandle(r, id, nil)
	r.handles[id] = h
	return h
}

func (r *Registry) addHandleLocked(id string, content any) *SchemaHandle {
	h := newSchemaHandle(r, id, content)
	r.handles[id] = h
	return h
}

// SetContributions replaces the built-in contribution set. Handles and
// associations sourced from the previous contributions are dropped unless
// their identifier is also externally registered; contributions survive
// ClearExternal.
func (r *Registry) SetContributions(schemas []SchemaContribution, associations []AssociationContribution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, old := range r.contribSchemas {
		if _, ok := r.registered[old.ID]; !ok {
			delete(r.handles, old.ID)
		}
	}
	r.contribSchemas = nil
	r.contribAssociations = nil
	for _, c := range schemas {
		id := schema.NormalizeID(c.ID)
		r.contribSchemas = append(r.contribSchemas, SchemaContribution{ID: id, Content: c.Content})
		r.addHandleLocked(id, c.Content)
	}
	for _, a := range associations {
		r.contribAssociations = append(r.contribAssociations, newFilePatternAssociation(a.Patterns, a.IDs))
	}
	r.cachedResource = nil
}

// RegisterExternal registers a schema under id. Optional globs associate
// file patterns with it; non-nil content bypasses loading entirely.
// Returns the handle owning the identifier.
func (r *Registry) RegisterExternal(id string, globs []string, content any) *SchemaHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = schema.NormalizeID(id)
	r.registered[id] = struct{}{}
	r.cachedResource = nil
	if len(globs) > 0 {
		r.externalAssociations = append(r.externalAssociations, externalAssociation{
			owner: id,
			assoc: newFilePatternAssociation(globs, []string{id}),
		})
	}
	if content != nil {
		return r.addHandleLocked(id, content)
	}
	return r.getOrAddHandleLocked(id)
}

// RegisterExternalStruct reflects a JSON schema from a Go value and
// registers it as inline content under id.
func (r *Registry) RegisterExternalStruct(id string, globs []string, model any) (*SchemaHandle, error) {
	reflector := new(jsonschema.Reflector)
	reflector.ExpandedStruct = true
	raw, err := json.Marshal(reflector.Reflect(model))
	if err != nil {
		return nil, fmt.Errorf("marshaling generated schema: %w", err)
	}
	var content any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("decoding generated schema: %w", err)
	}
	return r.RegisterExternal(id, globs, content), nil
}

// UnregisterExternal removes an externally registered schema and its
// associations.
func (r *Registry) UnregisterExternal(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = schema.NormalizeID(id)
	delete(r.registered, id)
	delete(r.handles, id)
	kept := r.externalAssociations[:0]
	for _, ea := range r.externalAssociations {
		if ea.owner != id {
			kept = append(kept, ea)
		}
	}
	r.externalAssociations = kept
	r.cachedResource = nil
}

// ClearExternal drops every externally registered schema, every discovered
// handle and every external association, then reseeds the registry from
// the contribution set.
func (r *Registry) ClearExternal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = map[string]*SchemaHandle{}
	r.registered = map[string]struct{}{}
	r.externalAssociations = nil
	r.cachedResource = nil
	for _, c := range r.contribSchemas {
		r.addHandleLocked(c.ID, c.Content)
	}
}

// Schemas lists the externally registered identifiers, optionally filtered
// by URI scheme. Sorted for determinism.
func (r *Registry) Schemas(scheme string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.registered))
	for id := range r.registered {
		if scheme == "" || strings.HasPrefix(id, scheme+":") {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// OnResourceChange invalidates everything the changed document can
// influence: the resource cache unconditionally, then a worklist sweep
// backward through the dependency graph so that every handle whose
// resolution reached the changed identifier is cleared too. Reports
// whether any handle actually had cached state.
func (r *Registry) OnResourceChange(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cachedResource = nil
	id = schema.NormalizeID(id)

	hasChanges := false
	frontier := []string{id}
	pending := make([]*SchemaHandle, 0, len(r.handles))
	for _, h := range r.handles {
		pending = append(pending, h)
	}
	for len(frontier) > 0 {
		curr := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for i, h := range pending {
			if h == nil {
				continue
			}
			if h.id == curr || h.dependsOn(curr) {
				if h.id != curr {
					frontier = append(frontier, h.id)
				}
				if h.Invalidate() {
					hasChanges = true
				}
				pending[i] = nil
			}
		}
	}
	if hasChanges {
		r.logger.Debug("invalidated schema caches", "uri", id)
	}
	return hasChanges
}

// ResolvedForResource determines and resolves the schema applicable to a
// resource. A string-valued root $schema property in doc wins over pattern
// associations and is never cached, since it travels with the document
// content. Returns nil when no schema applies; the error only reports ctx
// cancellation.
func (r *Registry) ResolvedForResource(ctx context.Context, resource string, doc parser.ParsedDocument) (*schema.Resolved, error) {
	if doc != nil {
		if declared, ok := doc.SchemaProperty(); ok && declared != "" {
			if !schema.IsAbsoluteURI(declared) {
				declared = r.pathResolver.ResolveRelative(declared, resource)
			}
			return r.getOrAddHandle(schema.NormalizeID(declared)).Resolved(ctx)
		}
	}
	fut := r.resourceFuture(resource)
	if fut == nil {
		return nil, nil
	}
	return fut.Await(ctx)
}

// ResolvedForID resolves a schema by raw identifier. Returns nil when the
// identifier is unknown to the registry.
func (r *Registry) ResolvedForID(ctx context.Context, id string) (*schema.Resolved, error) {
	r.mu.RLock()
	h := r.handles[schema.NormalizeID(id)]
	r.mu.RUnlock()
	if h == nil {
		return nil, nil
	}
	return h.Resolved(ctx)
}

func (r *Registry) resourceFuture(resource string) *future.Value[*schema.Resolved] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cachedResource != nil && r.cachedResource.resource == resource {
		return r.cachedResource.fut
	}

	normalized := normalizeResourceForMatching(resource)
	var ids []string
	seen := map[string]struct{}{}
	collect := func(a *FilePatternAssociation) {
		if !a.Matches(normalized) {
			return
		}
		for _, id := range a.SchemaIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	for _, a := range r.contribAssociations {
		collect(a)
	}
	for _, ea := range r.externalAssociations {
		collect(ea.assoc)
	}

	var fut *future.Value[*schema.Resolved]
	if len(ids) > 0 {
		fut = r.combinedHandleLocked(resource, ids).resolvedFuture()
	}
	r.cachedResource = &resourceCacheEntry{resource: resource, fut: fut}
	return fut
}

// combinedHandleLocked returns the single matched handle, or synthesizes a
// schema that is an allOf of $refs to every matched identifier, registered
// under a synthetic identifier derived from the resource.
func (r *Registry) combinedHandleLocked(resource string, ids []string) *SchemaHandle {
	if len(ids) == 1 {
		return r.getOrAddHandleLocked(ids[0])
	}
	combinedID := "schemaservice://combinedschema/" + url.PathEscape(resource)
	refs := make([]any, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]any{"$ref": id})
	}
	return r.addHandleLocked(combinedID, map[string]any{"allOf": refs})
}

// MatchingSchemas reports the schema sections applying to doc. Non-nil
// explicit content is resolved in isolation, under schemaID when given or
// a synthetic identifier otherwise; a bare schemaID names a registered or
// fetchable schema; with neither, the schema associated with resource
// applies. Inverted matches are dropped; an empty result means no schema
// applies or there is no document to match against.
func (r *Registry) MatchingSchemas(ctx context.Context, resource string, doc parser.ParsedDocument, schemaID string, explicit any) ([]parser.SchemaMatch, error) {
	if doc == nil {
		return nil, nil
	}
	var resolved *schema.Resolved
	var err error
	switch {
	case explicit != nil:
		id := schemaID
		if id == "" {
			if m, ok := explicit.(map[string]any); ok {
				if declared, ok := m["$id"].(string); ok && declared != "" {
					id = declared
				} else if declared, ok := m["id"].(string); ok && declared != "" {
					id = declared
				}
			}
		}
		if id == "" {
			id = "schemaservice://untitled/matchingschemas"
		}
		r.mu.Lock()
		h := r.addHandleLocked(schema.NormalizeID(id), explicit)
		r.mu.Unlock()
		resolved, err = h.Resolved(ctx)
	case schemaID != "":
		resolved, err = r.getOrAddHandle(schema.NormalizeID(schemaID)).Resolved(ctx)
	default:
		resolved, err = r.ResolvedForResource(ctx, resource, doc)
	}
	if err != nil || resolved == nil {
		return nil, err
	}
	var out []parser.SchemaMatch
	for _, m := range doc.GetMatchingSchemas(resolved.Content) {
		if !m.Inverted {
			out = append(out, m)
		}
	}
	return out, nil
}

// loadSchema fetches and parses one schema document. All failure is
// captured on the result; loading never fails with a Go error.
func (r *Registry) loadSchema(ctx context.Context, id string) *schema.Unresolved {
	r.logger.Debug("loading schema", "uri", id)
	text, err := r.fetcher.Fetch(ctx, id)
	if err != nil {
		return schema.NewUnresolved(nil, []string{
			fmt.Sprintf("Unable to load schema from '%s': %v", id, err),
		})
	}
	if text == "" {
		return schema.NewUnresolved(nil, []string{
			fmt.Sprintf("Unable to load schema from '%s': No content.", id),
		})
	}
	content, err := parser.ParseSchemaText(id, text)
	if err != nil {
		return schema.NewUnresolved(nil, []string{
			fmt.Sprintf("Unable to parse content from '%s': %v", id, err),
		})
	}
	return schema.NewUnresolved(content, nil)
}

// normalizeResourceForMatching strips the query and fragment from a
// resource URI before pattern matching.
func normalizeResourceForMatching(resource string) string {
	if i := strings.IndexAny(resource, "?#"); i >= 0 {
		return resource[:i]
	}
	return resource
}
