package registry

import (
	"context"
	"sync"

	"github.com/reglet-dev/reglet-schema/future"
	"github.com/reglet-dev/reglet-schema/schema"
)

// dependencySet tracks which external documents were reached while
// resolving a handle's schema. Sub-resolutions for distinct references run
// concurrently and may record dependencies at the same time, so access is
// guarded.
type dependencySet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newDependencySet() *dependencySet {
	return &dependencySet{ids: map[string]struct{}{}}
}

func (s *dependencySet) add(id string) {
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

func (s *dependencySet) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *dependencySet) clear() {
	s.mu.Lock()
	s.ids = map[string]struct{}{}
	s.mu.Unlock()
}

// SchemaHandle owns one schema identifier: its memoized unresolved and
// resolved forms, and the set of identifiers its resolution depends on.
// Both forms are computed at most once; a caller arriving while a load or
// resolution is pending joins the in-flight work.
type SchemaHandle struct {
	id      string
	reg     *Registry
	content any // inline registration content; nil means load via fetcher

	mu         sync.Mutex
	unresolved *future.Value[*schema.Unresolved]
	resolved   *future.Value[*schema.Resolved]
	deps       *dependencySet
}

func newSchemaHandle(reg *Registry, id string, content any) *SchemaHandle {
	return &SchemaHandle{id: id, reg: reg, content: content, deps: newDependencySet()}
}

// ID returns the normalized identifier this handle owns.
func (h *SchemaHandle) ID() string {
	return h.id
}

// Unresolved returns the loaded but not yet dereferenced schema. Load
// failures never surface as Go errors; they are recorded on the result.
// The returned error only reports ctx cancellation.
func (h *SchemaHandle) Unresolved(ctx context.Context) (*schema.Unresolved, error) {
	return h.unresolvedFuture().Await(ctx)
}

// Resolved returns the fully dereferenced schema, computing it on first
// use. The returned error only reports ctx cancellation.
func (h *SchemaHandle) Resolved(ctx context.Context) (*schema.Resolved, error) {
	return h.resolvedFuture().Await(ctx)
}

func (h *SchemaHandle) unresolvedFuture() *future.Value[*schema.Unresolved] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unresolvedLocked()
}

func (h *SchemaHandle) unresolvedLocked() *future.Value[*schema.Unresolved] {
	if h.unresolved == nil {
		if h.content != nil {
			h.unresolved = future.Done(schema.NewUnresolved(h.content, nil))
		} else {
			id, reg := h.id, h.reg
			h.unresolved = future.Go(func() *schema.Unresolved {
				return reg.loadSchema(context.Background(), id)
			})
		}
	}
	return h.unresolved
}

func (h *SchemaHandle) resolvedFuture() *future.Value[*schema.Resolved] {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved == nil {
		uf := h.unresolvedLocked()
		id, reg, deps := h.id, h.reg, h.deps
		h.resolved = future.Go(func() *schema.Resolved {
			ctx := context.Background()
			unresolved, _ := uf.Await(ctx)
			return reg.resolveContent(ctx, unresolved, id, deps)
		})
	}
	return h.resolved
}

// Invalidate clears the memoized forms and the dependency set, reporting
// whether anything was actually cached. The handle itself stays usable.
func (h *SchemaHandle) Invalidate() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	hadCache := h.unresolved != nil || h.resolved != nil
	h.unresolved = nil
	h.resolved = nil
	h.deps.clear()
	return hadCache
}

func (h *SchemaHandle) dependsOn(id string) bool {
	return h.deps.has(id)
}
