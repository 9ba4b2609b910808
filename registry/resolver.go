package registry

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/reglet-dev/reglet-schema/schema"
)

// The fixed set of schema-composition keywords through which the walk
// reaches nested schema objects.
var (
	singleValueKeywords = []string{
		"items", "additionalItems", "additionalProperties", "not",
		"contains", "propertyNames", "if", "then", "else",
	}
	mapValueKeywords = []string{
		"definitions", "$defs", "properties", "patternProperties", "dependencies",
	}
	arrayValueKeywords = []string{"anyOf", "allOf", "oneOf", "items"}
)

// resolvePass carries the state of one resolution: the accumulated error
// list, the pass-wide visited set, and the per-node record of already
// merged references. Node identity is the map header pointer; every node
// reachable from one root shares this traversal context.
type resolvePass struct {
	reg *Registry
	grp *errgroup.Group

	// treeMu serializes every read and write of the working tree. External
	// documents load concurrently, but merging them in happens one at a
	// time; a continuation otherwise races against section reads elsewhere
	// in the tree.
	treeMu sync.Mutex

	mu     sync.Mutex
	errs   []string
	seen   map[uintptr]struct{}
	merged map[uintptr]map[string]struct{}
}

// resolveContent dereferences every $ref reachable from the unresolved
// content, recording external documents into deps. The input tree is deep
// copied up front so handle caches stay pristine and the working tree
// remains acyclic.
func (r *Registry) resolveContent(ctx context.Context, unresolved *schema.Unresolved, id string, deps *dependencySet) *schema.Resolved {
	errs := append([]string(nil), unresolved.Errors...)

	content := schema.DeepCopy(unresolved.Content)
	root, ok := content.(map[string]any)
	if !ok {
		// boolean and other degenerate schemas have nothing to resolve
		return schema.NewResolved(content, errs)
	}

	if declared, ok := root["$schema"].(string); ok {
		switch schema.DialectOf(declared) {
		case schema.DialectDraft03:
			return schema.NewResolved(map[string]any{}, append(errs, "Draft-03 schemas are not supported."))
		case schema.Dialect201909:
			errs = append(errs, "Draft 2019-09 schemas are not fully supported.")
		case schema.Dialect202012:
			errs = append(errs, "Draft 2020-12 schemas are not fully supported.")
		}
	}

	grp, ctx := errgroup.WithContext(ctx)
	pass := &resolvePass{
		reg:    r,
		grp:    grp,
		errs:   errs,
		seen:   map[uintptr]struct{}{},
		merged: map[uintptr]map[string]struct{}{},
	}
	pass.treeMu.Lock()
	pass.resolveRefs(ctx, root, root, id, deps)
	pass.treeMu.Unlock()
	_ = grp.Wait()

	return schema.NewResolved(root, pass.errs)
}

func (p *resolvePass) addError(msg string) {
	p.mu.Lock()
	p.errs = append(p.errs, msg)
	p.mu.Unlock()
}

// visit marks a node as walked, reporting false when it was walked before
// in this pass. Membership testing, not recursion depth, is what breaks
// cycles and skips diamond-shared subtrees.
func (p *resolvePass) visit(node map[string]any) bool {
	key := reflect.ValueOf(node).Pointer()
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[key]; ok {
		return false
	}
	p.seen[key] = struct{}{}
	return true
}

// markMerged records that ref (in the context of rootID) has been merged
// into node, reporting false when that exact merge already happened. This
// refusal to re-merge an identical reference is what stops self-reference
// loops.
func (p *resolvePass) markMerged(node map[string]any, rootID, ref string) bool {
	key := reflect.ValueOf(node).Pointer()
	p.mu.Lock()
	defer p.mu.Unlock()
	set := p.merged[key]
	if set == nil {
		set = map[string]struct{}{}
		p.merged[key] = set
	}
	full := rootID + "\x00" + ref
	if _, ok := set[full]; ok {
		return false
	}
	set[full] = struct{}{}
	return true
}

// inheritMerged stamps node's merged-reference record onto the subtrees a
// merge just copied in. Merging copies content, so a recursive definition
// keeps producing fresh nodes; without lineage inheritance each fresh copy
// would expand the same reference again and the walk would never finish.
// Only the copied values are stamped: a locally defined child repeating the
// same reference is a distinct, legitimate use and must still merge.
func (p *resolvePass) inheritMerged(node map[string]any, added []any) {
	key := reflect.ValueOf(node).Pointer()
	p.mu.Lock()
	defer p.mu.Unlock()
	lineage := p.merged[key]
	if len(lineage) == 0 {
		return
	}
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			k := reflect.ValueOf(t).Pointer()
			set := p.merged[k]
			if set == nil {
				set = make(map[string]struct{}, len(lineage))
				p.merged[k] = set
			}
			for full := range lineage {
				set[full] = struct{}{}
			}
			for _, child := range t {
				walk(child)
			}
		case []any:
			for _, child := range t {
				walk(child)
			}
		}
	}
	for _, v := range added {
		walk(v)
	}
}

// resolveRefs walks every schema object reachable from node through the
// composition keywords, dereferencing $ref on each. root and rootID name
// the document whose fragments same-document references resolve against.
func (p *resolvePass) resolveRefs(ctx context.Context, node, root map[string]any, rootID string, deps *dependencySet) {
	toWalk := []map[string]any{node}
	for len(toWalk) > 0 {
		next := toWalk[len(toWalk)-1]
		toWalk = toWalk[:len(toWalk)-1]
		if !p.visit(next) {
			continue
		}
		if p.handleRef(ctx, next, root, rootID, deps) {
			// an external reference is in flight; its continuation walks
			// this node's children against the external root
			continue
		}
		p.collectChildren(next, &toWalk)
	}
}

func (p *resolvePass) collectChildren(node map[string]any, toWalk *[]map[string]any) {
	for _, kw := range singleValueKeywords {
		if sub, ok := node[kw].(map[string]any); ok {
			*toWalk = append(*toWalk, sub)
		}
	}
	for _, kw := range mapValueKeywords {
		if m, ok := node[kw].(map[string]any); ok {
			for _, v := range m {
				if sub, ok := v.(map[string]any); ok {
					*toWalk = append(*toWalk, sub)
				}
			}
		}
	}
	for _, kw := range arrayValueKeywords {
		if arr, ok := node[kw].([]any); ok {
			for _, v := range arr {
				if sub, ok := v.(map[string]any); ok {
					*toWalk = append(*toWalk, sub)
				}
			}
		}
	}
}

// handleRef dereferences the node's $ref, looping because merged content
// can itself introduce a new $ref. Returns true when an external reference
// was scheduled; the caller must then leave the node's children to the
// external continuation.
func (p *resolvePass) handleRef(ctx context.Context, node, root map[string]any, rootID string, deps *dependencySet) bool {
	for {
		ref, ok := node["$ref"].(string)
		if !ok {
			return false
		}
		delete(node, "$ref")
		docPart, fragment, _ := strings.Cut(ref, "#")
		if docPart != "" {
			if !p.markMerged(node, rootID, ref) {
				continue
			}
			p.grp.Go(func() error {
				p.resolveExternal(ctx, node, docPart, fragment, rootID, deps)
				return nil
			})
			return true
		}
		if p.markMerged(node, rootID, ref) {
			p.mergeFragment(node, root, rootID, ref, fragment)
		}
	}
}

// mergeFragment copies the section named by a same-document fragment into
// node. A missing section is a resolution error, not a fatal one.
func (p *resolvePass) mergeFragment(node, root map[string]any, rootID, ref, fragment string) {
	section := findSection(root, fragment)
	if section == nil {
		p.addError(fmt.Sprintf("$ref '%s' in '%s' can not be resolved.", ref, rootID))
		return
	}
	if sectionMap, ok := section.(map[string]any); ok {
		p.inheritMerged(node, mergeSection(node, sectionMap))
	}
}

// resolveExternal merges an external document's (possibly fragment-scoped)
// section into node, then keeps resolving inside the merged subtree with
// the external document as the new root for any same-document references
// found there, threading the external handle's own dependency set through.
func (p *resolvePass) resolveExternal(ctx context.Context, node map[string]any, docPart, fragment, parentID string, deps *dependencySet) {
	id := docPart
	if !schema.IsAbsoluteURI(id) {
		id = p.reg.pathResolver.ResolveRelative(id, parentID)
	}
	id = schema.NormalizeID(id)
	h := p.reg.getOrAddHandle(id)

	unresolved, err := h.unresolvedFuture().Await(ctx)
	if err != nil {
		p.addError(fmt.Sprintf("Problems loading reference '%s': %v.", id, err))
		return
	}
	deps.add(id)

	p.treeMu.Lock()
	defer p.treeMu.Unlock()

	if len(unresolved.Errors) > 0 {
		location := id
		if fragment != "" {
			location = id + "#" + fragment
		}
		p.addError(fmt.Sprintf("Problems loading reference '%s': %s", location, unresolved.Errors[0]))
	}

	externalRoot, ok := unresolved.Content.(map[string]any)
	if !ok {
		return
	}
	var added []any
	if fragment == "" || fragment == "/" {
		added = mergeSection(node, externalRoot)
	} else {
		section := findSection(externalRoot, fragment)
		if section == nil {
			p.addError(fmt.Sprintf("$ref '#%s' in '%s' can not be resolved.", fragment, id))
		} else if sectionMap, ok := section.(map[string]any); ok {
			added = mergeSection(node, sectionMap)
		}
	}

	p.inheritMerged(node, added)

	// continue the reference chain on the merged node, then walk the
	// merged-in children against the external root
	if p.handleRef(ctx, node, externalRoot, id, h.deps) {
		return
	}
	var children []map[string]any
	p.collectChildren(node, &children)
	for _, child := range children {
		p.resolveRefs(ctx, child, externalRoot, id, h.deps)
	}
}

// mergeSection copies every key the node does not already define from
// section into node, returning the copied values. Locally defined keywords
// always win, and $id/id never transfer since the merged content now
// belongs to the referencing document. Values are deep copied so the
// working tree never aliases a cached document.
func mergeSection(node, section map[string]any) []any {
	var added []any
	for k, v := range section {
		if k == "$id" || k == "id" {
			continue
		}
		if _, exists := node[k]; !exists {
			cp := schema.DeepCopy(v)
			node[k] = cp
			added = append(added, cp)
		}
	}
	return added
}

// findSection resolves a JSON-pointer-style fragment (slash separated,
// percent decoded, ~1/~0 unescaped) inside root. An empty fragment names
// the root itself; nil means the section does not exist.
func findSection(root map[string]any, fragment string) any {
	if decoded, err := url.PathUnescape(fragment); err == nil {
		fragment = decoded
	}
	fragment = strings.TrimPrefix(fragment, "/")
	if fragment == "" {
		return root
	}
	var current any = root
	for _, part := range strings.Split(fragment, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		switch c := current.(type) {
		case map[string]any:
			current = c[part]
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(c) {
				return nil
			}
			current = c[index]
		default:
			return nil
		}
		if current == nil {
			return nil
		}
	}
	return current
}
