// Package manifest parses unit manifest files.
//
// A unit manifest is one HCL file describing a single extraction unit: its
// optional category and priority overrides, the units it should logically run
// after, and the operations it exposes. Each operation binds a conventionally
// named capability (extract_*, detect_*, analyze_*) to a compiled Go handler
// registered by one of the built-in modules.
//
// The parser is deliberately strict about structure but forgiving about
// dependency values: empty and non-string entries in depends_on are dropped
// with a warning rather than failing the whole unit, so one sloppy manifest
// line never takes a unit catalogue down.
package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/metascan/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Manifest is the decoded form of one unit manifest file.
type Manifest struct {
	// Category overrides the keyword-inferred category when set.
	Category string
	// Priority overrides the inferred priority when non-nil.
	Priority *int
	// DependsOn lists unit names this unit should logically follow,
	// already trimmed and deduplicated.
	DependsOn []string
	// Operations are the declared operation blocks in file order, before
	// any capability filtering.
	Operations []OperationDecl
}

// OperationDecl is one 'operation' block: a named capability bound to a
// registered Go handler, with optional default arguments.
type OperationDecl struct {
	Name    string
	Handler string
	Args    map[string]any
}

var unitBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "category"},
		{Name: "priority"},
		{Name: "depends_on"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "operation", LabelNames: []string{"name"}},
	},
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "unit"},
	},
}

var operationBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "handler"},
		{Name: "args"},
	},
}

// ParseFile reads and decodes a single unit manifest. Any syntax or structure
// problem is returned as an error; the caller decides how to isolate it.
func ParseFile(ctx context.Context, path string) (*Manifest, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", path, diags)
	}
	return decodeFile(ctx, hclFile, path)
}

func decodeFile(ctx context.Context, hclFile *hcl.File, path string) (*Manifest, error) {
	content, diags := hclFile.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", path, diags)
	}
	if len(content.Blocks) != 1 {
		return nil, fmt.Errorf("decode %s: expected exactly one 'unit' block, found %d", path, len(content.Blocks))
	}

	body, diags := content.Blocks[0].Body.Content(unitBodySchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", path, diags)
	}

	m := &Manifest{}

	if attr, ok := body.Attributes["category"]; ok {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() || val.Type() != cty.String {
			return nil, fmt.Errorf("decode %s: 'category' must be a string", path)
		}
		m.Category = val.AsString()
	}

	if attr, ok := body.Attributes["priority"]; ok {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() || val.Type() != cty.Number {
			return nil, fmt.Errorf("decode %s: 'priority' must be a number", path)
		}
		p, _ := val.AsBigFloat().Int64()
		priority := int(p)
		m.Priority = &priority
	}

	if attr, ok := body.Attributes["depends_on"]; ok {
		deps, err := decodeDependsOn(ctx, attr, path)
		if err != nil {
			return nil, err
		}
		m.DependsOn = deps
	}

	for _, block := range body.Blocks {
		op, err := decodeOperation(block, path)
		if err != nil {
			return nil, err
		}
		m.Operations = append(m.Operations, *op)
	}

	return m, nil
}

// decodeDependsOn evaluates the depends_on list. Entries are trimmed and
// deduplicated; empty and non-string values are discarded with a warning.
func decodeDependsOn(ctx context.Context, attr *hcl.Attribute, path string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: 'depends_on': %w", path, diags)
	}
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("decode %s: 'depends_on' must be a list", path)
	}

	seen := make(map[string]struct{})
	var deps []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() || elem.Type() != cty.String {
			logger.Warn("Discarding non-string depends_on entry.", "file", path, "type", elem.Type().FriendlyName())
			continue
		}
		name := strings.TrimSpace(elem.AsString())
		if name == "" {
			logger.Warn("Discarding empty depends_on entry.", "file", path)
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		deps = append(deps, name)
	}
	return deps, nil
}

func decodeOperation(block *hcl.Block, path string) (*OperationDecl, error) {
	name := block.Labels[0]
	body, diags := block.Body.Content(operationBodySchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: operation %q: %w", path, name, diags)
	}

	op := &OperationDecl{Name: name}

	attr, ok := body.Attributes["handler"]
	if !ok {
		return nil, fmt.Errorf("decode %s: operation %q: missing required 'handler' attribute", path, name)
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || val.Type() != cty.String {
		return nil, fmt.Errorf("decode %s: operation %q: 'handler' must be a string", path, name)
	}
	op.Handler = val.AsString()

	if attr, ok := body.Attributes["args"]; ok {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("decode %s: operation %q: 'args': %w", path, name, diags)
		}
		native, err := FromCtyValue(val)
		if err != nil {
			return nil, fmt.Errorf("decode %s: operation %q: 'args': %w", path, name, err)
		}
		args, ok := native.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode %s: operation %q: 'args' must be an object", path, name)
		}
		op.Args = args
	}

	return op, nil
}
