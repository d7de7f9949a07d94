package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/graphkit/internal/config"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/fsutil"
	"github.com/specialistvlad/graphkit/internal/schema"
)

// Extension is the file extension of HCL documents.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths, merges their blocks into a
// single model and validates it. At most one replica and one database block
// may appear across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", Extension, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.",
		"vertices", len(model.Vertices),
		"edges", len(model.Edges),
		"queries", len(model.Queries),
	)
	return model, nil
}

// merge translates one decoded file into model.
func (l *Loader) merge(ctx context.Context, model *config.Model, root *schema.File) error {
	if root.Replica != nil {
		if model.Replica != nil {
			return fmt.Errorf("duplicate replica block %q", root.Replica.Name)
		}
		model.Replica = translateReplica(root.Replica)
	}
	if root.Database != nil {
		if model.Database != nil {
			return fmt.Errorf("duplicate database block")
		}
		db, err := translateDatabase(root.Database)
		if err != nil {
			return err
		}
		model.Database = db
	}
	for _, v := range root.Vertices {
		vertex, err := translateVertex(ctx, v)
		if err != nil {
			return err
		}
		model.Vertices = append(model.Vertices, vertex)
	}
	for _, e := range root.Edges {
		edge, err := translateEdge(ctx, e)
		if err != nil {
			return err
		}
		model.Edges = append(model.Edges, edge)
	}
	for _, q := range root.Queries {
		query, err := translateQuery(q)
		if err != nil {
			return err
		}
		model.Queries = append(model.Queries, query)
	}
	return nil
}
