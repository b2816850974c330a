package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hargabyte/cppgen/internal/accessor"
	"github.com/hargabyte/cppgen/internal/config"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/output"
	"github.com/hargabyte/cppgen/internal/semantic"
	"github.com/hargabyte/cppgen/internal/symbol"
)

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'cppgen call --list' to see available tools)", name)
	}

	s.exec.Lock()
	defer s.exec.Unlock()

	switch name {
	case "cppgen_symbols":
		path, err := s.fileArg(args)
		if err != nil {
			return "", err
		}
		f, err := s.session.Generator.File(ctx, path)
		if err != nil {
			return "", err
		}
		return toJSON(output.NewSymbolTree(s.session.Root(), f.Tree))

	case "cppgen_undefined":
		path, err := s.fileArg(args)
		if err != nil {
			return "", err
		}
		undefined, err := s.session.Generator.UndefinedFunctions(ctx, path)
		if err != nil {
			return "", err
		}
		nodes := make([]*symbol.Node, len(undefined))
		for i, v := range undefined {
			nodes[i] = v.Node
		}
		return toJSON(output.NewSymbolList(s.session.Root(), path, nodes))

	case "cppgen_add_definition":
		path, pos, err := s.locationArgs(args)
		if err != nil {
			return "", err
		}
		target, err := targetArg(args)
		if err != nil {
			return "", err
		}
		res, err := s.session.Generator.AddDefinition(ctx, generate.DefinitionRequest{
			Path:         path,
			Pos:          pos,
			Target:       target,
			Initializers: listArg(args, "initializers"),
		})
		if err != nil {
			return "", s.withExisting(res, err)
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_add_definitions":
		path, err := s.fileArg(args)
		if err != nil {
			return "", err
		}
		target, err := targetArg(args)
		if err != nil {
			return "", err
		}
		res, err := s.session.Generator.AddDefinitions(ctx, generate.DefinitionsRequest{
			Path:   path,
			Target: target,
			Names:  listArg(args, "names"),
		})
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_add_declaration":
		path, pos, err := s.locationArgs(args)
		if err != nil {
			return "", err
		}
		access, err := accessArg(args)
		if err != nil {
			return "", err
		}
		res, err := s.session.Generator.AddDeclaration(ctx, generate.DeclarationRequest{Path: path, Pos: pos, Access: access})
		if err != nil {
			return "", s.withExisting(res, err)
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_move_definition":
		path, pos, err := s.locationArgs(args)
		if err != nil {
			return "", err
		}
		access, err := accessArg(args)
		if err != nil {
			return "", err
		}
		req := generate.MoveRequest{Path: path, Pos: pos, Access: access}
		var res *generate.Result
		if class, _ := args["class"].(bool); class {
			res, err = s.session.Generator.MoveDefinitionIntoOrOutOfClass(ctx, req)
		} else {
			res, err = s.session.Generator.MoveDefinitionToMatchingFile(ctx, req)
		}
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_accessors":
		path, pos, err := s.locationArgs(args)
		if err != nil {
			return "", err
		}
		kind := generate.GetterAndSetter
		switch k, _ := args["kind"].(string); k {
		case "getter":
			kind = generate.GetterOnly
		case "setter":
			kind = generate.SetterOnly
		case "", "both":
		default:
			return "", fmt.Errorf("invalid kind %q (expected getter, setter or both)", k)
		}
		res, err := s.session.Generator.GenerateAccessors(ctx, generate.AccessorRequest{Path: path, Pos: pos, Kind: kind})
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res.Result, res.Generated, res.Skipped)

	case "cppgen_operators":
		path, pos, err := s.locationArgs(args)
		if err != nil {
			return "", err
		}
		set := generate.EqualityOperators
		switch v, _ := args["set"].(string); v {
		case "", "equality":
		case "relational":
			set = generate.RelationalOperators
		case "stream":
			set = generate.StreamOutputOperator
		default:
			return "", fmt.Errorf("invalid set %q (expected equality, relational or stream)", v)
		}
		location, _ := args["location"].(string)
		if location == "" {
			location = string(accessor.Inline)
		}
		if !config.IsValidDefinitionLocation(location) {
			return "", fmt.Errorf("invalid location %q (expected %s)", location, strings.Join(config.ValidDefinitionLocations, ", "))
		}
		res, err := s.session.Generator.GenerateOperators(ctx, generate.OperatorRequest{
			Path:     path,
			Pos:      pos,
			Set:      set,
			Operands: listArg(args, "operands"),
			Location: accessor.DefinitionLocation(location),
		})
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_update_signature":
		path, pos, err := s.locationArgs(args)
		if err != nil {
			return "", err
		}
		res, err := s.session.Generator.UpdateSignature(ctx, path, pos)
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_switch":
		path, err := s.fileArg(args)
		if err != nil {
			return "", err
		}
		match, err := s.session.Generator.SwitchHeaderSource(ctx, path)
		if err != nil {
			return "", err
		}
		return toJSON(map[string]string{"file": output.RelPath(s.session.Root(), match)})

	case "cppgen_add_header_guard":
		path, err := s.fileArg(args)
		if err != nil {
			return "", err
		}
		res, err := s.session.Generator.AddHeaderGuard(ctx, path)
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_add_include":
		path, err := s.fileArg(args)
		if err != nil {
			return "", err
		}
		statement, _ := args["statement"].(string)
		if statement == "" {
			return "", fmt.Errorf("statement parameter is required")
		}
		res, err := s.session.Generator.AddInclude(ctx, path, statement)
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res, nil, nil)

	case "cppgen_create_source":
		path, err := s.fileArg(args)
		if err != nil {
			return "", err
		}
		folder, _ := args["folder"].(string)
		if folder != "" {
			folder = s.resolve(folder)
		}
		extension, _ := args["extension"].(string)
		definitions, _ := args["definitions"].(bool)
		res, err := s.session.Generator.CreateSourceFile(ctx, generate.SourceFileRequest{
			Header:      path,
			Folder:      folder,
			Extension:   extension,
			Definitions: definitions,
		})
		if err != nil {
			return "", err
		}
		return s.finish(name, args, res.Result, nil, nil)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// finish applies the edit unless the call previews it and renders the result.
func (s *Server) finish(tool string, args map[string]interface{}, res *generate.Result, generated, skipped []string) (string, error) {
	apply := !s.preview
	if v, ok := args["apply"].(bool); ok {
		apply = v
	}

	applied := false
	if apply && !res.Edit.Empty() {
		if err := s.session.Apply(res.Edit); err != nil {
			return "", fmt.Errorf("applying changes: %w", err)
		}
		applied = true
	}

	out, err := output.NewEditOutput(tool, s.session.Root(), res.Edit, res.Reveal, applied)
	if err != nil {
		return "", err
	}
	out.Generated = generated
	out.Skipped = skipped
	if !s.session.Config.Generate.RevealNewDefinition {
		out.Reveal = ""
	}

	density := output.DensityMedium
	if !applied {
		density = output.DensityDense
	}
	return output.NewJSONFormatter().Format(out, density)
}

// withExisting adds the location of an existing definition or declaration
// to the error of a refused request.
func (s *Server) withExisting(res *generate.Result, err error) error {
	if res != nil && res.Reveal != nil {
		return fmt.Errorf("%w (at %s)", err, output.FormatLocation(s.session.Root(), res.Reveal.Path, res.Reveal.Range.Start))
	}
	return err
}

// resolve makes a path argument absolute, relative to the workspace root.
func (s *Server) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.session.Root(), path)
}

func (s *Server) fileArg(args map[string]interface{}) (string, error) {
	file, _ := args["file"].(string)
	if file == "" {
		return "", fmt.Errorf("file parameter is required")
	}
	return s.resolve(file), nil
}

// locationArgs reads file, line and column. Numbers are 1-based.
func (s *Server) locationArgs(args map[string]interface{}) (string, document.Position, error) {
	path, err := s.fileArg(args)
	if err != nil {
		return "", document.Position{}, err
	}
	line, ok := args["line"].(float64)
	if !ok || line < 1 {
		return "", document.Position{}, fmt.Errorf("line parameter is required and starts at 1")
	}
	column := 1.0
	if c, ok := args["column"].(float64); ok {
		column = c
	}
	if column < 1 {
		return "", document.Position{}, fmt.Errorf("column starts at 1")
	}
	return path, document.Position{Line: int(line) - 1, Character: int(column) - 1}, nil
}

func targetArg(args map[string]interface{}) (generate.Target, error) {
	switch t, _ := args["target"].(string); t {
	case "", generate.CurrentFile.String():
		return generate.CurrentFile, nil
	case generate.SourceFile.String():
		return generate.SourceFile, nil
	default:
		return generate.CurrentFile, fmt.Errorf("invalid target %q (expected current-file or source-file)", t)
	}
}

func accessArg(args map[string]interface{}) (*semantic.AccessLevel, error) {
	a, _ := args["access"].(string)
	if a == "" {
		return nil, nil
	}
	level, err := semantic.ParseAccessLevel(a)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// listArg splits a comma separated argument. Missing or empty gives nil.
func listArg(args map[string]interface{}, key string) []string {
	v, _ := args[key].(string)
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
