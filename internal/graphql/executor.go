package graphql

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphql
var schemaSource string

var schema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSource})

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL-over-HTTP response body.
type Response struct {
	Data   map[string]any `json:"data,omitempty"`
	Errors gqlerror.List  `json:"errors,omitempty"`
}

// Execute validates the request against the schema and resolves its root
// fields. Mutation fields run in document order.
func (r *Resolver) Execute(ctx context.Context, req Request) *Response {
	doc, errs := gqlparser.LoadQuery(schema, req.Query)
	if len(errs) > 0 {
		return &Response{Errors: errs}
	}

	op, err := selectOperation(doc, req.OperationName)
	if err != nil {
		return &Response{Errors: gqlerror.List{err}}
	}

	resp := &Response{Data: make(map[string]any, len(op.SelectionSet))}
	for _, sel := range op.SelectionSet {
		field, ok := sel.(*ast.Field)
		if !ok {
			resp.Errors = append(resp.Errors, gqlerror.Errorf("fragments are not supported on %s", op.Operation))
			continue
		}

		key := responseKey(field)
		value, err := r.resolveRoot(ctx, op.Operation, field, req.Variables)
		if err != nil {
			gqlErr := gqlerror.WrapPath(ast.Path{ast.PathName(key)}, err)
			resp.Errors = append(resp.Errors, gqlErr)
			resp.Data[key] = nil
			continue
		}

		projected, err := project(value, field.SelectionSet)
		if err != nil {
			resp.Errors = append(resp.Errors, gqlerror.WrapPath(ast.Path{ast.PathName(key)}, err))
			resp.Data[key] = nil
			continue
		}
		resp.Data[key] = projected
	}

	return resp
}

func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, *gqlerror.Error) {
	if name != "" {
		if op := doc.Operations.ForName(name); op != nil {
			return op, nil
		}
		return nil, gqlerror.Errorf("operation %q not found", name)
	}
	if len(doc.Operations) != 1 {
		return nil, gqlerror.Errorf("operationName is required when the document has %d operations", len(doc.Operations))
	}
	return doc.Operations[0], nil
}

func (r *Resolver) resolveRoot(ctx context.Context, operation ast.Operation, field *ast.Field, vars map[string]any) (any, error) {
	if field.Name == "__typename" {
		return field.ObjectDefinition.Name, nil
	}

	switch operation {
	case ast.Query:
		switch field.Name {
		case "health":
			return r.Query().Health(ctx)
		case "carriers":
			return r.Query().Carriers(ctx)
		}

	case ast.Mutation:
		switch field.Name {
		case "addPackages":
			arg, err := argumentValue(field, "input", vars)
			if err != nil {
				return nil, err
			}
			input, err := addPackagesInputFromArg(arg)
			if err != nil {
				return nil, err
			}
			return r.Mutation().AddPackages(ctx, input)

		case "addShipments":
			arg, err := argumentValue(field, "inputs", vars)
			if err != nil {
				return nil, err
			}
			inputs, err := addPackagesInputsFromArg(arg)
			if err != nil {
				return nil, err
			}
			return r.Mutation().AddShipments(ctx, inputs)
		}
	}

	return nil, fmt.Errorf("no resolver for %s.%s", operation, field.Name)
}

func argumentValue(field *ast.Field, name string, vars map[string]any) (any, error) {
	arg := field.Arguments.ForName(name)
	if arg == nil {
		return nil, fmt.Errorf("argument %q is required", name)
	}
	v, err := arg.Value.Value(vars)
	if err != nil {
		return nil, fmt.Errorf("argument %q: %w", name, err)
	}
	if v == nil {
		return nil, fmt.Errorf("argument %q must not be null", name)
	}
	return v, nil
}

func responseKey(field *ast.Field) string {
	if field.Alias != "" {
		return field.Alias
	}
	return field.Name
}

// project reduces a resolver value to the fields selected by the query.
// Values are first brought to their JSON shape so struct tags name the
// schema fields.
func project(value any, selections ast.SelectionSet) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return selectFields(generic, selections), nil
}

func selectFields(value any, selections ast.SelectionSet) any {
	if len(selections) == 0 {
		return value
	}

	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = selectFields(item, selections)
		}
		return out

	case map[string]any:
		out := make(map[string]any, len(selections))
		for _, sel := range selections {
			switch s := sel.(type) {
			case *ast.Field:
				if s.Name == "__typename" {
					out[responseKey(s)] = s.ObjectDefinition.Name
					continue
				}
				out[responseKey(s)] = selectFields(v[s.Name], s.SelectionSet)
			case *ast.InlineFragment:
				for k, fv := range selectFields(v, s.SelectionSet).(map[string]any) {
					out[k] = fv
				}
			case *ast.FragmentSpread:
				for k, fv := range selectFields(v, s.Definition.SelectionSet).(map[string]any) {
					out[k] = fv
				}
			}
		}
		return out
	}

	return value
}
