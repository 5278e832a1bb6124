package node

import (
	"context"
	"fmt"
)

// ResultType selects how an action's results are shaped.
type ResultType uint8

const (
	// ResultValues returns at most one row.
	ResultValues ResultType = iota
	// ResultTable returns any number of rows.
	ResultTable
)

// Parameter declares one action input.
type Parameter struct {
	Name     string
	Type     ValueType
	Optional bool
}

// Column declares one action result column.
type Column struct {
	Name string
	Type ValueType
}

// Action makes a node invokable.
type Action struct {
	Params     []Parameter
	Results    []Column
	ResultType ResultType
	Handler    func(ctx context.Context, req *ActionRequest) error
}

// ActionRequest is passed to an action handler. Handlers add result rows to
// Table.
type ActionRequest struct {
	Node   *Node
	Params map[string]Value
	Table  *Table
}

// Param returns the named parameter, or a null value if absent.
func (r *ActionRequest) Param(name string) Value {
	return r.Params[name]
}

// Table is an action result.
type Table struct {
	Columns []Column
	Rows    [][]Value
}

// AddRow appends a row. Missing trailing cells are filled with nulls.
func (t *Table) AddRow(cells ...Value) {
	row := make([]Value, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

func (a *Action) validate(params map[string]Value) error {
	for _, p := range a.Params {
		v, ok := params[p.Name]
		if !ok || v.IsNull() {
			if p.Optional {
				continue
			}
			return fmt.Errorf("%w: %s", ErrMissingParam, p.Name)
		}
		if !p.Type.Accepts(v) {
			return fmt.Errorf("%w: parameter %s expects %s, got %s", ErrTypeMismatch, p.Name, p.Type, v.Kind())
		}
	}
	return nil
}
