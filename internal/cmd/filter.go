package cmd

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// cellFilter evaluates a boolean expression against cells listed by the
// list command. The program compiles once, lazily.
type cellFilter struct {
	Condition string

	once       sync.Once
	program    *vm.Program
	compileErr error
}

// filterCellEnv is the expression environment, one value per cell.
type filterCellEnv struct {
	Kind     string `expr:"kind"`
	Executed bool   `expr:"executed"`
	Rendered bool   `expr:"rendered"`
	Outputs  int    `expr:"outputs"`
	Text     string `expr:"text"`
}

func (f *cellFilter) Evaluate(env filterCellEnv) (bool, error) {
	f.once.Do(func() {
		program, err := expr.Compile(
			f.Condition,
			expr.Env(env),
			expr.AsBool(),
		)
		f.program, f.compileErr = program, errors.Wrap(err, "failed to compile filter program")
	})

	if f.program == nil {
		return false, f.compileErr
	}

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, errors.Wrap(err, "failed to run filter program")
	}
	return result.(bool), nil
}
