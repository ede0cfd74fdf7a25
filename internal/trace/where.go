package trace

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate is a compiled boolean expression over operation fields.
type Predicate struct {
	source  string
	program *vm.Program
}

func operationEnv(op GpuOperation) map[string]interface{} {
	return map[string]interface{}{
		"kernel_name":   op.KernelName,
		"category":      op.Category,
		"start_time_us": op.StartTimeUs,
		"end_time_us":   op.EndTimeUs,
		"duration_us":   op.DurationUs,
	}
}

// CompileWhere compiles an expression such as
// `duration_us > 5 && kernel_name contains "gemm"`.
func CompileWhere(source string) (*Predicate, error) {
	program, err := expr.Compile(source, expr.Env(operationEnv(GpuOperation{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", source, err)
	}
	return &Predicate{source: source, program: program}, nil
}

// Match evaluates the predicate for op.
func (p *Predicate) Match(op GpuOperation) (bool, error) {
	out, err := expr.Run(p.program, operationEnv(op))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter %q: %w", p.source, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}

// Select keeps the operations matching p, preserving order.
func (p *Predicate) Select(ops []GpuOperation) ([]GpuOperation, error) {
	var out []GpuOperation
	for _, op := range ops {
		ok, err := p.Match(op)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, op)
		}
	}
	return out, nil
}
