// Package schema validates scenario files against the embedded CUE
// schema before they are decoded.
//
// Validation is structural only: YAML is extracted to a CUE value,
// unified with the schema, and checked for conflicts. Semantic checks
// (release indexes in range, expect present on panic steps) live in the
// harness, which has the step context to report them well.
package schema

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"

	_ "embed"
)

//go:embed scenario.cue
var scenarioCUE string

var (
	compileOnce sync.Once
	scenarioVal cue.Value
	compileErr  error
)

// ValidationError is a schema violation with source position when the
// CUE evaluator provides one.
type ValidationError struct {
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// compiled returns the compiled scenario schema, compiling it on first
// use. The embedded schema failing to compile is a build defect, not a
// caller error.
func compiled() (cue.Value, error) {
	compileOnce.Do(func() {
		ctx := cuecontext.New()
		scenarioVal = ctx.CompileString(scenarioCUE, cue.Filename("scenario.cue"))
		if err := scenarioVal.Err(); err != nil {
			compileErr = fmt.Errorf("embedded scenario schema is invalid: %w", err)
		}
	})
	return scenarioVal, compileErr
}

// ValidateScenario checks YAML scenario data against the schema.
// filename is used for error positions only.
func ValidateScenario(filename string, data []byte) error {
	sch, err := compiled()
	if err != nil {
		return err
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return formatCUEError(err)
	}

	val := sch.Context().BuildFile(file)
	if err := val.Err(); err != nil {
		return formatCUEError(err)
	}

	unified := sch.Unify(val)
	if err := unified.Err(); err != nil {
		return formatCUEError(err)
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}

	return nil
}

// formatCUEError converts a CUE error into a ValidationError carrying
// the first position, matching how tooling expects to print it.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &ValidationError{
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return &ValidationError{Message: firstErr.Error()}
}
