// Package harness synthesizes the runnable evaluation artifact for each
// submission language. Generation is pure: the same submission and spec
// always produce byte-identical files.
package harness

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
)

// File names shared between the generator and the sandbox backends. The
// harness scripts open their inputs relative to the sandbox working
// directory, so both backends see the same layout.
const (
	CodeHarnessFile  = "eval_code.py"
	QueryHarnessFile = "eval_query.py"

	userCodeFile       = "user_code.py"
	testCasesFile      = "test_cases.json"
	schemaFile         = "schema.sql"
	userQueryFile      = "user_query.sql"
	referenceQueryFile = "reference_query.sql"
)

const (
	entryPointPlaceholder = "__ENTRY_POINT__"
	fallbackEntryPoint    = "user_function"
	interpreter           = "python3"
)

var entryPointPattern = regexp.MustCompile(`def\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)

// Artifact is the complete set of files for one evaluation, plus the command
// that runs the harness inside the sandbox.
type Artifact struct {
	Files   map[string][]byte
	Command []string
}

// EntryPoint returns the name of the callable under test: the first function
// definition found in the submitted source, or a fixed fallback when the
// source declares none.
func EntryPoint(source string) string {
	if match := entryPointPattern.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return fallbackEntryPoint
}

// ForCode renders the code-submission artifact: the test-runner script with
// the discovered entry point bound in, the submitted source, and the ordered
// test-case list.
func ForCode(source string, cases []evaluation.TestCase) (*Artifact, error) {
	template, err := asset(CodeHarnessFile)
	if err != nil {
		return nil, err
	}
	script := strings.ReplaceAll(string(template), entryPointPlaceholder, EntryPoint(source))

	specs := make([]evaluation.TestCase, len(cases))
	for i, c := range cases {
		if c.Input == nil {
			c.Input = []any{}
		}
		specs[i] = c
	}
	caseData, err := json.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("encode test cases: %w", err)
	}

	return &Artifact{
		Files: map[string][]byte{
			CodeHarnessFile: []byte(script),
			userCodeFile:    []byte(source),
			testCasesFile:   caseData,
		},
		Command: []string{interpreter, CodeHarnessFile},
	}, nil
}

// ForQuery renders the query-submission artifact: the query runner, the
// optional schema script, the submitted query and the reference query.
func ForQuery(source, schema, referenceQuery string) (*Artifact, error) {
	script, err := asset(QueryHarnessFile)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Files: map[string][]byte{
			QueryHarnessFile:   script,
			schemaFile:         []byte(schema),
			userQueryFile:      []byte(source),
			referenceQueryFile: []byte(referenceQuery),
		},
		Command: []string{interpreter, QueryHarnessFile},
	}, nil
}

func asset(name string) ([]byte, error) {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil || len(data) == 0 {
		return nil, &evaluation.AssetMissingError{Name: name}
	}
	return data, nil
}
