package verdict

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
)

// harnessFault is the envelope the harness emits when it cannot run the test
// suite at all (missing entry point, unloadable source).
type harnessFault struct {
	Error string `json:"error"`
}

// parseCodePayload decodes the ordered test-result list from harness stdout.
func parseCodePayload(stdout string) ([]evaluation.TestCaseResult, error) {
	raw := strings.TrimSpace(stdout)
	if raw == "" {
		return nil, &evaluation.PayloadParseError{Output: stdout, Err: fmt.Errorf("empty payload")}
	}

	if strings.HasPrefix(raw, "{") {
		var fault harnessFault
		if err := json.Unmarshal([]byte(raw), &fault); err == nil && fault.Error != "" {
			return nil, fmt.Errorf("harness fault: %s", fault.Error)
		}
		return nil, &evaluation.PayloadParseError{Output: stdout, Err: fmt.Errorf("unexpected payload object")}
	}

	var results []evaluation.TestCaseResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, &evaluation.PayloadParseError{Output: stdout, Err: err}
	}
	return results, nil
}

type queryPayload struct {
	UserCols      []string `json:"user_cols"`
	UserRows      [][]any  `json:"user_rows"`
	ReferenceCols []string `json:"reference_cols"`
	ReferenceRows [][]any  `json:"reference_rows"`
	Error         string   `json:"error"`
}

// parseQueryPayload decodes the captured result sets from harness stdout.
func parseQueryPayload(stdout string) (*queryPayload, error) {
	raw := strings.TrimSpace(stdout)
	if raw == "" {
		return nil, &evaluation.PayloadParseError{Output: stdout, Err: fmt.Errorf("empty payload")}
	}

	var payload queryPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &evaluation.PayloadParseError{Output: stdout, Err: err}
	}
	return &payload, nil
}
