package kafka

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
	"github.com/Shounaks/OpenCoderRank/internal/ports"
)

const (
	messageTypeSubmission = "submission"
	messageTypeDone       = "done"
)

type submissionEnvelope struct {
	Type     string       `json:"type"`
	ID       string       `json:"id"`
	Language string       `json:"language"`
	Source   string       `json:"source,omitempty"`
	Selected string       `json:"selected,omitempty"`
	Spec     specEnvelope `json:"spec"`
}

type specEnvelope struct {
	TestCases      []testCaseEnvelope `json:"test_cases,omitempty"`
	Schema         string             `json:"schema,omitempty"`
	ReferenceQuery string             `json:"reference_query,omitempty"`
	Options        []string           `json:"options,omitempty"`
	CorrectIndex   int                `json:"correct_index,omitempty"`
}

type testCaseEnvelope struct {
	Name     string `json:"name,omitempty"`
	Input    []any  `json:"input_args"`
	Expected any    `json:"expected_output"`
}

type verdictEnvelope struct {
	ID         string                      `json:"id"`
	Status     evaluation.Status           `json:"status"`
	PassedAll  bool                        `json:"passed_all"`
	ReportHTML string                      `json:"report_html"`
	RawError   string                      `json:"raw_error,omitempty"`
	Tests      []evaluation.TestCaseResult `json:"tests,omitempty"`
	Timestamp  time.Time                   `json:"timestamp"`
}

func decodeSubmissionMessage(msg kafkago.Message) (ports.Job, error) {
	var envelope submissionEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return ports.Job{}, fmt.Errorf("decode message: %w", err)
	}

	msgType := envelope.Type
	if msgType == "" {
		msgType = messageTypeSubmission
	}

	switch msgType {
	case messageTypeSubmission:
		return envelope.toJob(msg)
	case messageTypeDone:
		return ports.Job{}, io.EOF
	default:
		return ports.Job{}, fmt.Errorf("unknown message type %q", msgType)
	}
}

func (e submissionEnvelope) toJob(msg kafkago.Message) (ports.Job, error) {
	if e.Language == "" {
		return ports.Job{}, fmt.Errorf("submission message missing language")
	}

	jobID := e.ID
	if jobID == "" {
		jobID = string(msg.Key)
	}
	if jobID == "" {
		jobID = fmt.Sprintf("%s:%d", msg.Topic, msg.Offset)
	}

	return ports.Job{
		ID: jobID,
		Submission: evaluation.Submission{
			Language: evaluation.Language(e.Language),
			Source:   e.Source,
			Selected: e.Selected,
		},
		Spec: e.Spec.toSpec(),
	}, nil
}

func (e specEnvelope) toSpec() evaluation.TestSpec {
	spec := evaluation.TestSpec{
		Schema:         e.Schema,
		ReferenceQuery: e.ReferenceQuery,
		Options:        e.Options,
		CorrectIndex:   e.CorrectIndex,
	}
	if len(e.TestCases) > 0 {
		spec.Cases = make([]evaluation.TestCase, len(e.TestCases))
		for idx, tc := range e.TestCases {
			spec.Cases[idx] = evaluation.TestCase{
				Name:     tc.Name,
				Input:    tc.Input,
				Expected: tc.Expected,
			}
		}
	}
	return spec
}

func encodeJobVerdict(jv ports.JobVerdict) ([]byte, error) {
	payload, err := json.Marshal(makeVerdictEnvelope(jv))
	if err != nil {
		return nil, fmt.Errorf("marshal verdict: %w", err)
	}
	return payload, nil
}

func makeVerdictEnvelope(jv ports.JobVerdict) verdictEnvelope {
	return verdictEnvelope{
		ID:         jv.Job.ID,
		Status:     jv.Verdict.Status,
		PassedAll:  jv.Verdict.PassedAll,
		ReportHTML: jv.Verdict.Report.HTML(),
		RawError:   jv.Verdict.RawError,
		Tests:      jv.Verdict.Report.Tests,
		Timestamp:  time.Now().UTC(),
	}
}
