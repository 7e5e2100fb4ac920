// Package evaluator sequences a full evaluation: workspace allocation,
// harness generation, sandboxed execution and verdict normalization, with
// unconditional cleanup.
package evaluator

import (
	"context"
	"fmt"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
	"github.com/Shounaks/OpenCoderRank/internal/harness"
	"github.com/Shounaks/OpenCoderRank/internal/ports"
	"github.com/Shounaks/OpenCoderRank/internal/verdict"
	"github.com/Shounaks/OpenCoderRank/internal/workspace"
)

// Service evaluates learner submissions against instructor test specs.
type Service struct {
	workspaces *workspace.Manager
	sandbox    ports.Sandbox
}

// NewService constructs a Service with the provided dependencies.
func NewService(workspaces *workspace.Manager, sandbox ports.Sandbox) *Service {
	return &Service{
		workspaces: workspaces,
		sandbox:    sandbox,
	}
}

// Evaluate produces exactly one Verdict for the submission. It never returns
// a Go error: every failure mode is mapped to an error-status Verdict with a
// renderable report.
func (s *Service) Evaluate(ctx context.Context, sub evaluation.Submission, spec evaluation.TestSpec) evaluation.Verdict {
	switch sub.Language {
	case evaluation.LanguageChoice:
		return verdict.FromChoice(sub.Selected, spec.Options, spec.CorrectIndex)
	case evaluation.LanguageCode, evaluation.LanguageQuery:
		return s.evaluateSandboxed(ctx, sub, spec)
	default:
		return verdict.FromFailure(fmt.Errorf("unsupported submission language %q", sub.Language))
	}
}

func (s *Service) evaluateSandboxed(ctx context.Context, sub evaluation.Submission, spec evaluation.TestSpec) evaluation.Verdict {
	limits := evaluation.DefaultLimits(sub.Language)

	artifact, err := s.generate(sub, spec)
	if err != nil {
		return verdict.FromFailure(err)
	}

	handle, err := s.workspaces.Allocate()
	if err != nil {
		return verdict.FromFailure(err)
	}
	defer func() {
		_ = s.workspaces.Dispose(handle)
	}()

	if err := s.workspaces.VerifyWritable(handle); err != nil {
		return verdict.FromFailure(err)
	}
	if err := s.workspaces.Materialize(handle, artifact.Files); err != nil {
		return verdict.FromFailure(err)
	}

	result, err := s.sandbox.Run(ctx, handle.Dir(), artifact.Command, limits)
	if err != nil {
		return verdict.FromFailure(err)
	}

	if sub.Language == evaluation.LanguageCode {
		return verdict.FromCode(result, len(spec.Cases), limits)
	}
	return verdict.FromQuery(result, limits)
}

func (s *Service) generate(sub evaluation.Submission, spec evaluation.TestSpec) (*harness.Artifact, error) {
	if sub.Language == evaluation.LanguageCode {
		return harness.ForCode(sub.Source, spec.Cases)
	}
	return harness.ForQuery(sub.Source, spec.Schema, spec.ReferenceQuery)
}

// Close releases the sandbox backend.
func (s *Service) Close() error {
	return s.sandbox.Close()
}
