package analysis

import (
	"context"
	"fmt"
)

// Step is one stage of an analysis run.
type Step interface {
	Execute(ctx context.Context, state *RunState) error
}

// RunState holds the values passed between steps.
type RunState struct {
	Request             Request
	Model               string
	Prompt              string
	Raw                 string
	Payload             Payload
	DiscardedDuplicates int
}

// BuildPromptStep renders the prompt for the batch.
type BuildPromptStep struct {
	Builder *PromptBuilder
}

func (s *BuildPromptStep) Execute(ctx context.Context, state *RunState) error {
	prompt, err := s.Builder.Build(state.Request.Transactions, state.Request.Instruction)
	if err != nil {
		return err
	}
	state.Prompt = prompt
	return nil
}

// GenerateStep sends the prompt to the generation backend.
type GenerateStep struct {
	Generator Generator
}

func (s *GenerateStep) Execute(ctx context.Context, state *RunState) error {
	raw, err := s.Generator.Generate(ctx, state.Prompt, state.Model)
	if err != nil {
		return err
	}
	state.Raw = raw
	return nil
}

// ReconcileStep recovers the structured payload from the raw text.
type ReconcileStep struct{}

func (s *ReconcileStep) Execute(ctx context.Context, state *RunState) error {
	payload, err := Reconcile(state.Raw)
	if err != nil {
		return err
	}
	state.Payload = payload
	return nil
}

// VerifyDuplicatesStep drops duplicate groups that break the exact amount and date rule.
type VerifyDuplicatesStep struct{}

func (s *VerifyDuplicatesStep) Execute(ctx context.Context, state *RunState) error {
	kept, discarded := VerifyDuplicates(state.Payload.Duplicates)
	state.Payload.Duplicates = kept
	state.DiscardedDuplicates = discarded
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first error.
func (p *Pipeline) Execute(ctx context.Context, state *RunState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewAnalysisPipeline creates the prompt → generate → reconcile pipeline,
// with duplicate verification appended when verify is set.
func NewAnalysisPipeline(builder *PromptBuilder, gen Generator, verify bool) *Pipeline {
	steps := []Step{
		&BuildPromptStep{Builder: builder},
		&GenerateStep{Generator: gen},
		&ReconcileStep{},
	}
	if verify {
		steps = append(steps, &VerifyDuplicatesStep{})
	}
	return NewPipeline(steps...)
}
