package pipeline

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/diagnostics"
	"github.com/htlc-project/htlc/internal/kinds"
	"github.com/htlc-project/htlc/internal/stg"
	"github.com/htlc-project/htlc/internal/types"
)

// Processor is a single pipeline stage: it consumes and returns a
// PipelineContext, appending to Diagnostics and stopping its own work (but
// not the pipeline) once ctx.Diagnostics.HasErrors() is true, so later
// stages that only need partial results (e.g. diagnostics reporting) can
// still run.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
	Name() string
}

// PipelineContext threads the compiler's state through the stage sequence:
// kind inference, dependency analysis, type inference, STG translation,
// and global cleanup. Every stage reads the previous stage's output fields
// and populates its own.
type PipelineContext struct {
	RunID  string
	Source string
	Log    *logrus.Entry

	Program *ast.Program

	TypeConKinds map[string]kinds.Kind
	Groups       [][]string

	Assumptions map[string]*types.Scheme
	Schemes     map[string]*types.Scheme

	STGProgram *stg.Program

	Diagnostics *diagnostics.Diagnostics
}

// NewContext builds the initial context for a compile run: a fresh RunID
// for correlating this run's log lines (and, downstream, any cached
// artifact or emitter RPC trace), and an empty diagnostics collector.
func NewContext(source string, logger *logrus.Logger) *PipelineContext {
	runID := uuid.NewString()
	entry := logger.WithField("run_id", runID)
	return &PipelineContext{
		RunID:       runID,
		Source:      source,
		Log:         entry,
		Diagnostics: &diagnostics.Diagnostics{},
	}
}
