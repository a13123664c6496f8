package pipeline

import (
	"github.com/htlc-project/htlc/internal/cleanup"
	"github.com/htlc-project/htlc/internal/depgraph"
	"github.com/htlc-project/htlc/internal/infer"
	"github.com/htlc-project/htlc/internal/kinds"
	"github.com/htlc-project/htlc/internal/stg"
)

// KindStage infers a kind for every user-declared type constructor (§4.2)
// before anything downstream trusts a data declaration's shape.
type KindStage struct{}

func (KindStage) Name() string { return "kind-inference" }

func (KindStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Diagnostics.HasErrors() {
		return ctx
	}
	kindsMap, err := kinds.InferTypeConstructors(ctx.Program)
	if err != nil {
		ctx.Log.WithError(err).Debug("kind inference failed")
		ctx.Diagnostics.Add(err)
		return ctx
	}
	ctx.TypeConKinds = kindsMap
	return ctx
}

// DependencyStage computes the SCC dependency groups among top-level
// bindings, exposed separately from type inference so the pipeline's own
// diagnostics (and tests) can observe the grouping that drove
// generalization.
type DependencyStage struct{}

func (DependencyStage) Name() string { return "dependency-analysis" }

func (DependencyStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Diagnostics.HasErrors() {
		return ctx
	}
	deps := map[string]map[string]bool{}
	for _, name := range ctx.Program.Order {
		refs := infer.FreeVars(ctx.Program.Bindings[name])
		d := map[string]bool{}
		for ref := range refs {
			if _, ok := ctx.Program.Bindings[ref]; ok {
				d[ref] = true
			}
		}
		deps[name] = d
	}
	ctx.Groups = depgraph.Analyze(ctx.Program.Order, deps)
	return ctx
}

// TypeStage runs Hindley-Milner inference (§4.3) over the program, given
// the type-constructor kinds the previous stage computed.
type TypeStage struct{}

func (TypeStage) Name() string { return "type-inference" }

func (TypeStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Diagnostics.HasErrors() {
		return ctx
	}
	schemes, err := infer.InferProgram(ctx.Program, ctx.TypeConKinds)
	if err != nil {
		ctx.Log.WithError(err).Debug("type inference failed")
		ctx.Diagnostics.Add(err)
		return ctx
	}
	ctx.Schemes = schemes
	return ctx
}

// STGStage lowers the typed program to STG (§4.4).
type STGStage struct{}

func (STGStage) Name() string { return "stg-translate" }

func (STGStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Diagnostics.HasErrors() {
		return ctx
	}
	prog, err := stg.TranslateProgram(ctx.Program)
	if err != nil {
		ctx.Log.WithError(err).Debug("STG translation failed")
		ctx.Diagnostics.Add(err)
		return ctx
	}
	ctx.STGProgram = prog
	return ctx
}

// CleanupStage runs the global cleanup pass (§4.5): pruning statically
// addressable names from nested free-variable sets, fixing partial
// application update flags, and restricting the program to what `main`
// actually reaches.
type CleanupStage struct{}

func (CleanupStage) Name() string { return "global-cleanup" }

func (CleanupStage) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Diagnostics.HasErrors() {
		return ctx
	}
	prog, err := cleanup.Run(ctx.STGProgram, ctx.Program)
	if err != nil {
		ctx.Log.WithError(err).Debug("global cleanup failed")
		ctx.Diagnostics.Add(err)
		return ctx
	}
	ctx.STGProgram = prog
	return ctx
}

// Default returns the core compiler's stage sequence in order.
func Default() []Processor {
	return []Processor{
		KindStage{},
		DependencyStage{},
		TypeStage{},
		STGStage{},
		CleanupStage{},
	}
}

// Pipeline runs a compile as a fixed sequence of stages, each named after
// the section of the specification it implements (§4.1-§4.5).
type Pipeline struct {
	processors []Processor
}

// New builds a pipeline from an explicit stage list, so callers that only
// need a prefix (e.g. a tool that stops after type inference) aren't stuck
// with Default's full five stages.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order against initialCtx, logging entry into
// each one under the run's correlation ID. A stage that adds a diagnostic
// does not stop the loop: later stages are still invoked, but each of the
// Default stages returns immediately once ctx.Diagnostics holds an error,
// so a compile reports the first error raised.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx.Log.WithField("stage", processor.Name()).Debug("running pipeline stage")
		ctx = processor.Process(ctx)
	}
	return ctx
}
