package stg

import (
	"strconv"

	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/diagnostics"
)

// group is one to-be-lifted binding group threaded outward by the
// translator as it recurses — the "extra-definitions list" of §4.4,
// implemented as an explicit returned collection rather than a writer
// monad (per the design notes' suggested reimplementation).
type group struct {
	order     []string
	bindings  map[string]*LambdaForm
	recursive bool
}

func singletonGroup(name string, lf *LambdaForm) group {
	return group{order: []string{name}, bindings: map[string]*LambdaForm{name: lf}}
}

// translator holds the translation pass's mutable state: the fresh dot-name
// counter and the program's constructor arity table.
type translator struct {
	program  *ast.Program
	fresh    int
	topNames map[string]bool
}

func (t *translator) freshName() string {
	t.fresh++
	return "." + strconv.Itoa(t.fresh)
}

// TranslateProgram lowers every top-level binding of program to an STG
// lambda-form, flattening all lifted intermediate bindings into a single
// flat namespace (global cleanup, run separately, later restricts this
// down to what's reachable from main).
func TranslateProgram(program *ast.Program) (*Program, *diagnostics.Error) {
	t := &translator{program: program, topNames: map[string]bool{}}
	for _, name := range program.Order {
		t.topNames[name] = true
	}

	out := &Program{Bindings: map[string]*LambdaForm{}, Order: nil, Descriptors: map[string]*Descriptor{}, TopLevel: map[string]bool{}}
	for name := range t.topNames {
		out.TopLevel[name] = true
	}

	for _, name := range program.Order {
		lf, extras, err := t.translateExpr(map[string]string{}, program.Bindings[name])
		if err != nil {
			return nil, err
		}
		for _, g := range extras {
			for _, n := range g.order {
				if _, exists := out.Bindings[n]; !exists {
					out.Bindings[n] = g.bindings[n]
					out.Order = append(out.Order, n)
				}
			}
		}
		out.Bindings[name] = lf
		out.Order = append(out.Order, name)
	}

	return out, nil
}

// translateExpr is the recursive expression translator (§4.4): it returns
// the lambda-form for expr plus the list of binding-groups that must be
// lifted outward as enclosing lets.
func (t *translator) translateExpr(rename map[string]string, expr ast.Expr) (*LambdaForm, []group, *diagnostics.Error) {
	switch e := expr.(type) {
	case *ast.Var:
		name := resolve(rename, e.Name)
		return &LambdaForm{Free: []string{name}, Updatable: true, Body: AtomExpr{Atom: AtomVar{Name: name}}}, nil, nil

	case *ast.Lit:
		return t.translateLit(e)

	case *ast.Con:
		return t.translateConRef(e.Name, e.Line())

	case *ast.App:
		return t.translateApp(rename, e)

	case *ast.Lambda:
		return t.translateLambda(rename, e)

	case *ast.Let:
		return t.translateLet(rename, e)

	case *ast.Case:
		return t.translateCase(rename, e)

	case *ast.BinOp:
		return t.translateBinOp(rename, e)

	default:
		return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: expr.Line()}, "unexpected expression node %T in translation", expr)
	}
}

func resolve(rename map[string]string, name string) string {
	if r, ok := rename[name]; ok {
		return r
	}
	return name
}

func (t *translator) translateLit(e *ast.Lit) (*LambdaForm, []group, *diagnostics.Error) {
	switch e.Kind {
	case ast.LitInt:
		return &LambdaForm{Body: AtomExpr{Atom: AtomLit{Kind: ast.LitInt, Int: e.Int}}}, nil, nil
	case ast.LitChar:
		return &LambdaForm{Body: AtomExpr{Atom: AtomLit{Kind: ast.LitChar, Char: e.Char}}}, nil, nil
	case ast.LitString:
		return t.translateStringLit(e.Str)
	default:
		return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: e.Line()}, "literal with unknown kind")
	}
}

// translateStringLit lowers a string literal to a chain of (:) char rest
// constructions terminated by [] (s3): the nil cell, then each cons-cell
// working right to left, are each lifted as their own helper binding; the
// enclosing binding itself becomes a plain variable-alias lambda-form
// referencing the outermost cons-cell, exactly as a `b = a` alias would.
func (t *translator) translateStringLit(s string) (*LambdaForm, []group, *diagnostics.Error) {
	runes := []rune(s)

	nilName := t.freshName()
	extras := []group{singletonGroup(nilName, &LambdaForm{Body: ConExpr{Name: "[]"}})}

	current := nilName
	for i := len(runes) - 1; i >= 0; i-- {
		consName := t.freshName()
		lf := &LambdaForm{
			Free: []string{current},
			Body: ConExpr{Name: ":", Args: []Atom{AtomLit{Kind: ast.LitChar, Char: runes[i]}, AtomVar{Name: current}}},
		}
		extras = append(extras, singletonGroup(consName, lf))
		current = consName
	}

	alias := &LambdaForm{Free: []string{current}, Updatable: true, Body: AtomExpr{Atom: AtomVar{Name: current}}}
	return alias, extras, nil
}

// translateConRef translates a bare constructor reference with no
// arguments applied: a lambda-form with one fresh parameter per declared
// field, whose body is the saturated constructor applied to them — i.e.
// the constructor used as a value is itself a (possibly 0-arity) partial
// application thunk.
func (t *translator) translateConRef(name string, line int) (*LambdaForm, []group, *diagnostics.Error) {
	arity, ok := t.program.DataConArity[name]
	if !ok {
		return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: line}, "unknown constructor %q", name)
	}
	params := make([]string, arity)
	args := make([]Atom, arity)
	for i := range params {
		params[i] = t.freshName()
		args[i] = AtomVar{Name: params[i]}
	}
	return &LambdaForm{Params: params, Updatable: false, Body: ConExpr{Name: name, Args: args}}, nil, nil
}

func (t *translator) translateBinOp(rename map[string]string, e *ast.BinOp) (*LambdaForm, []group, *diagnostics.Error) {
	var extras []group
	var left Atom
	if e.Left != nil {
		a, es, err := t.atomize(rename, e.Left)
		if err != nil {
			return nil, nil, err
		}
		left = a
		extras = append(extras, es...)
	}
	right, es, err := t.atomize(rename, e.Right)
	if err != nil {
		return nil, nil, err
	}
	extras = append(extras, es...)

	var atoms []Atom
	if left != nil {
		atoms = append(atoms, left)
	}
	atoms = append(atoms, right)
	free := atomVarNames(atoms)
	return &LambdaForm{Free: free, Updatable: true, Body: PrimOpExpr{Left: left, Right: right, Op: e.Op}}, extras, nil
}

// atomize translates expr and, unless it is already a bare variable
// reference, lifts its lambda-form into a fresh binding and returns a
// reference to that binding as the atom — the argument rule applied
// throughout application, let, and primitive-op translation.
func (t *translator) atomize(rename map[string]string, expr ast.Expr) (Atom, []group, *diagnostics.Error) {
	if v, ok := expr.(*ast.Var); ok {
		return AtomVar{Name: resolve(rename, v.Name)}, nil, nil
	}
	if lit, ok := expr.(*ast.Lit); ok && lit.Kind != ast.LitString {
		if lit.Kind == ast.LitInt {
			return AtomLit{Kind: ast.LitInt, Int: lit.Int}, nil, nil
		}
		return AtomLit{Kind: ast.LitChar, Char: lit.Char}, nil, nil
	}
	lf, extras, err := t.translateExpr(rename, expr)
	if err != nil {
		return nil, nil, err
	}
	name := t.freshName()
	extras = append(extras, singletonGroup(name, lf))
	return AtomVar{Name: name}, extras, nil
}

func flattenApp(expr ast.Expr) (ast.Expr, []ast.Expr) {
	var args []ast.Expr
	for {
		app, ok := expr.(*ast.App)
		if !ok {
			break
		}
		args = append([]ast.Expr{app.Arg}, args...)
		expr = app.Fun
	}
	return expr, args
}

func (t *translator) translateApp(rename map[string]string, e *ast.App) (*LambdaForm, []group, *diagnostics.Error) {
	head, args := flattenApp(e)

	var extras []group
	argAtoms := make([]Atom, len(args))
	for i, arg := range args {
		a, es, err := t.atomize(rename, arg)
		if err != nil {
			return nil, nil, err
		}
		argAtoms[i] = a
		extras = append(extras, es...)
	}

	if con, ok := head.(*ast.Con); ok {
		arity, ok := t.program.DataConArity[con.Name]
		if !ok {
			return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: e.Line()}, "unknown constructor %q", con.Name)
		}
		n := len(argAtoms)
		if n > arity {
			return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: e.Line()},
				"constructor %q applied to %d arguments, arity is %d", con.Name, n, arity)
		}
		extraParams := make([]string, arity-n)
		allArgs := append([]Atom{}, argAtoms...)
		for i := range extraParams {
			extraParams[i] = t.freshName()
			allArgs = append(allArgs, AtomVar{Name: extraParams[i]})
		}
		lf := &LambdaForm{Free: atomVarNames(argAtoms), Params: extraParams, Updatable: false, Body: ConExpr{Name: con.Name, Args: allArgs}}
		return lf, extras, nil
	}

	var funName string
	if v, ok := head.(*ast.Var); ok {
		funName = resolve(rename, v.Name)
	} else {
		lf, es, err := t.translateExpr(rename, head)
		if err != nil {
			return nil, nil, err
		}
		extras = append(extras, es...)
		funName = t.freshName()
		extras = append(extras, singletonGroup(funName, lf))
	}

	free := append([]string{funName}, atomVarNames(argAtoms)...)
	lf := &LambdaForm{Free: dedupeStrings(free), Updatable: true, Body: AppExpr{Fun: funName, Args: argAtoms}}
	return lf, extras, nil
}

func dedupeStrings(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func (t *translator) translateLambda(rename map[string]string, e *ast.Lambda) (*LambdaForm, []group, *diagnostics.Error) {
	params := make([]string, len(e.Params))
	inner := copyRename(rename)
	bound := map[string]bool{}
	for i, p := range e.Params {
		fresh := t.freshName()
		params[i] = fresh
		inner[p] = fresh
		bound[fresh] = true
	}

	bodyLF, extras, err := t.translateExpr(inner, e.Body)
	if err != nil {
		return nil, nil, err
	}

	captured, bubbled := partitionExtras(extras, bound)
	body := wrapLets(bodyLF.Body, captured)

	free := freeMinusParams(ExprFreeVars(body), bound)
	lf := &LambdaForm{Free: free, Params: params, Updatable: false, Body: body}
	return lf, bubbled, nil
}

func copyRename(rename map[string]string) map[string]string {
	out := make(map[string]string, len(rename))
	for k, v := range rename {
		out[k] = v
	}
	return out
}

func freeMinusParams(free []string, bound map[string]bool) []string {
	var out []string
	for _, f := range free {
		if !bound[f] {
			out = append(out, f)
		}
	}
	return out
}


// partitionExtras splits pending extra-definitions into those that
// reference a name in bound (captured: must be wrapped as a let around the
// new scope's body) and those that don't (bubbled: propagate outward
// unchanged), per §4.4's "Capture of dependent extra-definitions".
func partitionExtras(extras []group, bound map[string]bool) (captured, bubbled []group) {
	for _, g := range extras {
		if groupUsesAny(g, bound) {
			captured = append(captured, g)
		} else {
			bubbled = append(bubbled, g)
		}
	}
	return
}

func groupUsesAny(g group, bound map[string]bool) bool {
	for _, lf := range g.bindings {
		for _, f := range lf.Free {
			if bound[f] {
				return true
			}
		}
	}
	return false
}

// wrapLets nests a let around body for each captured group, reversing the
// extra-definitions list first so dependency order is preserved: earlier
// groups in the original order become outer lets.
func wrapLets(body Expr, extras []group) Expr {
	for i := len(extras) - 1; i >= 0; i-- {
		g := extras[i]
		body = &LetExpr{Bindings: g.bindings, Order: g.order, Recursive: g.recursive, Body: body}
	}
	return body
}
