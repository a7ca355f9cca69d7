package cfg

import (
	"github.com/l3aro/cxxflow/internal/log"
	"github.com/l3aro/cxxflow/pkg/ast"
)

// Builder turns function bodies into graphs. It holds only configuration, so one
// Builder may serve concurrent Build calls.
type Builder struct {
	logger   log.Logger
	noReturn NoReturnPredicate
	eval     Evaluator
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the sink for diagnostics about skipped statements.
func WithLogger(l log.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithNoReturn sets the predicate deciding which calls end the function.
func WithNoReturn(p NoReturnPredicate) Option {
	return func(b *Builder) {
		b.noReturn = p
	}
}

// WithEvaluator sets the constant evaluator used to prune branches of constant
// conditions. A nil evaluator disables pruning.
func WithEvaluator(e Evaluator) Option {
	return func(b *Builder) {
		b.eval = e
	}
}

// NewBuilder creates a Builder. By default it logs through log.Default, treats
// unbound calls to exit as no-return and folds constant conditions.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:   log.Default(),
		noReturn: NoReturnByName(DefaultNoReturnNames...),
		eval:     ConstEvaluator{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the graph of one function body. body may be nil.
func (b *Builder) Build(body ast.Stmt) *Graph {
	s := &state{
		Builder: b,
		g:       newGraph(),
		labels:  make(map[string]*labelEntry),
	}
	start := s.g.newBlock(KindStart, nil)
	s.g.start = start.id

	tail := s.thread(start, body, targets{})
	s.finish(tail)
	return s.g
}

// BuildFunction constructs the graph of fn's body.
func (b *Builder) BuildFunction(fn *ast.Function) *Graph {
	if fn == nil || fn.Body == nil {
		return b.Build(nil)
	}
	return b.Build(fn.Body)
}

// targets are the active break and continue connectors. They are passed by value
// down the recursion, so leaving a loop or switch restores the enclosing ones.
type targets struct {
	brk  *Block
	cont *Block
}

type labelEntry struct {
	name     string
	branch   *Block
	conn     *Block
	declared bool
}

// state is the private working state of one Build call.
type state struct {
	*Builder
	g          *Graph
	labels     map[string]*labelEntry
	labelOrder []*labelEntry
}

// thread appends the control flow of stmt after prev and returns the new tail.
func (s *state) thread(prev *Block, stmt ast.Stmt, t targets) *Block {
	switch n := stmt.(type) {
	case nil:
		return prev
	case *ast.Compound:
		if n == nil {
			return prev
		}
		for _, child := range n.List {
			prev = s.thread(prev, child, t)
		}
		return prev
	case *ast.ExprStmt:
		if terminatingExpr(n.X, s.noReturn) {
			return s.exit(prev, n)
		}
		return s.plain(prev, n)
	case *ast.DeclStmt, *ast.NullStmt, *ast.Problem:
		return s.plain(prev, n)
	case *ast.Return:
		return s.exit(prev, n)
	case *ast.If:
		return s.threadIf(prev, n, t)
	case *ast.While:
		return s.threadWhile(prev, n, t)
	case *ast.Do:
		return s.threadDo(prev, n, t)
	case *ast.For:
		return s.threadFor(prev, n, t)
	case *ast.RangeFor:
		return s.threadRangeFor(prev, n, t)
	case *ast.Break:
		if t.brk == nil {
			s.logger.Debug("break outside loop or switch", "line", n.Span().Start.Line)
			return prev
		}
		return s.jumpTo(prev, t.brk, false, n)
	case *ast.Continue:
		if t.cont == nil {
			s.logger.Debug("continue outside loop", "line", n.Span().Start.Line)
			return prev
		}
		return s.jumpTo(prev, t.cont, false, n)
	case *ast.Switch:
		return s.threadSwitch(prev, n, t)
	case *ast.Label:
		return s.threadLabel(prev, n, t)
	case *ast.Goto:
		return s.threadGoto(prev, n)
	case *ast.Try:
		return s.threadTry(prev, n, t)
	default:
		s.logger.Warn("unsupported statement skipped",
			"kind", string(stmt.Kind()), "line", stmt.Span().Start.Line)
		return prev
	}
}

func (s *state) plain(prev *Block, n ast.Node) *Block {
	b := s.g.newBlock(KindPlain, n)
	s.connect(prev, b)
	return b
}

func (s *state) exit(prev *Block, n ast.Node) *Block {
	b := s.g.newBlock(KindExit, n)
	b.start = s.g.start
	s.connect(prev, b)
	s.g.exits = append(s.g.exits, b.id)
	return b
}

func (s *state) connector() *Block {
	return s.g.newBlock(KindConnector, nil)
}

func (s *state) branch(label string, payload ast.Node) *Block {
	b := s.g.newBlock(KindBranch, payload)
	b.label = label
	return b
}

// decision creates a Decision with a fresh merge connector. alwaysTrue marks a
// loop without a condition.
func (s *state) decision(payload ast.Node, cond ast.Expr, foldable, alwaysTrue bool) *Block {
	d := s.g.newBlock(KindDecision, payload)
	d.cond = cond
	d.merge = s.connector().id
	switch {
	case alwaysTrue:
		d.folded = 1
	case foldable && cond != nil && s.eval != nil:
		if v, ok := s.eval.Evaluate(cond); ok {
			d.folded = int8(boolInt(v != 0))
		}
	}
	return d
}

func (s *state) mergeOf(d *Block) *Block {
	return s.g.blocks[d.merge]
}

func (s *state) threadIf(prev *Block, n *ast.If, t targets) *Block {
	d := s.decision(n, n.Cond, true, false)
	s.connect(prev, d)
	merge := s.mergeOf(d)

	then := s.branch(LabelThen, nil)
	s.connect(d, then)
	s.jumpTo(s.thread(then, n.Then, t), merge, false, nil)

	els := s.branch(LabelElse, nil)
	s.connect(d, els)
	s.jumpTo(s.thread(els, n.Else, t), merge, false, nil)

	s.settle(merge)
	return merge
}

func (s *state) threadWhile(prev *Block, n *ast.While, t targets) *Block {
	cont := s.connector()
	s.connect(prev, cont)
	d := s.decision(n, n.Cond, true, false)
	s.connect(cont, d)
	brk := s.mergeOf(d)

	then := s.branch(LabelThen, nil)
	s.connect(d, then)
	tail := s.thread(then, n.Body, targets{brk: brk, cont: cont})
	s.jumpTo(tail, cont, true, nil)

	els := s.branch(LabelElse, nil)
	s.connect(d, els)
	s.jumpTo(els, brk, false, nil)

	s.settle(brk)
	return brk
}

func (s *state) threadDo(prev *Block, n *ast.Do, t targets) *Block {
	loop := s.connector()
	s.connect(prev, loop)
	cont := s.connector()
	d := s.decision(n, n.Cond, true, false)
	brk := s.mergeOf(d)

	tail := s.thread(loop, n.Body, targets{brk: brk, cont: cont})
	s.fallInto(tail, cont)
	s.settle(cont)
	s.connect(cont, d)

	then := s.branch(LabelThen, nil)
	s.connect(d, then)
	s.jumpTo(then, loop, true, nil)

	els := s.branch(LabelElse, nil)
	s.connect(d, els)
	s.jumpTo(els, brk, false, nil)

	s.settle(brk)
	return brk
}

func (s *state) threadFor(prev *Block, n *ast.For, t targets) *Block {
	if n.Init != nil {
		prev = s.thread(prev, n.Init, t)
	}
	check := s.connector()
	s.connect(prev, check)
	d := s.decision(n, n.Cond, true, n.Cond == nil)
	s.connect(check, d)
	brk := s.mergeOf(d)

	then := s.branch(LabelThen, nil)
	s.connect(d, then)
	cont := s.connector()
	tail := s.thread(then, n.Body, targets{brk: brk, cont: cont})
	s.fallInto(tail, cont)
	s.settle(cont)

	last := cont
	if n.Post != nil {
		last = s.plain(cont, n.Post)
	}
	s.jumpTo(last, check, true, nil)

	els := s.branch(LabelElse, nil)
	s.connect(d, els)
	s.jumpTo(els, brk, false, nil)

	s.settle(brk)
	return brk
}

func (s *state) threadRangeFor(prev *Block, n *ast.RangeFor, t targets) *Block {
	if n.Decl != nil {
		prev = s.plain(prev, n.Decl)
	}
	check := s.connector()
	s.connect(prev, check)
	d := s.decision(n, n.Range, false, false)
	s.connect(check, d)
	brk := s.mergeOf(d)

	then := s.branch(LabelThen, nil)
	s.connect(d, then)
	cont := s.connector()
	tail := s.thread(then, n.Body, targets{brk: brk, cont: cont})
	s.fallInto(tail, cont)
	s.settle(cont)
	s.jumpTo(cont, check, true, nil)

	els := s.branch(LabelElse, nil)
	s.connect(d, els)
	s.jumpTo(els, brk, false, nil)

	s.settle(brk)
	return brk
}

func (s *state) threadSwitch(prev *Block, n *ast.Switch, t targets) *Block {
	d := s.decision(n, n.Tag, false, false)
	s.connect(prev, d)
	merge := s.mergeOf(d)

	var body []ast.Stmt
	switch b := n.Body.(type) {
	case nil:
	case *ast.Compound:
		body = b.List
	default:
		body = []ast.Stmt{b}
	}

	inner := targets{brk: merge, cont: t.cont}
	cur := d
	hasDefault := false
	for _, stmt := range body {
		var lbl *Block
		switch c := stmt.(type) {
		case *ast.Case:
			label := c.Source()
			if c.Value != nil {
				label = c.Value.Source()
			}
			lbl = s.branch(label, c)
		case *ast.Default:
			lbl = s.branch(LabelDefault, c)
			hasDefault = true
		default:
			cur = s.thread(cur, stmt, inner)
			continue
		}
		s.connect(d, lbl)
		if cur == d || s.unreachable(cur) {
			cur = lbl
			continue
		}
		// Fall through from the previous statements into the label's code.
		here := s.connector()
		s.jumpTo(cur, here, false, nil)
		s.connect(lbl, here)
		cur = here
	}
	if cur != d {
		s.jumpTo(cur, merge, false, nil)
	}
	if !hasDefault {
		lbl := s.branch(LabelDefault, nil)
		s.connect(d, lbl)
		s.jumpTo(lbl, merge, false, nil)
	}

	s.settle(merge)
	return merge
}

func (s *state) threadTry(prev *Block, n *ast.Try, t targets) *Block {
	d := s.decision(n, nil, false, false)
	s.connect(prev, d)
	merge := s.mergeOf(d)

	body := s.branch(LabelTryBody, nil)
	s.connect(d, body)
	s.jumpTo(s.thread(body, n.Body, t), merge, false, nil)

	for _, h := range n.Handlers {
		label := h.Param
		if label == "" {
			label = LabelCatchAny
		}
		br := s.branch(label, h)
		s.connect(d, br)
		s.jumpTo(s.thread(br, h.Body, t), merge, false, nil)
	}

	s.settle(merge)
	return merge
}

func (s *state) threadLabel(prev *Block, n *ast.Label, t targets) *Block {
	e, ok := s.labels[n.Name]
	if ok && e.declared {
		// Gotos keep targeting the first declaration.
		s.logger.Warn("duplicate label", "label", n.Name, "line", n.Span().Start.Line)
		return s.thread(prev, n.Stmt, t)
	}
	if ok {
		if e.branch.payload == nil {
			e.branch.payload = n
		}
		s.connect(prev, e.branch)
	} else {
		e = s.newLabel(n.Name, n)
		s.connect(prev, e.branch)
	}
	e.declared = true
	return s.thread(e.conn, n.Stmt, t)
}

func (s *state) threadGoto(prev *Block, n *ast.Goto) *Block {
	e, registered := s.labels[n.Label]
	if !registered {
		e = s.newLabel(n.Label, nil)
	}
	// A label seen before the goto is taken to be behind it. This is only a
	// textual approximation of a loop back edge.
	return s.jumpTo(prev, e.conn, registered, n)
}

func (s *state) newLabel(name string, payload ast.Node) *labelEntry {
	e := &labelEntry{
		name:   name,
		branch: s.branch(name, payload),
		conn:   s.connector(),
	}
	s.g.link(e.branch, e.conn)
	s.labels[name] = e
	s.labelOrder = append(s.labelOrder, e)
	return e
}

// connect links from to to, or records to as dead when from cannot pass control on.
func (s *state) connect(from, to *Block) {
	if s.terminal(from) || s.deadConnector(from) {
		s.g.markDead(to)
		return
	}
	if from.kind == KindDecision {
		if to.kind != KindBranch || s.isLabel(to) || s.prunedBranch(from, to) {
			s.g.markDead(to)
			return
		}
	}
	s.g.link(from, to)
}

// jumpTo emits a Jump from from to conn. Nothing is emitted when from can never
// execute, so a terminated arm does not feed its merge point.
func (s *state) jumpTo(from, conn *Block, backward bool, payload ast.Node) *Block {
	if s.unreachable(from) {
		return from
	}
	j := s.g.newBlock(KindJump, payload)
	j.backward = backward
	s.connect(from, j)
	s.g.link(j, conn)
	return j
}

// fallInto links the end of a loop body into a connector.
func (s *state) fallInto(from, conn *Block) {
	if s.unreachable(from) {
		return
	}
	s.connect(from, conn)
}

// settle records a connector that nothing reaches as dead.
func (s *state) settle(conn *Block) {
	if len(conn.in) == 0 {
		s.g.markDead(conn)
	}
}

func (s *state) terminal(b *Block) bool {
	return b == nil || b.kind == KindExit || b.kind == KindJump
}

func (s *state) deadConnector(b *Block) bool {
	return b.kind == KindConnector && s.deadRoot(b)
}

func (s *state) deadRoot(b *Block) bool {
	return s.g.deadSet[b.id] && len(b.in) == 0
}

func (s *state) unreachable(b *Block) bool {
	return s.terminal(b) || s.deadRoot(b)
}

// isLabel reports whether b is the Branch of a goto label rather than a
// decision outcome.
func (s *state) isLabel(b *Block) bool {
	e, ok := s.labels[b.label]
	return ok && e.branch == b
}

func (s *state) prunedBranch(d, br *Block) bool {
	switch {
	case d.folded == 0 && br.label == LabelThen:
		return true
	case d.folded == 1 && br.label == LabelElse:
		return true
	}
	return false
}

// finish adds the implicit return and reconciles the dead set.
func (s *state) finish(tail *Block) {
	for _, e := range s.labelOrder {
		if !e.declared {
			s.logger.Warn("goto to undefined label", "label", e.name)
			s.g.markDead(e.branch)
			s.g.markDead(e.conn)
		}
	}

	needExit := !s.unreachable(tail) || len(s.g.exits) == 0
	if !needExit {
		for _, id := range s.g.dead {
			if s.dangling(s.g.blocks[id]) {
				needExit = true
				break
			}
		}
	}
	if needExit {
		ret := s.g.newBlock(KindExit, nil)
		ret.start = s.g.start
		s.g.exits = append(s.g.exits, ret.id)
		if !s.unreachable(tail) {
			s.connect(tail, ret)
		}
		for _, id := range s.g.dead {
			if b := s.g.blocks[id]; b != ret && s.dangling(b) {
				s.g.link(b, ret)
			}
		}
	}

	for _, e := range s.labelOrder {
		if !e.declared {
			continue
		}
		if len(e.conn.in) <= 1 && len(e.branch.in) == 0 {
			s.g.markDead(e.branch)
		} else {
			s.g.unmarkDead(e.branch)
			s.g.unmarkDead(e.conn)
		}
	}
}

func (s *state) dangling(b *Block) bool {
	return s.g.deadSet[b.id] && len(b.out) == 0 && b.kind != KindExit
}
