// Package ast is the untyped tree produced by the parser (spec.md §3
// "AST"). It carries no symbol resolution; the binder converts it into a
// typed module by walking these nodes exactly once.
package ast

import (
	"fmt"
	"strings"

	"github.com/adebola-io/whirl/internal/token"
)

// Node is the base interface every AST node implements.
type Node interface {
	Span() token.Span
	String() string
}

// ScopeAddress is a stable three-part pointer into the parser's module
// ambience: (module, scope, entry). The binder uses it to retrieve a
// Signature without re-walking the AST (spec.md §3 "ScopeAddress").
type ScopeAddress struct {
	ModuleID int
	ScopeID  int
	EntryNo  int
}

// Param is a single function/method parameter.
type Param struct {
	Name     string
	Type     TypeExpr // nil when elided (inferred from a default or generic context)
	Optional bool
	Default  Expr
	Sp       token.Span
}

func (p *Param) Span() token.Span { return p.Sp }

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// Statement is any top-level or block-level statement.
type Statement interface {
	Node
	stmtNode()
}

type FunctionDecl struct {
	Name       string
	IsAsync    bool
	IsPublic   bool
	Generics   []string
	Params     []*Param
	ReturnType TypeExpr
	Body       *BlockExpr
	DocInfo    string
	Address    ScopeAddress
	Sp         token.Span
}

func (f *FunctionDecl) Span() token.Span { return f.Sp }
func (f *FunctionDecl) stmtNode()        {}
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("function %s(...)", f.Name)
}

// TypeAliasDecl is `type Name<T> = TypeExpr;`
type TypeAliasDecl struct {
	Name     string
	IsPublic bool
	Generics []string
	Value    TypeExpr
	Sp       token.Span
}

func (t *TypeAliasDecl) Span() token.Span { return t.Sp }
func (t *TypeAliasDecl) stmtNode()        {}
func (t *TypeAliasDecl) String() string   { return fmt.Sprintf("type %s", t.Name) }

// EnumVariant is one tagged-union arm: `Name(T1, T2)` or a bare tag.
type EnumVariant struct {
	Name   string
	Fields []TypeExpr
	Sp     token.Span
}

type EnumDecl struct {
	Name     string
	IsPublic bool
	Generics []string
	Variants []*EnumVariant
	Sp       token.Span
}

func (e *EnumDecl) Span() token.Span { return e.Sp }
func (e *EnumDecl) stmtNode()        {}
func (e *EnumDecl) String() string   { return fmt.Sprintf("enum %s", e.Name) }

// ModelAttribute is a `var name: Type;` member of a model.
type ModelAttribute struct {
	Name     string
	Type     TypeExpr
	IsPublic bool
	Sp       token.Span
}

// ModelMethod is a method (possibly tied to a trait implementation via
// TraitPath, `function [TraitName] name(...)`).
type ModelMethod struct {
	Function  *FunctionDecl
	IsStatic  bool
	TraitPath []string // unrolled bracketed type path; nil for a plain method
}

type ModelDecl struct {
	Name       string
	IsPublic   bool
	Generics   []string
	Implements []TypeExpr
	New        *FunctionDecl // constructor; nil if absent
	Attributes []*ModelAttribute
	Methods    []*ModelMethod
	Sp         token.Span
}

func (m *ModelDecl) Span() token.Span { return m.Sp }
func (m *ModelDecl) stmtNode()        {}
func (m *ModelDecl) String() string   { return fmt.Sprintf("model %s", m.Name) }
func (m *ModelDecl) IsConstructable() bool {
	return m.New != nil
}

type TraitMethod struct {
	Signature *FunctionDecl
	Body      *BlockExpr // default implementation; nil if required
}

type TraitDecl struct {
	Name     string
	IsPublic bool
	Generics []string
	Methods  []*TraitMethod
	Sp       token.Span
}

func (t *TraitDecl) Span() token.Span { return t.Sp }
func (t *TraitDecl) stmtNode()        {}
func (t *TraitDecl) String() string   { return fmt.Sprintf("trait %s", t.Name) }

// ModuleDecl records the `module Name;` declaration. spec.md §3 invariant:
// a module's name must equal its file stem.
type ModuleDecl struct {
	Name string
	Sp   token.Span
}

func (m *ModuleDecl) Span() token.Span { return m.Sp }
func (m *ModuleDecl) stmtNode()        {}
func (m *ModuleDecl) String() string   { return fmt.Sprintf("module %s", m.Name) }

// UseTarget is one leaf of a `use` path: `Package.foo.{bar, baz.Qux}`.
// Segments holds the dotted path up to (but excluding) the leaf; Leaf is
// the final imported name. The parser scatters a `.{...}` list tail straight
// into one UseTarget per leaf (spec.md §4.3 step 4), so List is never
// populated.
type UseTarget struct {
	Segments []string
	Leaf     string
	Alias    string // `as` rename; equals Leaf when absent
	List     []*UseTarget
	Sp       token.Span
}

type UseDecl struct {
	Targets []*UseTarget
	Sp      token.Span
}

func (u *UseDecl) Span() token.Span { return u.Sp }
func (u *UseDecl) stmtNode()        {}
func (u *UseDecl) String() string   { return "use ..." }

// VarPattern is one `(pattern, info)` pair in a destructuring `var`/`const`
// (spec.md §4.1 "Destructuring"); all pairs in one declaration share Type
// and Value.
type VarPattern struct {
	Pattern Pattern
	Sp      token.Span
}

type VarDecl struct {
	IsConst  bool
	IsPublic bool
	Patterns []*VarPattern
	Type     TypeExpr
	Value    Expr
	Sp       token.Span
}

func (v *VarDecl) Span() token.Span { return v.Sp }
func (v *VarDecl) stmtNode()        {}
func (v *VarDecl) String() string   { return "var ..." }

// ShorthandVarDecl is `name := expr;` (spec.md §4.6 "Shorthand var").
type ShorthandVarDecl struct {
	Name  string
	Value Expr
	Sp    token.Span
}

func (s *ShorthandVarDecl) Span() token.Span { return s.Sp }
func (s *ShorthandVarDecl) stmtNode()        {}
func (s *ShorthandVarDecl) String() string   { return fmt.Sprintf("%s := ...", s.Name) }

type TestDecl struct {
	Name string
	Body *BlockExpr
	Sp   token.Span
}

func (t *TestDecl) Span() token.Span { return t.Sp }
func (t *TestDecl) stmtNode()        {}
func (t *TestDecl) String() string   { return fmt.Sprintf("test %q", t.Name) }

type WhileStatement struct {
	Condition Expr
	Body      *BlockExpr
	Sp        token.Span
}

func (w *WhileStatement) Span() token.Span { return w.Sp }
func (w *WhileStatement) stmtNode()        {}
func (w *WhileStatement) String() string   { return "while ..." }

type ReturnStatement struct {
	Value Expr // nil for bare `return;`
	Sp    token.Span
}

func (r *ReturnStatement) Span() token.Span { return r.Sp }
func (r *ReturnStatement) stmtNode()        {}
func (r *ReturnStatement) String() string   { return "return ..." }

// ExpressionStatement wraps an expression used for its side effect only;
// FreeExpressionStatement additionally flows its value out of the
// enclosing block (spec.md §4.6 "Block").
type ExpressionStatement struct {
	Value Expr
	Sp    token.Span
}

func (e *ExpressionStatement) Span() token.Span { return e.Sp }
func (e *ExpressionStatement) stmtNode()        {}
func (e *ExpressionStatement) String() string   { return e.Value.String() + ";" }

type FreeExpressionStatement struct {
	Value Expr
	Sp    token.Span
}

func (e *FreeExpressionStatement) Span() token.Span { return e.Sp }
func (e *FreeExpressionStatement) stmtNode()        {}
func (e *FreeExpressionStatement) String() string   { return e.Value.String() }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

type Expr interface {
	Node
	exprNode()
}

type Identifier struct {
	Name string
	Sp   token.Span
}

func (i *Identifier) Span() token.Span { return i.Sp }
func (i *Identifier) exprNode()        {}
func (i *Identifier) String() string   { return i.Name }

type StringLiteral struct {
	Value string
	Sp    token.Span
}

func (s *StringLiteral) Span() token.Span { return s.Sp }
func (s *StringLiteral) exprNode()        {}
func (s *StringLiteral) String() string   { return fmt.Sprintf("%q", s.Value) }

type NumberLiteral struct {
	Raw string
	Sp  token.Span
}

func (n *NumberLiteral) Span() token.Span { return n.Sp }
func (n *NumberLiteral) exprNode()        {}
func (n *NumberLiteral) String() string   { return n.Raw }

type BoolLiteral struct {
	Value bool
	Sp    token.Span
}

func (b *BoolLiteral) Span() token.Span { return b.Sp }
func (b *BoolLiteral) exprNode()        {}
func (b *BoolLiteral) String() string   { return fmt.Sprintf("%v", b.Value) }

type ThisExpr struct{ Sp token.Span }

func (t *ThisExpr) Span() token.Span { return t.Sp }
func (t *ThisExpr) exprNode()        {}
func (t *ThisExpr) String() string   { return "this" }

// NewExpr is `new Model(args...)`; spec.md §4.1 requires the callee be a
// CallExpr whose Func is a Model reference — Invalid is set when the
// source omitted the parens (`new Ident` is rewritten to an error node
// with a fix suggestion, spec.md §4.6 "New").
type NewExpr struct {
	Call    *CallExpr
	Invalid bool
	Sp      token.Span
}

func (n *NewExpr) Span() token.Span { return n.Sp }
func (n *NewExpr) exprNode()        {}
func (n *NewExpr) String() string   { return "new " + n.Call.String() }

type CallExpr struct {
	Func         Expr
	GenericArgs  []TypeExpr
	Args         []Expr
	Sp           token.Span
}

func (c *CallExpr) Span() token.Span { return c.Sp }
func (c *CallExpr) exprNode()        {}
func (c *CallExpr) String() string   { return fmt.Sprintf("%s(...)", c.Func) }

// FunctionExpr is an anonymous `fn(...) { ... }` / `async fn` expression.
type FunctionExpr struct {
	IsAsync    bool
	Params     []*Param
	ReturnType TypeExpr
	Body       Expr // BlockExpr or a single expression body
	Sp         token.Span
}

func (f *FunctionExpr) Span() token.Span { return f.Sp }
func (f *FunctionExpr) exprNode()        {}
func (f *FunctionExpr) String() string   { return "fn(...) {...}" }

type IfExpr struct {
	Condition Expr
	Then      *BlockExpr
	Else      Expr // *BlockExpr or *IfExpr (else-if chain); nil if absent
	Sp        token.Span
}

func (i *IfExpr) Span() token.Span { return i.Sp }
func (i *IfExpr) exprNode()        {}
func (i *IfExpr) String() string   { return "if ... {...}" }

type ArrayExpr struct {
	Elements []Expr
	Sp       token.Span
}

func (a *ArrayExpr) Span() token.Span { return a.Sp }
func (a *ArrayExpr) exprNode()        {}
func (a *ArrayExpr) String() string   { return "[...]" }

// AccessExpr is `object.property`.
type AccessExpr struct {
	Object   Expr
	Property string
	PropSpan token.Span
	Sp       token.Span
}

func (a *AccessExpr) Span() token.Span { return a.Sp }
func (a *AccessExpr) exprNode()        {}
func (a *AccessExpr) String() string   { return fmt.Sprintf("%s.%s", a.Object, a.Property) }

type IndexExpr struct {
	Object Expr
	Index  Expr
	Sp     token.Span
}

func (i *IndexExpr) Span() token.Span { return i.Sp }
func (i *IndexExpr) exprNode()        {}
func (i *IndexExpr) String() string   { return fmt.Sprintf("%s[%s]", i.Object, i.Index) }

type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
	Sp    token.Span
}

func (b *BinaryExpr) Span() token.Span { return b.Sp }
func (b *BinaryExpr) exprNode()        {}
func (b *BinaryExpr) String() string   { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

// LogicExpr separates `&&`/`||`/`and`/`or` from arithmetic BinaryExpr
// because the checker demands Bool on both sides (spec.md §4.6 "Logic").
type LogicExpr struct {
	Left  Expr
	Op    string
	Right Expr
	Sp    token.Span
}

func (l *LogicExpr) Span() token.Span { return l.Sp }
func (l *LogicExpr) exprNode()        {}
func (l *LogicExpr) String() string   { return fmt.Sprintf("(%s %s %s)", l.Left, l.Op, l.Right) }

// AssignmentExpr covers identifier/access/index/deref targets (spec.md
// §4.6 "Assignment").
type AssignmentExpr struct {
	Target Expr
	Op     string // "=", "+=", "-=", ...
	Value  Expr
	Sp     token.Span
}

func (a *AssignmentExpr) Span() token.Span { return a.Sp }
func (a *AssignmentExpr) exprNode()        {}
func (a *AssignmentExpr) String() string   { return fmt.Sprintf("%s %s %s", a.Target, a.Op, a.Value) }

// UnaryExpr covers `!`, `not`, unary `-`, `&` (borrow) and `*` (deref).
type UnaryExpr struct {
	Op       string
	Operand  Expr
	Sp       token.Span
}

func (u *UnaryExpr) Span() token.Span { return u.Sp }
func (u *UnaryExpr) exprNode()        {}
func (u *UnaryExpr) String() string   { return fmt.Sprintf("%s%s", u.Op, u.Operand) }

// UpdateExpr is postfix `?` (Try) or `!` (Assert/Guaranteed).
type UpdateExpr struct {
	Op      string // "?" or "!"
	Operand Expr
	Sp      token.Span
}

func (u *UpdateExpr) Span() token.Span { return u.Sp }
func (u *UpdateExpr) exprNode()        {}
func (u *UpdateExpr) String() string   { return fmt.Sprintf("%s%s", u.Operand, u.Op) }

// TypeTestExpr is `expr is Type`.
type TypeTestExpr struct {
	Operand Expr
	Type    TypeExpr
	Sp      token.Span
}

func (t *TypeTestExpr) Span() token.Span { return t.Sp }
func (t *TypeTestExpr) exprNode()        {}
func (t *TypeTestExpr) String() string   { return fmt.Sprintf("%s is %s", t.Operand, t.Type) }

type BlockExpr struct {
	Statements []Statement
	Sp         token.Span
}

func (b *BlockExpr) Span() token.Span { return b.Sp }
func (b *BlockExpr) exprNode()        {}
func (b *BlockExpr) String() string {
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// ErrorExpr is a placeholder produced by parser error recovery so that
// analysis can continue past a syntax error (spec.md §9 "Partial<T,E>").
type ErrorExpr struct {
	Msg string
	Sp  token.Span
}

func (e *ErrorExpr) Span() token.Span { return e.Sp }
func (e *ErrorExpr) exprNode()        {}
func (e *ErrorExpr) String() string   { return fmt.Sprintf("<error: %s>", e.Msg) }

// ---------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------

type TypeExpr interface {
	Node
	typeExprNode()
}

// DiscreteTypeExpr is `Name` or `Name<Arg1, Arg2>`.
type DiscreteTypeExpr struct {
	Name string
	Args []TypeExpr
	Sp   token.Span
}

func (d *DiscreteTypeExpr) Span() token.Span { return d.Sp }
func (d *DiscreteTypeExpr) typeExprNode()    {}
func (d *DiscreteTypeExpr) String() string {
	if len(d.Args) == 0 {
		return d.Name
	}
	parts := make([]string, len(d.Args))
	for i, a := range d.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", d.Name, strings.Join(parts, ", "))
}

// MemberTypeExpr is `Namespace.Property`.
type MemberTypeExpr struct {
	Namespace TypeExpr
	Property  string
	Sp        token.Span
}

func (m *MemberTypeExpr) Span() token.Span { return m.Sp }
func (m *MemberTypeExpr) typeExprNode()    {}
func (m *MemberTypeExpr) String() string   { return fmt.Sprintf("%s.%s", m.Namespace, m.Property) }

// UnionTypeExpr is `A | B | C`.
type UnionTypeExpr struct {
	Members []TypeExpr
	Sp      token.Span
}

func (u *UnionTypeExpr) Span() token.Span { return u.Sp }
func (u *UnionTypeExpr) typeExprNode()    {}
func (u *UnionTypeExpr) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// FunctionalTypeExpr is `fn(params) -> T`.
type FunctionalTypeExpr struct {
	Params []TypeExpr
	Return TypeExpr
	Sp     token.Span
}

func (f *FunctionalTypeExpr) Span() token.Span { return f.Sp }
func (f *FunctionalTypeExpr) typeExprNode()    {}
func (f *FunctionalTypeExpr) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), f.Return)
}

type ThisTypeExpr struct{ Sp token.Span }

func (t *ThisTypeExpr) Span() token.Span { return t.Sp }
func (t *ThisTypeExpr) typeExprNode()    {}
func (t *ThisTypeExpr) String() string   { return "This" }

type InvalidTypeExpr struct {
	Msg string
	Sp  token.Span
}

func (i *InvalidTypeExpr) Span() token.Span { return i.Sp }
func (i *InvalidTypeExpr) typeExprNode()    {}
func (i *InvalidTypeExpr) String() string   { return "<invalid type>" }

// ---------------------------------------------------------------------
// Patterns (destructuring)
// ---------------------------------------------------------------------

type Pattern interface {
	Node
	patternNode()
}

type IdentifierPattern struct {
	Name string
	Sp   token.Span
}

func (i *IdentifierPattern) Span() token.Span { return i.Sp }
func (i *IdentifierPattern) patternNode()     {}
func (i *IdentifierPattern) String() string   { return i.Name }

// ObjectPatternField is `name` or `name as alias`.
type ObjectPatternField struct {
	Name  string
	Alias string // equals Name when no `as` clause
	Sp    token.Span
}

type ObjectPattern struct {
	Fields []*ObjectPatternField
	Sp     token.Span
}

func (o *ObjectPattern) Span() token.Span { return o.Sp }
func (o *ObjectPattern) patternNode()     {}
func (o *ObjectPattern) String() string   { return "{...}" }

type ArrayPattern struct {
	Elements []Pattern
	Sp       token.Span
}

func (a *ArrayPattern) Span() token.Span { return a.Sp }
func (a *ArrayPattern) patternNode()     {}
func (a *ArrayPattern) String() string   { return "[...]" }

// ---------------------------------------------------------------------
// File / module root
// ---------------------------------------------------------------------

// Module is the untyped parse of one source file: spec.md §3's
// "a set of tagged unions" rooted in a single ordered statement list plus
// an optional module declaration.
type Module struct {
	ModuleDecl *ModuleDecl // nil for an anonymous module
	Statements []Statement
	Path       string // source file path, used to derive the expected name
	Sp         token.Span
}

func (m *Module) Span() token.Span { return m.Sp }
func (m *Module) String() string {
	parts := make([]string, 0, len(m.Statements)+1)
	if m.ModuleDecl != nil {
		parts = append(parts, m.ModuleDecl.String())
	}
	for _, s := range m.Statements {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "\n")
}
