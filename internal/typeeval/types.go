// Package typeeval lowers type expressions into IntermediateType trees
// (FromTypeExpr, which resolves identifiers to SymbolIndexes) and converts
// those into fully elaborated EvaluatedType values (Evaluate; spec.md §4.4
// "Type Evaluator"). The checker drives both steps; generic substitution
// and trait/model lookups happen in Evaluate.
package typeeval

import "github.com/adebola-io/whirl/internal/symboltab"

// IntermediateType is a type expression with identifiers already resolved
// to SymbolIndexes (spec.md §3 "IntermediateType"); Placeholder stands in
// for a missing or invalid type expression.
type IntermediateType interface {
	intermediateTypeNode()
}

// SimpleType is `Name<Args...>` once Name is resolved to a symbol.
type SimpleType struct {
	Symbol symboltab.SymbolIndex
	Name   string // kept for diagnostics when Symbol is Invalid
	Args   []IntermediateType
}

func (SimpleType) intermediateTypeNode() {}

// FunctionType is `fn(params) -> ret`.
type FunctionType struct {
	Params []IntermediateType
	Return IntermediateType
}

func (FunctionType) intermediateTypeNode() {}

// MemberType is `Namespace.Property`.
type MemberType struct {
	Namespace IntermediateType
	Property  string
}

func (MemberType) intermediateTypeNode() {}

// UnionType is `A | B | ...`.
type UnionType struct {
	Members []IntermediateType
}

func (UnionType) intermediateTypeNode() {}

// ThisType is the `This` self-type, resolved against the enclosing
// model/trait context at evaluation time.
type ThisType struct{}

func (ThisType) intermediateTypeNode() {}

// BorrowedType is `&T`.
type BorrowedType struct{ Base IntermediateType }

func (BorrowedType) intermediateTypeNode() {}

// GenericParameterType references a function/model/trait's own generic
// parameter by symbol, pending a solution in solved_generics.
type GenericParameterType struct {
	Symbol symboltab.SymbolIndex
	Name   string
}

func (GenericParameterType) intermediateTypeNode() {}

// Placeholder is what FromTypeExpr returns for a missing or invalid type
// expression; Evaluate turns it into Unknown.
type Placeholder struct{}

func (Placeholder) intermediateTypeNode() {}

// ---------------------------------------------------------------------
// EvaluatedType
// ---------------------------------------------------------------------

// EvaluatedType is a fully elaborated type (spec.md §3 "EvaluatedType").
type EvaluatedType interface {
	evaluatedTypeNode()
	String() string
}

// GenericArg is one (parameter symbol, solved type) pair a parametric
// EvaluatedType carries.
type GenericArg struct {
	Param symboltab.SymbolIndex
	Type  EvaluatedType
}

type ModelInstance struct {
	Model     symboltab.SymbolIndex
	ModelName string
	Args      []GenericArg
}

func (ModelInstance) evaluatedTypeNode() {}
func (m ModelInstance) String() string   { return m.ModelName }

type EnumInstance struct {
	Enum     symboltab.SymbolIndex
	EnumName string
	Args     []GenericArg
}

func (EnumInstance) evaluatedTypeNode() {}
func (e EnumInstance) String() string   { return e.EnumName }

type TraitInstance struct {
	Trait     symboltab.SymbolIndex
	TraitName string
	Args      []GenericArg
}

func (TraitInstance) evaluatedTypeNode() {}
func (t TraitInstance) String() string   { return t.TraitName }

type FunctionInstance struct {
	Params   []EvaluatedType
	Return   EvaluatedType
	IsAsync  bool
}

func (FunctionInstance) evaluatedTypeNode() {}
func (FunctionInstance) String() string     { return "function" }

// MethodInstance is FunctionInstance plus the model/trait it is bound to.
type MethodInstance struct {
	FunctionInstance
	Receiver EvaluatedType
	IsStatic bool
}

func (MethodInstance) evaluatedTypeNode() {}

type FunctionExpressionInstance struct {
	FunctionInstance
}

func (FunctionExpressionInstance) evaluatedTypeNode() {}

// Model/Trait/Enum (the type-level value, as opposed to an instance of
// it) are what a bare reference to the declaration name evaluates to.
type Model struct {
	Symbol symboltab.SymbolIndex
	Name   string
}

func (Model) evaluatedTypeNode() {}
func (m Model) String() string   { return m.Name }

type Trait struct {
	Symbol symboltab.SymbolIndex
	Name   string
}

func (Trait) evaluatedTypeNode() {}
func (t Trait) String() string   { return t.Name }

type Enum struct {
	Symbol symboltab.SymbolIndex
	Name   string
}

func (Enum) evaluatedTypeNode() {}
func (e Enum) String() string   { return e.Name }

type Module struct {
	Symbol symboltab.SymbolIndex
	Name   string
}

func (Module) evaluatedTypeNode() {}
func (m Module) String() string   { return m.Name }

// OpaqueTypeInstance is the evaluation of a union type: the intersection
// of capabilities its members share (spec.md §4.4 "UnionType").
type OpaqueTypeInstance struct {
	Members []EvaluatedType
}

func (OpaqueTypeInstance) evaluatedTypeNode() {}
func (OpaqueTypeInstance) String() string     { return "union" }

type Borrowed struct{ Base EvaluatedType }

func (Borrowed) evaluatedTypeNode() {}
func (b Borrowed) String() string   { return "&" + b.Base.String() }

// Generic is an unresolved generic parameter; HardGeneric is the stricter
// variant introduced for function parameters so call-argument binding can
// tell "may still solve" from "already fixed" (spec.md §4.6 "Function").
type Generic struct {
	Base symboltab.SymbolIndex
	Name string
}

func (Generic) evaluatedTypeNode() {}
func (g Generic) String() string   { return g.Name }

type HardGeneric struct {
	Base symboltab.SymbolIndex
	Name string
}

func (HardGeneric) evaluatedTypeNode() {}
func (g HardGeneric) String() string   { return g.Name }

// Partial is the result of an `if` without an `else`: spec.md §9 treats it
// as not assignable to a typed binding.
type Partial struct{ Branches []EvaluatedType }

func (Partial) evaluatedTypeNode() {}
func (Partial) String() string     { return "Partial" }

type Void struct{}

func (Void) evaluatedTypeNode() {}
func (Void) String() string     { return "Void" }

type Never struct{}

func (Never) evaluatedTypeNode() {}
func (Never) String() string     { return "Never" }

type Unknown struct{}

func (Unknown) evaluatedTypeNode() {}
func (Unknown) String() string     { return "Unknown" }
