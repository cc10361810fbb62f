// Package unify implements the Unifier (spec.md §4.5): comparing two
// EvaluatedTypes under one of several modes and, for the Conform/
// HardConform modes, learning generic-parameter solutions along the way.
package unify

import (
	"fmt"

	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/typeeval"
)

// Options selects the unification mode (spec.md §4.5 "Modes").
type Options int

const (
	// None requires both sides to match exactly.
	None Options = iota
	// AnyNever lets Never collapse to the other side.
	AnyNever
	// Return is the looser return-position mode; permits Never as bottom.
	Return
	// Conform requires the right side be assignable to the left; generics
	// on the left learn their argument from the right.
	Conform
	// HardConform is Conform's stricter variant used for call-argument
	// binding.
	HardConform
)

// ErrorKind enumerates the specific failures spec.md §4.5 requires
// (a list, not a single cause, since one unification can fail in several
// independent ways across nested generic arguments).
type ErrorKind string

const (
	MismatchedGenericArg ErrorKind = "mismatched-generic-arg"
	UninferrableParam    ErrorKind = "uninferrable-parameter"
	WrongArity           ErrorKind = "wrong-arity"
	Incompatible         ErrorKind = "incompatible-types"
)

// Error is one unification failure.
type Error struct {
	Kind     ErrorKind
	Expected string
	Found    string
	Message  string
}

func (e Error) Error() string { return e.Message }

// GenericMap accumulates parameter -> solved-type bindings a Conform-mode
// unification discovers (spec.md §4.5 "records the solution in the
// generic_map").
type GenericMap map[symboltab.SymbolIndex]typeeval.EvaluatedType

// Unify compares left and right under opts, returning the unified type or
// a non-empty error list. generics may be nil when the caller does not
// need to learn generic solutions (spec.md §4.5).
func Unify(left, right typeeval.EvaluatedType, tab *symboltab.Table, opts Options, generics GenericMap) (typeeval.EvaluatedType, []Error) {
	if left == nil {
		left = typeeval.Unknown{}
	}
	if right == nil {
		right = typeeval.Unknown{}
	}

	if isNever(left) || isNever(right) {
		switch opts {
		case AnyNever, Return:
			if isNever(left) {
				return right, nil
			}
			return left, nil
		}
	}

	if g, ok := left.(typeeval.Generic); ok && (opts == Conform || opts == HardConform) {
		if generics != nil {
			generics[g.Base] = right
		}
		return right, nil
	}
	if g, ok := left.(typeeval.HardGeneric); ok && opts == HardConform {
		if generics != nil {
			generics[g.Base] = right
		}
		return right, nil
	}

	switch l := left.(type) {
	case typeeval.ModelInstance:
		r, ok := right.(typeeval.ModelInstance)
		if !ok || r.Model != l.Model {
			return nil, []Error{mismatch(left, right)}
		}
		return unifyModelLike(l, r, l.Args, r.Args, func(args []typeeval.GenericArg) typeeval.EvaluatedType {
			return typeeval.ModelInstance{Model: l.Model, ModelName: l.ModelName, Args: args}
		}, tab, opts, generics)
	case typeeval.EnumInstance:
		r, ok := right.(typeeval.EnumInstance)
		if !ok || r.Enum != l.Enum {
			return nil, []Error{mismatch(left, right)}
		}
		return unifyModelLike(l, r, l.Args, r.Args, func(args []typeeval.GenericArg) typeeval.EvaluatedType {
			return typeeval.EnumInstance{Enum: l.Enum, EnumName: l.EnumName, Args: args}
		}, tab, opts, generics)
	case typeeval.Borrowed:
		r, ok := right.(typeeval.Borrowed)
		if !ok {
			return nil, []Error{mismatch(left, right)}
		}
		base, errs := Unify(l.Base, r.Base, tab, opts, generics)
		if errs != nil {
			return nil, errs
		}
		return typeeval.Borrowed{Base: base}, nil
	case typeeval.OpaqueTypeInstance:
		return unifyOpaque(l, right, tab, opts, generics)
	case typeeval.FunctionInstance:
		r, ok := asFunctionInstance(right)
		if !ok {
			return nil, []Error{mismatch(left, right)}
		}
		return unifyFunction(l, r, tab, opts, generics)
	case typeeval.FunctionExpressionInstance:
		r, ok := asFunctionInstance(right)
		if !ok {
			return nil, []Error{mismatch(left, right)}
		}
		out, errs := unifyFunction(l.FunctionInstance, r, tab, opts, generics)
		if errs != nil {
			return nil, errs
		}
		return typeeval.FunctionExpressionInstance{FunctionInstance: out.(typeeval.FunctionInstance)}, nil
	case typeeval.Void, typeeval.Unknown:
		return left, nil
	default:
		if sameKind(left, right) {
			return left, nil
		}
		return nil, []Error{mismatch(left, right)}
	}
}

func isNever(t typeeval.EvaluatedType) bool { _, ok := t.(typeeval.Never); return ok }

func mismatch(left, right typeeval.EvaluatedType) Error {
	return Error{
		Kind:     Incompatible,
		Expected: left.String(),
		Found:    right.String(),
		Message:  fmt.Sprintf("expected %s, found %s", left.String(), right.String()),
	}
}

// sameKind reports whether two EvaluatedTypes carry the same dynamic
// Go type, used as a cheap structural-equality fallback for the variants
// with no parameters to recurse into (Void, Unknown, Never, Partial).
func sameKind(a, b typeeval.EvaluatedType) bool {
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

func unifyModelLike(l, r interface{ String() string }, lArgs, rArgs []typeeval.GenericArg, rebuild func([]typeeval.GenericArg) typeeval.EvaluatedType, tab *symboltab.Table, opts Options, generics GenericMap) (typeeval.EvaluatedType, []Error) {
	if len(lArgs) != len(rArgs) {
		return nil, []Error{{Kind: WrongArity, Message: fmt.Sprintf("%s and %s disagree on generic arity", l.String(), r.String())}}
	}
	out := make([]typeeval.GenericArg, len(lArgs))
	var errs []Error
	for i := range lArgs {
		unified, e := Unify(lArgs[i].Type, rArgs[i].Type, tab, opts, generics)
		if e != nil {
			errs = append(errs, Error{Kind: MismatchedGenericArg, Message: fmt.Sprintf("generic argument %d: %s", i, e[0].Message)})
			continue
		}
		out[i] = typeeval.GenericArg{Param: lArgs[i].Param, Type: unified}
	}
	if errs != nil {
		return nil, errs
	}
	return rebuild(out), nil
}

func asFunctionInstance(t typeeval.EvaluatedType) (typeeval.FunctionInstance, bool) {
	switch v := t.(type) {
	case typeeval.FunctionInstance:
		return v, true
	case typeeval.FunctionExpressionInstance:
		return v.FunctionInstance, true
	case typeeval.MethodInstance:
		return v.FunctionInstance, true
	default:
		return typeeval.FunctionInstance{}, false
	}
}

func unifyFunction(l, r typeeval.FunctionInstance, tab *symboltab.Table, opts Options, generics GenericMap) (typeeval.EvaluatedType, []Error) {
	if len(l.Params) != len(r.Params) {
		return nil, []Error{{Kind: WrongArity, Message: "function types disagree on parameter count"}}
	}
	params := make([]typeeval.EvaluatedType, len(l.Params))
	for i := range l.Params {
		u, errs := Unify(l.Params[i], r.Params[i], tab, opts, generics)
		if errs != nil {
			return nil, errs
		}
		params[i] = u
	}
	ret, errs := Unify(l.Return, r.Return, tab, Return, generics)
	if errs != nil {
		return nil, errs
	}
	return typeeval.FunctionInstance{Params: params, Return: ret, IsAsync: l.IsAsync || r.IsAsync}, nil
}

// unifyOpaque checks that every collaborator on the right is assignable
// to some collaborator on the left (spec.md §4.5 "Union / opaque
// unification").
func unifyOpaque(l typeeval.OpaqueTypeInstance, right typeeval.EvaluatedType, tab *symboltab.Table, opts Options, generics GenericMap) (typeeval.EvaluatedType, []Error) {
	r, ok := right.(typeeval.OpaqueTypeInstance)
	if !ok {
		for _, member := range l.Members {
			if _, errs := Unify(member, right, tab, opts, generics); errs == nil {
				return right, nil
			}
		}
		return nil, []Error{mismatch(l, right)}
	}
	for _, rm := range r.Members {
		matched := false
		for _, lm := range l.Members {
			if _, errs := Unify(lm, rm, tab, opts, generics); errs == nil {
				matched = true
				break
			}
		}
		if !matched {
			return nil, []Error{{Kind: Incompatible, Message: fmt.Sprintf("%s is not assignable to any member of the union", rm.String())}}
		}
	}
	return l, nil
}
