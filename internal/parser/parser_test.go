package parser

import (
	"testing"

	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/lexer"
)

func parseOneExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	lex := lexer.New(src, "test")
	p := New(lex, 0)
	expr := p.parseExpression(PrecTypeUnion + 1)
	if len(p.errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.errs)
	}
	return expr
}

func TestPrecedenceAddBeforeMul(t *testing.T) {
	expr := parseOneExpr(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level BinaryExpr, got %T", expr)
	}
	if bin.Op != "+" {
		t.Fatalf("expected + at the top, got %q", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected * nested on the right, got %#v", bin.Right)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	expr := parseOneExpr(t, "a = b = c")
	outer, ok := expr.(*ast.AssignmentExpr)
	if !ok {
		t.Fatalf("expected AssignmentExpr, got %T", expr)
	}
	if _, ok := outer.Value.(*ast.AssignmentExpr); !ok {
		t.Fatalf("expected nested assignment on the right, got %#v", outer.Value)
	}
}

func TestPowerOfIsRightAssociative(t *testing.T) {
	expr := parseOneExpr(t, "a ** b ** c")
	outer, ok := expr.(*ast.BinaryExpr)
	if !ok || outer.Op != "**" {
		t.Fatalf("expected top-level **, got %#v", expr)
	}
	if _, ok := outer.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected ** to nest on the right, got %#v", outer.Right)
	}
}

func TestNestedGenericsCloseWithSingleShr(t *testing.T) {
	expr := parseOneExpr(t, "identity<Array<Int>>(x)")
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", expr)
	}
	ident, ok := call.Func.(*ast.Identifier)
	if !ok || ident.Name != "identity" {
		t.Fatalf("expected identity callee, got %#v", call.Func)
	}
}

func TestNewRequiresCall(t *testing.T) {
	lex := lexer.New("new Account", "test")
	p := New(lex, 0)
	expr := p.parsePrefix()
	n, ok := expr.(*ast.NewExpr)
	if !ok {
		t.Fatalf("expected NewExpr, got %T", expr)
	}
	if !n.Invalid {
		t.Fatalf("expected `new Account` without parens to be marked invalid")
	}
	if len(p.errs) == 0 {
		t.Fatalf("expected a parse error for `new` without a constructor call")
	}
}

func TestModelDeclWithConstructorAndTraitImpl(t *testing.T) {
	src := `model Account implements Printable {
		var balance: Int;

		new(balance: Int) {
			this.balance = balance;
		}

		public function [Printable] print() {
			return this.balance;
		}
	}`
	mod, errs := ParseModule(lexer.New(src, "Account"), 0, "Account.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if len(mod.Statements) != 1 {
		t.Fatalf("expected a single top-level statement, got %d", len(mod.Statements))
	}
	model, ok := mod.Statements[0].(*ast.ModelDecl)
	if !ok {
		t.Fatalf("expected ModelDecl, got %T", mod.Statements[0])
	}
	if model.New == nil {
		t.Fatalf("expected a constructor")
	}
	if len(model.Attributes) != 1 || model.Attributes[0].Name != "balance" {
		t.Fatalf("expected one `balance` attribute, got %#v", model.Attributes)
	}
	if len(model.Methods) != 1 || len(model.Methods[0].TraitPath) != 1 {
		t.Fatalf("expected one method with a trait path, got %#v", model.Methods)
	}
	if len(model.Implements) != 1 {
		t.Fatalf("expected one implemented trait, got %#v", model.Implements)
	}
}

func TestUseListScattersIntoOneTargetPerLeaf(t *testing.T) {
	src := `use Collections.{List, Map as Dict};`
	mod, errs := ParseModule(lexer.New(src, "M"), 0, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	use, ok := mod.Statements[0].(*ast.UseDecl)
	if !ok {
		t.Fatalf("expected UseDecl, got %T", mod.Statements[0])
	}
	if len(use.Targets) != 2 {
		t.Fatalf("expected two scattered targets, got %d", len(use.Targets))
	}
	if use.Targets[1].Alias != "Dict" {
		t.Fatalf("expected the second target aliased to Dict, got %q", use.Targets[1].Alias)
	}
}

func TestPublicOutsideGlobalScopeIsDiagnosed(t *testing.T) {
	src := `function outer() {
		public function inner() {}
	}`
	_, errs := ParseModule(lexer.New(src, "M"), 0, "M.wrl")
	if len(errs) == 0 {
		t.Fatalf("expected a diagnostic for public used outside global scope")
	}
}

func TestErrorRecoverySkipsToNextStatement(t *testing.T) {
	src := `function a() { var = ; }
	function b() {}`
	mod, _ := ParseModule(lexer.New(src, "M"), 0, "M.wrl")
	if len(mod.Statements) != 2 {
		t.Fatalf("expected parsing to recover and still find both declarations, got %d", len(mod.Statements))
	}
}

func TestShorthandVarDecl(t *testing.T) {
	src := `function f() {
		x := 5;
		return x;
	}`
	mod, errs := ParseModule(lexer.New(src, "M"), 0, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	fn := mod.Statements[0].(*ast.FunctionDecl)
	if len(fn.Body.Statements) != 2 {
		t.Fatalf("expected two statements in the body, got %d", len(fn.Body.Statements))
	}
	if _, ok := fn.Body.Statements[0].(*ast.ShorthandVarDecl); !ok {
		t.Fatalf("expected a ShorthandVarDecl, got %T", fn.Body.Statements[0])
	}
}
