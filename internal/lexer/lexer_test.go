package lexer

import (
	"testing"

	"github.com/adebola-io/whirl/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `module Test;
public function Main() {
    greeting := "Say Hello";
    const CONSTANT: Number = 9090;
}
// leading comment
/// doc comment
`

	tests := []struct {
		kind    token.Kind
		literal string
	}{
		{token.KwModule, "module"},
		{token.Ident, "Test"},
		{token.Semicolon, ";"},
		{token.KwPublic, "public"},
		{token.KwFunction, "function"},
		{token.Ident, "Main"},
		{token.LParen, "("},
		{token.RParen, ")"},
		{token.LBrace, "{"},
		{token.Ident, "greeting"},
		{token.ColonAssign, ":="},
		{token.StringLit, "Say Hello"},
		{token.Semicolon, ";"},
		{token.KwConst, "const"},
		{token.Ident, "CONSTANT"},
		{token.Colon, ":"},
		{token.Ident, "Number"},
		{token.Assign, "="},
		{token.NumberLit, "9090"},
		{token.Semicolon, ";"},
		{token.RBrace, "}"},
		{token.Comment, ""},
		{token.DocComment, ""},
		{token.EOF, ""},
	}

	l := New(input, "Test.wrl")
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("test[%d] - wrong kind. got=%v, want=%v (literal=%q)", i, tok.Kind, tt.kind, tok.Literal)
		}
		if tt.literal != "" && tok.Literal != tt.literal {
			t.Fatalf("test[%d] - wrong literal. got=%q, want=%q", i, tok.Literal, tt.literal)
		}
	}
	if len(l.Errors()) != 0 {
		t.Fatalf("unexpected lexer errors: %v", l.Errors())
	}
}

func TestGenericCloseAmbiguity(t *testing.T) {
	l := New("Array<Array<Int>>", "t.wrl")
	var kinds []token.Kind
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	want := []token.Kind{token.Ident, token.Lt, token.Ident, token.Lt, token.Ident, token.Shr, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`, "t.wrl")
	tok := l.NextToken()
	if tok.Kind != token.StringLit {
		t.Fatalf("expected StringLit, got %v", tok.Kind)
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected an unterminated-string error")
	}
}
