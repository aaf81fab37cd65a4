package expr

import (
	"errors"
	"testing"

	"github.com/pipe01/trellis/internal/diag"
)

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		tokens []TokenType
		lits   []string
	}{
		{"ident", "count", []TokenType{TokenIdent}, []string{"count"}},
		{"ident_underscore", "_x1", []TokenType{TokenIdent}, []string{"_x1"}},
		{"dotted_path", "user.name", []TokenType{TokenIdent, TokenDot, TokenIdent}, []string{"user", ".", "name"}},
		{"keywords", "true false null", []TokenType{TokenTrue, TokenFalse, TokenNull}, []string{"true", "false", "null"}},

		{"int", "42", []TokenType{TokenInt}, []string{"42"}},
		{"float", "3.14", []TokenType{TokenFloat}, []string{"3.14"}},
		{"float_exp", "1e3", []TokenType{TokenFloat}, []string{"1e3"}},
		{"float_exp_sign", "2.5e-2", []TokenType{TokenFloat}, []string{"2.5e-2"}},
		{"int_then_method", "5.len()", []TokenType{TokenInt, TokenDot, TokenIdent, TokenParenOpen, TokenParenClose}, []string{"5", ".", "len", "(", ")"}},
		{"int_then_ident_e", "5 else", []TokenType{TokenInt, TokenIdent}, []string{"5", "else"}},

		{"string_double", `"hello"`, []TokenType{TokenString}, []string{"hello"}},
		{"string_single", `'hello'`, []TokenType{TokenString}, []string{"hello"}},
		{"string_escapes", `'it\'s \\ \"x\" \{\}\n'`, []TokenType{TokenString}, []string{"it's \\ \"x\" {}\n"}},
		{"string_with_braces", `"{not a binding}"`, []TokenType{TokenString}, []string{"{not a binding}"}},
		{"string_empty", `''`, []TokenType{TokenString}, []string{""}},

		{"arith", "+ - * / %", []TokenType{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent}, nil},
		{"compare", "== != < <= > >=", []TokenType{TokenEq, TokenNotEq, TokenLess, TokenLessEq, TokenGreater, TokenGreaterEq}, nil},
		{"logic", "&& || !", []TokenType{TokenAndAnd, TokenOrOr, TokenNot}, nil},
		{"punct", "? : ( ) [ ] ,", []TokenType{TokenQuestion, TokenColon, TokenParenOpen, TokenParenClose, TokenBracketOpen, TokenBracketClose, TokenComma}, nil},
		{"no_spaces", "a<=b&&!c", []TokenType{TokenIdent, TokenLessEq, TokenIdent, TokenAndAnd, TokenNot, TokenIdent}, nil},
		{"whitespace_only", " \t\n ", nil, nil},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			tks, err := Tokenize(tt.src, diag.Location{}, "")
			if err != nil {
				t.Fatalf("failed to tokenize: %s", err)
			}

			if len(tks) != len(tt.tokens)+1 {
				t.Fatalf("expected %d tokens, got %d: %+v", len(tt.tokens)+1, len(tks), tks)
			}
			if tks[len(tks)-1].Type != TokenEOF {
				t.Fatalf("expected trailing EOF, got %s", tks[len(tks)-1].Type)
			}

			for i, typ := range tt.tokens {
				if tks[i].Type != typ {
					t.Errorf("token %d: expected %s, got %s", i, typ, tks[i].Type)
				}
				if tt.lits != nil && tks[i].Literal != tt.lits[i] {
					t.Errorf("token %d: expected literal %q, got %q", i, tt.lits[i], tks[i].Literal)
				}
			}
		})
	}
}

func TestScanPositions(t *testing.T) {
	// binding text starting at line 2, column 10 of the markup source
	tks, err := Tokenize("a +\n  'b'", diag.Location{Line: 2, Column: 10}, "main.ui")
	if err != nil {
		t.Fatalf("failed to tokenize: %s", err)
	}

	expected := []diag.Span{
		{Source: "main.ui", Start: diag.Location{Line: 2, Column: 10}, End: diag.Location{Line: 2, Column: 11}},
		{Source: "main.ui", Start: diag.Location{Line: 2, Column: 12}, End: diag.Location{Line: 2, Column: 13}},
		{Source: "main.ui", Start: diag.Location{Line: 3, Column: 2}, End: diag.Location{Line: 3, Column: 5}},
	}

	for i, span := range expected {
		if tks[i].Span != span {
			t.Errorf("token %d: expected span %+v, got %+v", i, span, tks[i].Span)
		}
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		kind       diag.Kind
		col        int
		suggestion string
	}{
		{"unknown_char", "a # b", diag.UnexpectedChar, 2, ""},
		{"non_ascii", "é", diag.UnexpectedChar, 0, ""},
		{"single_equals", "a = b", diag.UnexpectedChar, 2, "=="},
		{"single_amp", "a & b", diag.UnexpectedChar, 2, "&&"},
		{"single_pipe", "a | b", diag.UnexpectedChar, 2, "||"},
		{"unterminated_string", "'abc", diag.UnterminatedString, 0, ""},
		{"unterminated_after_escape", `"abc\`, diag.UnterminatedString, 0, ""},
		{"bad_escape", `"a\qb"`, diag.UnexpectedChar, 2, ""},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src, diag.Location{}, "")

			var derr *diag.Error
			if !errors.As(err, &derr) {
				t.Fatalf("expected *diag.Error, got %v", err)
			}

			if derr.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, derr.Kind)
			}
			if derr.Span.Start.Column != tt.col {
				t.Errorf("expected column %d, got %d", tt.col, derr.Span.Start.Column)
			}
			if derr.Suggestion != tt.suggestion {
				t.Errorf("expected suggestion %q, got %q", tt.suggestion, derr.Suggestion)
			}
		})
	}
}
