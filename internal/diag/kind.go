package diag

type Kind int

const (
	UnterminatedTag Kind = iota
	UnterminatedAttribute
	UnexpectedChar
	UnterminatedString

	UnexpectedToken
	ExpectedExpression
	UnclosedParen
	UnterminatedBinding
	MismatchedClosingTag
	UnclosedElement
	DuplicateAttribute

	UnknownField
	UnknownMethod
	IndexOutOfRange
	TypeMismatch
	DivisionByZero
)

type Class string

const (
	ClassLex   Class = "lex"
	ClassParse Class = "parse"
	ClassEval  Class = "eval"
)

func (k Kind) String() string {
	switch k {
	case UnterminatedTag:
		return "UnterminatedTag"
	case UnterminatedAttribute:
		return "UnterminatedAttribute"
	case UnexpectedChar:
		return "UnexpectedChar"
	case UnterminatedString:
		return "UnterminatedString"

	case UnexpectedToken:
		return "UnexpectedToken"
	case ExpectedExpression:
		return "ExpectedExpression"
	case UnclosedParen:
		return "UnclosedParen"
	case UnterminatedBinding:
		return "UnterminatedBinding"
	case MismatchedClosingTag:
		return "MismatchedClosingTag"
	case UnclosedElement:
		return "UnclosedElement"
	case DuplicateAttribute:
		return "DuplicateAttribute"

	case UnknownField:
		return "UnknownField"
	case UnknownMethod:
		return "UnknownMethod"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case TypeMismatch:
		return "TypeMismatch"
	case DivisionByZero:
		return "DivisionByZero"
	}

	return "<unknown>"
}

func (k Kind) Class() Class {
	switch {
	case k <= UnterminatedString:
		return ClassLex
	case k <= DuplicateAttribute:
		return ClassParse
	}
	return ClassEval
}
