package parser

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenLineComment

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenRealLiteral
	TokenDecimalLiteral
	TokenCharLiteral
	TokenStringLiteral
	TokenTrue
	TokenFalse
	TokenNull

	// Keywords
	TokenAbstract
	TokenAcquire
	TokenAs
	TokenAssert
	TokenAssume
	TokenBase
	TokenBool
	TokenBreak
	TokenByte
	TokenCase
	TokenCatch
	TokenChar
	TokenChecked
	TokenClass
	TokenConst
	TokenContinue
	TokenDecimal
	TokenDefault
	TokenDelegate
	TokenDo
	TokenDouble
	TokenElse
	TokenEnsures
	TokenEnum
	TokenEvent
	TokenExists
	TokenExplicit
	TokenExpose
	TokenExtern
	TokenFinally
	TokenFixed
	TokenFloat
	TokenFor
	TokenForall
	TokenForeach
	TokenGoto
	TokenIf
	TokenImplicit
	TokenIn
	TokenInt
	TokenInterface
	TokenInternal
	TokenInvariant
	TokenIs
	TokenLock
	TokenLong
	TokenModifies
	TokenNamespace
	TokenNew
	TokenObject
	TokenOperator
	TokenOut
	TokenOverride
	TokenParams
	TokenPrivate
	TokenProtected
	TokenPublic
	TokenReadonly
	TokenRef
	TokenRequires
	TokenReturn
	TokenSbyte
	TokenSealed
	TokenShort
	TokenSizeof
	TokenStackalloc
	TokenStatic
	TokenString
	TokenStruct
	TokenSwitch
	TokenThis
	TokenThrow
	TokenThrows
	TokenTry
	TokenTypeof
	TokenUint
	TokenUlong
	TokenUnchecked
	TokenUnsafe
	TokenUshort
	TokenUsing
	TokenVirtual
	TokenVoid
	TokenVolatile
	TokenWhile

	// Contextual keywords. The lexer only produces these in contract mode;
	// elsewhere they are identifiers and the parser matches on the literal.
	TokenOtherwise
	TokenResult

	// Operators and punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenColon
	TokenColonColon
	TokenQuestion
	TokenCoalesce
	TokenArrow
	TokenLambda
	TokenRange
	TokenMaplet

	TokenAssign
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenBitNot
	TokenShl
	TokenShr
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenIncrement
	TokenDecrement
	TokenImplies
	TokenExplies
	TokenIff
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenAndAssign
	TokenOrAssign
	TokenXorAssign
	TokenShlAssign
	TokenShrAssign

	tokenKindCount
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:            "EOF",
	TokenError:          "Error",
	TokenWhitespace:     "Whitespace",
	TokenComment:        "Comment",
	TokenLineComment:    "LineComment",
	TokenIdent:          "Identifier",
	TokenIntLiteral:     "IntLiteral",
	TokenRealLiteral:    "RealLiteral",
	TokenDecimalLiteral: "DecimalLiteral",
	TokenCharLiteral:    "CharLiteral",
	TokenStringLiteral:  "StringLiteral",
	TokenTrue:           "true",
	TokenFalse:          "false",
	TokenNull:           "null",
	TokenAbstract:       "abstract",
	TokenAcquire:        "acquire",
	TokenAs:             "as",
	TokenAssert:         "assert",
	TokenAssume:         "assume",
	TokenBase:           "base",
	TokenBool:           "bool",
	TokenBreak:          "break",
	TokenByte:           "byte",
	TokenCase:           "case",
	TokenCatch:          "catch",
	TokenChar:           "char",
	TokenChecked:        "checked",
	TokenClass:          "class",
	TokenConst:          "const",
	TokenContinue:       "continue",
	TokenDecimal:        "decimal",
	TokenDefault:        "default",
	TokenDelegate:       "delegate",
	TokenDo:             "do",
	TokenDouble:         "double",
	TokenElse:           "else",
	TokenEnsures:        "ensures",
	TokenEnum:           "enum",
	TokenEvent:          "event",
	TokenExists:         "exists",
	TokenExplicit:       "explicit",
	TokenExpose:         "expose",
	TokenExtern:         "extern",
	TokenFinally:        "finally",
	TokenFixed:          "fixed",
	TokenFloat:          "float",
	TokenFor:            "for",
	TokenForall:         "forall",
	TokenForeach:        "foreach",
	TokenGoto:           "goto",
	TokenIf:             "if",
	TokenImplicit:       "implicit",
	TokenIn:             "in",
	TokenInt:            "int",
	TokenInterface:      "interface",
	TokenInternal:       "internal",
	TokenInvariant:      "invariant",
	TokenIs:             "is",
	TokenLock:           "lock",
	TokenLong:           "long",
	TokenModifies:       "modifies",
	TokenNamespace:      "namespace",
	TokenNew:            "new",
	TokenObject:         "object",
	TokenOperator:       "operator",
	TokenOut:            "out",
	TokenOverride:       "override",
	TokenParams:         "params",
	TokenPrivate:        "private",
	TokenProtected:      "protected",
	TokenPublic:         "public",
	TokenReadonly:       "readonly",
	TokenRef:            "ref",
	TokenRequires:       "requires",
	TokenReturn:         "return",
	TokenSbyte:          "sbyte",
	TokenSealed:         "sealed",
	TokenShort:          "short",
	TokenSizeof:         "sizeof",
	TokenStackalloc:     "stackalloc",
	TokenStatic:         "static",
	TokenString:         "string",
	TokenStruct:         "struct",
	TokenSwitch:         "switch",
	TokenThis:           "this",
	TokenThrow:          "throw",
	TokenThrows:         "throws",
	TokenTry:            "try",
	TokenTypeof:         "typeof",
	TokenUint:           "uint",
	TokenUlong:          "ulong",
	TokenUnchecked:      "unchecked",
	TokenUnsafe:         "unsafe",
	TokenUshort:         "ushort",
	TokenUsing:          "using",
	TokenVirtual:        "virtual",
	TokenVoid:           "void",
	TokenVolatile:       "volatile",
	TokenWhile:          "while",
	TokenOtherwise:      "otherwise",
	TokenResult:         "result",
	TokenLParen:         "(",
	TokenRParen:         ")",
	TokenLBrace:         "{",
	TokenRBrace:         "}",
	TokenLBracket:       "[",
	TokenRBracket:       "]",
	TokenSemicolon:      ";",
	TokenComma:          ",",
	TokenDot:            ".",
	TokenColon:          ":",
	TokenColonColon:     "::",
	TokenQuestion:       "?",
	TokenCoalesce:       "??",
	TokenArrow:          "->",
	TokenLambda:         "=>",
	TokenRange:          "..",
	TokenMaplet:         "|->",
	TokenAssign:         "=",
	TokenEQ:             "==",
	TokenNE:             "!=",
	TokenLT:             "<",
	TokenLE:             "<=",
	TokenGT:             ">",
	TokenGE:             ">=",
	TokenAnd:            "&&",
	TokenOr:             "||",
	TokenNot:            "!",
	TokenBitAnd:         "&",
	TokenBitOr:          "|",
	TokenBitXor:         "^",
	TokenBitNot:         "~",
	TokenShl:            "<<",
	TokenShr:            ">>",
	TokenPlus:           "+",
	TokenMinus:          "-",
	TokenStar:           "*",
	TokenSlash:          "/",
	TokenPercent:        "%",
	TokenIncrement:      "++",
	TokenDecrement:      "--",
	TokenImplies:        "==>",
	TokenExplies:        "<==",
	TokenIff:            "<==>",
	TokenPlusAssign:     "+=",
	TokenMinusAssign:    "-=",
	TokenStarAssign:     "*=",
	TokenSlashAssign:    "/=",
	TokenPercentAssign:  "%=",
	TokenAndAssign:      "&=",
	TokenOrAssign:       "|=",
	TokenXorAssign:      "^=",
	TokenShlAssign:      "<<=",
	TokenShrAssign:      ">>=",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is a single lexeme. Value carries the decoded literal payload:
// int64 or uint64 for integers, float64 for reals, decimal.Decimal for
// m-suffixed literals, rune for chars and the unquoted text for strings.
type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
	Value   any
}

func (t Token) String() string {
	if t.Literal != "" {
		return t.Literal
	}
	return t.Kind.String()
}

var keywords = map[string]TokenKind{
	"abstract":   TokenAbstract,
	"acquire":    TokenAcquire,
	"as":         TokenAs,
	"assert":     TokenAssert,
	"assume":     TokenAssume,
	"base":       TokenBase,
	"bool":       TokenBool,
	"break":      TokenBreak,
	"byte":       TokenByte,
	"case":       TokenCase,
	"catch":      TokenCatch,
	"char":       TokenChar,
	"checked":    TokenChecked,
	"class":      TokenClass,
	"const":      TokenConst,
	"continue":   TokenContinue,
	"decimal":    TokenDecimal,
	"default":    TokenDefault,
	"delegate":   TokenDelegate,
	"do":         TokenDo,
	"double":     TokenDouble,
	"else":       TokenElse,
	"ensures":    TokenEnsures,
	"enum":       TokenEnum,
	"event":      TokenEvent,
	"exists":     TokenExists,
	"explicit":   TokenExplicit,
	"expose":     TokenExpose,
	"extern":     TokenExtern,
	"false":      TokenFalse,
	"finally":    TokenFinally,
	"fixed":      TokenFixed,
	"float":      TokenFloat,
	"for":        TokenFor,
	"forall":     TokenForall,
	"foreach":    TokenForeach,
	"goto":       TokenGoto,
	"if":         TokenIf,
	"implicit":   TokenImplicit,
	"in":         TokenIn,
	"int":        TokenInt,
	"interface":  TokenInterface,
	"internal":   TokenInternal,
	"invariant":  TokenInvariant,
	"is":         TokenIs,
	"lock":       TokenLock,
	"long":       TokenLong,
	"modifies":   TokenModifies,
	"namespace":  TokenNamespace,
	"new":        TokenNew,
	"null":       TokenNull,
	"object":     TokenObject,
	"operator":   TokenOperator,
	"out":        TokenOut,
	"override":   TokenOverride,
	"params":     TokenParams,
	"private":    TokenPrivate,
	"protected":  TokenProtected,
	"public":     TokenPublic,
	"readonly":   TokenReadonly,
	"ref":        TokenRef,
	"requires":   TokenRequires,
	"return":     TokenReturn,
	"sbyte":      TokenSbyte,
	"sealed":     TokenSealed,
	"short":      TokenShort,
	"sizeof":     TokenSizeof,
	"stackalloc": TokenStackalloc,
	"static":     TokenStatic,
	"string":     TokenString,
	"struct":     TokenStruct,
	"switch":     TokenSwitch,
	"this":       TokenThis,
	"throw":      TokenThrow,
	"throws":     TokenThrows,
	"true":       TokenTrue,
	"try":        TokenTry,
	"typeof":     TokenTypeof,
	"uint":       TokenUint,
	"ulong":      TokenUlong,
	"unchecked":  TokenUnchecked,
	"unsafe":     TokenUnsafe,
	"ushort":     TokenUshort,
	"using":      TokenUsing,
	"virtual":    TokenVirtual,
	"void":       TokenVoid,
	"volatile":   TokenVolatile,
	"while":      TokenWhile,
}

var contractKeywords = map[string]TokenKind{
	"otherwise": TokenOtherwise,
	"result":    TokenResult,
}

// LookupKeyword maps an identifier spelling to its keyword kind. Contract
// keywords are only recognized when inContract is set.
func LookupKeyword(ident string, inContract bool) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	if inContract {
		if kind, ok := contractKeywords[ident]; ok {
			return kind
		}
	}
	return TokenIdent
}

// IsKeyword reports whether k is a reserved or contextual keyword.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenAbstract && k <= TokenResult
}

// IsLiteral reports whether k is a literal token.
func (k TokenKind) IsLiteral() bool {
	return k >= TokenIntLiteral && k <= TokenNull
}
