package parser

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Literals
	TokenIdentifier TokenType = iota
	TokenNumber               // integer or float literal
	TokenString               // 'single-quoted string'

	// Keywords
	TokenSELECT
	TokenFROM
	TokenORDER
	TokenBY
	TokenLIMIT
	TokenOFFSET
	TokenAS
	TokenASC
	TokenDESC
	TokenSHOW
	TokenFUNCTIONS
	TokenDESCRIBE

	// Operators and punctuation
	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenStar      // *
	TokenEQ        // =
	TokenArrow     // =>
	TokenMinus     // -
	TokenSemicolon // ;

	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenIdentifier: "identifier",
	TokenNumber:     "number",
	TokenString:     "string",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenComma:      "','",
	TokenStar:       "'*'",
	TokenEQ:         "'='",
	TokenArrow:      "'=>'",
	TokenMinus:      "'-'",
	TokenSemicolon:  "';'",
	TokenEOF:        "end of input",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for kw, tt := range keywords {
		if tt == t {
			return kw
		}
	}
	return "unknown"
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

var keywords = map[string]TokenType{
	"SELECT":    TokenSELECT,
	"FROM":      TokenFROM,
	"ORDER":     TokenORDER,
	"BY":        TokenBY,
	"LIMIT":     TokenLIMIT,
	"OFFSET":    TokenOFFSET,
	"AS":        TokenAS,
	"ASC":       TokenASC,
	"DESC":      TokenDESC,
	"SHOW":      TokenSHOW,
	"FUNCTIONS": TokenFUNCTIONS,
	"DESCRIBE":  TokenDESCRIBE,
}

// LookupKeyword returns the keyword token type for an identifier, or TokenIdentifier.
func LookupKeyword(ident string) TokenType {
	// Case-insensitive lookup
	upper := toUpper(ident)
	if tt, ok := keywords[upper]; ok {
		return tt
	}
	return TokenIdentifier
}

func toUpper(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		} else {
			b[i] = c
		}
	}
	return string(b)
}
