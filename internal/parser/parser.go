package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrSyntax marks every error returned by ParseSQL.
var ErrSyntax = errors.New("syntax error")

// ErrIntegerRange marks integer literals that do not fit in Int64.
var ErrIntegerRange = errors.New("integer literal out of range")

// Parser is a recursive descent SQL parser.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser from a slice of tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse parses the token stream into a single statement. A trailing
// semicolon is allowed.
func (p *Parser) Parse() (Statement, error) {
	var (
		stmt Statement
		err  error
	)
	tok := p.peek()
	switch tok.Type {
	case TokenSELECT:
		stmt, err = p.parseSelect()
	case TokenSHOW:
		stmt, err = p.parseShow()
	case TokenDESCRIBE:
		stmt, err = p.parseDescribe()
	default:
		return nil, p.errorf("unexpected token %q, expected a statement", tok.Literal)
	}
	if err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)
	if p.peek().Type != TokenEOF {
		return nil, p.errorf("unexpected token %q after statement", p.peek().Literal)
	}
	return stmt, nil
}

// ParseSQL is a convenience function: lex + parse a SQL string.
func ParseSQL(sql string) (Statement, error) {
	lexer := NewLexer(sql)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, errors.Mark(err, ErrSyntax)
	}
	parser := NewParser(tokens)
	stmt, err := parser.Parse()
	if err != nil {
		return nil, errors.Mark(err, ErrSyntax)
	}
	return stmt, nil
}

// IsIntegerRangeError reports whether err came from an integer literal
// that does not fit in Int64.
func IsIntegerRangeError(err error) bool {
	return errors.Is(err, ErrIntegerRange)
}

// IsSyntaxError reports whether err came from ParseSQL.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrSyntax)
}

// --- Token helpers ---

func (p *Parser) peek() Token {
	return p.peekAt(p.pos)
}

func (p *Parser) peekAt(pos int) Token {
	if pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorf("expected %s, got %q", tt, tok.Literal)
	}
	p.advance()
	return tok, nil
}

func (p *Parser) match(tt TokenType) bool {
	if p.peek().Type == tt {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	tok := p.peek()
	prefix := fmt.Sprintf("line %d col %d: ", tok.Line, tok.Col)
	return errors.Newf(prefix+format, args...)
}

// --- SELECT ---

func (p *Parser) parseSelect() (*SelectStmt, error) {
	if _, err := p.expect(TokenSELECT); err != nil {
		return nil, err
	}

	stmt := &SelectStmt{}

	// SELECT list
	for {
		se, err := p.parseSelectExpr()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, se)
		if !p.match(TokenComma) {
			break
		}
	}

	// FROM fn(...)
	if _, err := p.expect(TokenFROM); err != nil {
		return nil, err
	}
	ref, err := p.parseTableFunction()
	if err != nil {
		return nil, err
	}
	stmt.From = ref

	// ORDER BY
	if p.match(TokenORDER) {
		if _, err := p.expect(TokenBY); err != nil {
			return nil, err
		}
		for {
			colTok, err := p.expect(TokenIdentifier)
			if err != nil {
				return nil, err
			}
			desc := false
			if p.match(TokenDESC) {
				desc = true
			} else {
				p.match(TokenASC)
			}
			stmt.OrderBy = append(stmt.OrderBy, OrderByExpr{Column: colTok.Literal, Desc: desc})
			if !p.match(TokenComma) {
				break
			}
		}
	}

	// LIMIT n [OFFSET m]
	if p.match(TokenLIMIT) {
		n, err := p.parseCount("LIMIT")
		if err != nil {
			return nil, err
		}
		stmt.Limit = &n
		if p.match(TokenOFFSET) {
			m, err := p.parseCount("OFFSET")
			if err != nil {
				return nil, err
			}
			stmt.Offset = &m
		}
	}

	return stmt, nil
}

func (p *Parser) parseCount(clause string) (int64, error) {
	numTok, err := p.expect(TokenNumber)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(numTok.Literal, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.Newf("invalid %s value: %s", clause, numTok.Literal)
	}
	return n, nil
}

func (p *Parser) parseSelectExpr() (SelectExpr, error) {
	// Check for *
	if p.match(TokenStar) {
		return SelectExpr{Expr: &StarExpr{}}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return SelectExpr{}, err
	}

	var alias string
	if p.match(TokenAS) {
		aliasTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return SelectExpr{}, err
		}
		alias = aliasTok.Literal
	} else if p.peek().Type == TokenIdentifier {
		// Alias without AS, only when followed by a comma or FROM
		nextNext := p.peekAt(p.pos + 1)
		if nextNext.Type == TokenComma || nextNext.Type == TokenFROM {
			alias = p.advance().Literal
		}
	}

	return SelectExpr{Expr: expr, Alias: alias}, nil
}

// parseTableFunction parses name(arg, ..., key = value, key => value) [[AS] alias].
// Positional arguments must precede named ones.
func (p *Parser) parseTableFunction() (*TableFunctionRef, error) {
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenLParen {
		return nil, p.errorf("%q is not a table function call; expected '(' after the name", nameTok.Literal)
	}
	p.advance()

	ref := &TableFunctionRef{Name: strings.ToLower(nameTok.Literal)}
	seen := make(map[string]bool)
	if p.peek().Type != TokenRParen {
		for {
			next := p.peekAt(p.pos + 1).Type
			if p.peek().Type == TokenIdentifier && (next == TokenEQ || next == TokenArrow) {
				name := strings.ToLower(p.advance().Literal)
				p.advance() // = or =>
				if seen[name] {
					return nil, p.errorf("duplicate named argument %q", name)
				}
				seen[name] = true
				value, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				ref.Named = append(ref.Named, NamedArg{Name: name, Value: value})
			} else {
				if len(ref.Named) > 0 {
					return nil, p.errorf("positional argument after named argument")
				}
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				ref.Args = append(ref.Args, arg)
			}
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	if p.match(TokenAS) {
		aliasTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		ref.Alias = aliasTok.Literal
	} else if p.peek().Type == TokenIdentifier {
		ref.Alias = p.advance().Literal
	}
	return ref, nil
}

// --- SHOW FUNCTIONS ---

func (p *Parser) parseShow() (*ShowFunctionsStmt, error) {
	if _, err := p.expect(TokenSHOW); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenFUNCTIONS); err != nil {
		return nil, err
	}
	return &ShowFunctionsStmt{}, nil
}

// --- DESCRIBE ---

func (p *Parser) parseDescribe() (*DescribeStmt, error) {
	if _, err := p.expect(TokenDESCRIBE); err != nil {
		return nil, err
	}
	ref, err := p.parseTableFunction()
	if err != nil {
		return nil, err
	}
	return &DescribeStmt{Function: ref}, nil
}

// --- Expression parsing ---

func (p *Parser) parseExpression() (Expression, error) {
	return p.parseUnary()
}

func (p *Parser) parseUnary() (Expression, error) {
	if p.match(TokenMinus) {
		expr, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "-", Expr: expr}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.peek()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		if strings.Contains(tok.Literal, ".") {
			f, err := strconv.ParseFloat(tok.Literal, 64)
			if err != nil {
				return nil, err
			}
			return &LiteralExpr{Value: f}, nil
		}
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			err = errors.Wrapf(err, "line %d col %d: integer literal %s", tok.Line, tok.Col, tok.Literal)
			if errors.Is(err, strconv.ErrRange) {
				err = errors.Mark(err, ErrIntegerRange)
			}
			return nil, err
		}
		return &LiteralExpr{Value: n}, nil

	case TokenString:
		p.advance()
		return &LiteralExpr{Value: tok.Literal}, nil

	case TokenStar:
		p.advance()
		return &StarExpr{}, nil

	case TokenIdentifier:
		p.advance()
		// Check if this is a function call
		if p.peek().Type == TokenLParen {
			return p.parseFunctionCall(tok.Literal)
		}
		return &ColumnRef{Name: tok.Literal}, nil

	case TokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.errorf("unexpected token %q in expression", tok.Literal)
	}
}

func (p *Parser) parseFunctionCall(name string) (Expression, error) {
	p.advance() // consume (

	var args []Expression
	if p.peek().Type != TokenRParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	return &FunctionCall{Name: strings.ToLower(name), Args: args}, nil
}
