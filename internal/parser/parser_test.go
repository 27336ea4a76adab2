package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSelect(t *testing.T, sql string) *SelectStmt {
	t.Helper()
	stmt, err := ParseSQL(sql)
	require.NoError(t, err)
	sel, ok := stmt.(*SelectStmt)
	require.True(t, ok, "got %T", stmt)
	return sel
}

func TestLexerArrowAndEquals(t *testing.T) {
	tokens, err := NewLexer("count => 3, count=-2").Tokenize()
	require.NoError(t, err)

	var got []TokenType
	for _, tok := range tokens {
		got = append(got, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TokenIdentifier, TokenArrow, TokenNumber, TokenComma,
		TokenIdentifier, TokenEQ, TokenNumber, TokenEOF,
	}, got)
	assert.Equal(t, "-2", tokens[6].Literal)
}

func TestLexerStrings(t *testing.T) {
	tokens, err := NewLexer(`'it''s' 'a\tb' "Select"`).Tokenize()
	require.NoError(t, err)
	assert.Equal(t, "it's", tokens[0].Literal)
	assert.Equal(t, "a\tb", tokens[1].Literal)
	assert.Equal(t, TokenIdentifier, tokens[2].Type)
	assert.Equal(t, "Select", tokens[2].Literal)

	_, err = NewLexer("'open").Tokenize()
	assert.Error(t, err)
	_, err = NewLexer("a < b").Tokenize()
	assert.Error(t, err)
}

func TestParseTableFunctionCall(t *testing.T) {
	sel := parseSelect(t, "SELECT greetings FROM hello('Alice', count=3)")
	require.Len(t, sel.Columns, 1)
	assert.Equal(t, &ColumnRef{Name: "greetings"}, sel.Columns[0].Expr)

	require.NotNil(t, sel.From)
	assert.Equal(t, "hello", sel.From.Name)
	assert.Equal(t, []Expression{&LiteralExpr{Value: "Alice"}}, sel.From.Args)
	assert.Equal(t, []NamedArg{{Name: "count", Value: &LiteralExpr{Value: int64(3)}}}, sel.From.Named)
}

func TestParseNamedArgumentForms(t *testing.T) {
	a := parseSelect(t, "select * from HELLO('x', COUNT => 3)")
	b := parseSelect(t, "select * from hello('x', count = 3);")
	assert.Equal(t, a.From, b.From)
	assert.Equal(t, &StarExpr{}, a.Columns[0].Expr)

	neg := parseSelect(t, "select * from hello('x', count => - 5)")
	assert.Equal(t, &UnaryExpr{Op: "-", Expr: &LiteralExpr{Value: int64(5)}}, neg.From.Named[0].Value)
}

func TestParseSelectClauses(t *testing.T) {
	sel := parseSelect(t, "SELECT count(*) AS n, max(greetings) m FROM hello('Bob', count => 10) AS h ORDER BY n DESC, m LIMIT 5 OFFSET 2")

	require.Len(t, sel.Columns, 2)
	assert.Equal(t, SelectExpr{Expr: &FunctionCall{Name: "count", Args: []Expression{&StarExpr{}}}, Alias: "n"}, sel.Columns[0])
	assert.Equal(t, "m", sel.Columns[1].Alias)
	assert.Equal(t, "h", sel.From.Alias)
	assert.Equal(t, []OrderByExpr{{Column: "n", Desc: true}, {Column: "m"}}, sel.OrderBy)
	require.NotNil(t, sel.Limit)
	assert.Equal(t, int64(5), *sel.Limit)
	require.NotNil(t, sel.Offset)
	assert.Equal(t, int64(2), *sel.Offset)

	assert.Equal(t,
		"SELECT count(*) AS n, max(greetings) AS m FROM hello('Bob', count => 10) AS h ORDER BY n DESC, m LIMIT 5 OFFSET 2",
		SelectToSQL(sel))
}

func TestParseShowAndDescribe(t *testing.T) {
	stmt, err := ParseSQL("SHOW FUNCTIONS")
	require.NoError(t, err)
	assert.IsType(t, &ShowFunctionsStmt{}, stmt)

	stmt, err = ParseSQL("describe hello('x')")
	require.NoError(t, err)
	desc, ok := stmt.(*DescribeStmt)
	require.True(t, ok)
	assert.Equal(t, "hello", desc.Function.Name)
	assert.Equal(t, "DESCRIBE hello('x')", StatementToSQL(stmt))
}

func TestParseErrors(t *testing.T) {
	for _, sql := range []string{
		"",
		"SELECT greetings",
		"SELECT greetings FROM hello",
		"SELECT * FROM hello('a', count => 1, 'b')",
		"SELECT * FROM hello('a', count => 1, count = 2)",
		"SELECT * FROM hello('a') LIMIT -1",
		"SELECT * FROM hello('a') extra tokens",
		"SHOW TABLES",
		"INSERT INTO t VALUES (1)",
		"SELECT * FROM hello('a', count => 99999999999999999999)",
	} {
		_, err := ParseSQL(sql)
		require.Error(t, err, sql)
		assert.True(t, IsSyntaxError(err), sql)
	}
}

func TestParseIntegerOutOfRange(t *testing.T) {
	_, err := ParseSQL("SELECT * FROM hello('a', count => 99999999999999999999)")
	require.Error(t, err)
	assert.True(t, IsIntegerRangeError(err))

	_, err = ParseSQL("SELECT * FROM hello('a', count => 9223372036854775807)")
	require.NoError(t, err)

	_, err = ParseSQL("SELECT * FROM hello('a'")
	require.Error(t, err)
	assert.False(t, IsIntegerRangeError(err))
}
