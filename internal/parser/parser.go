// Package parser implements Astrixa's recursive-descent parser.
//
// The parser is strictly fail-fast: the first error aborts parsing and
// is returned as a single diagnostic (spec §4.3). There is no
// backtracking; each production consumes exactly the tokens it needs.
package parser

import (
	"strconv"

	"github.com/astrixa-lang/astrixa/internal/ast"
	"github.com/astrixa-lang/astrixa/internal/diagnostics"
	"github.com/astrixa-lang/astrixa/internal/lexer"
	"github.com/astrixa-lang/astrixa/internal/token"
	"github.com/astrixa-lang/astrixa/internal/types"
)

// Parser turns a lexer's token stream into a Program.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
	err  *diagnostics.Diagnostic
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) fail(d diagnostics.Diagnostic) {
	if p.err == nil {
		p.err = &d
	}
}

func (p *Parser) failed() bool { return p.err != nil }

func (p *Parser) curAt(tt token.Type) bool  { return p.cur.Type == tt }
func (p *Parser) peekAt(tt token.Type) bool { return p.peek.Type == tt }

// expect consumes the current token if it matches tt, else records an
// ExpectedToken diagnostic and returns false.
func (p *Parser) expect(tt token.Type) bool {
	if p.curAt(tt) {
		p.next()
		return true
	}
	p.fail(diagnostics.New("expected '"+tt.String()+"', found '"+p.cur.Literal+"'", p.cur.Line, p.cur.Column).
		WithHelp("Check for a missing '" + tt.String() + "'"))
	return false
}

// ParseProgram parses a whole source file. On the first error it
// returns (nil, diagnostic); on success it returns (program, nil).
func (p *Parser) ParseProgram() (*ast.Program, *diagnostics.Diagnostic) {
	prog := &ast.Program{}
	for !p.curAt(token.EOF) && !p.failed() {
		fn := p.parseFunction()
		if p.failed() {
			return nil, p.err
		}
		prog.Statements = append(prog.Statements, fn)
	}
	if p.failed() {
		return nil, p.err
	}
	if lerr := p.l.Err(); lerr != nil {
		return nil, lerr
	}
	return prog, nil
}

func (p *Parser) parseFunction() *ast.FunctionStmt {
	startLine, startCol := p.cur.Line, p.cur.Column
	if !p.expect(token.FN) {
		return nil
	}
	if !p.curAt(token.IDENT) {
		p.fail(diagnostics.New("Expected function name", p.cur.Line, p.cur.Column).
			WithHelp("Function names must be valid identifiers"))
		return nil
	}
	name := p.cur.Literal
	p.next()

	var params []ast.Param
	if p.curAt(token.LPAREN) {
		p.next()
		params = p.parseParams()
		if p.failed() {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
	}

	returnType := types.Void
	if p.curAt(token.ARROW) {
		p.next()
		returnType = p.parseType()
		if p.failed() {
			return nil
		}
	}

	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseStatements(token.RBRACE)
	if p.failed() {
		return nil
	}
	if !p.expect(token.RBRACE) {
		return nil
	}

	return ast.NewFunctionStmt(name, params, returnType, body, startLine, startCol)
}

func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	if p.curAt(token.RPAREN) {
		return params
	}
	for {
		if !p.curAt(token.IDENT) {
			p.fail(diagnostics.New("expected parameter name", p.cur.Line, p.cur.Column).
				WithHelp("Parameter names must be valid identifiers"))
			return nil
		}
		name := p.cur.Literal
		p.next()
		if !p.expect(token.COLON) {
			return nil
		}
		typ := p.parseType()
		if p.failed() {
			return nil
		}
		params = append(params, ast.Param{Name: name, Type: typ})
		if p.curAt(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	return params
}

func (p *Parser) parseType() types.Type {
	if !p.curAt(token.IDENT) {
		p.fail(diagnostics.New("expected a type name", p.cur.Line, p.cur.Column).
			WithHelp("Valid types are Int, Float, Bool, String, Void"))
		return types.Unknown
	}
	var t types.Type
	switch p.cur.Literal {
	case "Int":
		t = types.Int
	case "Float":
		t = types.Float
	case "Bool":
		t = types.Bool
	case "String":
		t = types.String
	case "Void":
		t = types.Void
	default:
		p.fail(diagnostics.New("unknown type '"+p.cur.Literal+"'", p.cur.Line, p.cur.Column).
			WithHelp("Valid types are Int, Float, Bool, String, Void"))
		return types.Unknown
	}
	p.next()
	return t
}

// parseStatements parses statements until it sees end (typically
// token.RBRACE) or EOF.
func (p *Parser) parseStatements(end token.Type) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.curAt(end) && !p.curAt(token.EOF) && !p.failed() {
		stmts = append(stmts, p.parseStatement())
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case token.LET:
		return p.parseLet()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLet() ast.Stmt {
	line, col := p.cur.Line, p.cur.Column
	p.next() // consume 'let'
	if !p.curAt(token.IDENT) {
		p.fail(diagnostics.New("expected variable name after 'let'", p.cur.Line, p.cur.Column).
			WithHelp("Variable names must be valid identifiers"))
		return nil
	}
	name := p.cur.Literal
	p.next()

	var annotated bool
	var typ types.Type
	if p.curAt(token.COLON) {
		p.next()
		typ = p.parseType()
		annotated = true
		if p.failed() {
			return nil
		}
	}

	if !p.expect(token.ASSIGN) {
		return nil
	}
	value := p.parseExpression()
	if p.failed() {
		return nil
	}
	return ast.NewLetStmt(name, typ, annotated, value, line, col)
}

// bareReturnFollowers are the tokens that can legally follow a bare
// `return` with no value: end of the enclosing block, end of input, or
// the start of the next statement (there is no statement terminator in
// the grammar, so `return` immediately followed by e.g. `let` is a
// bare return, not `return let...`).
var bareReturnFollowers = map[token.Type]bool{
	token.RBRACE: true, token.EOF: true,
	token.LET: true, token.RETURN: true, token.IF: true, token.WHILE: true,
}

func (p *Parser) parseReturn() ast.Stmt {
	line, col := p.cur.Line, p.cur.Column
	p.next() // consume 'return'
	if bareReturnFollowers[p.cur.Type] {
		return ast.NewReturnStmt(nil, line, col)
	}
	value := p.parseExpression()
	if p.failed() {
		return nil
	}
	return ast.NewReturnStmt(value, line, col)
}

func (p *Parser) parseIf() ast.Stmt {
	line, col := p.cur.Line, p.cur.Column
	p.next() // consume 'if'
	if !p.expect(token.LPAREN) {
		return nil
	}
	cond := p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	then := p.parseStatements(token.RBRACE)
	if p.failed() {
		return nil
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	var elseBody []ast.Stmt
	if p.curAt(token.ELSE) {
		p.next()
		if !p.expect(token.LBRACE) {
			return nil
		}
		elseBody = p.parseStatements(token.RBRACE)
		if p.failed() {
			return nil
		}
		if !p.expect(token.RBRACE) {
			return nil
		}
		if elseBody == nil {
			elseBody = []ast.Stmt{}
		}
	}
	return ast.NewIfStmt(cond, then, elseBody, line, col)
}

func (p *Parser) parseWhile() ast.Stmt {
	line, col := p.cur.Line, p.cur.Column
	p.next() // consume 'while'
	if !p.expect(token.LPAREN) {
		return nil
	}
	cond := p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseStatements(token.RBRACE)
	if p.failed() {
		return nil
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return ast.NewWhileStmt(cond, body, line, col)
}

func (p *Parser) parseExprStmt() ast.Stmt {
	line, col := p.cur.Line, p.cur.Column
	x := p.parseExpression()
	if p.failed() {
		return nil
	}
	return ast.NewExprStmt(x, line, col)
}

// ---- Expressions, by ascending precedence ----

func (p *Parser) parseExpression() ast.Expr {
	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() ast.Expr {
	left := p.parseLogicalAnd()
	for !p.failed() && p.curAt(token.OR_OR) {
		line, col := p.cur.Line, p.cur.Column
		p.next()
		right := p.parseLogicalAnd()
		if p.failed() {
			return nil
		}
		left = ast.NewBinaryExpr(ast.OpOr, left, right, line, col)
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	left := p.parseComparison()
	for !p.failed() && p.curAt(token.AND_AND) {
		line, col := p.cur.Line, p.cur.Column
		p.next()
		right := p.parseComparison()
		if p.failed() {
			return nil
		}
		left = ast.NewBinaryExpr(ast.OpAnd, left, right, line, col)
	}
	return left
}

var comparisonOps = map[token.Type]ast.BinaryOp{
	token.EQ: ast.OpEq, token.NOT_EQ: ast.OpNe,
	token.LT: ast.OpLt, token.LT_EQ: ast.OpLe,
	token.GT: ast.OpGt, token.GT_EQ: ast.OpGe,
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for !p.failed() {
		op, ok := comparisonOps[p.cur.Type]
		if !ok {
			break
		}
		line, col := p.cur.Line, p.cur.Column
		p.next()
		right := p.parseAdditive()
		if p.failed() {
			return nil
		}
		left = ast.NewBinaryExpr(op, left, right, line, col)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for !p.failed() {
		var op ast.BinaryOp
		switch p.cur.Type {
		case token.PLUS:
			op = ast.OpAdd
		case token.MINUS:
			op = ast.OpSub
		default:
			return left
		}
		line, col := p.cur.Line, p.cur.Column
		p.next()
		right := p.parseMultiplicative()
		if p.failed() {
			return nil
		}
		left = ast.NewBinaryExpr(op, left, right, line, col)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for !p.failed() {
		var op ast.BinaryOp
		switch p.cur.Type {
		case token.ASTERISK:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		default:
			return left
		}
		line, col := p.cur.Line, p.cur.Column
		p.next()
		right := p.parseUnary()
		if p.failed() {
			return nil
		}
		left = ast.NewBinaryExpr(op, left, right, line, col)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Type {
	case token.BANG:
		line, col := p.cur.Line, p.cur.Column
		p.next()
		operand := p.parseUnary()
		if p.failed() {
			return nil
		}
		return ast.NewUnaryExpr(ast.OpNot, operand, line, col)
	case token.MINUS:
		line, col := p.cur.Line, p.cur.Column
		p.next()
		operand := p.parseUnary()
		if p.failed() {
			return nil
		}
		return ast.NewUnaryExpr(ast.OpNeg, operand, line, col)
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	line, col := p.cur.Line, p.cur.Column
	switch p.cur.Type {
	case token.INT:
		v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			p.fail(diagnostics.New("invalid integer literal '"+p.cur.Literal+"'", line, col))
			return nil
		}
		p.next()
		return ast.NewIntLiteral(v, line, col)
	case token.FLOAT:
		v, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			p.fail(diagnostics.New("invalid float literal '"+p.cur.Literal+"'", line, col))
			return nil
		}
		p.next()
		return ast.NewFloatLiteral(v, line, col)
	case token.TRUE:
		p.next()
		return ast.NewBoolLiteral(true, line, col)
	case token.FALSE:
		p.next()
		return ast.NewBoolLiteral(false, line, col)
	case token.STRING:
		v := p.cur.Literal
		p.next()
		return ast.NewStringLiteral(v, line, col)
	case token.LPAREN:
		p.next()
		x := p.parseExpression()
		if p.failed() {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return x
	case token.AI:
		return p.parseStdlibAccess()
	case token.IDENT:
		return p.parseIdentOrCall()
	case token.EOF:
		p.fail(diagnostics.New("unexpected end of input", line, col).
			WithHelp("The program ended before this construct was complete"))
		return nil
	default:
		p.fail(diagnostics.New("unexpected token '"+p.cur.Literal+"'", line, col))
		return nil
	}
}

// parseStdlibAccess parses `ai.<name>(args)`, a distinguished call
// form that produces a CallExpr whose callee name is <name>
// (spec §4.3). The member access itself never reaches the IR; only
// the resulting call does.
func (p *Parser) parseStdlibAccess() ast.Expr {
	line, col := p.cur.Line, p.cur.Column
	p.next() // consume 'ai'
	if !p.expect(token.DOT) {
		return nil
	}
	if !p.curAt(token.IDENT) {
		p.fail(diagnostics.New("expected a stdlib function name after 'ai.'", p.cur.Line, p.cur.Column))
		return nil
	}
	name := p.cur.Literal
	p.next()
	if !p.expect(token.LPAREN) {
		return nil
	}
	args := p.parseArgs()
	if p.failed() {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return ast.NewCallExpr(name, args, line, col)
}

func (p *Parser) parseIdentOrCall() ast.Expr {
	line, col := p.cur.Line, p.cur.Column
	name := p.cur.Literal
	p.next()
	if !p.curAt(token.LPAREN) {
		return ast.NewIdentifier(name, line, col)
	}
	p.next()
	args := p.parseArgs()
	if p.failed() {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return ast.NewCallExpr(name, args, line, col)
}

func (p *Parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	if p.curAt(token.RPAREN) {
		return args
	}
	for {
		arg := p.parseExpression()
		if p.failed() {
			return nil
		}
		args = append(args, arg)
		if p.curAt(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	return args
}
