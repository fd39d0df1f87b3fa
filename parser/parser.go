// Package parser implements a recursive-descent parser with Pratt-style
// precedence climbing, producing a typed AST from a token stream and
// recovering from syntax errors via panic-mode synchronization.
package parser

import (
	"fmt"

	"github.com/codeassociates/jfmc/ast"
	"github.com/codeassociates/jfmc/lexer"
	"github.com/codeassociates/jfmc/token"
)

// Precedence levels, lowest to highest, per spec.md §4.2.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT
	LOGICAL_OR
	LOGICAL_AND
	BIT_OR
	BIT_XOR
	BIT_AND
	EQUALITY
	COMPARISON
	CAST
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	UNARY
	POSTFIX
)

var precedences = map[token.Kind]int{
	token.ASSIGN: ASSIGNMENT, token.PLUSEQ: ASSIGNMENT, token.MINUSEQ: ASSIGNMENT,
	token.STAREQ: ASSIGNMENT, token.SLASHEQ: ASSIGNMENT,
	token.OR:  LOGICAL_OR,
	token.AND: LOGICAL_AND,
	token.PIPE:  BIT_OR,
	token.CARET: BIT_XOR,
	token.AMP:   BIT_AND,
	token.EQ: EQUALITY, token.NEQ: EQUALITY,
	token.LT: COMPARISON, token.GT: COMPARISON, token.LE: COMPARISON, token.GE: COMPARISON,
	token.AS: CAST,
	token.SHL: SHIFT, token.SHR: SHIFT,
	token.PLUS: ADDITIVE, token.MINUS: ADDITIVE,
	token.STAR: MULTIPLICATIVE, token.SLASH: MULTIPLICATIVE, token.PERCENT: MULTIPLICATIVE,
	token.LPAREN: POSTFIX, token.LBRACKET: POSTFIX, token.DOT: POSTFIX, token.COLONCOLON: POSTFIX,
}

// maxPostfixDepth and maxListIterations are progress guards (spec.md §4.2,
// §4.7, §9): defensive bounds that turn a grammar bug into a diagnostic
// instead of an infinite loop or unbounded stack growth.
const (
	maxPostfixDepth   = 256
	maxListIterations = 100000
)

// SyntaxError is a single parser diagnostic with its source location,
// reported separately from the message text so callers (e.g. package
// compiler) can feed it into a diag.Bag without re-parsing "line N: ...".
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

type Parser struct {
	l          *lexer.Lexer
	syntaxErrs []SyntaxError

	curToken  token.Token
	peekToken token.Token

	// buf holds tokens read from the lexer beyond peekToken, used for the
	// struct-literal-disambiguation lookahead (spec.md §4.2). Tokens are
	// never discarded once read: looking further ahead buffers them here so
	// nextToken() can still shift them into curToken/peekToken in order.
	buf []token.Token

	panicking bool
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every diagnostic message collected so far, each prefixed
// with its source line.
func (p *Parser) Errors() []string {
	var out []string
	for _, e := range p.syntaxErrs {
		out = append(out, fmt.Sprintf("line %d: %s", e.Line, e.Message))
	}
	return out
}

// SyntaxErrors returns every diagnostic with its location intact.
func (p *Parser) SyntaxErrors() []SyntaxError { return p.syntaxErrs }

func (p *Parser) addError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.panicking {
		return
	}
	p.panicking = true
	p.syntaxErrs = append(p.syntaxErrs, SyntaxError{Message: msg, Line: p.curToken.Line, Column: p.curToken.Column})
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if len(p.buf) > 0 {
		p.peekToken = p.buf[0]
		p.buf = p.buf[1:]
	} else {
		p.peekToken = p.l.Next()
	}
}

// peekAt returns the token n positions past peekToken (peekAt(0) ==
// peekToken, peekAt(1) is one further), buffering as needed so no token is
// ever lost to a speculative lookahead.
func (p *Parser) peekAt(n int) token.Token {
	if n == 0 {
		return p.peekToken
	}
	for len(p.buf) < n {
		p.buf = append(p.buf, p.l.Next())
	}
	return p.buf[n-1]
}

func (p *Parser) curIs(k token.Kind) bool  { return p.curToken.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peekToken.Kind == k }

func (p *Parser) expect(k token.Kind) bool {
	if p.curIs(k) {
		p.nextToken()
		return true
	}
	p.addError("expected %s, got %s", k, p.curToken.Kind)
	return false
}

func (p *Parser) expectPeek(k token.Kind) bool {
	if p.peekIs(k) {
		p.nextToken()
		return true
	}
	p.addError("expected %s, got %s", k, p.peekToken.Kind)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Kind]; ok {
		return prec
	}
	return LOWEST
}

// synchronize advances past the panic point to the next `;` or a
// statement-starting keyword, per spec.md §4.2/§4.7/§9.
func (p *Parser) synchronize() {
	p.panicking = false
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMI) {
			p.nextToken()
			return
		}
		switch p.curToken.Kind {
		case token.FN, token.LET, token.IF, token.WHILE, token.FOR, token.LOOP,
			token.RETURN, token.STRUCT, token.IMPL, token.BREAK, token.CONTINUE,
			token.EXTERN, token.INCLUDE:
			return
		}
		p.nextToken()
	}
}

// checkProgress is the stuck-position guard used by every list-parsing loop
// (block bodies, struct fields, impl methods, top-level declarations). It
// records a diagnostic and forces advancement if the parser hasn't moved.
func (p *Parser) checkProgress(prevLine, prevCol int, iterations int) bool {
	if iterations > maxListIterations {
		p.addError("parser made no progress; aborting list at line %d", p.curToken.Line)
		p.nextToken()
		return true
	}
	if p.curToken.Line == prevLine && p.curToken.Column == prevCol {
		p.addError("parser stuck at token %s; forcing advance", p.curToken.Kind)
		p.nextToken()
		return true
	}
	return false
}

// ParseProgram parses an entire source file into a Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	iterations := 0
	for !p.curIs(token.EOF) {
		prevLine, prevCol := p.curToken.Line, p.curToken.Column
		decl := p.parseTopLevelDecl()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		if p.panicking {
			p.synchronize()
		}
		iterations++
		p.checkProgress(prevLine, prevCol, iterations)
		if iterations > maxListIterations {
			break
		}
	}
	return prog
}

func (p *Parser) parseTopLevelDecl() ast.Stmt {
	switch p.curToken.Kind {
	case token.INCLUDE:
		return p.parseInclude()
	case token.EXTERN:
		return p.parseExtern()
	case token.FN:
		return p.parseFunction()
	case token.STRUCT:
		return p.parseStruct(false)
	case token.IMPL:
		return p.parseImpl()
	case token.LET:
		return p.parseLet()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseInclude() ast.Stmt {
	tok := p.curToken
	p.nextToken() // consume 'include'
	if !p.expect(token.LPAREN) {
		return nil
	}
	if !p.curIs(token.STRING) {
		p.addError("expected string literal path in include(), got %s", p.curToken.Kind)
		return nil
	}
	path := p.curToken.Lexeme
	p.nextToken()
	if !p.expect(token.RPAREN) {
		return nil
	}
	if p.curIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.Include{Location: ast.LocFromToken(tok), Path: path}
}

func (p *Parser) parseExtern() ast.Stmt {
	tok := p.curToken
	p.nextToken() // consume 'extern'
	switch p.curToken.Kind {
	case token.FN:
		return p.parseExternFunction(tok)
	case token.STRUCT:
		return p.parseStruct(true)
	default:
		p.addError("expected fn or struct after extern, got %s", p.curToken.Kind)
		return nil
	}
}

func (p *Parser) parseExternFunction(tok token.Token) ast.Stmt {
	p.nextToken() // consume 'fn'
	if !p.curIs(token.IDENT) {
		p.addError("expected function name, got %s", p.curToken.Kind)
		return nil
	}
	name := p.curToken.Lexeme
	p.nextToken()
	params := p.parseParamList()
	retType := ast.Primitives(ast.Void)
	if p.curIs(token.ARROW) {
		p.nextToken()
		retType = p.parseType()
	}
	if p.curIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.ExternFunction{Location: ast.LocFromToken(tok), Name: name, Params: params, ReturnType: retType}
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if !p.expect(token.LPAREN) {
		return params
	}
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		mut := false
		if p.curIs(token.MUT) {
			mut = true
			p.nextToken()
		}
		if !p.curIs(token.IDENT) {
			p.addError("expected parameter name, got %s", p.curToken.Kind)
			break
		}
		name := p.curToken.Lexeme
		p.nextToken()
		if !p.expect(token.COLON) {
			break
		}
		typ := p.parseType()
		params = append(params, ast.Param{Name: name, Type: typ, IsMutable: mut})
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

// parseType parses a type expression: primitives, [N]T, *T, &T, &mut T, StructName.
func (p *Parser) parseType() ast.Type {
	switch p.curToken.Kind {
	case token.I8, token.I16, token.I32, token.I64, token.U8, token.U16, token.U32, token.U64,
		token.F32, token.F64, token.BOOL, token.CHAR_KW, token.STR:
		prim := primitiveFor(p.curToken.Kind)
		p.nextToken()
		return ast.Primitives(prim)
	case token.LBRACKET:
		p.nextToken() // consume '['
		if !p.curIs(token.INT) {
			p.addError("expected array size, got %s", p.curToken.Kind)
			return ast.Primitives(ast.Void)
		}
		size := int(p.curToken.Literal.Int)
		p.nextToken()
		if !p.expect(token.RBRACKET) {
			return ast.Primitives(ast.Void)
		}
		elem := p.parseType()
		return ast.ArrayOf(elem, size)
	case token.STAR:
		p.nextToken()
		return ast.PointerTo(p.parseType())
	case token.AMP:
		p.nextToken()
		mut := false
		if p.curIs(token.MUT) {
			mut = true
			p.nextToken()
		}
		return ast.ReferenceTo(p.parseType(), mut)
	case token.IDENT:
		name := p.curToken.Lexeme
		p.nextToken()
		return ast.StructRef(name)
	default:
		p.addError("expected a type, got %s", p.curToken.Kind)
		return ast.Primitives(ast.Void)
	}
}

func primitiveFor(k token.Kind) ast.Primitive {
	switch k {
	case token.I8:
		return ast.I8
	case token.I16:
		return ast.I16
	case token.I32:
		return ast.I32
	case token.I64:
		return ast.I64
	case token.U8:
		return ast.U8
	case token.U16:
		return ast.U16
	case token.U32:
		return ast.U32
	case token.U64:
		return ast.U64
	case token.F32:
		return ast.F32
	case token.F64:
		return ast.F64
	case token.BOOL:
		return ast.Bool
	case token.CHAR_KW:
		return ast.Char
	case token.STR:
		return ast.Str
	}
	return ast.Void
}

func (p *Parser) parseFunction() *ast.Function {
	tok := p.curToken
	p.nextToken() // consume 'fn'
	if !p.curIs(token.IDENT) {
		p.addError("expected function name, got %s", p.curToken.Kind)
		return nil
	}
	name := p.curToken.Lexeme
	p.nextToken()
	params := p.parseParamList()
	retType := ast.Primitives(ast.Void)
	if p.curIs(token.ARROW) {
		p.nextToken()
		retType = p.parseType()
	}
	body := p.parseBlock()
	return &ast.Function{Location: ast.LocFromToken(tok), Name: name, Params: params, ReturnType: retType, Body: body}
}

func (p *Parser) parseStruct(extern bool) ast.Stmt {
	tok := p.curToken
	p.nextToken() // consume 'struct'
	if !p.curIs(token.IDENT) {
		p.addError("expected struct name, got %s", p.curToken.Kind)
		return nil
	}
	name := p.curToken.Lexeme
	p.nextToken()
	if extern {
		if p.curIs(token.SEMI) {
			p.nextToken()
		}
		return &ast.Struct{Location: ast.LocFromToken(tok), Name: name, Extern: true}
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	var fields []ast.StructField
	iterations := 0
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.curToken.Line, p.curToken.Column
		if !p.curIs(token.IDENT) {
			p.addError("expected field name, got %s", p.curToken.Kind)
			break
		}
		fname := p.curToken.Lexeme
		p.nextToken()
		if !p.expect(token.COLON) {
			break
		}
		ftype := p.parseType()
		fields = append(fields, ast.StructField{Name: fname, Type: ftype})
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
		iterations++
		if p.checkProgress(prevLine, prevCol, iterations) {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.Struct{Location: ast.LocFromToken(tok), Name: name, Fields: fields}
}

func (p *Parser) parseImpl() ast.Stmt {
	tok := p.curToken
	p.nextToken() // consume 'impl'
	if !p.curIs(token.IDENT) {
		p.addError("expected struct name after impl, got %s", p.curToken.Kind)
		return nil
	}
	name := p.curToken.Lexeme
	p.nextToken()
	if !p.expect(token.LBRACE) {
		return nil
	}
	var methods []*ast.Function
	iterations := 0
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.curToken.Line, p.curToken.Column
		if !p.curIs(token.FN) {
			p.addError("expected fn in impl block, got %s", p.curToken.Kind)
			break
		}
		if m := p.parseFunction(); m != nil {
			methods = append(methods, m)
		}
		iterations++
		if p.checkProgress(prevLine, prevCol, iterations) {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.Impl{Location: ast.LocFromToken(tok), StructName: name, Methods: methods}
}

// parseBlock parses { stmt* expr? }. A final bare expression (no trailing
// semicolon) becomes Block.FinalExpr per spec.md's Block invariant.
func (p *Parser) parseBlock() *ast.Block {
	tok := p.curToken
	if !p.expect(token.LBRACE) {
		return &ast.Block{Location: ast.LocFromToken(tok)}
	}
	block := &ast.Block{Location: ast.LocFromToken(tok)}
	iterations := 0
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.curToken.Line, p.curToken.Column

		if stmt, finalExpr := p.parseBlockItem(); finalExpr != nil {
			block.FinalExpr = finalExpr
		} else if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.panicking {
			p.synchronize()
		}
		iterations++
		if p.checkProgress(prevLine, prevCol, iterations) {
			break
		}
	}
	p.expect(token.RBRACE)
	return block
}

// parseBlockItem parses one statement. If it parses a bare expression
// statement immediately followed by `}` (no semicolon), it is returned as
// the block's final expression instead of a statement.
func (p *Parser) parseBlockItem() (ast.Stmt, ast.Expr) {
	switch p.curToken.Kind {
	case token.LET:
		return p.parseLet(), nil
	case token.IF:
		return p.parseIf(), nil
	case token.WHILE:
		return p.parseWhile(), nil
	case token.FOR:
		return p.parseFor(), nil
	case token.LOOP:
		return p.parseLoop(), nil
	case token.RETURN:
		return p.parseReturn(), nil
	case token.BREAK:
		tok := p.curToken
		p.nextToken()
		if p.curIs(token.SEMI) {
			p.nextToken()
		}
		return &ast.Break{Location: ast.LocFromToken(tok)}, nil
	case token.CONTINUE:
		tok := p.curToken
		p.nextToken()
		if p.curIs(token.SEMI) {
			p.nextToken()
		}
		return &ast.Continue{Location: ast.LocFromToken(tok)}, nil
	case token.LBRACE:
		return p.parseBlock(), nil
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses an assignment or expression statement,
// distinguishing a trailing-semicolon-free final expression per the Block
// invariant.
func (p *Parser) parseSimpleStatement() (ast.Stmt, ast.Expr) {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		if !p.panicking {
			p.addError("expected expression, got %s", p.curToken.Kind)
		}
		return nil, nil
	}

	if assign, ok := expr.(*ast.Assignment); ok {
		if p.curIs(token.SEMI) {
			p.nextToken()
		}
		return assign, nil
	}

	switch p.curToken.Kind {
	case token.SEMI:
		p.nextToken()
		return &ast.ExprStmt{Location: ast.LocFromToken(tok), X: expr}, nil
	case token.RBRACE:
		// No trailing semicolon and block ends here: this is the block's
		// final expression, not a statement.
		return nil, expr
	default:
		// Expression statement without trailing semicolon but not at block
		// end either; still accepted per spec.md's "optional trailing ;".
		return &ast.ExprStmt{Location: ast.LocFromToken(tok), X: expr}, nil
	}
}

func assignOpLexeme(k token.Kind) string {
	switch k {
	case token.PLUSEQ:
		return "+="
	case token.MINUSEQ:
		return "-="
	case token.STAREQ:
		return "*="
	case token.SLASHEQ:
		return "/="
	default:
		return "="
	}
}

func exprToAssignTarget(e ast.Expr) (ast.AssignTarget, bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		return ast.AssignTarget{Kind: ast.AssignIdent, Name: n.Name}, true
	case *ast.Index:
		return ast.AssignTarget{Kind: ast.AssignIndex, Object: n.Object, Index: n.Index}, true
	case *ast.Field:
		return ast.AssignTarget{Kind: ast.AssignField, Field: n.Name, Object: n.Object}, true
	default:
		return ast.AssignTarget{}, false
	}
}

// parseStatement is used for the rare top-level bare-statement form (spec.md
// §4.2: "Everything else at top level is a statement").
func (p *Parser) parseStatement() ast.Stmt {
	stmt, _ := p.parseBlockItem()
	return stmt
}

func (p *Parser) parseLet() ast.Stmt {
	tok := p.curToken
	p.nextToken() // consume 'let'
	mut := false
	if p.curIs(token.MUT) {
		mut = true
		p.nextToken()
	}
	if !p.curIs(token.IDENT) {
		p.addError("expected identifier after let, got %s", p.curToken.Kind)
		return nil
	}
	name := p.curToken.Lexeme
	p.nextToken()
	if !p.expect(token.COLON) {
		return nil
	}
	typ := p.parseType()
	var init ast.Expr
	if p.curIs(token.ASSIGN) {
		p.nextToken()
		init = p.parseExpression(LOWEST)
	}
	if p.curIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.Let{Location: ast.LocFromToken(tok), Name: name, Type: typ, IsMutable: mut, Initializer: init}
}

func (p *Parser) parseIf() *ast.If {
	tok := p.curToken
	p.nextToken() // consume 'if'
	if !p.expect(token.LPAREN) {
		return &ast.If{Location: ast.LocFromToken(tok)}
	}
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	then := p.parseBlock()
	var elseBlock *ast.Block
	if p.curIs(token.ELSE) {
		p.nextToken()
		if p.curIs(token.IF) {
			nested := p.parseIf()
			elseBlock = &ast.Block{Location: nested.Location, Statements: []ast.Stmt{nested}}
		} else {
			elseBlock = p.parseBlock()
		}
	}
	return &ast.If{Location: ast.LocFromToken(tok), Condition: cond, Then: then, Else: elseBlock}
}

func (p *Parser) parseWhile() *ast.While {
	tok := p.curToken
	p.nextToken() // consume 'while'
	if !p.expect(token.LPAREN) {
		return &ast.While{Location: ast.LocFromToken(tok)}
	}
	cond := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.While{Location: ast.LocFromToken(tok), Condition: cond, Body: body}
}

func (p *Parser) parseFor() *ast.For {
	tok := p.curToken
	p.nextToken() // consume 'for'
	if !p.curIs(token.IDENT) {
		p.addError("expected loop variable, got %s", p.curToken.Kind)
		return &ast.For{Location: ast.LocFromToken(tok)}
	}
	name := p.curToken.Lexeme
	p.nextToken()
	if p.curIs(token.COLON) {
		p.nextToken()
		p.parseType() // optional type annotation; iterator is always i32 (spec.md §3)
	}
	if !p.expect(token.IN) {
		return &ast.For{Location: ast.LocFromToken(tok)}
	}
	start := p.parseExpression(ADDITIVE)
	if !p.expect(token.DOTDOT) {
		return &ast.For{Location: ast.LocFromToken(tok), Name: name, Start: start}
	}
	end := p.parseExpression(ADDITIVE)
	body := p.parseBlock()
	return &ast.For{Location: ast.LocFromToken(tok), Name: name, Start: start, End: end, Body: body}
}

func (p *Parser) parseLoop() *ast.Loop {
	tok := p.curToken
	p.nextToken() // consume 'loop'
	body := p.parseBlock()
	return &ast.Loop{Location: ast.LocFromToken(tok), Body: body}
}

func (p *Parser) parseReturn() *ast.Return {
	tok := p.curToken
	p.nextToken() // consume 'return'
	var val ast.Expr
	if !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) {
		val = p.parseExpression(LOWEST)
	}
	if p.curIs(token.SEMI) {
		p.nextToken()
	}
	return &ast.Return{Location: ast.LocFromToken(tok), Value: val}
}

// Expression parsing (Pratt-style precedence climbing).

func (p *Parser) parseExpression(precedence int) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	return p.parseInfix(left, precedence, 0)
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.curToken
	switch tok.Kind {
	case token.INT:
		p.nextToken()
		lit := &ast.Literal{Location: ast.LocFromToken(tok), Kind: token.INT, Int: tok.Literal.Int}
		lit.SetType(ast.Primitives(ast.I32))
		return lit
	case token.FLOAT:
		p.nextToken()
		lit := &ast.Literal{Location: ast.LocFromToken(tok), Kind: token.FLOAT, Float: tok.Literal.Float}
		lit.SetType(ast.Primitives(ast.F64))
		return lit
	case token.TRUE, token.FALSE:
		p.nextToken()
		lit := &ast.Literal{Location: ast.LocFromToken(tok), Kind: tok.Kind, Bool: tok.Kind == token.TRUE}
		lit.SetType(ast.Primitives(ast.Bool))
		return lit
	case token.CHAR:
		p.nextToken()
		lit := &ast.Literal{Location: ast.LocFromToken(tok), Kind: token.CHAR, Char: tok.Literal.Char}
		lit.SetType(ast.Primitives(ast.Char))
		return lit
	case token.STRING:
		p.nextToken()
		lit := &ast.Literal{Location: ast.LocFromToken(tok), Kind: token.STRING, Str: tok.Lexeme}
		lit.SetType(ast.Primitives(ast.Str))
		return lit
	case token.IDENT:
		return p.parseIdentOrStructLiteral()
	case token.LPAREN:
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		p.expect(token.RPAREN)
		return expr
	case token.MINUS:
		p.nextToken()
		operand := p.parseExpression(UNARY)
		return &ast.UnaryOp{Location: ast.LocFromToken(tok), Operator: "-", Operand: operand}
	case token.NOT:
		p.nextToken()
		operand := p.parseExpression(UNARY)
		return &ast.UnaryOp{Location: ast.LocFromToken(tok), Operator: "!", Operand: operand}
	case token.STAR:
		p.nextToken()
		operand := p.parseExpression(UNARY)
		return &ast.UnaryOp{Location: ast.LocFromToken(tok), Operator: "*", Operand: operand}
	case token.AMP:
		p.nextToken()
		isMut := false
		if p.curIs(token.MUT) {
			isMut = true
			p.nextToken()
		}
		operand := p.parseExpression(UNARY)
		return &ast.UnaryOp{Location: ast.LocFromToken(tok), Operator: "&", IsMutRef: isMut, Operand: operand}
	case token.LBRACKET:
		return p.parseArrayLiteral()
	default:
		p.addError("unexpected token in expression: %s", tok.Kind)
		return nil
	}
}

// parseIdentOrStructLiteral implements the struct-literal disambiguation of
// spec.md §4.2: after an identifier, a following `{` commits to a struct
// literal only if a one-token lookahead past it sees `}` or `identifier :`;
// otherwise `{` is left untouched so `if (x) { … }` never misparses.
func (p *Parser) parseIdentOrStructLiteral() ast.Expr {
	tok := p.curToken
	name := tok.Lexeme
	p.nextToken()

	// Path expression A::b mangles to a single identifier "A::b" (spec.md
	// §4.2's name-mangling convention, used end-to-end by the emitter).
	for p.curIs(token.COLONCOLON) {
		p.nextToken()
		if !p.curIs(token.IDENT) {
			p.addError("expected identifier after ::, got %s", p.curToken.Kind)
			break
		}
		name = name + "::" + p.curToken.Lexeme
		p.nextToken()
	}

	if p.curIs(token.LBRACE) && p.looksLikeStructLiteral() {
		return p.parseStructLiteralBody(tok, name)
	}
	return &ast.Identifier{Location: ast.LocFromToken(tok), Name: name}
}

// looksLikeStructLiteral looks one token past the current `{` (curToken)
// without consuming anything: `}` or `identifier :` commits to a struct
// literal, anything else means the `{` belongs to a following block instead.
// Called with curToken == LBRACE, so peekToken is the token right after it.
func (p *Parser) looksLikeStructLiteral() bool {
	if p.peekIs(token.RBRACE) {
		return true
	}
	if p.peekToken.Kind != token.IDENT {
		return false
	}
	return p.peekAt(1).Kind == token.COLON
}

func (p *Parser) parseStructLiteralBody(tok token.Token, name string) ast.Expr {
	p.nextToken() // consume '{'
	var fields []ast.StructFieldInit
	iterations := 0
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.curToken.Line, p.curToken.Column
		if !p.curIs(token.IDENT) {
			p.addError("expected field name in struct literal, got %s", p.curToken.Kind)
			break
		}
		fname := p.curToken.Lexeme
		p.nextToken()
		if !p.expect(token.COLON) {
			break
		}
		val := p.parseExpression(LOWEST)
		fields = append(fields, ast.StructFieldInit{Name: fname, Value: val})
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
		iterations++
		if p.checkProgress(prevLine, prevCol, iterations) {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.StructLiteral{Location: ast.LocFromToken(tok), StructName: name, Fields: fields}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	tok := p.curToken
	p.nextToken() // consume '['
	lit := &ast.ArrayLiteral{Location: ast.LocFromToken(tok)}
	if p.curIs(token.RBRACKET) {
		// An empty literal parses; the semantic analyzer rejects it.
		p.nextToken()
		return lit
	}
	iterations := 0
	for {
		prevLine, prevCol := p.curToken.Line, p.curToken.Column
		elem := p.parseExpression(LOWEST)
		if elem != nil {
			lit.Elements = append(lit.Elements, elem)
		}
		if p.curIs(token.COMMA) {
			p.nextToken()
			iterations++
			if p.checkProgress(prevLine, prevCol, iterations) {
				break
			}
			continue
		}
		break
	}
	p.expect(token.RBRACKET)
	return lit
}

// parseInfix consumes infix/postfix operators left-to-right while the
// current token's precedence is at least the caller's minimum. depth counts
// the postfix operators applied so far and guards against pathological
// postfix chains (spec.md §4.2's progress guard).
func (p *Parser) parseInfix(left ast.Expr, minPrec int, depth int) ast.Expr {
	for {
		if depth > maxPostfixDepth {
			p.addError("expression nested too deeply at line %d", p.curToken.Line)
			return left
		}
		switch p.curToken.Kind {
		case token.ASSIGN, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ:
			if ASSIGNMENT < minPrec {
				return left
			}
			opTok := p.curToken
			target, ok := exprToAssignTarget(left)
			if !ok {
				p.addError("invalid assignment target at line %d", left.Loc().Line)
				return left
			}
			p.nextToken()
			// Right-associative: recurse at the same precedence level (not
			// ASSIGNMENT+1) so `a = b = c` parses as `a = (b = c)`.
			value := p.parseExpression(ASSIGNMENT)
			left = &ast.Assignment{Location: ast.LocFromToken(opTok), Target: target, Operator: assignOpLexeme(opTok.Kind), Value: value}
		case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
			token.EQ, token.NEQ, token.LT, token.GT, token.LE, token.GE,
			token.AND, token.OR, token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR:
			prec := precedences[p.curToken.Kind]
			if prec < minPrec {
				return left
			}
			op := p.curToken.Lexeme
			opTok := p.curToken
			p.nextToken()
			right := p.parseExpression(prec + 1)
			left = &ast.BinaryOp{Location: ast.LocFromToken(opTok), Operator: op, Left: left, Right: right}
		case token.AS:
			if CAST < minPrec {
				return left
			}
			castTok := p.curToken
			p.nextToken()
			target := p.parseType()
			left = &ast.Cast{Location: ast.LocFromToken(castTok), Target: target, Operand: left}
		case token.LPAREN:
			if POSTFIX < minPrec {
				return left
			}
			depth++
			left = p.parseCall(left, depth)
		case token.LBRACKET:
			if POSTFIX < minPrec {
				return left
			}
			depth++
			left = p.parseIndex(left, depth)
		case token.DOT:
			if POSTFIX < minPrec {
				return left
			}
			depth++
			left = p.parseField(left, depth)
		default:
			return left
		}
	}
}

func (p *Parser) parseCall(callee ast.Expr, depth int) ast.Expr {
	tok := p.curToken
	p.nextToken() // consume '('
	var args []ast.Expr
	iterations := 0
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		prevLine, prevCol := p.curToken.Line, p.curToken.Column
		arg := p.parseExpression(LOWEST)
		if arg != nil {
			args = append(args, arg)
		}
		if p.curIs(token.COMMA) {
			p.nextToken()
		}
		iterations++
		if p.checkProgress(prevLine, prevCol, iterations) {
			break
		}
	}
	p.expect(token.RPAREN)
	return &ast.Call{Location: ast.LocFromToken(tok), Callee: callee, Args: args}
}

func (p *Parser) parseIndex(object ast.Expr, depth int) ast.Expr {
	tok := p.curToken
	p.nextToken() // consume '['
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return &ast.Index{Location: ast.LocFromToken(tok), Object: object, Index: idx}
}

func (p *Parser) parseField(object ast.Expr, depth int) ast.Expr {
	tok := p.curToken
	p.nextToken() // consume '.'
	if !p.curIs(token.IDENT) {
		p.addError("expected field name after '.', got %s", p.curToken.Kind)
		return object
	}
	name := p.curToken.Lexeme
	fieldTok := p.curToken
	p.nextToken()
	if p.curIs(token.LPAREN) {
		// Method-call syntax obj.m(args) parses as a Call whose Callee is a
		// Field — sema's call dispatch (spec.md §4.5(a)) resolves this.
		return p.parseCall(&ast.Field{Location: ast.LocFromToken(fieldTok), Object: object, Name: name}, depth)
	}
	return &ast.Field{Location: ast.LocFromToken(tok), Object: object, Name: name}
}
