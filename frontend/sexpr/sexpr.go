// Package sexpr implements a minimal s-expression frontend over the core IR. The grammar is deliberately tiny:
//
//	(sample <var> (<dist> <arg>...))
//	(observe <var> (<dist> <arg>...) <expr>)
//	(factor <expr>)
//	(assign <var> <expr>)
//	(if <cond> <then> <else>)
//	(while <cond> <body>)
//	(block <stmt>...)
//	(defun <name> <stmt>...)
//
// and expressions are fully-parenthesized prefix arithmetic/boolean forms over numeric literals
// and variable names: (+ a b), (== a 0), (&& (> a 0) (< a 10)), etc.
//
// This package is hand-written on top of the standard library's text/scanner rather than
// pulled from a third-party parsing library: a grammar this small and special-purpose gains
// nothing from one.
package sexpr

import (
	"fmt"
	"strings"
	"text/scanner"
)

// node is a parsed s-expression: either an atom (ident/number) or a list of child nodes.
type node struct {
	atom string
	isNumber bool
	num float64
	list []node
	pos scanner.Position
}

func (n node) isAtom() bool { return n.list == nil }

// parseAll lexes and parses source into a flat sequence of top-level forms.
func parseAll(source string) ([]node, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(source))
	s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanStrings
	s.Error = func(*scanner.Scanner, string) {} // surfaced via Scan's own token stream

	p := &parser{s: &s}
	p.next()

	var forms []node
	for p.tok != scanner.EOF {
		n, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		forms = append(forms, n)
	}
	return forms, nil
}

type parser struct {
	s *scanner.Scanner
	tok rune
}

func (p *parser) next() { p.tok = p.s.Scan() }

func (p *parser) parseNode() (node, error) {
	pos := p.s.Position
	switch p.tok {
	case '(':
		p.next()
		var list []node
		for p.tok != ')' {
			if p.tok == scanner.EOF {
				return node{}, fmt.Errorf("sexpr: unexpected EOF, unterminated list starting at %s", pos)
			}
			child, err := p.parseNode()
			if err != nil {
				return node{}, err
			}
			list = append(list, child)
		}
		p.next() // consume ')'
		return node{list: list, pos: pos}, nil
	case scanner.EOF:
		return node{}, fmt.Errorf("sexpr: unexpected EOF at %s", pos)
	case scanner.Int, scanner.Float:
		text := p.s.TokenText()
		var v float64
		if _, err := fmt.Sscanf(text, "%g", &v); err != nil {
			return node{}, fmt.Errorf("sexpr: malformed number %q at %s: %w", text, pos, err)
		}
		p.next()
		return node{atom: text, isNumber: true, num: v, pos: pos}, nil
	case '-':
		// A leading '-' directly before a digit is a negative numeric literal; otherwise it's
		// the subtraction operator atom, handled like any other identifier-ish token.
		p.next()
		if (p.tok == scanner.Int || p.tok == scanner.Float) && p.s.Position.Offset == pos.Offset+1 {
			text := "-" + p.s.TokenText()
			var v float64
			if _, err := fmt.Sscanf(text, "%g", &v); err != nil {
				return node{}, fmt.Errorf("sexpr: malformed number %q at %s: %w", text, pos, err)
			}
			p.next()
			return node{atom: text, isNumber: true, num: v, pos: pos}, nil
		}
		return node{atom: "-", pos: pos}, nil
	case '=', '!', '>', '<', '&', '|':
		// The scanner tokenizes punctuation one rune at a time, so two-character operators
		// (==, !=, >=, <=, &&, ||) need to be recombined from consecutive single-rune tokens.
		first := p.tok
		if second := p.s.Peek(); second == '=' || (first == '&' && second == '&') || (first == '|' && second == '|') {
			p.s.Next() // consume the second rune of the operator
			atom := string(first) + string(second)
			p.next()
			return node{atom: atom, pos: pos}, nil
		}
		atom := string(first)
		p.next()
		return node{atom: atom, pos: pos}, nil
	default:
		text := p.s.TokenText()
		p.next()
		return node{atom: text, pos: pos}, nil
	}
}
