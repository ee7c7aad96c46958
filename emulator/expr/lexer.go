/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package expr

import (
	"fmt"
	"strconv"
)

type tokenType byte

const (
	tokEOF tokenType = iota
	tokIdent
	tokInt
	tokStar
	tokAmp
	tokPlus
	tokMinus
	tokLSquare
	tokRSquare
	tokLRound
	tokRRound
	tokPeriod
	tokArrow
)

type token struct {
	typ  tokenType
	text string
	num  int64
	pos  int
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
			continue
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && (isIdentStart(src[j]) || isDigit(src[j])) {
				j++
			}
			toks = append(toks, token{typ: tokIdent, text: src[i:j], pos: i})
			i = j
			continue
		case isDigit(c):
			j := i + 1
			for j < len(src) && (isDigit(src[j]) || isIdentStart(src[j])) {
				j++
			}
			n, err := strconv.ParseInt(src[i:j], 0, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, src[i:j], i)
			}
			toks = append(toks, token{typ: tokInt, text: src[i:j], num: n, pos: i})
			i = j
			continue
		case c == '-' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, token{typ: tokArrow, text: "->", pos: i})
			i += 2
			continue
		}

		typ, ok := punct[c]
		if !ok {
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, c, i)
		}
		toks = append(toks, token{typ: typ, text: string(c), pos: i})
		i++
	}
	return append(toks, token{typ: tokEOF, pos: len(src)}), nil
}

var punct = map[byte]tokenType{
	'*': tokStar,
	'&': tokAmp,
	'+': tokPlus,
	'-': tokMinus,
	'[': tokLSquare,
	']': tokRSquare,
	'(': tokLRound,
	')': tokRRound,
	'.': tokPeriod,
}
