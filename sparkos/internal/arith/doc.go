// Package arith parses and evaluates calculator arithmetic: numbers, + - * /,
// parentheses and unary signs. Nothing else is accepted; there are no names,
// calls or operators beyond those.
package arith
