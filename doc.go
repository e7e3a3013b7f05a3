/*
Package bst runs BibTeX bibliography styles.

A BibTeX style (a .bst file) is a program in a small postfix language.
Values live on a single operand stack; words either push a value (string
literals like "text", integer literals like #5, quoted names like 'skip$,
and brace delimited anonymous functions) or execute (builtins, user
functions, and variables, which push their current value). Builtins are
named with a trailing $, except for the operators:

	> < = + - * :=

Note that * concatenates strings, and that := pops the variable before the
value, so assignment reads "value 'name :=".

A style program is a sequence of top-level commands, executed strictly in
order:

	ENTRY { fields } { integers } { strings }
	INTEGERS { names }
	STRINGS { names }
	MACRO { name } { "text" }
	FUNCTION { name } { body }
	READ
	EXECUTE { function }
	ITERATE { function }
	REVERSE { function }
	SORT

ENTRY declares per-entry storage: one read only variable per field, plus the
implicit crossref field, and entry scoped integers and strings. READ asks
the DatabaseReader for the cited entries, pulls in cross-referenced parents
that enough entries point at, and drops citations missing from the database.
ITERATE and REVERSE run a function once per citation with that citation's
entry bound; SORT orders citations by each entry's sort.key$ string, keeping
ties in citation order.

Function bodies are compiled once, when FUNCTION runs, into a chain of Go
closures. The compiler models the operand stack while it works: a value
pushed by one instruction and consumed by the next passes through a local
register instead of the stack. Instructions that run arbitrary code
(if$, while$, call.type$, stack$, and user function calls) flush any such
pending values to the real stack first. WithInlining(false) turns the
register binding off; output is the same either way.

Text written by write$ accumulates until newline$, which wraps it greedily at
79 columns (see WithWrapWidth), breaking only at whitespace and indenting
continuation lines by two spaces.

Parsing .bst and .bib files is left to the caller: programs arrive as
[]Command, and entries come from a DatabaseReader.
*/
package bst
