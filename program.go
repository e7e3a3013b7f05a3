package bst

import (
	"strconv"
	"strings"
)

// Command is one top-level statement of a style program, such as
// FUNCTION {name} {body}. Name is matched case-insensitively.
type Command struct {
	Name string
	Args []Block
}

// Cmd builds a Command.
func Cmd(name string, args ...Block) Command {
	return Command{Name: name, Args: args}
}

func (cmd Command) String() string {
	var sb strings.Builder
	sb.WriteString(cmd.Name)
	for _, arg := range cmd.Args {
		sb.WriteByte(' ')
		sb.WriteString(arg.String())
	}
	return sb.String()
}

// Instruction is one element of a function body: an Ident, Quoted,
// StringLit, IntLit, or a nested Block.
type Instruction interface {
	bstInstruction()
}

type (
	// Ident executes the named variable.
	Ident string

	// Quoted pushes the named variable itself, as 'name does.
	Quoted string

	// StringLit pushes a string.
	StringLit string

	// IntLit pushes an integer.
	IntLit int

	// Block is a brace delimited instruction list. Nested inside a function
	// body it pushes an anonymous function.
	Block []Instruction
)

func (Ident) bstInstruction()     {}
func (Quoted) bstInstruction()    {}
func (StringLit) bstInstruction() {}
func (IntLit) bstInstruction()    {}
func (Block) bstInstruction()     {}

// Idents builds a Block of identifiers, the shape taken by ENTRY, INTEGERS,
// and STRINGS arguments.
func Idents(names ...string) Block {
	b := make(Block, len(names))
	for i, name := range names {
		b[i] = Ident(name)
	}
	return b
}

func (b Block) String() string {
	var sb strings.Builder
	writeBlock(&sb, b)
	return sb.String()
}

func writeBlock(sb *strings.Builder, b Block) {
	sb.WriteByte('{')
	for _, in := range b {
		sb.WriteByte(' ')
		switch in := in.(type) {
		case Ident:
			sb.WriteString(string(in))
		case Quoted:
			sb.WriteByte('\'')
			sb.WriteString(string(in))
		case StringLit:
			sb.WriteByte('"')
			sb.WriteString(string(in))
			sb.WriteByte('"')
		case IntLit:
			sb.WriteByte('#')
			sb.WriteString(strconv.Itoa(int(in)))
		case Block:
			writeBlock(sb, in)
		}
	}
	sb.WriteString(" }")
}
