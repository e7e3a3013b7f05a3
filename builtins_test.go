package bst

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuiltins(t *testing.T) {
	vmTestCases{
		// arithmetic and comparison
		vmTest("add").withStack(Integer(2), Integer(3)).do(run("+")).expectStack(Integer(5)),
		vmTest("sub").withStack(Integer(2), Integer(3)).do(run("-")).expectStack(Integer(-1)),
		vmTest("gt").withStack(Integer(3), Integer(2)).do(run(">")).expectStack(Integer(1)),
		vmTest("lt").withStack(Integer(3), Integer(2)).do(run("<")).expectStack(Integer(0)),
		vmTest("eq ints").withStack(Integer(3), Integer(3)).do(run("=")).expectStack(Integer(1)),
		vmTest("eq strings").withStack(String("a"), String("b")).do(run("=")).expectStack(Integer(0)),
		vmTest("eq missing").withStack(MissingField{}, String("")).do(run("=")).expectStack(Integer(1)),
		vmTest("gt strings").withStack(String("b"), String("a")).do(run(">")).expectStack(Integer(1)),
		vmTest("add string").withStack(String("a"), Integer(1)).do(run("+")).
			expectError(TypeMismatchError{"+", "integer", String("a")}),
		vmTest("eq mixed").withStack(Integer(1), String("1")).do(run("=")).
			expectError(TypeMismatchError{"=", "integer", String("1")}),
		vmTest("concat").withStack(String("ab"), String("cd")).do(run("*")).expectStack(String("abcd")),
		vmTest("concat missing").withStack(MissingField{}, String("cd")).do(run("*")).expectStack(String("cd")),

		// stack manipulation
		vmTest("duplicate$").withStack(Integer(1), String("a")).do(run("duplicate$")).
			expectStack(Integer(1), String("a"), String("a")),
		vmTest("swap$").withStack(Integer(1), String("a")).do(run("swap$")).
			expectStack(String("a"), Integer(1)),
		vmTest("pop$").withStack(Integer(1), String("a")).do(run("pop$")).expectStack(Integer(1)),
		vmTest("pop$ underflow").do(run("pop$")).expectError(StackUnderflowError{"pop$"}),
		vmTest("swap$ underflow").withStack(Integer(1)).do(run("swap$")).expectError(StackUnderflowError{"swap$"}),

		// assignment
		vmTest("assign integer").withProgram(`INTEGERS { n }`).
			withStack(Integer(7)).do(func(vm *VM) { vm.push(vm.lookup("n", "")) }, run(":=")).
			expectStack().expectGlobal("n", Integer(7)),
		vmTest("assign missing to string").withProgram(`STRINGS { s }`).
			withStack(MissingField{}).do(func(vm *VM) { vm.push(vm.lookup("s", "")) }, run(":=")).
			expectGlobal("s", String("")),
		vmTest("assign string to integer").withProgram(`INTEGERS { n }`).
			withStack(String("x")).do(func(vm *VM) { vm.push(vm.lookup("n", "")) }, run(":=")).
			expectError(TypeMismatchError{":=", "integer", String("x")}),
		vmTest("assign to field").withProgram(`ENTRY { title } {} {}`).
			withEntry(&Entry{Key: "k", Type: "misc"}).
			withStack(String("x")).do(func(vm *VM) { vm.push(vm.lookup("title", "")) }, run(":=")).
			expectError(AssignmentError{"title", Field}),
		vmTest("assign to builtin").
			withStack(String("x")).do(func(vm *VM) { vm.push(vm.lookup("skip$", "")) }, run(":=")).
			expectError(AssignmentError{"skip$", Builtin}),
		vmTest("assign entry string").withProgram(`ENTRY {} {} { label }`).
			withEntry(&Entry{Key: "k", Type: "misc"}).
			withStack(String("x")).do(func(vm *VM) { vm.push(vm.lookup("label", "")) }, run(":="), run("label")).
			expectStack(String("x")),
		vmTest("assign entry under EXECUTE").withProgram(`ENTRY {} { n } {}`).
			withStack(Integer(1)).do(func(vm *VM) { vm.push(vm.lookup("n", "")) }, run(":=")).
			expectError(NoEntryError{":="}),

		// strings
		vmTest("add.period$").withStack(String("abc")).do(run("add.period$")).expectStack(String("abc.")),
		vmTest("add.period$ already").withStack(String("Really?}")).do(run("add.period$")).expectStack(String("Really?}")),
		vmTest("add.period$ empty").withStack(String("")).do(run("add.period$")).expectStack(String("")),
		vmTest("change.case$").withStack(String("The {API} is Great"), String("l")).
			do(run("change.case$")).expectStack(String("the {API} is great")),
		vmTest("change.case$ upper format").withStack(String("abc"), String("U")).
			do(run("change.case$")).expectStack(String("ABC")),
		vmTest("change.case$ illegal").withStack(String("abc"), String("x")).
			do(run("change.case$")).expectStack(String("abc")).
			expectWarnings(`"x" is an illegal case-conversion string`),
		vmTest("chr.to.int$").withStack(String("A")).do(run("chr.to.int$")).expectStack(Integer(65)),
		vmTest("chr.to.int$ long").withStack(String("AB")).do(run("chr.to.int$")).expectStack(Integer(0)).
			expectWarnings(`string "AB" isn't a single character`),
		vmTest("int.to.chr$").withStack(Integer(97)).do(run("int.to.chr$")).expectStack(String("a")),
		vmTest("int.to.chr$ invalid").withStack(Integer(-1)).do(run("int.to.chr$")).expectStack(String("")).
			expectWarnings(`-1 isn't a valid character code`),
		vmTest("int.to.str$").withStack(Integer(-42)).do(run("int.to.str$")).expectStack(String("-42")),
		vmTest("empty$ blank").withStack(String(" \t")).do(run("empty$")).expectStack(Integer(1)),
		vmTest("empty$ missing").withStack(MissingField{}).do(run("empty$")).expectStack(Integer(1)),
		vmTest("empty$ text").withStack(String(" a ")).do(run("empty$")).expectStack(Integer(0)),
		vmTest("empty$ integer").withStack(Integer(0)).do(run("empty$")).
			expectError(TypeMismatchError{"empty$", "string", Integer(0)}),
		vmTest("missing$").withStack(MissingField{}, String("")).do(run("missing$"), run("swap$"), run("missing$")).
			expectStack(Integer(0), Integer(1)),
		vmTest("num.names$").withStack(String("A and B and {C and D}")).do(run("num.names$")).expectStack(Integer(3)),
		vmTest("num.names$ empty").withStack(String("")).do(run("num.names$")).expectStack(Integer(0)),
		vmTest("purify$").withStack(String(`{\'E}cole-Normale~Sup`)).do(run("purify$")).
			expectStack(String("Ecole Normale Sup")),
		vmTest("quote$").do(run("quote$")).expectStack(String(`"`)),
		vmTest("substring$").withStack(String("Hello"), Integer(2), Integer(3)).do(run("substring$")).
			expectStack(String("ell")),
		vmTest("substring$ from end").withStack(String("Hello"), Integer(-1), Integer(3)).do(run("substring$")).
			expectStack(String("llo")),
		vmTest("substring$ huge length").withStack(String("abc"), Integer(3), Integer(math.MaxInt)).do(run("substring$")).
			expectStack(String("c")),
		vmTest("substring$ huge length from end").withStack(String("abc"), Integer(-2), Integer(math.MaxInt)).do(run("substring$")).
			expectStack(String("ab")),
		vmTest("text.length$").withStack(String(`{\'e}cole`)).do(run("text.length$")).expectStack(Integer(5)),
		vmTest("text.prefix$").withStack(String(`{\'e}cole`), Integer(2)).do(run("text.prefix$")).
			expectStack(String(`{\'e}c`)),
		vmTest("width$").withStack(String("abc")).do(run("width$")).expectStack(Integer(1500)),
		vmTest("format.name$").withStack(String("Doe, Jane and John Smith"), Integer(2), String("{vv~}{ll}{, f.}")).
			do(run("format.name$")).expectStack(String("Smith, J.")),
		vmTest("format.name$ out of range").withStack(String("Jane Doe"), Integer(2), String("{ll}")).
			do(run("format.name$")).expectError(IndexOutOfRangeError{"format.name$", 2, 1}),

		// entries
		vmTest("cite$").withEntry(&Entry{Key: "doe20", Type: "Article"}).
			do(run("cite$"), run("type$")).expectStack(String("doe20"), String("article")),
		vmTest("cite$ under EXECUTE").do(run("cite$")).expectError(NoEntryError{"cite$"}),
		vmTest("field").withProgram(`ENTRY { title year } {} {}`).
			withEntry(&Entry{Key: "k", Type: "misc", Fields: map[string]string{"Title": "T"}}).
			do(run("title"), run("year")).expectStack(String("T"), MissingField{}),
		vmTest("entry defaults").withProgram(`ENTRY {} { n } { s }`).
			withEntry(&Entry{Key: "k", Type: "misc"}).
			do(run("n"), run("s"), run("sort.key$")).expectStack(Integer(0), String(""), String("")),
		vmTest("globals").do(run("global.max$"), run("entry.max$")).expectStack(Integer(20000), Integer(250)),
		vmTest("preamble$ before READ").do(run("preamble$")).expectStack(String("")),

		// output and diagnostics
		vmTest("write$").withStack(String("a"), String("b")).
			do(run("swap$"), run("write$"), run("newline$"), run("write$")).
			expectStack().expectOutput("a\n"),
		vmTest("warning$").withStack(String("oops")).do(run("warning$")).expectWarnings("oops"),
		vmTest("top$").withStack(Integer(1), String("a")).do(run("top$")).
			expectStack(Integer(1)).expectMessages(`"a"`),
		vmTest("stack$").withStack(Integer(1), String("a"), MissingField{}).do(run("stack$")).
			expectStack().expectMessages("<missing>", `"a"`, "1"),

		// control
		vmTest("if$ true").withStack(Integer(1)).
			do(func(vm *VM) {
				vm.push(vm.compile("yes", Block{StringLit("yes")}))
				vm.push(vm.compile("no", Block{StringLit("no")}))
			}, run("if$")).
			expectStack(String("yes")),
		vmTest("if$ false").withStack(Integer(0)).
			do(func(vm *VM) {
				vm.push(vm.lookup("skip$", ""))
				vm.push(vm.compile("no", Block{StringLit("no")}))
			}, run("if$")).
			expectStack(String("no")),
		vmTest("if$ not a function").withStack(Integer(0), Integer(1), Integer(2)).
			do(run("if$")).expectError(TypeMismatchError{"if$", "function", Integer(2)}),
		vmTest("while$ cancelled").withTimeout(50*time.Millisecond).
			do(func(vm *VM) {
				vm.push(vm.compile("cond", Block{IntLit(1)}))
				vm.push(vm.lookup("skip$", ""))
			}, run("while$")).
			expectError(context.DeadlineExceeded),
	}.run(t)
}

// TestBuiltins_stackBalance checks that every builtin consumes and produces
// exactly as many values as it declares.
func TestBuiltins_stackBalance(t *testing.T) {
	args := map[string][]Value{
		">":            {Integer(1), Integer(2)},
		"<":            {Integer(1), Integer(2)},
		"=":            {String("a"), String("a")},
		"+":            {Integer(1), Integer(2)},
		"-":            {Integer(1), Integer(2)},
		"*":            {String("a"), String("b")},
		"add.period$":  {String("a")},
		"change.case$": {String("a"), String("u")},
		"chr.to.int$":  {String("a")},
		"duplicate$":   {Integer(1)},
		"empty$":       {String("")},
		"format.name$": {String("Jane Doe"), Integer(1), String("{ff}")},
		"int.to.chr$":  {Integer(65)},
		"int.to.str$":  {Integer(65)},
		"missing$":     {String("")},
		"num.names$":   {String("A and B")},
		"pop$":         {Integer(1)},
		"purify$":      {String("a")},
		"substring$":   {String("abc"), Integer(1), Integer(2)},
		"swap$":        {Integer(1), Integer(2)},
		"text.length$": {String("a")},
		"text.prefix$": {String("abc"), Integer(2)},
		"top$":         {Integer(1)},
		"warning$":     {String("w")},
		"width$":       {String("a")},
		"write$":       {String("a")},
	}
	ent := &Entry{Key: "k", Type: "book"}
	var vmts vmTestCases
	for _, b := range builtins {
		if b.unsafe || b.name == ":=" {
			continue
		}
		b := b
		vals := args[b.name]
		if !assert.Len(t, vals, b.in, "test arguments for %v", b.name) {
			continue
		}
		sentinel := String("sentinel")
		vmts = append(vmts, vmTest(b.name).
			withEntry(ent).
			withStack(append([]Value{sentinel}, vals...)...).
			do(run(b.name)).
			expecting(func(t *testing.T, vm *VM) {
				assert.Equal(t, 1+b.out, vm.stack.Len(), "expected stack depth")
				assert.Equal(t, sentinel, vm.stack.Values()[0], "expected untouched stack bottom")
			}))
	}
	vmts.run(t)
}
