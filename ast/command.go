// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package ast

// RedirectOp names the shape of a redirection, per spec.md §3/§6.
type RedirectOp int

const (
	Read RedirectOp = iota
	Write
	ReadWrite
	Append
	Clobber
	Heredoc
	DupRead
	DupWrite
)

// Redirect is one redirection, e.g. `2>&1` or `<<EOF`.
type Redirect struct {
	Op RedirectOp
	// Fd is the file descriptor the redirect applies to, or -1 to use the
	// operator's conventional default (0 for read forms, 1 for write
	// forms).
	Fd int
	// Word is the redirection target, e.g. the path in `>path` or the fd
	// in `>&2`. Unused (nil) for Heredoc, which uses Body instead.
	Word *Word
	// Body is the here-document's literal content, used only when Op is
	// Heredoc.
	Body string
}

// VarAssig is a `name=word` assignment appearing before a simple command.
type VarAssig struct {
	Name string
	Word *Word // nil for a naked `name=` (assigns empty string)
}

// RedirectOrVarAssig is one item in a simple command's assignment phase:
// either a redirect or a variable assignment, per spec.md §4.7.
type RedirectOrVarAssig struct {
	Redirect *Redirect // exactly one of Redirect/VarAssig is non-nil
	VarAssig *VarAssig
}

// RedirectOrCmdWord is one item in a simple command's word phase: either a
// redirect or a command word, per spec.md §4.7.
type RedirectOrCmdWord struct {
	Redirect *Redirect // exactly one of Redirect/CmdWord is non-nil
	CmdWord  *Word
}

// SimpleCommand is a command made of assignments, redirects, and a
// possibly-empty command word list.
type SimpleCommand struct {
	Assignments []RedirectOrVarAssig
	Words       []RedirectOrCmdWord
}

// Command is one of the top-level AST command shapes from spec.md §6.
type Command interface {
	command()
}

// SimpleCmd wraps a SimpleCommand.
type SimpleCmd struct {
	Command SimpleCommand
}

func (*SimpleCmd) command() {}

// Compound wraps a compound command together with any redirects attached
// to the compound as a whole (e.g. `{ ...; } >log`).
type Compound struct {
	Command   CompoundCommand
	Redirects []Redirect
}

func (*Compound) command() {}

// FunctionDef declares a function; its body is evaluated on each call with
// a fresh argument frame.
type FunctionDef struct {
	Name string
	Body Command
}

func (*FunctionDef) command() {}

// Pipe is ListableCommand::Pipe: zero or more commands connected by pipes.
// InvertLast inverts the final exit status (the `!` prefix).
type Pipe struct {
	InvertLast bool
	Commands   []Command
}

func (*Pipe) command() {}

// And is `lhs && rhs`.
type And struct {
	X, Y Command
}

func (*And) command() {}

// Or is `lhs || rhs`.
type Or struct {
	X, Y Command
}

func (*Or) command() {}

// Job is `cmd &`, run asynchronously. Exit-status observation of the
// backgrounded job is out of scope (spec.md §1 Non-goals: job control).
type Job struct {
	Command Command
}

func (*Job) command() {}

// CompoundCommand is one of the compound command shapes from spec.md §6.
type CompoundCommand interface {
	compoundCommand()
}

// Brace is `{ cmds; }`: sequenced in the current environment.
type Brace struct {
	Commands []Command
}

func (*Brace) compoundCommand() {}

// Subshell is `( cmds )`: sequenced in a sub-environment.
type Subshell struct {
	Commands []Command
}

func (*Subshell) compoundCommand() {}

// GuardBody is one guard/body pair of an If clause, or the single
// guard/body of a While/Until loop.
type GuardBody struct {
	Guard []Command
	Body  []Command
}

// If is `if ...; then ...; elif ...; then ...; else ...; fi`.
type If struct {
	Branches []GuardBody
	Else     []Command // nil if there is no else branch
}

func (*If) compoundCommand() {}

// Loop is `while`/`until`. InvertGuard is true for Until.
type Loop struct {
	InvertGuard bool
	Guard       []Command
	Body        []Command
}

func (*Loop) compoundCommand() {}

// WordsOrArgs is the iterable of a For loop: either an explicit word list
// (`for x in a b c`) or, when Words is nil and HasIn is false, the current
// positional parameters (`for x`).
type WordsOrArgs struct {
	HasIn bool
	Words []*Word
}

// For is `for name [in words]; do ...; done`.
type For struct {
	Var  string
	Iter WordsOrArgs
	Body []Command
}

func (*For) compoundCommand() {}

// CaseArm is one `pattern[|pattern...]) body ;;` arm.
type CaseArm struct {
	Patterns []*Word
	Body     []Command
}

// Case is `case word in arms esac`.
type Case struct {
	Word *Word
	Arms []CaseArm
}

func (*Case) compoundCommand() {}
