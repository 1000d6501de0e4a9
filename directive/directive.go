// Package directive implements the compact directive grammar used in
// condition objects:
//
//	directive := "+" name ("/" arg)*
//
// The parser splits a directive into its operator name and positional
// arguments; it does not know operator arities, which are validated by the
// operator compilers.
package directive

import (
	"strings"

	"github.com/c360/streamsift/errors"
	"github.com/c360/streamsift/event"
)

const (
	// Prefix marks the operator name token.
	Prefix = "+"
	// Separator splits the name and argument tokens.
	Separator = "/"
	// ReferenceAnchor as the first character of an argument marks the whole
	// remaining argument as a field reference rather than a literal.
	ReferenceAnchor = "$"
)

// Directive is the parsed form of a directive string.
type Directive struct {
	// Raw is the directive text exactly as written in the configuration.
	Raw string
	// Name is the operator name without the '+' prefix, e.g. "r_match".
	Name string
	// Args are the positional argument tokens. Trailing empty tokens are
	// dropped, so "+op/" carries no arguments; interior empty tokens are
	// preserved and rejected by arity- or emptiness-checking compilers.
	Args []string
}

// Parse splits a raw directive string into its operator name and arguments.
func Parse(raw string) (Directive, error) {
	tokens := strings.Split(raw, Separator)

	// "+op/" must fail arity checks the same way "+op" does.
	for len(tokens) > 1 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}

	name := tokens[0]
	if !strings.HasPrefix(name, Prefix) || len(name) == len(Prefix) {
		return Directive{}, errors.NewBuild(errors.ErrMalformedDirective, "", raw,
			"operator name must be present and prefixed with '+'")
	}

	return Directive{
		Raw:  raw,
		Name: strings.TrimPrefix(name, Prefix),
		Args: tokens[1:],
	}, nil
}

// Operand is the right-hand side of a comparison: either a literal string or
// a reference to another field of the same event. Exactly one variant is
// populated, resolved once at build time.
type Operand struct {
	literal string
	refPath string
	isRef   bool
}

// ResolveOperand classifies a directive argument. An argument whose first
// character is the reference anchor resolves to a Reference holding the
// normalized field path of the remainder; any other argument is a Literal.
func ResolveOperand(arg string) (Operand, error) {
	if !strings.HasPrefix(arg, ReferenceAnchor) {
		return Operand{literal: arg}, nil
	}

	path, err := event.NormalizePath(strings.TrimPrefix(arg, ReferenceAnchor))
	if err != nil {
		return Operand{}, err
	}
	return Operand{refPath: path, isRef: true}, nil
}

// Literal creates a literal operand directly, bypassing anchor resolution.
func Literal(value string) Operand {
	return Operand{literal: value}
}

// IsReference reports whether the operand is a field reference.
func (o Operand) IsReference() bool {
	return o.isRef
}

// Value returns the literal value. Only meaningful when IsReference is false.
func (o Operand) Value() string {
	return o.literal
}

// Reference returns the normalized referenced field path. Only meaningful
// when IsReference is true.
func (o Operand) Reference() string {
	return o.refPath
}
