// Package operator compiles condition directives into immutable, reusable
// evaluation units.
//
// A directive such as "+ip_cidr/192.168.0.0/16" is validated and compiled
// exactly once at pipeline-build time; the resulting Compiled operator is
// then applied to every event that reaches its stage. All build-class
// failures (arity, literal syntax, regex and network compilation) surface
// from Build; evaluation itself never returns an error. Runtime misses
// (absent field, type mismatch, unparsable value) resolve to false, at most
// visible on the trace side-channel.
package operator

import (
	"regexp"
	"strings"

	"github.com/c360/streamsift/directive"
	"github.com/c360/streamsift/event"
	"github.com/c360/streamsift/trace"
)

// Kind discriminates the fixed operator families.
type Kind int

const (
	// KindExists matches when the target field is present.
	KindExists Kind = iota
	// KindNotExists matches when the target field is absent.
	KindNotExists
	// KindStringCmp compares the string-typed target field against an operand.
	KindStringCmp
	// KindStringEqN compares the first N characters of both sides.
	KindStringEqN
	// KindIntCmp compares the integer-typed target field against an operand.
	KindIntCmp
	// KindRegexMatch matches when the pattern matches any substring of the field.
	KindRegexMatch
	// KindRegexNotMatch matches when the pattern matches no substring of the field.
	KindRegexNotMatch
	// KindIPCIDR matches when the field parses as an IPv4 address inside the
	// precomputed network range.
	KindIPCIDR
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindExists:
		return "exists"
	case KindNotExists:
		return "not_exists"
	case KindStringCmp:
		return "string_cmp"
	case KindStringEqN:
		return "string_eq_n"
	case KindIntCmp:
		return "int_cmp"
	case KindRegexMatch:
		return "regex_match"
	case KindRegexNotMatch:
		return "regex_not_match"
	case KindIPCIDR:
		return "ip_cidr"
	default:
		return "unknown"
	}
}

// Cmp is the comparison discriminator shared by the string and integer
// families.
type Cmp int

// Comparison discriminators.
const (
	CmpEq Cmp = iota
	CmpNe
	CmpGt
	CmpGe
	CmpLt
	CmpLe
)

// String returns the string representation of Cmp.
func (c Cmp) String() string {
	switch c {
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	default:
		return "?"
	}
}

// Compiled is the immutable result of validating and compiling one directive.
// It is created once at pipeline-build time and shared read-only by every
// subsequent evaluation; it holds no reference to any event.
type Compiled struct {
	kind  Kind
	field string // normalized target path
	cmp   Cmp

	operand  directive.Operand // string/int families: literal or reference
	intValue int64             // int family: literal parsed at build time
	prefixN  int               // s_eq_n: number of characters compared

	re       *regexp.Regexp // regex families: pattern compiled at build time
	netLower uint32         // ip_cidr: inclusive range lower bound
	netUpper uint32         // ip_cidr: inclusive range upper bound

	successTrace string
	failureTrace string
	tracer       trace.Tracer
}

// Kind returns the operator family.
func (c *Compiled) Kind() Kind {
	return c.kind
}

// Field returns the normalized target field path.
func (c *Compiled) Field() string {
	return c.field
}

// Eval applies the compiled operator to one event document. It never fails:
// every runtime miss resolves to false.
func (c *Compiled) Eval(doc *event.Document) bool {
	switch c.kind {
	case KindExists:
		return c.traced(doc.Exists(c.field))
	case KindNotExists:
		return c.traced(!doc.Exists(c.field))
	case KindStringCmp:
		return c.traced(c.evalStringCmp(doc))
	case KindStringEqN:
		return c.evalStringEqN(doc)
	case KindIntCmp:
		return c.traced(c.evalIntCmp(doc))
	case KindRegexMatch:
		return c.evalRegexMatch(doc)
	case KindRegexNotMatch:
		return c.evalRegexNotMatch(doc)
	case KindIPCIDR:
		return c.evalIPCIDR(doc)
	default:
		return false
	}
}

// traced emits the pre-formatted success or failure trace and passes the
// result through.
func (c *Compiled) traced(ok bool) bool {
	if ok {
		c.tracer.Trace(c.successTrace)
	} else {
		c.tracer.Trace(c.failureTrace)
	}
	return ok
}

func compareStrings(cmp Cmp, lhs, rhs string) bool {
	switch cmp {
	case CmpEq:
		return lhs == rhs
	case CmpNe:
		return lhs != rhs
	case CmpGt:
		return lhs > rhs
	case CmpGe:
		return lhs >= rhs
	case CmpLt:
		return lhs < rhs
	case CmpLe:
		return lhs <= rhs
	default:
		return false
	}
}

func compareInts(cmp Cmp, lhs, rhs int64) bool {
	switch cmp {
	case CmpEq:
		return lhs == rhs
	case CmpNe:
		return lhs != rhs
	case CmpGt:
		return lhs > rhs
	case CmpGe:
		return lhs >= rhs
	case CmpLt:
		return lhs < rhs
	case CmpLe:
		return lhs <= rhs
	default:
		return false
	}
}

// evalStringCmp performs lexicographic comparison of the string-typed target
// field against the operand. Numeric-looking strings compare as strings
// ("9" > "10"); callers relying on numeric ordering use the integer family.
func (c *Compiled) evalStringCmp(doc *event.Document) bool {
	lhs, err := doc.GetString(c.field)
	if err != nil {
		return false
	}

	rhs := c.operand.Value()
	if c.operand.IsReference() {
		rhs, err = doc.GetString(c.operand.Reference())
		if err != nil {
			return false
		}
	}

	return compareStrings(c.cmp, lhs, rhs)
}

// evalStringEqN compares the first N characters of both sides. Unreadable
// fields evaluate to false with a failure trace embedding the underlying
// error text, so transient data problems stay visible on the trace channel.
func (c *Compiled) evalStringEqN(doc *event.Document) bool {
	lhs, err := doc.GetString(c.field)
	if err != nil {
		c.tracer.Trace(c.failureTrace + ": " + err.Error())
		return false
	}

	rhs := c.operand.Value()
	if c.operand.IsReference() {
		rhs, err = doc.GetString(c.operand.Reference())
		if err != nil {
			c.tracer.Trace(c.failureTrace + ": " + err.Error())
			return false
		}
	}

	return c.traced(prefixOf(lhs, c.prefixN) == prefixOf(rhs, c.prefixN))
}

func prefixOf(s string, n int) string {
	if n < len(s) {
		return s[:n]
	}
	return s
}

func (c *Compiled) evalIntCmp(doc *event.Document) bool {
	lhs, err := doc.GetInt(c.field)
	if err != nil {
		return false
	}

	rhs := c.intValue
	if c.operand.IsReference() {
		rhs, err = doc.GetInt(c.operand.Reference())
		if err != nil {
			return false
		}
	}

	return compareInts(c.cmp, lhs, rhs)
}

// evalRegexMatch succeeds when the pattern matches any substring of the
// string-typed field. It emits no traces; r_not_match traces every outcome.
// The asymmetry is part of the published contract and is preserved verbatim.
func (c *Compiled) evalRegexMatch(doc *event.Document) bool {
	s, err := doc.GetString(c.field)
	if err != nil {
		return false
	}
	return c.re.MatchString(s)
}

// evalRegexNotMatch traces on every outcome; an absent or non-string field
// counts as failure.
func (c *Compiled) evalRegexNotMatch(doc *event.Document) bool {
	s, err := doc.GetString(c.field)
	if err != nil {
		c.tracer.Trace(c.failureTrace)
		return false
	}
	return c.traced(!c.re.MatchString(s))
}

func (c *Compiled) evalIPCIDR(doc *event.Document) bool {
	s, err := doc.GetString(c.field)
	if err != nil {
		c.tracer.Trace(c.failureTrace)
		return false
	}
	ip, err := parseIPv4(s)
	if err != nil {
		c.tracer.Trace(c.failureTrace)
		return false
	}
	return c.traced(ip >= c.netLower && ip <= c.netUpper)
}

// traceMessages pre-formats the success/failure pair once at build time so
// evaluation never formats strings.
func traceMessages(field, raw string) (success, failure string) {
	var b strings.Builder
	b.WriteString("{")
	b.WriteString(field)
	b.WriteString(": ")
	b.WriteString(raw)
	b.WriteString("}")
	prefix := b.String()
	return prefix + " Condition Success", prefix + " Condition Failure"
}
