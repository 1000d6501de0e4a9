package operator

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/c360/streamsift/directive"
	"github.com/c360/streamsift/errors"
	"github.com/c360/streamsift/event"
	"github.com/c360/streamsift/trace"
)

// comparison discriminators by operator suffix, shared by the string and
// integer families (s_eq/i_eq, s_ne/i_ne, ...).
var cmpBySuffix = map[string]Cmp{
	"eq": CmpEq,
	"ne": CmpNe,
	"gt": CmpGt,
	"ge": CmpGe,
	"lt": CmpLt,
	"le": CmpLe,
}

// Build validates and compiles one directive bound to a condition field.
// All validation (operator name, arity, literal syntax, regex and network
// compilation) happens here; the returned Compiled never fails with a
// build-class error at evaluation time.
//
// Build is pure with respect to its inputs: the same field and directive
// always produce an equivalent operator.
func Build(field, rawDirective string, tracer trace.Tracer) (*Compiled, error) {
	if tracer == nil {
		tracer = trace.Nop()
	}

	d, err := directive.Parse(rawDirective)
	if err != nil {
		if be, ok := err.(*errors.BuildError); ok {
			be.Field = field
		}
		return nil, err
	}

	path, err := event.NormalizePath(field)
	if err != nil {
		if be, ok := err.(*errors.BuildError); ok {
			be.Field = field
			be.Directive = rawDirective
		}
		return nil, err
	}

	c := &Compiled{field: path, tracer: tracer}
	c.successTrace, c.failureTrace = traceMessages(field, rawDirective)

	switch d.Name {
	case "exists":
		c.kind = KindExists
		err = requireArity(field, d, 0)
	case "not_exists":
		c.kind = KindNotExists
		err = requireArity(field, d, 0)
	case "s_eq", "s_ne", "s_gt", "s_ge", "s_lt", "s_le":
		c.kind = KindStringCmp
		c.cmp = cmpBySuffix[d.Name[2:]]
		err = buildStringCmp(c, field, d)
	case "s_eq_n":
		c.kind = KindStringEqN
		err = buildStringEqN(c, field, d)
	case "i_eq", "i_ne", "i_gt", "i_ge", "i_lt", "i_le":
		c.kind = KindIntCmp
		c.cmp = cmpBySuffix[d.Name[2:]]
		err = buildIntCmp(c, field, d)
	case "r_match":
		c.kind = KindRegexMatch
		err = buildRegex(c, field, d)
	case "r_not_match":
		c.kind = KindRegexNotMatch
		err = buildRegex(c, field, d)
	case "ip_cidr":
		c.kind = KindIPCIDR
		err = buildIPCIDR(c, field, d)
	default:
		err = errors.NewBuild(errors.ErrMalformedDirective, field, d.Raw,
			fmt.Sprintf("unknown operator %q", d.Name))
	}

	if err != nil {
		return nil, err
	}
	return c, nil
}

func requireArity(field string, d directive.Directive, want int) error {
	if len(d.Args) != want {
		return errors.NewBuild(errors.ErrInvalidArity, field, d.Raw,
			fmt.Sprintf("%s expects %d argument(s), got %d", d.Name, want, len(d.Args)))
	}
	return nil
}

func buildStringCmp(c *Compiled, field string, d directive.Directive) error {
	if err := requireArity(field, d, 1); err != nil {
		return err
	}

	operand, err := directive.ResolveOperand(d.Args[0])
	if err != nil {
		if be, ok := err.(*errors.BuildError); ok {
			be.Field = field
			be.Directive = d.Raw
		}
		return err
	}
	c.operand = operand
	return nil
}

func buildStringEqN(c *Compiled, field string, d directive.Directive) error {
	if err := requireArity(field, d, 2); err != nil {
		return err
	}

	n, err := strconv.Atoi(d.Args[0])
	if err != nil || n < 0 {
		return errors.NewBuild(errors.ErrInvalidIntegerLiteral, field, d.Raw,
			fmt.Sprintf("prefix length %q must be a non-negative integer", d.Args[0]))
	}
	c.prefixN = n

	operand, resErr := directive.ResolveOperand(d.Args[1])
	if resErr != nil {
		if be, ok := resErr.(*errors.BuildError); ok {
			be.Field = field
			be.Directive = d.Raw
		}
		return resErr
	}
	c.operand = operand
	return nil
}

func buildIntCmp(c *Compiled, field string, d directive.Directive) error {
	if err := requireArity(field, d, 1); err != nil {
		return err
	}

	operand, err := directive.ResolveOperand(d.Args[0])
	if err != nil {
		if be, ok := err.(*errors.BuildError); ok {
			be.Field = field
			be.Directive = d.Raw
		}
		return err
	}
	c.operand = operand

	if !operand.IsReference() {
		value, convErr := strconv.ParseInt(operand.Value(), 10, 64)
		if convErr != nil {
			return errors.NewBuild(errors.ErrInvalidIntegerLiteral, field, d.Raw,
				fmt.Sprintf("cannot parse %q as integer", operand.Value()))
		}
		c.intValue = value
	}
	return nil
}

func buildRegex(c *Compiled, field string, d directive.Directive) error {
	if err := requireArity(field, d, 1); err != nil {
		return err
	}

	// Compiled unanchored: a match on any substring of the field value
	// succeeds (partial-match semantics).
	re, err := regexp.Compile(d.Args[0])
	if err != nil {
		return errors.NewBuildCause(errors.ErrRegexCompile, field, d.Raw, err)
	}
	c.re = re
	return nil
}

func buildIPCIDR(c *Compiled, field string, d directive.Directive) error {
	if err := requireArity(field, d, 2); err != nil {
		return err
	}
	if d.Args[0] == "" {
		return errors.NewBuild(errors.ErrInvalidNetworkSpec, field, d.Raw,
			"base address cannot be empty")
	}
	if d.Args[1] == "" {
		return errors.NewBuild(errors.ErrInvalidNetworkSpec, field, d.Raw,
			"mask cannot be empty")
	}

	network, err := parseIPv4(d.Args[0])
	if err != nil {
		return errors.NewBuildCause(errors.ErrInvalidNetworkSpec, field, d.Raw, err)
	}

	mask, err := parseIPv4Mask(d.Args[1])
	if err != nil {
		return errors.NewBuildCause(errors.ErrInvalidNetworkSpec, field, d.Raw, err)
	}

	// Inclusive range precomputed once; evaluation is two integer compares.
	c.netLower = network & mask
	c.netUpper = c.netLower | ^mask
	return nil
}
