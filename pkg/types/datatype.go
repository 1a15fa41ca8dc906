package types

import (
	"cmp"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// decimalPattern is the plain decimal notation: optional sign, digits with
// an optional fraction, optional exponent. big.Rat alone would also take
// fractions and hex floats.
var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// Datatype names understood by the engine.
const (
	DatatypeString  = "String"
	DatatypeInteger = "Integer"
	DatatypeDecimal = "Decimal"
	DatatypeBoolean = "Boolean"
	DatatypeDate    = "Date"
)

// Datatype parses and orders the textual values of one attribute datatype.
type Datatype struct {
	Name    string
	parse   func(string) (any, error)
	compare func(a, b any) int
	numeric bool
}

var datatypes = map[string]Datatype{
	DatatypeString: {
		Name:    DatatypeString,
		parse:   func(s string) (any, error) { return s, nil },
		compare: func(a, b any) int { return strings.Compare(a.(string), b.(string)) },
	},
	DatatypeInteger: {
		Name: DatatypeInteger,
		parse: func(s string) (any, error) {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, err
			}
			return new(big.Rat).SetInt64(v), nil
		},
		compare: compareRat,
		numeric: true,
	},
	DatatypeDecimal: {
		Name: DatatypeDecimal,
		parse: func(s string) (any, error) {
			if !decimalPattern.MatchString(s) {
				return nil, fmt.Errorf("not a decimal: %q", s)
			}
			r, ok := new(big.Rat).SetString(s)
			if !ok {
				return nil, fmt.Errorf("not a decimal: %q", s)
			}
			return r, nil
		},
		compare: compareRat,
		numeric: true,
	},
	DatatypeBoolean: {
		Name: DatatypeBoolean,
		parse: func(s string) (any, error) {
			switch s {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, fmt.Errorf("not a boolean: %q", s)
		},
		compare: func(a, b any) int {
			ab, bb := a.(bool), b.(bool)
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		},
	},
	DatatypeDate: {
		Name: DatatypeDate,
		parse: func(s string) (any, error) {
			return time.Parse(time.DateOnly, s)
		},
		compare: func(a, b any) int { return a.(time.Time).Compare(b.(time.Time)) },
	},
}

func compareRat(a, b any) int {
	return a.(*big.Rat).Cmp(b.(*big.Rat))
}

// LookupDatatype returns the datatype registered under name.
func LookupDatatype(name string) (Datatype, bool) {
	dt, ok := datatypes[name]
	return dt, ok
}

// IsValidDatatype reports whether name is a registered datatype.
func IsValidDatatype(name string) bool {
	_, ok := datatypes[name]
	return ok
}

// IsParsable reports whether s is a valid textual value of the datatype.
func (d Datatype) IsParsable(s string) bool {
	if d.parse == nil {
		return false
	}
	_, err := d.parse(s)
	return err == nil
}

// Compare orders two textual values. It fails when either value does not
// parse.
func (d Datatype) Compare(a, b string) (int, error) {
	av, err := d.parse(a)
	if err != nil {
		return 0, fmt.Errorf("parsing %q as %s: %w", a, d.Name, err)
	}
	bv, err := d.parse(b)
	if err != nil {
		return 0, fmt.Errorf("parsing %q as %s: %w", b, d.Name, err)
	}
	return d.compare(av, bv), nil
}

// Equal reports value equality under the datatype, falling back to string
// equality for values that do not parse.
func (d Datatype) Equal(a, b string) bool {
	c, err := d.Compare(a, b)
	if err != nil {
		return a == b
	}
	return c == 0
}

// IsNumeric reports whether the datatype supports range steps.
func (d Datatype) IsNumeric() bool {
	return d.numeric
}

// rat parses a numeric value for step arithmetic.
func (d Datatype) rat(s string) (*big.Rat, bool) {
	if !d.numeric {
		return nil, false
	}
	v, err := d.parse(s)
	if err != nil {
		return nil, false
	}
	return v.(*big.Rat), true
}

// compareStrings orders two strings with dt when known and parsable,
// lexically otherwise.
func compareStrings(a, b string, dt Datatype, known bool) int {
	if known {
		if c, err := dt.Compare(a, b); err == nil {
			return c
		}
	}
	return cmp.Compare(a, b)
}
