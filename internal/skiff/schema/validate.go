package schema

import (
	"fmt"
	"math"
)

// Validate checks that s is a well-formed row schema: a tuple whose subtree
// uses known wire types with child counts each type allows.
func Validate(s *Schema) error {
	if s == nil || s.WireType != Tuple {
		return ErrNotTuple
	}
	return validateNode(s, "")
}

func validateNode(s *Schema, path string) error {
	here := path
	if s.Name != "" {
		if here == "" {
			here = s.Name
		} else {
			here = here + "." + s.Name
		}
	}
	if !s.WireType.known() {
		return ValidationError{Path: here, Reason: fmt.Sprintf("unknown wire type %q", s.WireType)}
	}
	switch s.WireType {
	case Tuple:
		seen := make(map[string]struct{}, len(s.Children))
		for _, c := range s.Children {
			if c == nil || c.Name == "" {
				continue
			}
			if _, dup := seen[c.Name]; dup {
				return ValidationError{Path: here, Reason: fmt.Sprintf("duplicate field %q", c.Name)}
			}
			seen[c.Name] = struct{}{}
		}
	case Variant8, RepeatedVariant8:
		if len(s.Children) == 0 {
			return ValidationError{Path: here, Reason: "variant without alternatives"}
		}
		// 0xff is reserved as the repeated_variant8 terminator.
		if len(s.Children) > math.MaxUint8 {
			return ValidationError{Path: here, Reason: "too many variant8 alternatives"}
		}
	case Variant16, RepeatedVariant16:
		if len(s.Children) == 0 {
			return ValidationError{Path: here, Reason: "variant without alternatives"}
		}
		if len(s.Children) > math.MaxUint16 {
			return ValidationError{Path: here, Reason: "too many variant16 alternatives"}
		}
	default:
		if len(s.Children) != 0 {
			return ValidationError{Path: here, Reason: "simple type with children"}
		}
	}
	for i, c := range s.Children {
		if c == nil {
			return ValidationError{Path: here, Reason: fmt.Sprintf("nil child %d", i)}
		}
		if err := validateNode(c, here); err != nil {
			return err
		}
	}
	return nil
}
