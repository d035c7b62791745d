package entity

import (
	"fmt"
	"math"
	"reflect"

	"github.com/sesho96/ytsaurus/internal/skiff"
	"github.com/sesho96/ytsaurus/internal/skiff/schema"
)

type encodeFunc func(w *skiff.Writer, v reflect.Value) error
type decodeFunc func(p *skiff.Parser, v reflect.Value) error

type plan struct {
	enc encodeFunc
	dec decodeFunc
	// empty is set when the layout occupies no bytes on the wire.
	empty bool
}

func compile(s *schema.Schema, t reflect.Type, path string) (plan, error) {
	if s.Name != "" {
		if path == "" {
			path = s.Name
		} else {
			path += "." + s.Name
		}
	}
	mismatch := func(reason string) (plan, error) {
		return plan{}, &MismatchError{Path: path, WireType: s.WireType, Type: t, Reason: reason}
	}

	switch s.WireType {
	case schema.Nothing:
		return plan{
			enc:   func(*skiff.Writer, reflect.Value) error { return nil },
			dec:   func(*skiff.Parser, reflect.Value) error { return nil },
			empty: true,
		}, nil
	case schema.Tuple:
		if t.Kind() != reflect.Struct {
			return mismatch("tuple needs a struct")
		}
		return compileTuple(s, t, path)
	case schema.Variant8, schema.Variant16:
		if !s.IsOptional() {
			return mismatch("only variant<nothing, T> maps onto Go types")
		}
		if t.Kind() != reflect.Pointer {
			return mismatch("optional needs a pointer")
		}
		return compileOptional(s, t, path)
	case schema.RepeatedVariant8, schema.RepeatedVariant16:
		if len(s.Children) != 1 {
			return mismatch("only single-alternative repeated variants map onto Go slices")
		}
		if t.Kind() != reflect.Slice {
			return mismatch("repeated variant needs a slice")
		}
		return compileRepeated(s, t, path)
	case schema.Int8, schema.Int16, schema.Int32, schema.Int64:
		if !isInt(t.Kind()) {
			return mismatch("")
		}
		return intPlan(s.WireType), nil
	case schema.Uint8, schema.Uint16, schema.Uint32, schema.Uint64:
		if !isUint(t.Kind()) {
			return mismatch("")
		}
		return uintPlan(s.WireType), nil
	case schema.Double:
		if t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 {
			return mismatch("")
		}
		return plan{
			enc: func(w *skiff.Writer, v reflect.Value) error { return w.WriteDouble(v.Float()) },
			dec: func(p *skiff.Parser, v reflect.Value) error {
				f, err := p.ParseDouble()
				if err != nil {
					return err
				}
				v.SetFloat(f)
				return nil
			},
		}, nil
	case schema.Boolean:
		if t.Kind() != reflect.Bool {
			return mismatch("")
		}
		return plan{
			enc: func(w *skiff.Writer, v reflect.Value) error { return w.WriteBoolean(v.Bool()) },
			dec: func(p *skiff.Parser, v reflect.Value) error {
				b, err := p.ParseBoolean()
				if err != nil {
					return err
				}
				v.SetBool(b)
				return nil
			},
		}, nil
	case schema.String32, schema.Yson32:
		switch {
		case t.Kind() == reflect.String:
			return plan{
				enc: func(w *skiff.Writer, v reflect.Value) error { return w.WriteString(v.String()) },
				dec: func(p *skiff.Parser, v reflect.Value) error {
					b, err := p.ParseString32()
					if err != nil {
						return err
					}
					v.SetString(string(b))
					return nil
				},
			}, nil
		case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
			return plan{
				enc: func(w *skiff.Writer, v reflect.Value) error { return w.WriteString32(v.Bytes()) },
				dec: func(p *skiff.Parser, v reflect.Value) error {
					b, err := p.ParseString32()
					if err != nil {
						return err
					}
					v.SetBytes(b)
					return nil
				},
			}, nil
		default:
			return mismatch("")
		}
	default:
		return mismatch("unknown wire type")
	}
}

func compileTuple(s *schema.Schema, t reflect.Type, path string) (plan, error) {
	columns := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, ok, err := schema.FieldName(t, t.Field(i))
		if err != nil {
			return plan{}, err
		}
		if ok {
			columns[name] = i
		}
	}

	type field struct {
		index int
		plan  plan
	}
	fields := make([]field, 0, len(s.Children))
	empty := true
	for _, child := range s.Children {
		idx, ok := columns[child.Name]
		if !ok {
			return plan{}, &MismatchError{
				Path:     path,
				WireType: s.WireType,
				Type:     t,
				Reason:   fmt.Sprintf("no field for column %q", child.Name),
			}
		}
		p, err := compile(child, t.Field(idx).Type, path)
		if err != nil {
			return plan{}, err
		}
		fields = append(fields, field{index: idx, plan: p})
		empty = empty && p.empty
	}

	return plan{
		enc: func(w *skiff.Writer, v reflect.Value) error {
			for _, f := range fields {
				if err := f.plan.enc(w, v.Field(f.index)); err != nil {
					return err
				}
			}
			return nil
		},
		dec: func(p *skiff.Parser, v reflect.Value) error {
			for _, f := range fields {
				if err := f.plan.dec(p, v.Field(f.index)); err != nil {
					return err
				}
			}
			return nil
		},
		empty: empty,
	}, nil
}

func compileOptional(s *schema.Schema, t reflect.Type, path string) (plan, error) {
	inner, err := compile(s.Children[1], t.Elem(), path)
	if err != nil {
		return plan{}, err
	}
	wide := s.WireType == schema.Variant16
	writeTag := func(w *skiff.Writer, tag uint8) error {
		if wide {
			return w.WriteVariant16Tag(uint16(tag))
		}
		return w.WriteVariant8Tag(tag)
	}
	readTag := func(p *skiff.Parser) (uint16, error) {
		if wide {
			return p.ParseVariant16Tag()
		}
		tag, err := p.ParseVariant8Tag()
		return uint16(tag), err
	}
	elem := t.Elem()

	return plan{
		enc: func(w *skiff.Writer, v reflect.Value) error {
			if v.IsNil() {
				return writeTag(w, 0)
			}
			if err := writeTag(w, 1); err != nil {
				return err
			}
			return inner.enc(w, v.Elem())
		},
		dec: func(p *skiff.Parser, v reflect.Value) error {
			tag, err := readTag(p)
			if err != nil {
				return err
			}
			switch tag {
			case 0:
				v.SetZero()
				return nil
			case 1:
				ptr := reflect.New(elem)
				if err := inner.dec(p, ptr.Elem()); err != nil {
					return err
				}
				v.Set(ptr)
				return nil
			default:
				return fmt.Errorf("%w: %s: optional tag %d", skiff.ErrMalformed, path, tag)
			}
		},
	}, nil
}

func compileRepeated(s *schema.Schema, t reflect.Type, path string) (plan, error) {
	inner, err := compile(s.Children[0], t.Elem(), path)
	if err != nil {
		return plan{}, err
	}
	wide := s.WireType == schema.RepeatedVariant16

	return plan{
		enc: func(w *skiff.Writer, v reflect.Value) error {
			for i := 0; i < v.Len(); i++ {
				var err error
				if wide {
					err = w.WriteVariant16Tag(0)
				} else {
					err = w.WriteVariant8Tag(0)
				}
				if err != nil {
					return err
				}
				if err := inner.enc(w, v.Index(i)); err != nil {
					return err
				}
			}
			if wide {
				return w.WriteVariant16Tag(skiff.EndOfSequence16)
			}
			return w.WriteVariant8Tag(skiff.EndOfSequence8)
		},
		dec: func(p *skiff.Parser, v reflect.Value) error {
			out := reflect.MakeSlice(t, 0, 0)
			for {
				var (
					tag uint16
					end bool
					err error
				)
				if wide {
					tag, err = p.ParseVariant16Tag()
					end = tag == skiff.EndOfSequence16
				} else {
					var t8 uint8
					t8, err = p.ParseVariant8Tag()
					tag, end = uint16(t8), t8 == skiff.EndOfSequence8
				}
				if err != nil {
					return err
				}
				if end {
					break
				}
				if tag != 0 {
					return fmt.Errorf("%w: %s: repeated variant tag %d", skiff.ErrMalformed, path, tag)
				}
				elem := reflect.New(t.Elem()).Elem()
				if err := inner.dec(p, elem); err != nil {
					return err
				}
				out = reflect.Append(out, elem)
			}
			v.Set(out)
			return nil
		},
	}, nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func intPlan(wt schema.WireType) plan {
	var (
		enc func(w *skiff.Writer, x int64) error
		dec func(p *skiff.Parser) (int64, error)
		min int64
		max int64
	)
	switch wt {
	case schema.Int8:
		min, max = math.MinInt8, math.MaxInt8
		enc = func(w *skiff.Writer, x int64) error { return w.WriteInt8(int8(x)) }
		dec = func(p *skiff.Parser) (int64, error) { x, err := p.ParseInt8(); return int64(x), err }
	case schema.Int16:
		min, max = math.MinInt16, math.MaxInt16
		enc = func(w *skiff.Writer, x int64) error { return w.WriteInt16(int16(x)) }
		dec = func(p *skiff.Parser) (int64, error) { x, err := p.ParseInt16(); return int64(x), err }
	case schema.Int32:
		min, max = math.MinInt32, math.MaxInt32
		enc = func(w *skiff.Writer, x int64) error { return w.WriteInt32(int32(x)) }
		dec = func(p *skiff.Parser) (int64, error) { x, err := p.ParseInt32(); return int64(x), err }
	default:
		min, max = math.MinInt64, math.MaxInt64
		enc = func(w *skiff.Writer, x int64) error { return w.WriteInt64(x) }
		dec = func(p *skiff.Parser) (int64, error) { return p.ParseInt64() }
	}
	return plan{
		enc: func(w *skiff.Writer, v reflect.Value) error {
			x := v.Int()
			if x < min || x > max {
				return fmt.Errorf("%w: %d as %s", ErrOverflow, x, wt)
			}
			return enc(w, x)
		},
		dec: func(p *skiff.Parser, v reflect.Value) error {
			x, err := dec(p)
			if err != nil {
				return err
			}
			if v.OverflowInt(x) {
				return fmt.Errorf("%w: value %d overflows %s", skiff.ErrMalformed, x, v.Type())
			}
			v.SetInt(x)
			return nil
		},
	}
}

func uintPlan(wt schema.WireType) plan {
	var (
		enc func(w *skiff.Writer, x uint64) error
		dec func(p *skiff.Parser) (uint64, error)
		max uint64
	)
	switch wt {
	case schema.Uint8:
		max = math.MaxUint8
		enc = func(w *skiff.Writer, x uint64) error { return w.WriteUint8(uint8(x)) }
		dec = func(p *skiff.Parser) (uint64, error) { x, err := p.ParseUint8(); return uint64(x), err }
	case schema.Uint16:
		max = math.MaxUint16
		enc = func(w *skiff.Writer, x uint64) error { return w.WriteUint16(uint16(x)) }
		dec = func(p *skiff.Parser) (uint64, error) { x, err := p.ParseUint16(); return uint64(x), err }
	case schema.Uint32:
		max = math.MaxUint32
		enc = func(w *skiff.Writer, x uint64) error { return w.WriteUint32(uint32(x)) }
		dec = func(p *skiff.Parser) (uint64, error) { x, err := p.ParseUint32(); return uint64(x), err }
	default:
		max = math.MaxUint64
		enc = func(w *skiff.Writer, x uint64) error { return w.WriteUint64(x) }
		dec = func(p *skiff.Parser) (uint64, error) { return p.ParseUint64() }
	}
	return plan{
		enc: func(w *skiff.Writer, v reflect.Value) error {
			x := v.Uint()
			if x > max {
				return fmt.Errorf("%w: %d as %s", ErrOverflow, x, wt)
			}
			return enc(w, x)
		},
		dec: func(p *skiff.Parser, v reflect.Value) error {
			x, err := dec(p)
			if err != nil {
				return err
			}
			if v.OverflowUint(x) {
				return fmt.Errorf("%w: value %d overflows %s", skiff.ErrMalformed, x, v.Type())
			}
			v.SetUint(x)
			return nil
		},
	}
}
