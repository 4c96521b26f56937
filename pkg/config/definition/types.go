package definition

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies a value type variant.
type Kind int

const (
	KindBoolean Kind = iota
	KindString
	KindInteger
	KindChoice
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindChoice:
		return "choice"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// ValueType coerces and validates raw values for a setting. Implementations
// are pure: the same raw value always yields the same result.
type ValueType interface {
	Kind() Kind
	Validate(raw any) (any, error)
	Describe() string
}

type booleanType struct{}

// Boolean accepts true/false/1/0 text (any case) and native booleans.
func Boolean() ValueType { return booleanType{} }

func (booleanType) Kind() Kind       { return KindBoolean }
func (booleanType) Describe() string { return "boolean" }

func (t booleanType) Validate(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	}
	return nil, &TypeMismatchError{Value: raw, Expected: t.Describe()}
}

type stringType struct{}

// String accepts any text. Scalars decoded from structured files are
// rendered as their text form.
func String() ValueType { return stringType{} }

func (stringType) Kind() Kind       { return KindString }
func (stringType) Describe() string { return "string" }

func (t stringType) Validate(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32, float64:
		return fmt.Sprintf("%v", v), nil
	}
	return nil, &TypeMismatchError{Value: raw, Expected: t.Describe()}
}

type integerType struct{}

// Integer accepts integer-looking text and native integers.
func Integer() ValueType { return integerType{} }

func (integerType) Kind() Kind       { return KindInteger }
func (integerType) Describe() string { return "integer" }

func (t integerType) Validate(raw any) (any, error) {
	mismatch := &TypeMismatchError{Value: raw, Expected: t.Describe()}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return nil, mismatch
		}
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return nil, mismatch
		}
		return int(v), nil
	case uint:
		if v > math.MaxInt {
			return nil, mismatch
		}
		return int(v), nil
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
		if v != math.Trunc(v) || v >= math.MaxInt || v < math.MinInt {
			return nil, mismatch
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, mismatch
		}
		return n, nil
	}
	return nil, mismatch
}

type choiceType struct {
	choices []string
}

// Choice accepts a value iff it exactly matches one of choices.
func Choice(choices ...string) ValueType {
	return choiceType{choices: slices.Clone(choices)}
}

func (choiceType) Kind() Kind { return KindChoice }

func (t choiceType) Describe() string {
	return fmt.Sprintf("one of {%s}", strings.Join(t.choices, ", "))
}

// Choices returns a copy of the legal values.
func (t choiceType) Choices() []string {
	return slices.Clone(t.choices)
}

func (t choiceType) Validate(raw any) (any, error) {
	v, ok := raw.(string)
	if !ok {
		return nil, &TypeMismatchError{Value: raw, Expected: t.Describe()}
	}
	if !slices.Contains(t.choices, v) {
		return nil, &InvalidChoiceError{Value: v, Choices: t.Choices()}
	}
	return v, nil
}

type listType struct {
	elem ValueType
}

// List accepts a sequence whose elements all pass elem. Text is split on
// commas and newlines; blank entries are dropped, so empty text is an empty
// list.
func List(elem ValueType) ValueType {
	return listType{elem: elem}
}

// ListOfChoice is List(Choice(choices...)).
func ListOfChoice(choices ...string) ValueType {
	return List(Choice(choices...))
}

func (listType) Kind() Kind { return KindList }

func (t listType) Describe() string {
	return "list of " + t.elem.Describe()
}

// Elem returns the element type.
func (t listType) Elem() ValueType {
	return t.elem
}

func (t listType) Validate(raw any) (any, error) {
	items, ok := listItems(raw)
	if !ok {
		return nil, &TypeMismatchError{Value: raw, Expected: t.Describe()}
	}
	coerced := make([]any, 0, len(items))
	for i, item := range items {
		v, err := t.elem.Validate(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		coerced = append(coerced, v)
	}
	return t.collect(coerced), nil
}

func (t listType) collect(values []any) any {
	switch t.elem.Kind() {
	case KindInteger:
		out := make([]int, 0, len(values))
		for _, v := range values {
			out = append(out, v.(int))
		}
		return out
	case KindBoolean:
		out := make([]bool, 0, len(values))
		for _, v := range values {
			out = append(out, v.(bool))
		}
		return out
	case KindList:
		return values
	default:
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, v.(string))
		}
		return out
	}
}

func listItems(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []bool:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = b
		}
		return out, true
	case string:
		return SplitList(v), true
	}
	return nil, false
}

// SplitList splits list text on commas and newlines, trimming entries and
// dropping blank ones.
func SplitList(text string) []any {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ChoicesOf returns the legal values for Choice and List-of-Choice types, or
// nil for every other type.
func ChoicesOf(t ValueType) []string {
	switch v := t.(type) {
	case choiceType:
		return v.Choices()
	case listType:
		return ChoicesOf(v.elem)
	}
	return nil
}

// ElemOf returns the element type of a list type, or nil.
func ElemOf(t ValueType) ValueType {
	if v, ok := t.(listType); ok {
		return v.elem
	}
	return nil
}
