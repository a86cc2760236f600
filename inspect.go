package supertest

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// undefined stands in for a value that is not there at all, such as a missing header.
// It renders as the bare word undefined, which keeps it apart from an empty string ('') or null.
type undefined struct{}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// inspect renders a value for assertion messages: strings are single quoted,
// objects read { x: 1 }, arrays read [ 1, 2 ], patterns read /re/.
func inspect(v any) string {
	var sb strings.Builder
	writeInspected(&sb, v)
	return sb.String()
}

func writeInspected(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
		return
	case undefined:
		sb.WriteString("undefined")
		return
	case *regexp.Regexp:
		if x == nil {
			sb.WriteString("null")
			return
		}
		sb.WriteString("/" + x.String() + "/")
		return
	case json.Number:
		sb.WriteString(x.String())
		return
	case []byte:
		sb.WriteString(quote(string(x)))
		return
	}
	writeValue(sb, reflect.ValueOf(v))
}

func writeValue(sb *strings.Builder, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Invalid:
		sb.WriteString("null")
	case reflect.Bool:
		sb.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sb.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		sb.WriteString(formatFloat(rv.Float()))
	case reflect.String:
		sb.WriteString(quote(rv.String()))
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			sb.WriteString("null")
			return
		}
		writeInspected(sb, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			sb.WriteString("null")
			return
		}
		writeArray(sb, rv)
	case reflect.Map:
		if rv.IsNil() {
			sb.WriteString("null")
			return
		}
		writeObject(sb, rv)
	case reflect.Struct:
		plain, err := toPlain(rv.Interface())
		if err != nil {
			fmt.Fprintf(sb, "%+v", rv.Interface())
			return
		}
		writeInspected(sb, plain)
	default:
		fmt.Fprintf(sb, "%v", rv.Interface())
	}
}

func writeArray(sb *strings.Builder, rv reflect.Value) {
	if rv.Len() == 0 {
		sb.WriteString("[]")
		return
	}
	sb.WriteString("[ ")
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeInspected(sb, rv.Index(i).Interface())
	}
	sb.WriteString(" ]")
}

func writeObject(sb *strings.Builder, rv reflect.Value) {
	if rv.Len() == 0 {
		sb.WriteString("{}")
		return
	}
	keys := make([]string, 0, rv.Len())
	values := make(map[string]reflect.Value, rv.Len())
	for _, k := range rv.MapKeys() {
		name := fmt.Sprint(k.Interface())
		keys = append(keys, name)
		values[name] = rv.MapIndex(k)
	}
	sort.Strings(keys)

	sb.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		if identifierPattern.MatchString(k) {
			sb.WriteString(k)
		} else {
			sb.WriteString(quote(k))
		}
		sb.WriteString(": ")
		writeInspected(sb, values[k].Interface())
	}
	sb.WriteString(" }")
}

// quote prefers single quotes and falls back to double quotes when the text
// contains a single quote but no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case rune(q):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}

// formatFloat uses plain notation from 1e-6 up to 1e21
// and exponent notation outside that range, e.g. 1e+21 and 1.5e-7.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-6 && abs < 1e21) || math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

// toPlain converts v into the shapes produced by decoding JSON into an any:
// map[string]any, []any, float64, string, bool and nil.
func toPlain(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}
