package supertest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

// Expectation is one check against a Response. Build one with Status, Body,
// StatusAndBody, Header or JSONPath.
type Expectation interface {
	check(r *Response) error
}

type statusExpectation struct {
	code int
}

type bodyExpectation struct {
	want any
}

type statusAndBodyExpectation struct {
	code int
	want any
}

type headerExpectation struct {
	name string
	want any
}

type jsonPathExpectation struct {
	path string
	want any
}

// Status expects the exact status code.
func Status(code int) Expectation {
	return statusExpectation{code: code}
}

// Body expects the body to equal want, compared by value for JSON bodies and as
// text otherwise. A *regexp.Regexp want matches against the body text instead.
func Body(want any) Expectation {
	return bodyExpectation{want: want}
}

// StatusAndBody checks the status first and only compares the body when the status matches.
func StatusAndBody(code int, want any) Expectation {
	return statusAndBodyExpectation{code: code, want: want}
}

// Header expects the named header to equal want, a string, or to match want, a *regexp.Regexp.
// A missing header never satisfies either.
func Header(name string, want any) Expectation {
	return headerExpectation{name: name, want: want}
}

// JSONPath evaluates path against a JSON body and compares the selected value like Body does.
func JSONPath(path string, want any) Expectation {
	return jsonPathExpectation{path: path, want: want}
}

// Assert checks the response against its arguments:
//
//	Assert(200)                  status
//	Assert("text") / Assert(re)  body
//	Assert(200, body)            status, then body
//	Assert("Content-Type", v)    header
//
// A single Expectation argument is checked as is. A mismatch returns an *AssertionError;
// any other number of arguments returns an ErrUsage error.
func (r *Response) Assert(args ...any) error {
	e, err := parseAssertArgs(args)
	if err != nil {
		return err
	}
	return e.check(r)
}

// Check runs a single expectation.
func (r *Response) Check(e Expectation) error {
	if e == nil {
		return usageErrorf("nil expectation")
	}
	return e.check(r)
}

// Verify runs every expectation and returns all failures together as a *multierror.Error.
// Usage errors are returned on their own as soon as they are found.
func (r *Response) Verify(exps ...Expectation) error {
	if len(exps) == 0 {
		return usageErrorf("Verify needs at least one expectation")
	}
	var errs *multierror.Error
	for _, e := range exps {
		err := r.Check(e)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrUsage) {
			return err
		}
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// Expect is Assert for tests: a mismatch or usage error fails t immediately.
// It returns the response so expectations can be chained.
func (r *Response) Expect(t require.TestingT, args ...any) *Response {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	err := r.Assert(args...)
	var failure *AssertionError
	if errors.As(err, &failure) {
		if failure.Diff != "" {
			require.Fail(t, failure.Message, failure.Diff)
		} else {
			require.Fail(t, failure.Message)
		}
		return r
	}
	require.NoError(t, err)
	return r
}

func parseAssertArgs(args []any) (Expectation, error) {
	switch len(args) {
	case 1:
		if e, ok := args[0].(Expectation); ok {
			return e, nil
		}
		if code, ok := asStatus(args[0]); ok {
			return Status(code), nil
		}
		return Body(args[0]), nil
	case 2:
		if code, ok := asStatus(args[0]); ok {
			return StatusAndBody(code, args[1]), nil
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, usageErrorf("Assert header name must be a string, got %T", args[0])
		}
		return Header(name, args[1]), nil
	default:
		return nil, usageErrorf("Assert accepts one or two arguments, got %d", len(args))
	}
}

// asStatus treats any integer kind as a status code.
func asStatus(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	default:
		return 0, false
	}
}

func (e statusExpectation) check(r *Response) error {
	if r.statusCode == e.code {
		return nil
	}
	return failf("expected %s, got %s", inspect(e.code), inspect(r.statusCode))
}

func (e bodyExpectation) check(r *Response) error {
	return compareValue(e.want, r.body, r.bodyText())
}

func (e statusAndBodyExpectation) check(r *Response) error {
	if err := Status(e.code).check(r); err != nil {
		return err
	}
	return Body(e.want).check(r)
}

func (e headerExpectation) check(r *Response) error {
	actual, ok := r.Header(e.name)
	shown := any(undefined{})
	if ok {
		shown = actual
	}

	switch want := e.want.(type) {
	case *regexp.Regexp:
		if want == nil {
			return usageErrorf("nil pattern for header %q", e.name)
		}
		if ok && want.MatchString(actual) {
			return nil
		}
		return failf("expected %s of %s to match %s", inspect(e.name), inspect(shown), inspect(want))
	case string:
		if ok && actual == want {
			return nil
		}
		return failf("expected %s of %s, got %s", inspect(e.name), inspect(want), inspect(shown))
	default:
		return usageErrorf("header %q expectation must be a string or *regexp.Regexp, got %T", e.name, e.want)
	}
}

func (e jsonPathExpectation) check(r *Response) error {
	eval, err := jsonpath.New(e.path)
	if err != nil {
		return usageErrorf("invalid JSON path %q: %v", e.path, err)
	}
	actual, err := eval(context.Background(), r.body)
	if err != nil {
		return failf("expected %s at %s, got undefined", inspect(e.want), e.path)
	}

	text := fmt.Sprint(actual)
	if s, ok := actual.(string); ok {
		text = s
	}
	if err := compareValue(e.want, actual, text); err != nil {
		var failure *AssertionError
		if errors.As(err, &failure) {
			failure.Message = e.path + ": " + failure.Message
		}
		return err
	}
	return nil
}

// compareValue holds the body comparison rules shared by Body and JSONPath.
// text is what a pattern is matched against.
func compareValue(want, actual any, text string) error {
	if re, ok := want.(*regexp.Regexp); ok {
		if re == nil {
			return usageErrorf("nil body pattern")
		}
		if re.MatchString(text) {
			return nil
		}
		return failf("expected %s to match %s", inspect(actual), inspect(re))
	}

	expected, err := normalizeExpected(want)
	if err != nil {
		return usageErrorf("cannot compare body against %T: %v", want, err)
	}
	if cmp.Equal(expected, actual) {
		return nil
	}
	failure := failf("expected %s, got %s", inspect(expected), inspect(actual))
	failure.Diff = valueDiff(expected, actual)
	return failure
}

// normalizeExpected brings an expected value into the shape a decoded JSON body has,
// so map[string]any{"x": 1} and structs compare equal to {"x":1}.
func normalizeExpected(want any) (any, error) {
	switch w := want.(type) {
	case nil:
		return nil, nil
	case string:
		return w, nil
	case []byte:
		return string(w), nil
	default:
		return toPlain(w)
	}
}

func valueDiff(expected, actual any) string {
	es, eok := expected.(string)
	as, aok := actual.(string)
	if eok && aok {
		if !strings.Contains(es, "\n") && !strings.Contains(as, "\n") {
			return ""
		}
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(es),
			B:        difflib.SplitLines(as),
			FromFile: "Expected Body",
			ToFile:   "Actual Body",
			Context:  3,
		})
		return diff
	}
	if isContainer(expected) && isContainer(actual) {
		return cmp.Diff(expected, actual)
	}
	return ""
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// bodyText is what body patterns are matched against: the raw text for every body.
func (r *Response) bodyText() string {
	return string(r.raw)
}
