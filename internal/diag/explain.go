package diag

import (
	"sort"
	"strings"
)

// explanations holds the long-form texts behind `volt explain CODE`.
// Только коды из этой таблицы упоминаются в финальной подсказке после
// сводки ошибок.
var explanations = map[Code]string{
	TypPatArity: `
A pattern attempted to extract an incorrect number of fields from a tuple
struct or tuple variant.

Erroneous code example:

    type Pair struct(int, int)

    fn first(p: Pair) -> int {
        match p {
            Pair(a) => a,
        }
    }

Tuple constructors must be matched with exactly as many fields as their
declaration carries, or fewer together with ` + "`..`" + ` covering the rest:

    match p {
        Pair(a, _) => a,
    }
    match p {
        Pair(a, ..) => a,
    }
`,
	TypFieldBoundTwice: `
A struct pattern bound the same field more than once.

Erroneous code example:

    type Point struct { x: int, y: int }

    match p {
        Point { x: a, x: b, .. } => a,
    }

Each field of a struct may appear at most once in a pattern. Rename one of
the bindings and take the value from the single occurrence.
`,
	TypUnknownField: `
A struct pattern mentioned a field the struct does not declare.

Erroneous code example:

    type Point struct { x: int, y: int }

    match p {
        Point { z: v, .. } => v,
    }

Check the declaration of the matched type for the valid field names. When
the name is close to an existing field, the diagnostic suggests the most
similar unmatched field.
`,
	TypMissingFields: `
A struct pattern omitted fields without acknowledging them.

Erroneous code example:

    type Point struct { x: int, y: int, z: int }

    match p {
        Point { x } => x,
    }

Patterns must either name every field or end with ` + "`..`" + ` to mark the
remaining fields as deliberately ignored:

    match p {
        Point { x, .. } => x,
    }
`,
	TypRangeEndpoint: `
A range pattern used endpoints that are not numeric or character values.

Erroneous code example:

    match flag {
        false..=true => {}
        _ => {}
    }

Range patterns compare by ordered value and are therefore restricted to
integer, float and char endpoints:

    match byte {
        b'a'..=b'z' => {}
        _ => {}
    }
`,
	TypDerefContract: `
A pattern tried to look through a pointer to a contract object.

Erroneous code example:

    contract Drawable {}

    fn f(d: &Drawable) {
        match d {
            &val => {}
        }
    }

The concrete type behind a contract object is erased at the boundary, so a
pattern cannot take the pointee apart; its size and layout are unknown.
Match on the pointer itself or convert the value to a concrete type first.
`,
	TypExpectedTupleCtor: `
A tuple-style pattern used a path that does not name a tuple constructor.

Erroneous code example:

    type Color enum { Red, Green, Blue }

    match c {
        Color::Red(i) => {}
        _ => {}
    }

Only tuple structs and tuple enum variants can be matched with
parenthesised field lists. Unit variants are matched bare and struct
variants with braces:

    match c {
        Color::Red => {}
        _ => {}
    }
`,
	TypMismatch: `
The type of a pattern did not agree with the type of the value being
matched.

Erroneous code example:

    match 1 {
        "one" => {}
        _ => {}
    }

Every pattern in a match must be able to accept the scrutinee's type. Check
the scrutinee expression and the pattern shapes; reference patterns require
reference scrutinees, literal patterns must share the literal's type, and
so on.
`,
	TypSliceCount: `
An array pattern listed a different number of elements than the array type
provides.

Erroneous code example:

    fn f(a: [int; 3]) {
        match a {
            [x, y] => {}
        }
    }

Match every element, or use ` + "`..`" + ` to skip the middle:

    match a {
        [x, y, z] => {}
    }
    match a {
        [first, .., last] => {}
    }
`,
	TypSliceMin: `
An array pattern with ` + "`..`" + ` still listed more concrete elements
than the array can supply.

Erroneous code example:

    fn f(a: [int; 2]) {
        match a {
            [x, y, z, ..] => {}
        }
    }

The fixed elements before and after ` + "`..`" + ` must fit inside the
array's length.
`,
	TypExpectedSlice: `
A slice-style pattern was applied to a value that is neither an array nor a
slice.

Erroneous code example:

    match 5 {
        [x] => {}
        _ => {}
    }

Slice patterns require the scrutinee to have type ` + "`[T; N]` or `[T]`" + `.
When the scrutinee is a reference to an array or slice, dereference it with
a ` + "`&`" + ` pattern first.
`,
	TypNonExhaustive: `
A struct pattern matched a type marked @non_exhaustive from another file
without acknowledging possible future fields.

Erroneous code example:

    // geometry.vt
    @non_exhaustive
    type Config struct { width: int }

    // main.vt
    match cfg {
        Config { width } => width,
    }

A non-exhaustive type reserves the right to grow more fields. Outside its
defining file the pattern must carry ` + "`..`" + `:

    match cfg {
        Config { width, .. } => width,
    }
`,
}

// Explain returns the long-form explanation for a code.
func Explain(c Code) (string, bool) {
	text, ok := explanations[c]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(text) + "\n", true
}

// HasExplanation reports whether `volt explain` knows the code.
func HasExplanation(c Code) bool {
	_, ok := explanations[c]
	return ok
}

// ExplainableCodes returns the sorted list of codes with registered texts.
func ExplainableCodes() []Code {
	out := make([]Code, 0, len(explanations))
	for c := range explanations {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
