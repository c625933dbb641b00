// Package testname parses fully-qualified .NET test names into segments.
//
// Test names are whatever string a framework's reflection layer produces, e.g.
//
//	Ns.Fixture("a.b").Test("x,y")
//	Ns.Outer+Inner.Test(typeof(X.Y), '.')
//
// Parsing never fails. Ambiguous input is resolved greedily.
package testname

// View is a half-open [Start, End) range into a source string.
type View struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the view.
func (v View) Len() int {
	return v.End - v.Start
}

// Segment is one dotted component of a name plus its argument suffix.
// Prefix and Brackets are zero-length when absent.
type Segment struct {
	Prefix   View
	Name     View
	Brackets View
}

// HasPrefix reports whether the segment was introduced by a separator.
func (s Segment) HasPrefix() bool {
	return s.Prefix.Len() > 0
}

// HasBrackets reports whether the segment carries a parenthesized suffix.
func (s Segment) HasBrackets() bool {
	return s.Brackets.Len() > 0
}

// Start returns the first byte of the segment, including its prefix.
func (s Segment) Start() int {
	return s.Prefix.Start
}

// End returns the byte just past the segment, including its brackets.
func (s Segment) End() int {
	return s.Brackets.End
}

// ParsedName is a raw name and the segments that cover it end to end.
type ParsedName struct {
	Raw      string
	Segments []Segment
}

// Text materializes a view of the raw name.
func (p ParsedName) Text(v View) string {
	return p.Raw[v.Start:v.End]
}

// Last returns the final segment.
func (p ParsedName) Last() Segment {
	return p.Segments[len(p.Segments)-1]
}

// BareName returns the name of segment i without prefix or brackets.
func (p ParsedName) BareName(i int) string {
	return p.Text(p.Segments[i].Name)
}

// Tail returns the text of segment i from its name through its brackets.
func (p ParsedName) Tail(i int) string {
	s := p.Segments[i]
	return p.Raw[s.Name.Start:s.Brackets.End]
}

// Through returns the raw name up to and including segment i.
func (p ParsedName) Through(i int) string {
	return p.Raw[:p.Segments[i].End()]
}

func isSeparator(c byte) bool {
	return c == '.' || c == '+'
}

// Parse splits raw into segments. Concatenating every segment's extent in
// order reproduces raw exactly.
func Parse(raw string) ParsedName {
	p := ParsedName{Raw: raw}
	pos := 0
	for {
		seg := Segment{}

		seg.Prefix = View{Start: pos, End: pos}
		if len(p.Segments) > 0 && isSeparator(raw[pos]) {
			pos++
			seg.Prefix.End = pos
		}

		start := pos
		for pos < len(raw) && raw[pos] != '(' && !isSeparator(raw[pos]) {
			pos++
		}
		seg.Name = View{Start: start, End: pos}

		seg.Brackets = View{Start: pos, End: pos}
		if pos < len(raw) && raw[pos] == '(' {
			pos = skipGroup(raw, pos)
			seg.Brackets.End = pos
		}

		p.Segments = append(p.Segments, seg)
		if pos >= len(raw) {
			return p
		}
	}
}

// skipGroup consumes a balanced parenthesis group starting at raw[pos] == '('
// and returns the index just past its closing paren, or len(raw) when the
// group is unterminated.
func skipGroup(raw string, pos int) int {
	depth := 0
	for pos < len(raw) {
		switch c := raw[pos]; c {
		case '(':
			depth++
			pos++
		case ')':
			depth--
			pos++
			if depth == 0 {
				return pos
			}
		case '"', '\'':
			pos = skipLiteral(raw, pos)
		default:
			pos++
		}
	}
	return pos
}

// skipLiteral consumes a quoted literal starting at raw[pos] and returns the
// index just past its closing quote, or len(raw) when unterminated.
func skipLiteral(raw string, pos int) int {
	quote := raw[pos]
	pos++
	for pos < len(raw) {
		switch raw[pos] {
		case '\\':
			pos += 2
		case quote:
			return pos + 1
		default:
			pos++
		}
	}
	return len(raw)
}
