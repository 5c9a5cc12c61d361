package pegparser

import (
	"fmt"
	"io"
	"strings"

	"go.trai.ch/zerr"
)

// ErrSyntax is the sentinel wrapped by every *ParseError.
var ErrSyntax = zerr.New("pbxproj syntax error")

// ParseError points at the byte where parsing stopped.
type ParseError struct {
	Filename string
	Line     int
	Col      int
	Msg      string
}

func (e *ParseError) Error() string {
	name := e.Filename
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", name, e.Line, e.Col, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

// ParseReader parses an old-style (OpenStep) property list as written by
// Xcode into an Object with two keys: headComment, the text of the leading
// `// !$*UTF8*$!` line, and project, the root dictionary. Scalars keep their
// raw spelling, quotes included, so they can be written back unchanged. The
// project's objects dictionary is regrouped into one section per isa.
func ParseReader(filename string, r io.Reader) (interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read project data")
	}

	p := &parser{filename: filename, src: data}
	contents, err := p.parseDocument()
	if err != nil {
		return nil, err
	}

	project := contents.GetObject("project")
	if objects, ok := project.Get("objects"); ok {
		if obj, ok := objects.(Object); ok {
			project.Set("objects", groupByIsa(obj))
		}
	}
	return contents, nil
}

type parser struct {
	filename string
	src      []byte
	pos      int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	line, col := 1, 1
	for i := 0; i < p.pos && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseError{
		Filename: p.filename,
		Line:     line,
		Col:      col,
		Msg:      fmt.Sprintf(format, args...),
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(prefix string) bool {
	return strings.HasPrefix(string(p.src[p.pos:min(len(p.src), p.pos+len(prefix))]), prefix)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

// readComment consumes one block or line comment at the cursor and returns
// its trimmed text.
func (p *parser) readComment() (string, bool, error) {
	switch {
	case p.hasPrefix("/*"):
		start := p.pos + 2
		end := strings.Index(string(p.src[start:]), "*/")
		if end < 0 {
			return "", false, p.errorf("unterminated comment")
		}
		p.pos = start + end + 2
		return strings.TrimSpace(string(p.src[start : start+end])), true, nil
	case p.hasPrefix("//"):
		start := p.pos + 2
		for !p.eof() && p.src[p.pos] != '\n' {
			p.pos++
		}
		return strings.TrimSpace(string(p.src[start:p.pos])), true, nil
	}
	return "", false, nil
}

func (p *parser) skipSpaceAndComments() error {
	for {
		p.skipSpace()
		_, ok, err := p.readComment()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// trailingComment reads the comments between a token and the next
// punctuation. The last one wins.
func (p *parser) trailingComment() (string, error) {
	comment := ""
	for {
		p.skipSpace()
		text, ok, err := p.readComment()
		if err != nil {
			return "", err
		}
		if !ok {
			return comment, nil
		}
		comment = text
	}
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		if p.eof() {
			return p.errorf("expected %q, found end of input", c)
		}
		return p.errorf("expected %q, found %q", c, p.peek())
	}
	p.pos++
	return nil
}

func (p *parser) parseDocument() (Object, error) {
	contents := NewObject()

	p.skipSpace()
	if p.hasPrefix("//") {
		head, _, _ := p.readComment()
		contents.Set("headComment", head)
	}
	if err := p.skipSpaceAndComments(); err != nil {
		return contents, err
	}
	if p.peek() != '{' {
		return contents, p.errorf("expected root dictionary")
	}

	project, err := p.parseDict()
	if err != nil {
		return contents, err
	}
	contents.Set("project", project)

	if err := p.skipSpaceAndComments(); err != nil {
		return contents, err
	}
	if !p.eof() {
		return contents, p.errorf("unexpected %q after root dictionary", p.peek())
	}
	return contents, nil
}

func (p *parser) parseValue() (interface{}, error) {
	switch p.peek() {
	case '{':
		return p.parseDict()
	case '(':
		return p.parseArray()
	default:
		return p.parseString()
	}
}

func (p *parser) parseDict() (Object, error) {
	obj := NewObject()
	if err := p.expect('{'); err != nil {
		return obj, err
	}

	for {
		if err := p.skipSpaceAndComments(); err != nil {
			return obj, err
		}
		if p.peek() == '}' {
			p.pos++
			return obj, nil
		}
		if p.eof() {
			return obj, p.errorf("unterminated dictionary")
		}

		key, err := p.parseString()
		if err != nil {
			return obj, err
		}
		keyComment, err := p.trailingComment()
		if err != nil {
			return obj, err
		}
		if err := p.expect('='); err != nil {
			return obj, err
		}
		if err := p.skipSpaceAndComments(); err != nil {
			return obj, err
		}

		value, err := p.parseValue()
		if err != nil {
			return obj, err
		}
		valueComment, err := p.trailingComment()
		if err != nil {
			return obj, err
		}
		if err := p.expect(';'); err != nil {
			return obj, err
		}

		obj.Set(key, value)
		switch {
		case valueComment != "":
			obj.Set(CommentKey(key), valueComment)
		case keyComment != "":
			obj.Set(CommentKey(key), keyComment)
		}
	}
}

func (p *parser) parseArray() ([]interface{}, error) {
	list := []interface{}{}
	if err := p.expect('('); err != nil {
		return list, err
	}

	for {
		if err := p.skipSpaceAndComments(); err != nil {
			return list, err
		}
		if p.peek() == ')' {
			p.pos++
			return list, nil
		}
		if p.eof() {
			return list, p.errorf("unterminated array")
		}

		value, err := p.parseValue()
		if err != nil {
			return list, err
		}
		comment, err := p.trailingComment()
		if err != nil {
			return list, err
		}

		if str, ok := value.(string); ok && comment != "" {
			list = append(list, NewObjectWithData([]ObjectItem{
				NewObjectItem("value", str),
				NewObjectItem("comment", comment),
			}))
		} else {
			list = append(list, value)
		}

		switch p.peek() {
		case ',':
			p.pos++
		case ')':
		default:
			if p.eof() {
				return list, p.errorf("unterminated array")
			}
			return list, p.errorf("expected ',' or ')', found %q", p.peek())
		}
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case '{', '}', '(', ')', ';', '=', ',', '"':
		return true
	}
	return isSpace(c)
}

// parseString reads a quoted string (returned with its quotes and escapes
// untouched) or a bare word.
func (p *parser) parseString() (string, error) {
	start := p.pos
	if p.peek() == '"' {
		p.pos++
		for {
			if p.eof() {
				p.pos = start
				return "", p.errorf("unterminated quoted string")
			}
			switch p.src[p.pos] {
			case '\\':
				p.pos += 2
				continue
			case '"':
				p.pos++
				return string(p.src[start:p.pos]), nil
			}
			p.pos++
		}
	}

	for !p.eof() && !isDelimiter(p.src[p.pos]) && !p.hasPrefix("/*") && !p.hasPrefix("//") {
		p.pos++
	}
	if p.pos == start {
		if p.eof() {
			return "", p.errorf("unexpected end of input")
		}
		return "", p.errorf("unexpected %q", p.peek())
	}
	return string(p.src[start:p.pos]), nil
}

// groupByIsa turns the flat objects dictionary into
// `isa -> id -> object`, keeping first-seen order of both.
func groupByIsa(objects Object) Object {
	sections := NewObject()
	objects.Foreach(func(key string, val interface{}) IterateActionType {
		if IsCommentKey(key) {
			return IterateActionContinue
		}
		obj, ok := val.(Object)
		if !ok {
			return IterateActionContinue
		}
		isa := obj.GetString("isa")
		section := sections.GetObject(isa)
		if !sections.Has(isa) {
			sections.Set(isa, section)
		}
		section.Set(key, obj)
		if comment, ok := objects.Get(CommentKey(key)); ok {
			section.Set(CommentKey(key), comment)
		}
		return IterateActionContinue
	})
	return sections
}
