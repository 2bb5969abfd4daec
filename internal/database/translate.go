package database

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// Params holds named statement parameters, keyed without the leading '@'.
type Params map[string]any

// Translated is a statement ready for a database/sql driver.
type Translated struct {
	SQL  string
	Args []any
}

var (
	paginationPattern = regexp.MustCompile(`(?i)\bOFFSET\s+(@[A-Za-z_][A-Za-z0-9_]*|\?|\d+)\s+ROWS?\s+FETCH\s+(?:NEXT|FIRST)\s+(@[A-Za-z_][A-Za-z0-9_]*|\?|\d+)\s+ROWS?\s+ONLY\b`)

	identityPattern = regexp.MustCompile(`(?i)\bINT(?:EGER)?\s+IDENTITY\s*\(\s*\d+\s*,\s*\d+\s*\)(?:\s+PRIMARY\s+KEY)?`)
	nowPattern      = regexp.MustCompile(`(?i)\b(?:GETDATE|SYSDATETIME)\s*\(\s*\)`)
	textPattern     = regexp.MustCompile(`(?i)\bN?(?:VAR)?CHAR\b(?:\s*\(\s*(?:\d+|MAX)\s*\))?`)
	bitPattern      = regexp.MustCompile(`(?i)\bBIT\b`)
	datetimePattern = regexp.MustCompile(`(?i)\bDATETIME2?\b(?:\s*\(\s*\d+\s*\))?`)
	isnullPattern   = regexp.MustCompile(`(?i)\bISNULL\s*\(`)
	lenPattern      = regexp.MustCompile(`(?i)\bLEN\s*\(`)
)

// paramToken is one @name occurrence, or a bare '?' marker, outside string
// literals. Bare markers have the name "?".
type paramToken struct {
	name       string
	start, end int
}

// Translate rewrites a SQLServer-dialect statement for the target dialect.
//
// When positional is nil, every @name occurrence is resolved from named in scan
// order and becomes its own bind argument. When positional is given it is used
// as the argument list and @name tokens only mark where placeholders go.
func Translate(d Dialect, query string, named Params, positional []any) (Translated, error) {
	if d == SQLServer {
		return bindNamed(query, named, positional)
	}

	if positional != nil {
		positional = append([]any(nil), positional...)
	}

	// Pagination is rewritten on the source text so the placeholder scan below
	// sees LIMIT before OFFSET. Only an explicit positional list still carries
	// the original order and needs its two entries exchanged.
	if loc := findPagination(query); loc != nil {
		offsetTok := query[loc[2]:loc[3]]
		limitTok := query[loc[4]:loc[5]]
		if positional != nil && isMarker(offsetTok) && isMarker(limitTok) {
			i, j := tokenOrdinal(query, loc[2]), tokenOrdinal(query, loc[4])
			if i >= 0 && j >= 0 && i < len(positional) && j < len(positional) {
				positional[i], positional[j] = positional[j], positional[i]
			}
		}
		query = query[:loc[0]] + "LIMIT " + limitTok + " OFFSET " + offsetTok + query[loc[1]:]
	}

	tokens := scanParams(query)
	args := make([]any, 0, len(tokens))
	switch {
	case positional == nil:
		for _, tok := range tokens {
			if tok.name == "?" {
				return Translated{}, fmt.Errorf("%w: positional marker without positional values", ErrMissingParam)
			}
			v, ok := lookupParam(named, tok.name)
			if !ok {
				return Translated{}, fmt.Errorf("%w: @%s", ErrMissingParam, tok.name)
			}
			args = append(args, v)
		}
	case len(tokens) == 0:
		args = positional
	case len(tokens) != len(positional):
		return Translated{}, fmt.Errorf("statement has %d parameters but %d values were given", len(tokens), len(positional))
	default:
		args = positional
	}

	var b strings.Builder
	last := 0
	for i, tok := range tokens {
		b.WriteString(query[last:tok.start])
		b.WriteString(d.Placeholder(i + 1))
		last = tok.end
	}
	b.WriteString(query[last:])

	out := mapOutsideLiterals(b.String(), func(s string) string { return rewriteSyntax(d, s) })
	for i, a := range args {
		if v, ok := a.(bool); ok {
			args[i] = boolToInt(v)
		}
	}
	return Translated{SQL: out, Args: args}, nil
}

// rewriteSyntax applies the function, type and identifier substitutions.
func rewriteSyntax(d Dialect, s string) string {
	s = identityPattern.ReplaceAllString(s, d.identityColumn())
	s = nowPattern.ReplaceAllString(s, "CURRENT_TIMESTAMP")
	s = textPattern.ReplaceAllString(s, "TEXT")
	s = bitPattern.ReplaceAllString(s, "INTEGER")
	s = datetimePattern.ReplaceAllString(s, d.datetimeType())
	s = isnullPattern.ReplaceAllString(s, "COALESCE(")
	s = lenPattern.ReplaceAllString(s, "LENGTH(")
	return s
}

// bindNamed keeps the text intact and passes every referenced parameter by
// name, which go-mssqldb binds natively.
func bindNamed(query string, named Params, positional []any) (Translated, error) {
	tokens := scanParams(query)
	seen := make(map[string]bool, len(tokens))
	args := make([]any, 0, len(tokens))
	for i, tok := range tokens {
		key := strings.ToLower(tok.name)
		if tok.name == "?" || seen[key] {
			continue
		}
		seen[key] = true

		var v any
		if positional != nil {
			if i >= len(positional) {
				return Translated{}, fmt.Errorf("%w: @%s", ErrMissingParam, tok.name)
			}
			v = positional[i]
		} else {
			var ok bool
			if v, ok = lookupParam(named, tok.name); !ok {
				return Translated{}, fmt.Errorf("%w: @%s", ErrMissingParam, tok.name)
			}
		}
		args = append(args, sql.Named(tok.name, v))
	}
	return Translated{SQL: query, Args: args}, nil
}

func lookupParam(named Params, name string) (any, bool) {
	if v, ok := named[name]; ok {
		return v, true
	}
	for k, v := range named {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// scanParams finds @name tokens and '?' markers, skipping quoted literals,
// comments and @@system variables.
func scanParams(query string) []paramToken {
	var tokens []paramToken
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'' || c == '"':
			i = skipQuoted(query, i, c)
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			for i < len(query) && query[i] != '\n' {
				i++
			}
		case c == '?':
			tokens = append(tokens, paramToken{name: "?", start: i, end: i + 1})
		case c == '@':
			if i+1 < len(query) && query[i+1] == '@' {
				i++
				for i+1 < len(query) && isIdentChar(query[i+1]) {
					i++
				}
				continue
			}
			j := i + 1
			if j >= len(query) || !isIdentStart(query[j]) {
				continue
			}
			for j < len(query) && isIdentChar(query[j]) {
				j++
			}
			tokens = append(tokens, paramToken{name: query[i+1 : j], start: i, end: j})
			i = j - 1
		}
	}
	return tokens
}

// tokenOrdinal returns the index of the parameter token starting at pos.
func tokenOrdinal(query string, pos int) int {
	for i, tok := range scanParams(query) {
		if tok.start == pos {
			return i
		}
	}
	return -1
}

// findPagination returns the submatch indexes of the first OFFSET/FETCH
// clause that is not inside a quoted literal or identifier.
func findPagination(query string) []int {
	for _, loc := range paginationPattern.FindAllStringSubmatchIndex(query, -1) {
		if !quoted(query, loc[0]) {
			return loc
		}
	}
	return nil
}

// quoted reports whether pos falls inside a '...' or "..." span.
func quoted(s string, pos int) bool {
	for i := 0; i < len(s) && i < pos; i++ {
		if s[i] != '\'' && s[i] != '"' {
			continue
		}
		end := skipQuoted(s, i, s[i])
		if pos <= end {
			return true
		}
		i = end
	}
	return false
}

// mapOutsideLiterals applies fn to every segment of s that is not a quoted
// literal or identifier. '...' and "..." spans are copied unchanged and
// [ident] is copied without its brackets.
func mapOutsideLiterals(s string, fn func(string) string) string {
	var b strings.Builder
	last := 0
	for i := 0; i < len(s); i++ {
		var keep string
		end := i
		switch s[i] {
		case '\'', '"':
			end = min(skipQuoted(s, i, s[i]), len(s)-1)
			keep = s[i : end+1]
		case '[':
			j := i + 1
			if j >= len(s) || !isIdentStart(s[j]) {
				continue
			}
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			if j >= len(s) || s[j] != ']' {
				continue
			}
			end = j
			keep = s[i+1 : j]
		default:
			continue
		}
		b.WriteString(fn(s[last:i]))
		b.WriteString(keep)
		last = end + 1
		i = end
	}
	if last < len(s) {
		b.WriteString(fn(s[last:]))
	}
	return b.String()
}

// skipQuoted returns the index of the closing quote, honouring doubled quotes.
func skipQuoted(s string, start int, quote byte) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(s)
}

func isMarker(tok string) bool {
	return tok == "?" || strings.HasPrefix(tok, "@")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
