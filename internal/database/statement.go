package database

import "maps"

const (
	pageOffsetParam = "pageOffset"
	pageLimitParam  = "pageLimit"
)

// Page is a structured pagination clause. It is compiled per dialect instead
// of being inferred from OFFSET/FETCH text.
type Page struct {
	Offset int
	Limit  int
}

// Statement is the dialect-neutral form every accessor hands to an Executor:
// SQLServer-flavoured text with @name placeholders, its parameters and an
// optional trailing page clause.
type Statement struct {
	Text       string
	Params     Params
	Positional []any
	Page       *Page
}

// NewStatement builds a statement bound by name.
func NewStatement(text string, params Params) Statement {
	return Statement{Text: text, Params: params}
}

// Paginate returns a copy of s with a page clause appended at compile time.
// The text must already end in an ORDER BY.
func (s Statement) Paginate(offset, limit int) Statement {
	s.Page = &Page{Offset: offset, Limit: limit}
	return s
}

// Compile renders the statement for d.
func (s Statement) Compile(d Dialect) (Translated, error) {
	if s.Page == nil {
		return Translate(d, s.Text, s.Params, s.Positional)
	}

	text := s.Text
	if d == SQLServer {
		text += " OFFSET @" + pageOffsetParam + " ROWS FETCH NEXT @" + pageLimitParam + " ROWS ONLY"
	} else {
		text += " LIMIT @" + pageLimitParam + " OFFSET @" + pageOffsetParam
	}

	if s.Positional != nil {
		positional := append([]any(nil), s.Positional...)
		if d == SQLServer {
			positional = append(positional, s.Page.Offset, s.Page.Limit)
		} else {
			positional = append(positional, s.Page.Limit, s.Page.Offset)
		}
		return Translate(d, text, nil, positional)
	}

	params := make(Params, len(s.Params)+2)
	maps.Copy(params, s.Params)
	params[pageOffsetParam] = s.Page.Offset
	params[pageLimitParam] = s.Page.Limit
	return Translate(d, text, params, nil)
}
