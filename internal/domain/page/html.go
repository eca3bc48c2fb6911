package page

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extract returns the document title and its visible text with whitespace collapsed.
// Script and style contents are dropped.
func Extract(r io.Reader) (title, text string, err error) {
	z := html.NewTokenizer(r)

	var (
		b       strings.Builder
		hidden  int
		inTitle bool
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return strings.Join(strings.Fields(title), " "), strings.Join(strings.Fields(b.String()), " "), nil
			}
			return "", "", z.Err()

		case html.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				hidden++
			case atom.Title:
				inTitle = true
			}
			b.WriteByte(' ')

		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if hidden > 0 {
					hidden--
				}
			case atom.Title:
				inTitle = false
			}
			b.WriteByte(' ')

		case html.SelfClosingTagToken:
			b.WriteByte(' ')

		case html.TextToken:
			if hidden > 0 {
				continue
			}
			t := string(z.Text())
			if inTitle && title == "" {
				title = t
			}
			b.WriteString(t)

		case html.CommentToken, html.DoctypeToken:
		}
	}
}
