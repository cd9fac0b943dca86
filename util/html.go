package util

import (
	"strings"

	"golang.org/x/net/html"
)

// Excerpt extracts the text content from an HTML fragment and truncates it
// to maxRunes. Headings are skipped because teaser cards render the title
// separately. It gives up after roughly 8000 bytes of input.
func Excerpt(input string, maxRunes int) string {

	tokenizer := html.NewTokenizerFragment(strings.NewReader(input), "body")
	tokenizer.SetMaxBuf(8192)

	var text strings.Builder
	var offset = 0
	var skipDepth = 0

	for {

		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // assuming tokenizer.Err() == io.EOF
		}

		tagNameBytes, _ := tokenizer.TagName()
		tagName := string(tagNameBytes)

		switch tt {
		case html.StartTagToken:
			if isHeading(tagName) {
				skipDepth++
			}
		case html.EndTagToken:
			if isHeading(tagName) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				if text.Len() > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(strings.TrimSpace(string(tokenizer.Text())))
			}
		}

		offset += len(tokenizer.Raw())
		if offset > 8000 {
			break
		}
	}

	return Trunc(text.String(), maxRunes)
}

func isHeading(tagName string) bool {
	switch tagName {
	case "h1", "h2", "h3", "h4":
		return true
	}
	return false
}
