// Package markdown detects headings in markdown-rendered legal acts.
//
// It recognises ATX headings (#, ##, …) as well as the structural markers
// Polish acts use in running text: "Art. N", "Rozdział N" and "DZIAŁ N".
package markdown

import (
	"regexp"
	"strings"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driven"
)

// Ensure Indexer implements the interface.
var _ driven.SectionIndexer = (*Indexer)(nil)

// headingRE matches one full heading line. Anchored per line so markers
// inside running text ("… zgodnie z Art. 5 …") are not picked up.
var headingRE = regexp.MustCompile(`(?m)^(?:#{1,6}[ \t]+.+|Art\.[ \t]*\d+[a-z]?\.?.*|Rozdział[ \t]+\w+.*|DZIAŁ[ \t]+\w+.*)$`)

// Indexer is a stateless section indexer for markdown text.
type Indexer struct{}

// New creates a markdown section indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index returns the headings found in text, ordered by offset.
// The heading title keeps its source form; ATX markers are stripped.
func (i *Indexer) Index(text string) []domain.Heading {
	locs := headingRE.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	headings := make([]domain.Heading, 0, len(locs))
	for _, loc := range locs {
		line := text[loc[0]:loc[1]]
		title := line
		if strings.HasPrefix(title, "#") {
			title = strings.TrimLeft(title, "#")
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		headings = append(headings, domain.Heading{Title: title, Offset: loc[0]})
	}
	return headings
}
