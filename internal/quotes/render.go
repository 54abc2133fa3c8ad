package quotes

import (
	"fmt"
	"strings"
	"time"
)

// Attribution closes every shared quote
const Attribution = "Shared from Kwoatle"

// Renderer formats quotes and categories as readable text
type Renderer struct {
	attribution string
}

// NewRenderer creates a new quote renderer
func NewRenderer() *Renderer {
	return &Renderer{attribution: Attribution}
}

// RenderOptions contains options for rendering a quote
type RenderOptions struct {
	Quote       *Quote
	IncludeID   bool
	IncludeDate bool
}

// RenderResult contains the rendered quote text
type RenderResult struct {
	Text string
}

// Render formats a quote as `"text"` followed by a dash line with the author.
func (r *Renderer) Render(opts RenderOptions) (*RenderResult, error) {
	if opts.Quote == nil {
		return nil, fmt.Errorf("cannot render nil quote")
	}

	q := opts.Quote
	var b strings.Builder

	if opts.IncludeID {
		fmt.Fprintf(&b, "#%d\n", q.ID)
	}
	fmt.Fprintf(&b, "\"%s\"\n— %s", q.Text, authorName(q.Author))
	if opts.IncludeDate {
		fmt.Fprintf(&b, "\n%s", FormatDate(q.DateAdded))
	}

	return &RenderResult{Text: b.String()}, nil
}

// ShareText builds the text payload handed to the share collaborator
func (r *Renderer) ShareText(q Quote) string {
	return fmt.Sprintf("\"%s\" \n— %s\n\n%s", q.Text, authorName(q.Author), r.attribution)
}

// RenderCategories lists categories one per line with their id and quote count
func (r *Renderer) RenderCategories(cats []Category) string {
	if len(cats) == 0 {
		return "No categories yet."
	}

	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		lines = append(lines, fmt.Sprintf("%d. %s (%s) · %s · id %d",
			c.Order+1, c.Title, c.Color, pluralQuotes(c.AmountOfQuotes), c.ID))
	}
	return strings.Join(lines, "\n")
}

// RenderQuotes lists the quotes of one category, each with its id and date
func (r *Renderer) RenderQuotes(cat Category, quotes []Quote) string {
	if len(quotes) == 0 {
		return fmt.Sprintf("%s has no quotes yet.", cat.Title)
	}

	parts := make([]string, 0, len(quotes)+1)
	parts = append(parts, fmt.Sprintf("%s · %s", cat.Title, pluralQuotes(len(quotes))))
	for i := range quotes {
		rendered, err := r.Render(RenderOptions{Quote: &quotes[i], IncludeID: true, IncludeDate: true})
		if err != nil {
			continue
		}
		parts = append(parts, rendered.Text)
	}
	return strings.Join(parts, "\n\n")
}

// FormatDate renders a stored dateAdded as "Jan 2, 2006", or "Unknown date"
func FormatDate(dateAdded string) string {
	t, err := time.Parse(time.RFC3339Nano, dateAdded)
	if err != nil {
		return "Unknown date"
	}
	return t.Format("Jan 2, 2006")
}

func authorName(author string) string {
	if strings.TrimSpace(author) == "" {
		return UnknownAuthor
	}
	return author
}

func pluralQuotes(n int) string {
	if n == 1 {
		return "1 quote"
	}
	return fmt.Sprintf("%d quotes", n)
}
