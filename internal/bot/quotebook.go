package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/graffic/kwoatle-go/internal/quotes"
)

// QuoteBookCommands exposes the quote book over chat commands
type QuoteBookCommands struct {
	book     *quotes.Book
	renderer *quotes.Renderer
	registry *Registry
}

// NewQuoteBookCommands creates the command set for book
func NewQuoteBookCommands(book *quotes.Book, renderer *quotes.Renderer) *QuoteBookCommands {
	return &QuoteBookCommands{book: book, renderer: renderer}
}

// Register adds every quote book command to registry
func (c *QuoteBookCommands) Register(registry *Registry) {
	c.registry = registry

	registry.Register("categories", "List categories", CommandFunc(c.categories))
	registry.Register("newcategory", "Create a category: <title> [| color]", CommandFunc(c.newCategory))
	registry.Register("editcategory", "Edit a category: <id> <title> [| color]", CommandFunc(c.editCategory))
	registry.Register("reorder", "Reorder categories: <id> <id> ...", CommandFunc(c.reorder))
	registry.Register("delcategory", "Delete a category and its quotes: <id>", CommandFunc(c.deleteCategory))
	registry.Register("quotes", "List the quotes of a category: <categoryId>", CommandFunc(c.listQuotes))
	registry.Register("addquote", "Add a quote: <categoryId> <text> [| author]", CommandFunc(c.addQuote))
	registry.Register("editquote", "Edit a quote: <id> <text> [| author]", CommandFunc(c.editQuote))
	registry.Register("delquote", "Delete a quote: <id>", CommandFunc(c.deleteQuote))
	registry.Register("share", "Share a quote: <id>", CommandFunc(c.share))
	registry.Register("help", "Show available commands", CommandFunc(c.help))
}

func (c *QuoteBookCommands) categories(ctx context.Context, msg *models.Message) (string, error) {
	cats, err := c.book.Categories.List(ctx)
	if err != nil {
		return "", err
	}
	return c.renderer.RenderCategories(cats), nil
}

func (c *QuoteBookCommands) newCategory(ctx context.Context, msg *models.Message) (string, error) {
	const usage = "/newcategory <title> [| color]"

	title, color := splitPipe(commandArgs(msg.Text))
	if title == "" {
		return "", &UsageError{Usage: usage}
	}

	cat, err := c.book.Categories.Create(ctx, title, color)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Category %q created (id %d).", cat.Title, cat.ID), nil
}

func (c *QuoteBookCommands) editCategory(ctx context.Context, msg *models.Message) (string, error) {
	const usage = "/editcategory <id> <title> [| color]"

	word, rest := nextWord(commandArgs(msg.Text))
	id, err := parseID(word, usage)
	if err != nil {
		return "", err
	}
	title, color := splitPipe(rest)
	if title == "" {
		return "", &UsageError{Usage: usage}
	}

	ok, err := c.book.Categories.Update(ctx, id, title, color)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &quotes.NotFoundError{Entity: "category", ID: id}
	}
	return "Category updated.", nil
}

func (c *QuoteBookCommands) reorder(ctx context.Context, msg *models.Message) (string, error) {
	ids, err := parseIDs(commandArgs(msg.Text), "/reorder <id> <id> ...")
	if err != nil {
		return "", err
	}

	if err := c.book.Categories.Reorder(ctx, ids); err != nil {
		return "", err
	}
	return "Categories reordered.", nil
}

func (c *QuoteBookCommands) deleteCategory(ctx context.Context, msg *models.Message) (string, error) {
	id, err := parseID(commandArgs(msg.Text), "/delcategory <id>")
	if err != nil {
		return "", err
	}

	ok, err := c.book.Categories.Remove(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &quotes.NotFoundError{Entity: "category", ID: id}
	}
	return "Category deleted together with its quotes.", nil
}

func (c *QuoteBookCommands) listQuotes(ctx context.Context, msg *models.Message) (string, error) {
	id, err := parseID(commandArgs(msg.Text), "/quotes <categoryId>")
	if err != nil {
		return "", err
	}

	cat, err := c.book.Categories.Get(ctx, id)
	if err != nil {
		return "", err
	}
	list, err := c.book.Quotes.ListByCategory(ctx, id)
	if err != nil {
		return "", err
	}
	return c.renderer.RenderQuotes(cat, list), nil
}

func (c *QuoteBookCommands) addQuote(ctx context.Context, msg *models.Message) (string, error) {
	const usage = "/addquote <categoryId> <text> [| author]"

	word, rest := nextWord(commandArgs(msg.Text))
	categoryID, err := parseID(word, usage)
	if err != nil {
		return "", err
	}
	text, author := splitPipe(rest)
	if text == "" {
		return "", &UsageError{Usage: usage}
	}

	q, err := c.book.Quotes.Create(ctx, categoryID, text, author)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Quote #%d added.", q.ID), nil
}

func (c *QuoteBookCommands) editQuote(ctx context.Context, msg *models.Message) (string, error) {
	const usage = "/editquote <id> <text> [| author]"

	word, rest := nextWord(commandArgs(msg.Text))
	id, err := parseID(word, usage)
	if err != nil {
		return "", err
	}
	text, author := splitPipe(rest)
	if text == "" {
		return "", &UsageError{Usage: usage}
	}

	ok, err := c.book.Quotes.Update(ctx, id, text, author)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &quotes.NotFoundError{Entity: "quote", ID: id}
	}
	return "Quote updated.", nil
}

func (c *QuoteBookCommands) deleteQuote(ctx context.Context, msg *models.Message) (string, error) {
	id, err := parseID(commandArgs(msg.Text), "/delquote <id>")
	if err != nil {
		return "", err
	}

	ok, err := c.book.Quotes.Remove(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &quotes.NotFoundError{Entity: "quote", ID: id}
	}
	return "Quote deleted.", nil
}

func (c *QuoteBookCommands) share(ctx context.Context, msg *models.Message) (string, error) {
	id, err := parseID(commandArgs(msg.Text), "/share <id>")
	if err != nil {
		return "", err
	}

	q, err := c.book.Quotes.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return c.renderer.ShareText(q), nil
}

func (c *QuoteBookCommands) help(ctx context.Context, msg *models.Message) (string, error) {
	cmds := c.registry.BotCommands()

	lines := make([]string, 0, len(cmds)+1)
	lines = append(lines, fmt.Sprintf("Kwoatle understands %s:", plural(len(cmds), "command")))
	for _, cmd := range cmds {
		lines = append(lines, fmt.Sprintf("/%s - %s", cmd.Command, cmd.Description))
	}
	return strings.Join(lines, "\n"), nil
}
