package quotes

// Collection keys in the store
const (
	CategoriesKey = "categories"
	QuotesKey     = "quotes"
)

// UnknownAuthor is stored when a quote is saved without an author
const UnknownAuthor = "Unknown"

// Category is a named, colored group of quotes.
// AmountOfQuotes is kept in lockstep with the quote collection by the repositories.
type Category struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Color          string `json:"color"`
	AmountOfQuotes int    `json:"amountOfQuotes"`
	Order          int    `json:"order"`
}

// Quote is a single stored quotation. DateAdded is set once at creation.
type Quote struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	Author     string `json:"author"`
	CategoryID int64  `json:"categoryId"`
	DateAdded  string `json:"dateAdded"`
}
