package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bjaus/speq"
	"github.com/bjaus/speq/reflection"
)

// BookPath identifies a book.
type BookPath struct {
	ID uint64 `json:"id"`
}

// Book is a catalogued book.
type Book struct {
	ID        uint64            `json:"id"`
	Title     string            `json:"title"`
	Authors   []string          `json:"authors"`
	Published time.Time         `json:"published"`
	Rating    *float32          `json:"rating"`
	Labels    map[string]string `json:"labels,omitempty" default:"{}"`
	Format    Format            `json:"format"`
	Audit
}

// Audit is embedded in stored resources.
type Audit struct {
	CreatedBy string    `json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ebook is the payload of the ebook format.
type Ebook struct {
	SizeBytes uint32 `json:"size_bytes"`
	DRM       bool   `json:"drm" default:"false"`
}

// Recording is the payload of the audiobook format.
type Recording struct {
	Narrator string        `json:"narrator"`
	Length   time.Duration `json:"length"`
}

// Format is how a book is published, tagged by "type".
type Format struct{}

func (Format) EnumTag() reflection.EnumTag { return reflection.Internal("type") }

func (Format) EnumVariants() []reflection.Variant {
	return []reflection.Variant{
		reflection.Unit("Paperback").As("paperback"),
		reflection.StructVariant[Ebook]("Ebook").As("ebook"),
		reflection.NewType[Recording]("Audiobook").As("audiobook"),
	}
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T     `json:"items"`
	Next  *string `json:"next"`
}

// ListBooks is the query string of the book listing.
type ListBooks struct {
	Author *string `json:"author"`
	Limit  uint16  `json:"limit" default:"50"`
	Cursor *string `json:"cursor"`
}

// NewBook is the body of a create or replace request.
type NewBook struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Format  Format   `json:"format"`
}

// Problem is the body of every error response.
type Problem struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty" default:"{}"`
}

// Shelf groups books.
type Shelf struct {
	Name  string `json:"name"`
	Books []Book `json:"books"`
	// Related shelves refer back to this type.
	Related []*Shelf `json:"related,omitempty" default:"[]"`
}

// newSampleBuilder registers the bookshelf API.
func newSampleBuilder(logger *slog.Logger) *speq.Builder {
	b := speq.New(
		speq.WithTitle("Bookshelf API"),
		speq.WithVersion("1.0.0"),
		speq.WithLogger(logger),
	)

	v1 := b.Group("/v1", speq.WithGroupName("v1"))

	books := v1.Group("/books", speq.WithGroupDoc("Books in the catalogue."))
	speq.Get(books, "",
		speq.WithName("list_books"),
		speq.WithDoc("List books.\nResults are ordered by title."),
		speq.WithQuery[ListBooks](),
		speq.WithResponse[Page[Book]](http.StatusOK, "a page of books"),
		speq.WithResponse[Problem](http.StatusBadRequest, ""),
	)
	speq.Post(books, "",
		speq.WithName("create_book"),
		speq.WithRequest[NewBook](),
		speq.WithResponse[Book](http.StatusCreated, "the new book"),
		speq.WithResponse[Problem](http.StatusUnprocessableEntity, ""),
	)
	speq.Get(books, "/:id",
		speq.WithName("get_book"),
		speq.WithPath[BookPath](),
		speq.WithResponse[Book](http.StatusOK, ""),
		speq.WithResponse[Problem](http.StatusNotFound, ""),
	)
	speq.Put(books, "/:id",
		speq.WithName("replace_book"),
		speq.WithPath[BookPath](),
		speq.WithRequest[NewBook](),
		speq.WithResponse[Book](http.StatusOK, ""),
		speq.WithResponse[Problem](http.StatusNotFound, ""),
	)
	speq.Delete(books, "/:id",
		speq.WithName("delete_book"),
		speq.WithPath[BookPath](),
		speq.WithEmptyResponse(http.StatusNoContent, "deleted"),
		speq.WithResponse[Problem](http.StatusNotFound, ""),
	)

	speq.Get(v1, "/shelves/{shelf}/books/{id}",
		speq.WithName("shelf_book"),
		speq.WithDoc("Look up a book on a shelf."),
		speq.WithPath[reflection.Tuple2[string, uint64]](),
		speq.WithResponse[reflection.Tuple2[Shelf, Book]](http.StatusOK, "the shelf and the book"),
	)
	speq.Get(v1, "/shelves/{name}",
		speq.WithName("get_shelf"),
		speq.WithPath[string](),
		speq.WithResponse[Shelf](http.StatusOK, ""),
	)

	b.Register(healthRoute)
	return b
}

// Health is the body of the health check.
type Health struct {
	Status  string        `json:"status"`
	Uptime  time.Duration `json:"uptime"`
	Version string        `json:"version"`
}

// healthRoute is registered as a raw provider.
func healthRoute(r *reflection.Registry) (speq.RouteSpec, error) {
	typ, err := reflection.Of[Health](r)
	if err != nil {
		return speq.RouteSpec{}, err
	}
	return speq.RouteSpec{
		Name:      "health",
		Method:    http.MethodGet,
		Path:      "/health",
		Doc:       "Liveness probe.",
		Params:    []speq.ParamSpec{},
		Responses: []speq.ResponseSpec{{Status: http.StatusOK, Description: "healthy", Type: typ}},
	}, nil
}
