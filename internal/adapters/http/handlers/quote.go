package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteHandler handles quote collection HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler wraps the application service for gin.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// QuoteResponse is the wire shape of a single quote.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// toQuoteResponse converts a domain Quote to an HTTP response.
func toQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		Text:     q.Text,
		Category: q.Category,
	}
}

// AddQuoteRequest is the payload for creating a quote.
type AddQuoteRequest struct {
	Text     string `json:"text" validate:"required,notempty"`
	Category string `json:"category" validate:"required,notempty"`
}

// FilterRequest is the payload for setting the active category filter.
type FilterRequest struct {
	Category string `json:"category" validate:"required,notempty"`
}

// FilterResponse reports the active category filter.
type FilterResponse struct {
	Category string `json:"category"`
}

// CategoriesResponse lists the distinct categories in the collection.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ImportResponse reports the outcome of an import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// ListQuotes handles GET /api/v1/quotes
// Returns a page of quotes, optionally narrowed to a category.
//
// @Summary List quotes
// @Description Returns quotes from the collection, newest last
// @Tags quotes
// @Produce json
// @Param category query string false "Category to filter by, 'all' for everything"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size (1-100, default 20)"
// @Success 200 {object} dto.PaginatedResponse[QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var page dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &page); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	offset, err := page.Offset()
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("cursor", "malformed pagination cursor"))
		return
	}

	quotes := h.service.ListQuotes(c.Request.Context(), c.Query("category"))

	items := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, toQuoteResponse(q))
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(items, offset, page.GetLimit()))
}

// AddQuote handles POST /api/v1/quotes
// Appends a quote to the collection.
//
// @Summary Add a quote
// @Description Validates and persists a new quote
// @Tags quotes
// @Accept json
// @Produce json
// @Success 201 {object} QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	quote, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toQuoteResponse(quote))
}

// RandomQuote handles GET /api/v1/quotes/random
// Returns a random quote, drawn from the given category or from the
// active filter when no category is given.
//
// @Summary Get a random quote
// @Description Picks a random quote from the category or the active filter
// @Tags quotes
// @Produce json
// @Param category query string false "Category to draw from"
// @Success 200 {object} QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	quote, err := h.service.RandomQuote(c.Request.Context(), c.Query("category"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// ListCategories handles GET /api/v1/quotes/categories
// Returns the distinct categories present in the collection.
//
// @Summary List categories
// @Description Returns the sorted distinct categories
// @Tags quotes
// @Produce json
// @Success 200 {object} CategoriesResponse
// @Router /api/v1/quotes/categories [get]
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	categories := h.service.ListCategories(c.Request.Context())

	c.JSON(http.StatusOK, CategoriesResponse{Categories: categories})
}

// ExportQuotes handles GET /api/v1/quotes/export
// Serves the whole collection as a pretty-printed JSON download.
//
// @Summary Export the collection
// @Description Downloads the collection as a JSON file
// @Tags quotes
// @Produce json
// @Success 200 {array} QuoteResponse
// @Router /api/v1/quotes/export [get]
func (h *QuoteHandler) ExportQuotes(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="quotes.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportQuotes handles POST /api/v1/quotes/import
// Appends quotes from an exported JSON array. The body must be a JSON
// array; its elements are appended as they come.
//
// @Summary Import quotes
// @Description Appends a JSON array of quotes to the collection
// @Tags quotes
// @Accept json
// @Produce json
// @Success 200 {object} ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes/import [post]
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("data", "request body could not be read"))
		return
	}

	report, err := h.service.Import(c.Request.Context(), data)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		Imported: report.Imported,
		Total:    report.Total,
	})
}

// GetFilter handles GET /api/v1/quotes/filter
// Returns the active category filter.
//
// @Summary Get the active filter
// @Description Returns the persisted category filter
// @Tags quotes
// @Produce json
// @Success 200 {object} FilterResponse
// @Router /api/v1/quotes/filter [get]
func (h *QuoteHandler) GetFilter(c *gin.Context) {
	category := h.service.ActiveFilter(c.Request.Context())

	c.JSON(http.StatusOK, FilterResponse{Category: category})
}

// SetFilter handles PUT /api/v1/quotes/filter
// Sets and persists the active category filter.
//
// @Summary Set the active filter
// @Description Persists the category filter used by random quote draws
// @Tags quotes
// @Accept json
// @Produce json
// @Success 200 {object} FilterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quotes/filter [put]
func (h *QuoteHandler) SetFilter(c *gin.Context) {
	var req FilterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindingError(c, err)
		return
	}

	if err := h.service.SetFilter(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, FilterResponse{Category: req.Category})
}

// RegisterQuoteRoutes registers quote routes on the given router group.
// Middleware passed in mutating guards the write endpoints.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.GET("/random", h.RandomQuote)
	quotes.GET("/categories", h.ListCategories)
	quotes.GET("/export", h.ExportQuotes)
	quotes.GET("/filter", h.GetFilter)

	guarded := quotes.Group("", mutating...)
	guarded.POST("", h.AddQuote)
	guarded.POST("/import", h.ImportQuotes)
	guarded.PUT("/filter", h.SetFilter)
}
