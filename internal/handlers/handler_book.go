package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gncbooks/gncledger/internal/apperrors"
	portssvc "github.com/gncbooks/gncledger/internal/core/ports/services"
	"github.com/gncbooks/gncledger/internal/dto"
	"github.com/gncbooks/gncledger/internal/gncxml"
	"github.com/gncbooks/gncledger/internal/middleware"
	"github.com/gncbooks/gncledger/internal/platform/config"
)

// bookHandler handles HTTP requests related to books and imports.
type bookHandler struct {
	importService portssvc.ImportSvcFacade
	ledgerService portssvc.LedgerSvcFacade
}

func newBookHandler(is portssvc.ImportSvcFacade, ls portssvc.LedgerSvcFacade) *bookHandler {
	return &bookHandler{
		importService: is,
		ledgerService: ls,
	}
}

// registerBookRoutes registers routes related to books.
func registerBookRoutes(rg *gin.RouterGroup, cfg *config.Config, is portssvc.ImportSvcFacade, ls portssvc.LedgerSvcFacade) {
	h := newBookHandler(is, ls)

	books := rg.Group("/books")
	{
		books.POST("/import", importRateLimiter(cfg), h.importBook)
		books.GET("", h.listBooks)
	}
}

// importBook ingests one GnuCash XML document, uploaded either as the raw
// request body or as a multipart form file named "file". Gzip compressed
// uploads are detected automatically.
func (h *bookHandler) importBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	reader := c.Request.Body
	sourceName := c.Query("name")
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer f.Close()
		reader = f
		if sourceName == "" {
			sourceName = file.Filename
		}
	}
	if sourceName == "" {
		sourceName = "upload.gnucash"
	}

	logger.Info("Received import request", slog.String("source", sourceName))

	summary, err := h.importService.ImportBook(c.Request.Context(), reader, sourceName)
	if err != nil {
		var parseErr *gncxml.ParseError
		switch {
		case errors.As(err, &parseErr):
			logger.Warn("Import document is malformed", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrUnbalanced), errors.Is(err, apperrors.ErrPlaceholderAccount):
			logger.Warn("Import document violates ledger invariants", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to import book", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import book"})
		}
		return
	}

	logger.Info("Book imported successfully", slog.String("book_uid", summary.BookUID))
	c.JSON(http.StatusCreated, summary)
}

// listBooks returns every imported book.
func (h *bookHandler) listBooks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	books, err := h.ledgerService.ListBooks(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list books", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list books"})
		return
	}

	res := make([]dto.BookResponse, len(books))
	for i, b := range books {
		res[i] = dto.ToBookResponse(b)
	}
	c.JSON(http.StatusOK, res)
}
