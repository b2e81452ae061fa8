package handler

import (
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the public catalog and product reviews.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// ReviewRequest represents the request body for posting a review
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Products lists a catalog page. Page and limit default to the backend's.
func (h *CatalogHandler) Products(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	q := entity.CatalogQuery{
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 10),
		Search:     c.QueryParam("search"),
		CategoryID: c.QueryParam("category"),
	}

	return response.Query(c, client.Catalog.Products(c.Request().Context(), q))
}

func (h *CatalogHandler) Product(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.Catalog.Product(c.Request().Context(), c.Param("id")))
}

func (h *CatalogHandler) Categories(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.Catalog.Categories(c.Request().Context()))
}

func (h *CatalogHandler) Reviews(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	productID, err := param(c, "id")
	if err != nil {
		return err
	}

	return response.Query(c, client.Catalog.Reviews(c.Request().Context(), productID))
}

func (h *CatalogHandler) CreateReview(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	productID, err := param(c, "id")
	if err != nil {
		return err
	}

	var req ReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := client.Catalog.CreateReview(c.Request().Context(), entity.ReviewDraft{
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, review)
}

func (h *CatalogHandler) DeleteReview(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	productID, err := param(c, "id")
	if err != nil {
		return err
	}
	reviewID, err := param(c, "reviewId")
	if err != nil {
		return err
	}

	if err := client.Catalog.DeleteReview(c.Request().Context(), productID, reviewID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
