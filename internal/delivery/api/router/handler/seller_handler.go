package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/usecase"
	"storefront/internal/util"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// maxImageSize bounds one uploaded product image.
const maxImageSize = 5 << 20

// SellerHandler serves the seller back office. Sellers only see their own
// products and coupons; admins see everything.
type SellerHandler struct{}

func NewSellerHandler() *SellerHandler {
	return &SellerHandler{}
}

// PublishRequest represents the request body for toggling product visibility
type PublishRequest struct {
	Published *bool `json:"published" validate:"required"`
}

// CouponRequest represents the request body for coupon create and update
type CouponRequest struct {
	Code            string              `json:"code" validate:"required,min=3,max=32"`
	Type            entity.CouponType   `json:"type" validate:"required,oneof=percentage fixed"`
	Value           decimal.Decimal     `json:"value"`
	MinimumPurchase decimal.Decimal     `json:"minimumPurchase"`
	StartDate       time.Time           `json:"startDate"`
	ExpirationDate  time.Time           `json:"expirationDate"`
	MaxUsage        int                 `json:"maxUsage" validate:"gte=0"`
	MaxUsagePerUser int                 `json:"maxUsagePerUser" validate:"gte=0"`
	Status          entity.CouponStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r CouponRequest) coupon() entity.Coupon {
	return entity.Coupon{
		Code:            entity.NormalizeCouponCode(r.Code),
		Type:            r.Type,
		Value:           r.Value,
		MinimumPurchase: r.MinimumPurchase,
		StartDate:       r.StartDate,
		ExpirationDate:  r.ExpirationDate,
		MaxUsage:        r.MaxUsage,
		MaxUsagePerUser: r.MaxUsagePerUser,
		Status:          r.Status,
	}
}

// Products lists the back-office product table with client-side filters.
func (h *SellerHandler) Products(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	filter := entity.ProductFilter{
		Title:      c.QueryParam("title"),
		CategoryID: c.QueryParam("category"),
	}
	if raw := c.QueryParam("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return domainerrors.ErrValidationFailed.WithFields(domainerrors.FieldError{Field: "published", Message: "must be true or false"})
		}
		filter.Published = &published
	}

	return response.Query(c, client.Products.Products(c.Request().Context(), usecase.ManageProductsInput{
		Filter: filter,
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}))
}

func (h *SellerHandler) DeletedProducts(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.Products.DeletedProducts(c.Request().Context()))
}

// CreateProduct accepts a multipart form with the product fields and images.
func (h *SellerHandler) CreateProduct(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	draft, err := productDraft(c)
	if err != nil {
		return err
	}

	product, err := client.Products.Create(c.Request().Context(), draft)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, product)
}

// UpdateProduct keeps the stored images unless new ones are uploaded.
func (h *SellerHandler) UpdateProduct(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	draft, err := productDraft(c)
	if err != nil {
		return err
	}

	product, err := client.Products.Update(c.Request().Context(), id, draft)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, product)
}

func (h *SellerHandler) SetPublished(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	var req PublishRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := client.Products.SetPublished(c.Request().Context(), id, *req.Published)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, product)
}

func (h *SellerHandler) DeleteProduct(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	if err := client.Products.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *SellerHandler) RestoreProduct(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	product, err := client.Products.Restore(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, product)
}

func (h *SellerHandler) Coupons(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	return response.Query(c, client.CouponAdmin.Coupons(c.Request().Context()))
}

func (h *SellerHandler) CreateCoupon(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	var req CouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	coupon, err := client.CouponAdmin.Create(c.Request().Context(), req.coupon())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, coupon)
}

func (h *SellerHandler) UpdateCoupon(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	var req CouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	coupon, err := client.CouponAdmin.Update(c.Request().Context(), id, req.coupon())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, coupon)
}

func (h *SellerHandler) DeleteCoupon(c echo.Context) error {
	client, err := visitor(c)
	if err != nil {
		return err
	}

	id, err := param(c, "id")
	if err != nil {
		return err
	}

	if err := client.CouponAdmin.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// productDraft reads the multipart product form. Field checks beyond parsing
// are left to the product use case.
func productDraft(c echo.Context) (entity.ProductDraft, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return entity.ProductDraft{}, domainerrors.ErrValidationFailed.WithMessage("expected a multipart form")
	}

	value := func(name string) string {
		if values := form.Value[name]; len(values) > 0 {
			return values[0]
		}

		return ""
	}

	var fields []domainerrors.FieldError
	draft := entity.ProductDraft{
		Title:       value("title"),
		Description: value("description"),
		CategoryIDs: form.Value["categoryIds"],
	}

	if raw := value("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			fields = append(fields, domainerrors.FieldError{Field: "price", Message: "must be a number"})
		}
		draft.Price = price
	}
	if raw := value("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, domainerrors.FieldError{Field: "stock", Message: "must be a whole number"})
		}
		draft.Stock = stock
	}
	if raw := value("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, domainerrors.FieldError{Field: "published", Message: "must be true or false"})
		}
		draft.Published = published
	}

	if files := form.File["primaryImage"]; len(files) > 0 {
		img, err := readImage(files[0])
		if err != nil {
			fields = append(fields, domainerrors.FieldError{Field: "primaryImage", Message: err.Error()})
		} else {
			draft.PrimaryImage = &img
		}
	}
	for _, header := range form.File["secondaryImages"] {
		img, err := readImage(header)
		if err != nil {
			fields = append(fields, domainerrors.FieldError{Field: "secondaryImages", Message: err.Error()})

			continue
		}
		draft.SecondaryImages = append(draft.SecondaryImages, img)
	}

	if len(fields) > 0 {
		return entity.ProductDraft{}, domainerrors.ErrValidationFailed.WithFields(fields...)
	}

	return draft, nil
}

func readImage(header *multipart.FileHeader) (entity.ImageUpload, error) {
	if header.Size > maxImageSize {
		return entity.ImageUpload{}, errors.Errorf("image exceeds %s", util.FormatBytes(maxImageSize))
	}

	f, err := header.Open()
	if err != nil {
		return entity.ImageUpload{}, errors.New("image could not be read")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return entity.ImageUpload{}, errors.New("image could not be read")
	}

	return entity.ImageUpload{Filename: header.Filename, Content: content}, nil
}
