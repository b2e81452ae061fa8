package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type productGateway struct {
	client *Client
}

func NewProductRepository(client *Client) repository.ProductRepository {
	return &productGateway{client: client}
}

type publishRequest struct {
	Published bool `json:"published"`
}

func productPath(id string) string {
	return "/products/" + url.PathEscape(id)
}

func (g *productGateway) ListCatalog(ctx context.Context, q entity.CatalogQuery) (*entity.Page[entity.Product], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.CategoryID != "" {
		params.Set("category", q.CategoryID)
	}

	var out pageResponse[entity.Product]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: "/products", query: params}, &out); err != nil {
		return nil, err
	}

	page, err := unwrap(out.Data, "products page")
	if err != nil {
		return nil, err
	}
	page.Items = nonNil(page.Items)

	return page, nil
}

func (g *productGateway) Get(ctx context.Context, id string) (*entity.Product, error) {
	var out dataResponse[entity.Product]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: productPath(id)}, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "product")
}

func (g *productGateway) ListAll(ctx context.Context) ([]entity.Product, error) {
	return g.list(ctx, "/products/all")
}

func (g *productGateway) ListDeleted(ctx context.Context) ([]entity.Product, error) {
	return g.list(ctx, "/products/deleted")
}

func (g *productGateway) Create(ctx context.Context, draft entity.ProductDraft) (*entity.Product, error) {
	return g.multipart(ctx, http.MethodPost, "/products", draft)
}

func (g *productGateway) Update(ctx context.Context, id string, draft entity.ProductDraft) (*entity.Product, error) {
	return g.multipart(ctx, http.MethodPut, productPath(id), draft)
}

func (g *productGateway) SetPublished(ctx context.Context, id string, published bool) (*entity.Product, error) {
	return g.one(ctx, http.MethodPatch, productPath(id)+"/publish", publishRequest{Published: published})
}

func (g *productGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, call{method: http.MethodDelete, path: productPath(id)}, nil)
}

func (g *productGateway) Restore(ctx context.Context, id string) (*entity.Product, error) {
	return g.one(ctx, http.MethodPatch, productPath(id)+"/restore", nil)
}

func (g *productGateway) one(ctx context.Context, method, path string, payload any) (*entity.Product, error) {
	req, err := jsonCall(method, path, payload)
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.Product]
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "product")
}

func (g *productGateway) list(ctx context.Context, path string) ([]entity.Product, error) {
	var out listResponse[entity.Product]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}

	return nonNil(out.Data), nil
}

func (g *productGateway) multipart(ctx context.Context, method, path string, draft entity.ProductDraft) (*entity.Product, error) {
	body, contentType, err := encodeDraft(draft)
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.Product]
	req := call{method: method, path: path, body: body, contentType: contentType}
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "product")
}

// encodeDraft writes the product fields and images as multipart form data.
func encodeDraft(draft entity.ProductDraft) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"title", draft.Title},
		{"description", draft.Description},
		{"price", draft.Price.String()},
		{"stock", strconv.Itoa(draft.Stock)},
		{"published", strconv.FormatBool(draft.Published)},
		{"categories", strings.Join(draft.CategoryIDs, ",")},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", errors.WithStack(err)
		}
	}

	if draft.PrimaryImage != nil {
		if err := writeFile(w, "primaryImage", *draft.PrimaryImage); err != nil {
			return nil, "", err
		}
	}
	for _, img := range draft.SecondaryImages {
		if err := writeFile(w, "secondaryImages", img); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.WithStack(err)
	}

	return buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, img entity.ImageUpload) error {
	part, err := w.CreateFormFile(field, img.Filename)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := part.Write(img.Content); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

type categoryGateway struct {
	client *Client
}

func NewCategoryRepository(client *Client) repository.CategoryRepository {
	return &categoryGateway{client: client}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (g *categoryGateway) List(ctx context.Context) ([]entity.Category, error) {
	var out listResponse[entity.Category]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: "/categories"}, &out); err != nil {
		return nil, err
	}

	return nonNil(out.Data), nil
}

func (g *categoryGateway) Create(ctx context.Context, name string) (*entity.Category, error) {
	return g.write(ctx, http.MethodPost, "/categories", name)
}

func (g *categoryGateway) Update(ctx context.Context, id, name string) (*entity.Category, error) {
	return g.write(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), name)
}

func (g *categoryGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, call{method: http.MethodDelete, path: "/categories/" + url.PathEscape(id)}, nil)
}

func (g *categoryGateway) write(ctx context.Context, method, path, name string) (*entity.Category, error) {
	req, err := jsonCall(method, path, categoryRequest{Name: name})
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.Category]
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "category")
}

type reviewGateway struct {
	client *Client
}

func NewReviewRepository(client *Client) repository.ReviewRepository {
	return &reviewGateway{client: client}
}

func (g *reviewGateway) ListByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	var out listResponse[entity.Review]
	if err := g.client.do(ctx, call{method: http.MethodGet, path: productPath(productID) + "/reviews"}, &out); err != nil {
		return nil, err
	}

	return nonNil(out.Data), nil
}

func (g *reviewGateway) Create(ctx context.Context, draft entity.ReviewDraft) (*entity.Review, error) {
	req, err := jsonCall(http.MethodPost, "/reviews", draft)
	if err != nil {
		return nil, err
	}

	var out dataResponse[entity.Review]
	if err := g.client.do(ctx, req, &out); err != nil {
		return nil, err
	}

	return unwrap(out.Data, "review")
}

func (g *reviewGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, call{method: http.MethodDelete, path: "/reviews/" + url.PathEscape(id)}, nil)
}
