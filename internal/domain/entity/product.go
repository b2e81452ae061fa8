package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog item. A non-nil DeletedAt marks a soft-deleted product.
type Product struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	Categories      []Category      `json:"categories"`
	PrimaryImage    string          `json:"primaryImage"`
	SecondaryImages []string        `json:"secondaryImages"`
	Published       bool            `json:"published"`
	SellerID        string          `json:"sellerId"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt,omitzero"`
}

// IsDeleted reports whether the product was soft-deleted.
func (p Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// InCategory reports whether the product is tagged with categoryID.
func (p Product) InCategory(categoryID string) bool {
	for _, c := range p.Categories {
		if c.ID == categoryID {
			return true
		}
	}

	return false
}

// CartProduct projects the product into a cart line.
func (p Product) CartProduct() CartProduct {
	return CartProduct{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		PrimaryImage: p.PrimaryImage,
	}
}

// ProductFilter narrows back-office product tables. Zero fields match everything.
type ProductFilter struct {
	Title      string `query:"title"`
	CategoryID string `query:"category"`
	SellerID   string `query:"-"`
	Published  *bool  `query:"published"`
}

// Match reports whether p passes the filter. Title matching is a
// case-insensitive substring test.
func (f ProductFilter) Match(p Product) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(strings.TrimSpace(f.Title))) {
		return false
	}
	if f.CategoryID != "" && !p.InCategory(f.CategoryID) {
		return false
	}
	if f.SellerID != "" && p.SellerID != f.SellerID {
		return false
	}
	if f.Published != nil && p.Published != *f.Published {
		return false
	}

	return true
}

// FilterProducts keeps the products matching f, preserving order.
func FilterProducts(products []Product, f ProductFilter) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			result = append(result, p)
		}
	}

	return result
}

// CatalogQuery selects a page of the public catalog.
type CatalogQuery struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	Search     string `query:"search"`
	CategoryID string `query:"category"`
}

// ImageUpload is a file sent with a multipart product write.
type ImageUpload struct {
	Filename string
	Content  []byte
}

// ProductDraft is the payload of product create and update. Images left nil
// keep the stored ones on update.
type ProductDraft struct {
	Title           string
	Description     string
	Price           decimal.Decimal
	Stock           int
	CategoryIDs     []string
	Published       bool
	PrimaryImage    *ImageUpload
	SecondaryImages []ImageUpload
}
