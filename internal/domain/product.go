package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

type Brand struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// Product is the read-only product data the API embeds in listings, carts,
// wishlists and orders. It is never constructed client-side.
type Product struct {
	ID                 string           `json:"_id"`
	Title              string           `json:"title"`
	Slug               string           `json:"slug,omitempty"`
	Description        string           `json:"description,omitempty"`
	Quantity           int              `json:"quantity,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	PriceAfterDiscount *decimal.Decimal `json:"priceAfterDiscount,omitempty"`
	ImageCover         string           `json:"imageCover"`
	Images             []string         `json:"images,omitempty"`
	Category           Category         `json:"category"`
	Brand              Brand            `json:"brand"`
	RatingsAverage     float64          `json:"ratingsAverage"`
	RatingsQuantity    int              `json:"ratingsQuantity"`
	Sold               int              `json:"sold,omitempty"`
}

// PageMetadata mirrors the pagination block of list endpoints.
type PageMetadata struct {
	CurrentPage   int `json:"currentPage"`
	NumberOfPages int `json:"numberOfPages"`
	Limit         int `json:"limit"`
	NextPage      int `json:"nextPage,omitempty"`
}

type ProductPage struct {
	Results  int          `json:"results"`
	Metadata PageMetadata `json:"metadata"`
	Products []Product    `json:"data"`
}

// ProductQuery filters a product listing. Zero values are omitted.
type ProductQuery struct {
	Category string
	Brand    string
	Page     int
	Limit    int
}
