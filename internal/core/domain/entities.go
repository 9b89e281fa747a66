package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Collection names for the document-backed catalog and CMS entities.
const (
	CollectionProducts   = "products"
	CollectionAuthors    = "authors"
	CollectionFAQs       = "faqs"
	CollectionContacts   = "contacts"
	CollectionOfficeInfo = "office-info"
	CollectionSEO        = "seo"
)

// Document is a stored JSON document in a named collection.
type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SocialLinks groups the optional social profile URLs shared by several entities.
type SocialLinks struct {
	Website   string `json:"website,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

// ProductPricing holds list and sale price.
type ProductPricing struct {
	Price     *float64 `json:"price,omitempty"`
	SalePrice *float64 `json:"sale_price,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

// ProductMedia holds media URLs.
type ProductMedia struct {
	Thumbnail string   `json:"thumbnail,omitempty"`
	Images    []string `json:"images,omitempty"`
	Video     string   `json:"video,omitempty"`
	Brochure  string   `json:"brochure,omitempty"`
}

// Product is a catalog item.
type Product struct {
	Name        string         `json:"name"`
	Slug        string         `json:"slug,omitempty"`
	Category    string         `json:"category,omitempty"`
	Description string         `json:"description,omitempty"`
	AuthorID    string         `json:"author_id,omitempty"`
	LocationID  string         `json:"location_id,omitempty"`
	Pricing     ProductPricing `json:"pricing"`
	Media       ProductMedia   `json:"media"`
	Social      SocialLinks    `json:"social"`
	Tags        []string       `json:"tags,omitempty"`
	Active      bool           `json:"active"`
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Pricing.Price != nil && *p.Pricing.Price < 0 {
		return fmt.Errorf("%w: pricing.price must not be negative", ErrValidation)
	}
	if p.Pricing.SalePrice != nil {
		if *p.Pricing.SalePrice < 0 {
			return fmt.Errorf("%w: pricing.sale_price must not be negative", ErrValidation)
		}
		if p.Pricing.Price != nil && *p.Pricing.SalePrice > *p.Pricing.Price {
			return fmt.Errorf("%w: pricing.sale_price exceeds pricing.price", ErrValidation)
		}
	}
	return nil
}

// Author writes content attached to products and pages.
type Author struct {
	Name        string      `json:"name"`
	Designation string      `json:"designation,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	Image       string      `json:"image,omitempty"`
	Social      SocialLinks `json:"social"`
}

func (a Author) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

// FAQ is a question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	Order    int    `json:"order"`
}

func (f FAQ) Validate() error {
	if strings.TrimSpace(f.Question) == "" {
		return fmt.Errorf("%w: question is required", ErrValidation)
	}
	if strings.TrimSpace(f.Answer) == "" {
		return fmt.Errorf("%w: answer is required", ErrValidation)
	}
	return nil
}

// Contact is an inbound contact-form submission.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"` // new, read, replied
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	switch c.Status {
	case "", "new", "read", "replied":
	default:
		return fmt.Errorf("%w: status must be one of new, read, replied", ErrValidation)
	}
	return nil
}

// OfficeInfo describes a physical office shown on the public site.
type OfficeInfo struct {
	Name       string      `json:"name"`
	Address    string      `json:"address,omitempty"`
	Email      string      `json:"email,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Hours      string      `json:"hours,omitempty"`
	LocationID string      `json:"location_id,omitempty"`
	Social     SocialLinks `json:"social"`
}

func (o OfficeInfo) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if o.Email != "" {
		if _, err := mail.ParseAddress(o.Email); err != nil {
			return fmt.Errorf("%w: email is invalid", ErrValidation)
		}
	}
	return nil
}

// SEOMeta is the metadata record of one public page. Only the page key is
// typed; the rest (title, description, openGraph.*, twitter.*) is a free
// nested tree edited field by field.
type SEOMeta struct {
	Page string `json:"page"`
}

func (s SEOMeta) Validate() error {
	if strings.TrimSpace(s.Page) == "" {
		return fmt.Errorf("%w: page is required", ErrValidation)
	}
	return nil
}
