// Package dto holds the response shapes handed back to transport layers.
package dto

import (
	"time"

	domainpayment "rentflow/internal/domain/payment"
	domainproduct "rentflow/internal/domain/product"
	domainrental "rentflow/internal/domain/rental"
	domainreview "rentflow/internal/domain/review"
	domainuser "rentflow/internal/domain/user"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	PricePerDayCents int64     `json:"price_per_day_cents"`
	DepositCents     int64     `json:"deposit_cents"`
	Condition        string    `json:"condition"`
	Location         string    `json:"location,omitempty"`
	Images           []string  `json:"images,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Rental struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	OwnerID         string    `json:"owner_id"`
	RenterID        string    `json:"renter_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Payment struct {
	ID            string    `json:"id"`
	RentalID      string    `json:"rental_id"`
	UserID        string    `json:"user_id"`
	AmountCents   int64     `json:"amount_cents"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Review struct {
	ID         string    `json:"id"`
	RentalID   string    `json:"rental_id"`
	ProductID  string    `json:"product_id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RentalSnapshot is the include-shape callers receive for a rental: the row
// plus its referenced product/users and the at-most-one payment and review.
type RentalSnapshot struct {
	Rental
	Product *Product `json:"product,omitempty"`
	Owner   *User    `json:"owner,omitempty"`
	Renter  *User    `json:"renter,omitempty"`
	Payment *Payment `json:"payment,omitempty"`
	Review  *Review  `json:"review,omitempty"`
}

// ProductSnapshot carries a product with its rentals and reviews.
type ProductSnapshot struct {
	Product
	Rentals []Rental `json:"rentals"`
	Reviews []Review `json:"reviews"`
}

// CascadeResult confirms completion of a multi-entity removal.
type CascadeResult struct {
	Message string `json:"message"`
}

func MapUser(u *domainuser.User) User {
	return User{
		ID:        string(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func MapProduct(p *domainproduct.Product) Product {
	return Product{
		ID:               string(p.ID),
		OwnerID:          string(p.OwnerID),
		Title:            p.Title,
		Description:      p.Description,
		PricePerDayCents: p.PricePerDayCents,
		DepositCents:     p.DepositCents,
		Condition:        string(p.Condition),
		Location:         p.Location,
		Images:           append([]string(nil), p.Images...),
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func MapRental(r *domainrental.Rental) Rental {
	return Rental{
		ID:              string(r.ID),
		ProductID:       string(r.ProductID),
		OwnerID:         string(r.OwnerID),
		RenterID:        string(r.RenterID),
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		TotalPriceCents: r.TotalPriceCents,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func MapPayment(p *domainpayment.Payment) Payment {
	return Payment{
		ID:            string(p.ID),
		RentalID:      string(p.RentalID),
		UserID:        string(p.UserID),
		AmountCents:   p.AmountCents,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}

func MapReview(r *domainreview.Review) Review {
	return Review{
		ID:         string(r.ID),
		RentalID:   string(r.RentalID),
		ProductID:  string(r.ProductID),
		ReviewerID: string(r.ReviewerID),
		RevieweeID: string(r.RevieweeID),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
