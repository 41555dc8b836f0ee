package model

import "time"

// Review is a customer's rating of a menu item.
type Review struct {
	ID           int64     `json:"id" db:"id"`
	MenuItemID   int64     `json:"menuItemId" db:"menu_item_id"`
	UserID       string    `json:"user" db:"user_id"`
	Rating       int       `json:"rating" db:"rating"`
	Title        string    `json:"title" db:"title"`
	Comment      string    `json:"comment" db:"comment"`
	HelpfulCount int       `json:"helpfulCount" db:"helpful_count"`
	IsVerified   bool      `json:"isVerified" db:"is_verified"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ReviewSummary aggregates the reviews of one menu item.
type ReviewSummary struct {
	Reviews         []Review    `json:"reviews"`
	AverageRating   float64     `json:"averageRating"`
	RatingCount     int         `json:"ratingCount"`
	RatingBreakdown map[int]int `json:"ratingBreakdown"`
}

// NewReviewSummary computes the average and 1-5 breakdown of reviews.
func NewReviewSummary(reviews []Review) ReviewSummary {
	breakdown := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	if reviews == nil {
		reviews = []Review{}
	}
	sum := 0
	for _, r := range reviews {
		breakdown[r.Rating]++
		sum += r.Rating
	}
	avg := 0.0
	if len(reviews) > 0 {
		avg = float64(sum) / float64(len(reviews))
	}
	return ReviewSummary{
		Reviews:         reviews,
		AverageRating:   avg,
		RatingCount:     len(reviews),
		RatingBreakdown: breakdown,
	}
}

// AddReviewRequest is the payload for reviewing a menu item.
type AddReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// HelpfulResponse reports the helpful vote state after a toggle.
type HelpfulResponse struct {
	Helpful      bool `json:"helpful"`
	HelpfulCount int  `json:"helpfulCount"`
}

// WishlistItem is a menu item saved by a user.
type WishlistItem struct {
	MenuItem MenuItem  `json:"menuItem"`
	AddedAt  time.Time `json:"addedAt"`
}

// WishlistStatus reports whether an item is in a user's wishlist.
type WishlistStatus struct {
	InWishlist bool `json:"inWishlist"`
}
