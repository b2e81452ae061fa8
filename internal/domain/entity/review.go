package entity

import "time"

// ReviewAuthor is the user projection embedded in a review.
type ReviewAuthor struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar,omitempty"`
}

type Review struct {
	ID        string       `json:"id"`
	ProductID string       `json:"productId"`
	User      ReviewAuthor `json:"user"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ReviewDraft is the payload for posting a review.
type ReviewDraft struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}
