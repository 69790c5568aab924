package models

import "time"

// PostingHistory records one publish attempt. ErrorMessage is empty on success.
type PostingHistory struct {
	ID           int64     `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	PostID       string    `db:"post_id" json:"post_id"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
