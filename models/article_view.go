package models

import "time"

// ArticleView is the persisted view counter of one article.
type ArticleView struct {
	ArticleID string `gorm:"primaryKey;size:255"`
	Views     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// ArticleViews is the JSON shape returned by the analytics endpoints.
type ArticleViews struct {
	ArticleID string `json:"article_id"`
	Views     int64  `json:"views"`
}
