package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// News statuses
const (
	NewsStatusDraft     = "Draft"
	NewsStatusPublished = "Published"
	NewsStatusArchived  = "Archived"
)

type News struct {
	gorm.Model
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Summary     string         `json:"summary,omitempty"`
	Category    string         `gorm:"index" json:"category"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Status      string         `gorm:"not null;default:'Draft';index" json:"status"`
	IsSticky    bool           `gorm:"not null;default:false" json:"is_sticky"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	ViewCount   int64          `gorm:"not null;default:0" json:"view_count"`
	AuthorID    uint           `gorm:"not null" json:"author_id"`
}

type NewsFilter struct {
	Status   string
	Category string
	Search   string
}
