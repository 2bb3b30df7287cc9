package domain

import "time"

// Article is a knowledge-base entry maintained by the crew.
type Article struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	AuthorID  int64      `json:"author_id"`
	Images    []string   `json:"images,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsDeleted bool       `json:"-"`
	DeletedAt *time.Time `json:"-"`
}

// ArticlePatch enumerates the mutable article fields.
type ArticlePatch struct {
	Title   *string
	Content *string
}

func (p ArticlePatch) Diff(cur Article) Diff {
	d := Diff{}
	if p.Title != nil && *p.Title != cur.Title {
		d["title"] = FieldChange{Old: cur.Title, New: *p.Title}
	}
	if p.Content != nil && *p.Content != cur.Content {
		d["content"] = FieldChange{Old: cur.Content, New: *p.Content}
	}
	return d
}

func (p ArticlePatch) Apply(a *Article) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
}

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Title    string
	AuthorID int64
	Offset   int
	Limit    int
}
