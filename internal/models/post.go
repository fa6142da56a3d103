package models

// Post is a single board entry. The JSON layout matches the persisted
// posts record, so field names must not change.
type Post struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	Image     *string  `json:"image"`     // data URI or external URL, nil when absent
	Votes     int      `json:"votes"`
	CreatedAt int64    `json:"createdAt"` // unix milliseconds
}

// HasTag reports whether tag is one of the post's tags.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ImageSrc returns the image reference or "" when the post has none.
func (p Post) ImageSrc() string {
	if p.Image == nil {
		return ""
	}
	return *p.Image
}

// Clone copies the post so callers can't alias the store's tag slice.
func (p Post) Clone() Post {
	out := p
	out.Tags = append(make([]string, 0, len(p.Tags)), p.Tags...)
	if p.Image != nil {
		img := *p.Image
		out.Image = &img
	}
	return out
}

// PostInput carries the fields of a new post before normalization.
type PostInput struct {
	Title   string
	Body    string
	TagsRaw string
	Image   *string
}

// PostPatch lists the fields to replace on update. Nil means "keep".
// ClearImage removes the image when Image is nil.
type PostPatch struct {
	Title      *string
	Body       *string
	TagsRaw    *string
	Image      *string
	ClearImage bool
}
