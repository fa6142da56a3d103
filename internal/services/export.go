package services

import (
	"fmt"
	"io"

	"quill/internal/models"

	"gopkg.in/yaml.v3"
)

type exportedPost struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Body      string   `yaml:"body"`
	Tags      []string `yaml:"tags"`
	Image     string   `yaml:"image,omitempty"`
	Votes     int      `yaml:"votes"`
	CreatedAt int64    `yaml:"createdAt"`
	Stance    string   `yaml:"stance,omitempty"`
}

type exportDoc struct {
	Posts []exportedPost `yaml:"posts"`
}

// ExportYAML writes the collection, with the local stance on each post, as
// a YAML document.
func (b *Board) ExportYAML(w io.Writer) error {
	posts := b.Posts()
	stances := b.Stances(posts)

	doc := exportDoc{Posts: make([]exportedPost, 0, len(posts))}
	for _, p := range posts {
		item := exportedPost{
			ID:        p.ID,
			Title:     p.Title,
			Body:      p.Body,
			Tags:      p.Tags,
			Image:     p.ImageSrc(),
			Votes:     p.Votes,
			CreatedAt: p.CreatedAt,
		}
		if s := stances[p.ID]; s != models.StanceNone {
			item.Stance = s.String()
		}
		doc.Posts = append(doc.Posts, item)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
