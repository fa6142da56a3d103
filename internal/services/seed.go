package services

import (
	"time"

	"quill/internal/models"
)

// SeedPosts is the collection a fresh or unreadable store starts with.
func SeedPosts(now time.Time) []models.Post {
	day := 24 * time.Hour
	return []models.Post{
		{
			ID:        "seed-1",
			Title:     "How to think about opportunity cost",
			Body:      "Opportunity cost is the value of the best alternative you give up when making a choice. Frame decisions as trade-offs; the unseen cost often matters more than the visible price.",
			Tags:      []string{"economics", "decision-making"},
			Votes:     12,
			CreatedAt: now.Add(-3 * day).UnixMilli(),
		},
		{
			ID:        "seed-2",
			Title:     "Why learn to program as a non-engineer",
			Body:      "Programming teaches you to formalize problems, test hypotheses, and automate repetitive work. You don't need to ship products; the mindset is the value.",
			Tags:      []string{"productivity", "programming"},
			Votes:     8,
			CreatedAt: now.Add(-1 * day).UnixMilli(),
		},
	}
}
