package domain

// Visibility is the descriptive visibility tag of a community (Public, Private).
type Visibility struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Category is the descriptive topic tag of a community.
type Category struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Community is a discussion group. RestrictPosting is stored and returned
// but not enforced on post creation.
type Community struct {
	Entity
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	RestrictPosting bool       `json:"restrict_posting"`
	Visibility      Visibility `json:"visibility"`
	Category        Category   `json:"category"`
}
