package domain

// Post is a message published in a community.
type Post struct {
	Entity
	Content           string `json:"content"`
	TurnOffCommenting bool   `json:"turn_off_commenting"`
	AuthorID          string `json:"author_id"`
	CommunityID       string `json:"community_id"`
}

// AcceptsComments reports whether new comments may be added.
func (p *Post) AcceptsComments() bool {
	return !p.TurnOffCommenting
}

// Comment is a reply to a post.
type Comment struct {
	Entity
	UserID  string `json:"user_id"`
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}
