package service

// User-facing messages. Clients match on some of these verbatim, including
// the spelling of msgCommunityMissing.
const (
	msgUserNotFound     = "User's not found."
	msgEmailTaken       = "Email is already in used."
	msgIncorrectPass    = "Incorrect password."
	msgGenreNotFound    = "Genre's not found."
	msgStrengthNotFound = "Strength's not found."
	msgStrengthExists   = "Genre is already in strengths."

	msgBookNotFound      = "Book's not found."
	msgNotAnAuthor       = "User is not an author."
	msgCannotUpdateBook  = "User cannot update this book."
	msgCannotDeleteBook  = "User cannot delete this book."
	msgGenreAttached     = "Genre is already attached to this book."
	msgBookGenreNotFound = "Invalid book_id or genre_id."
	msgReviewNotFound    = "Review's not found."

	msgCommunityNotFound  = "Community's not found."
	msgCommunityMissing   = "Commnunity's not found."
	msgCommunityNameTaken = "Community name is already taken."
	msgVisibilityNotFound = "Visibility type's not found."
	msgCategoryNotFound   = "Category type's not found."
	msgInvalidUserID      = "Invalid user_id."
	msgInvalidRole        = "Invalid role type."
	msgActorNotMember     = "Current user is not a member of this community."
	msgCannotManage       = "User cannot add member to community."
	msgAlreadyMember      = "User is already a member of this community."
	msgMembershipNotFound = "Membership's not found."
	msgCreatorRoleFixed   = "Creator role cannot be changed."
	msgCreatorNotRemoved  = "Creator cannot be removed from community."

	msgPostNotFound     = "Post's not found."
	msgCommentNotFound  = "Comment's not found."
	msgCommentingClosed = "Commenting is turned off for this post."

	msgEmptySearch = "Search query must have value."
)
