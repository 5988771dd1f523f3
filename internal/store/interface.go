// Package store defines the persistence contract of the Vivilio server.
package store

import (
	"context"

	"github.com/vivilio/vivilio-server/internal/domain"
)

// Store is the persistence interface used by the services. Lookups by id
// return ErrNotFound when the row is missing; inserts that collide with a
// uniqueness constraint return ErrAlreadyExists.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// WithTx runs fn against a transaction-bound Store. The transaction
	// commits when fn returns nil and rolls back otherwise. Nested calls
	// join the outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*domain.User, error)

	// Genres and strengths
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
	GetGenre(ctx context.Context, id string) (*domain.Genre, error)
	GetGenreByType(ctx context.Context, label string) (*domain.Genre, error)
	ListStrengths(ctx context.Context, userID string) ([]*domain.Genre, error)
	AddStrength(ctx context.Context, userID, genreID string) error
	RemoveStrength(ctx context.Context, userID, genreID string) error

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListBooksByAuthor(ctx context.Context, userID string) ([]*domain.Book, error)
	SearchBooks(ctx context.Context, query string, limit int) ([]*domain.Book, error)

	// Publishing records
	CreatePublish(ctx context.Context, publish *domain.Publish) error
	GetPublish(ctx context.Context, bookID string) (*domain.Publish, error)
	DeletePublish(ctx context.Context, bookID string) error

	// Book genres
	ListBookGenres(ctx context.Context, bookID string) ([]*domain.Genre, error)
	AttachGenre(ctx context.Context, bookID, genreID string) error
	DetachGenre(ctx context.Context, bookID, genreID string) error

	// Reviews
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, bookID, reviewID string) (*domain.Review, error)
	ListReviews(ctx context.Context, bookID string) ([]*domain.Review, error)
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, bookID, reviewID string) error

	// Community lookups
	GetRoleByType(ctx context.Context, label string) (*domain.Role, error)
	GetVisibilityByType(ctx context.Context, label string) (*domain.Visibility, error)
	GetCategoryByType(ctx context.Context, label string) (*domain.Category, error)
	ListVisibilities(ctx context.Context) ([]*domain.Visibility, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	// Communities
	CreateCommunity(ctx context.Context, community *domain.Community) error
	GetCommunity(ctx context.Context, id string) (*domain.Community, error)
	CommunityNameTaken(ctx context.Context, name string) (bool, error)
	ListCommunities(ctx context.Context) ([]*domain.Community, error)
	SearchCommunities(ctx context.Context, query string, limit int) ([]*domain.Community, error)

	// Memberships
	CreateMembership(ctx context.Context, membership *domain.Membership) error
	GetMembership(ctx context.Context, communityID, userID string) (*domain.Membership, error)
	ListMembers(ctx context.Context, communityID string) ([]*domain.Membership, error)
	ListJoinedCommunities(ctx context.Context, userID string) ([]*domain.JoinedCommunity, error)
	UpdateMembershipRole(ctx context.Context, membershipID string, role domain.Role) error
	DeleteMembership(ctx context.Context, membershipID string) error

	// Posts
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, communityID, postID string) (*domain.Post, error)
	ListPosts(ctx context.Context, communityID string) ([]*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, postID string) error

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, postID, commentID string) (*domain.Comment, error)
	ListComments(ctx context.Context, postID string) ([]*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, commentID string) error
	DeleteCommentsByPost(ctx context.Context, postID string) (int, error)
}
