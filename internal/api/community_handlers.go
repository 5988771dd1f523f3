package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/service"
)

func (s *Server) registerCommunityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCommunities",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities",
		Summary:     "List communities",
		Tags:        []string{"Communities"},
		Security:    bearerSecurity,
	}, s.handleListCommunities)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCommunity",
		Method:        http.MethodPost,
		Path:          "/api/v1/communities",
		Summary:       "Create community",
		Description:   "Creates a community and makes the caller its Creator",
		Tags:          []string{"Communities"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCommunity)

	huma.Register(s.api, huma.Operation{
		OperationID: "joinedCommunities",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/joined",
		Summary:     "Joined communities",
		Description: "Returns the caller's memberships with community summaries",
		Tags:        []string{"Communities"},
		Security:    bearerSecurity,
	}, s.handleJoinedCommunities)

	huma.Register(s.api, huma.Operation{
		OperationID: "communityLookups",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/lookups",
		Summary:     "Community lookups",
		Description: "Returns the legal visibility and category labels",
		Tags:        []string{"Communities"},
	}, s.handleCommunityLookups)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCommunity",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/{id}",
		Summary:     "Get community",
		Description: "Returns a community with visibility, category and members",
		Tags:        []string{"Communities"},
		Security:    bearerSecurity,
	}, s.handleGetCommunity)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/{id}/members",
		Summary:     "List members",
		Tags:        []string{"Communities"},
		Security:    bearerSecurity,
	}, s.handleListMembers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addMember",
		Method:        http.MethodPost,
		Path:          "/api/v1/communities/{id}/members",
		Summary:       "Add member",
		Description:   "Adds a user with a Moderator or Member role. Caller must be a Moderator or the Creator.",
		Tags:          []string{"Communities"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMemberRole",
		Method:      http.MethodPut,
		Path:        "/api/v1/communities/{id}/members/{user_id}/roles",
		Summary:     "Change member role",
		Tags:        []string{"Communities"},
		Security:    bearerSecurity,
	}, s.handleUpdateMemberRole)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeMember",
		Method:      http.MethodDelete,
		Path:        "/api/v1/communities/{id}/members/{user_id}",
		Summary:     "Remove member",
		Description: "Removes a member and returns the membership as it was",
		Tags:        []string{"Communities"},
		Security:    bearerSecurity,
	}, s.handleRemoveMember)
}

// CommunityIDInput identifies a community.
type CommunityIDInput struct {
	ID string `path:"id" doc:"Community ID"`
}

// CreateCommunityInput is the request for createCommunity.
type CreateCommunityInput struct {
	Body service.CreateCommunityRequest
}

// CommunityDetailsOutput wraps a community with its roster.
type CommunityDetailsOutput struct {
	Body *service.CommunityDetails
}

// CommunitiesOutput wraps a list of communities.
type CommunitiesOutput struct {
	Body []*domain.Community
}

// JoinedCommunitiesOutput wraps the caller's memberships.
type JoinedCommunitiesOutput struct {
	Body []*domain.JoinedCommunity
}

// CommunityLookupsOutput lists the labels createCommunity accepts.
type CommunityLookupsOutput struct {
	Body struct {
		Visibilities []string `json:"visibilities"`
		Categories   []string `json:"categories"`
	}
}

// MembersOutput wraps a community roster.
type MembersOutput struct {
	Body []*domain.Membership
}

// MembershipOutput wraps one membership.
type MembershipOutput struct {
	Body *domain.Membership
}

// AddMemberInput is the request for addMember.
type AddMemberInput struct {
	ID   string `path:"id" doc:"Community ID"`
	Body service.AddMemberRequest
}

// MemberInput identifies a member of a community.
type MemberInput struct {
	ID     string `path:"id" doc:"Community ID"`
	UserID string `path:"user_id" doc:"User ID of the member"`
}

// UpdateMemberRoleInput is the request for updateMemberRole.
type UpdateMemberRoleInput struct {
	ID     string `path:"id" doc:"Community ID"`
	UserID string `path:"user_id" doc:"User ID of the member"`
	Body   service.UpdateRoleRequest
}

func (s *Server) handleListCommunities(ctx context.Context, _ *struct{}) (*CommunitiesOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	communities, err := s.services.Community.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CommunitiesOutput{Body: communities}, nil
}

func (s *Server) handleCreateCommunity(ctx context.Context, input *CreateCommunityInput) (*CommunityDetailsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	details, err := s.services.Community.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CommunityDetailsOutput{Body: details}, nil
}

func (s *Server) handleJoinedCommunities(ctx context.Context, _ *struct{}) (*JoinedCommunitiesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	joined, err := s.services.Community.Joined(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &JoinedCommunitiesOutput{Body: joined}, nil
}

func (s *Server) handleCommunityLookups(ctx context.Context, _ *struct{}) (*CommunityLookupsOutput, error) {
	visibilities, categories, err := s.services.Community.Lookups(ctx)
	if err != nil {
		return nil, err
	}
	out := &CommunityLookupsOutput{}
	out.Body.Visibilities = visibilities
	out.Body.Categories = categories
	return out, nil
}

func (s *Server) handleGetCommunity(ctx context.Context, input *CommunityIDInput) (*CommunityDetailsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	details, err := s.services.Community.Details(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CommunityDetailsOutput{Body: details}, nil
}

func (s *Server) handleListMembers(ctx context.Context, input *CommunityIDInput) (*MembersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	members, err := s.services.Community.Members(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MembersOutput{Body: members}, nil
}

func (s *Server) handleAddMember(ctx context.Context, input *AddMemberInput) (*MembershipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	membership, err := s.services.Community.AddMember(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &MembershipOutput{Body: membership}, nil
}

func (s *Server) handleUpdateMemberRole(ctx context.Context, input *UpdateMemberRoleInput) (*MembershipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	membership, err := s.services.Community.UpdateMemberRole(ctx, userID, input.ID, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &MembershipOutput{Body: membership}, nil
}

func (s *Server) handleRemoveMember(ctx context.Context, input *MemberInput) (*MembershipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	membership, err := s.services.Community.RemoveMember(ctx, userID, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	return &MembershipOutput{Body: membership}, nil
}
