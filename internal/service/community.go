package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/id"
	"github.com/vivilio/vivilio-server/internal/normalize"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/store"
)

// CommunityService manages communities and their membership rosters.
//
// Member management (add, update role, remove) is gated on the acting
// user's own membership: only roles with authority above Member may manage,
// and the Creator membership can be neither assigned, changed nor removed.
type CommunityService struct {
	Deps
}

// NewCommunityService creates a community service.
func NewCommunityService(deps Deps) *CommunityService {
	return &CommunityService{Deps: deps.withDefaults()}
}

// CreateCommunityRequest is the field table of createCommunity.
type CreateCommunityRequest struct {
	Name            string `json:"name,omitempty" validate:"min=5,max=100" msg:"Community name must be between 5 and 100 characters."`
	Description     string `json:"description,omitempty" validate:"max=100" msg:"Description must not be more than 100 characters."`
	RestrictPosting *bool  `json:"restrict_posting,omitempty" validate:"required" msg:"Restrict posting must be a boolean."`
	Visibility      string `json:"visibility,omitempty" validate:"required" msg:"Visibility type's not found."`
	Category        string `json:"category,omitempty" validate:"required" msg:"Category type's not found."`
}

// AddMemberRequest is the field table of addMember.
type AddMemberRequest struct {
	UserID string `json:"user_id,omitempty" validate:"required" msg:"User_id must be provided."`
	Role   string `json:"role,omitempty" validate:"required" msg:"Must be a valid role."`
}

// UpdateRoleRequest is the field table of updateMemberRole.
type UpdateRoleRequest struct {
	Role string `json:"role,omitempty" validate:"required" msg:"Must be a valid role."`
}

// CommunityDetails is a community with its roster.
type CommunityDetails struct {
	*domain.Community
	Members []*domain.Membership `json:"members"`
}

// Create makes a community and the creator's Creator membership in one
// transaction. Name uniqueness is checked up front for a clean error and
// enforced by the store against concurrent creates.
func (s *CommunityService) Create(ctx context.Context, creatorID string, req CreateCommunityRequest) (*CommunityDetails, error) {
	details, err := s.create(ctx, creatorID, req)
	return details, s.observe("create_community", err)
}

func (s *CommunityService) create(ctx context.Context, creatorID string, req CreateCommunityRequest) (*CommunityDetails, error) {
	req.Name = normalize.Label(req.Name)
	req.Description = normalize.Description(req.Description)
	req.Visibility = normalize.Label(req.Visibility)
	req.Category = normalize.Label(req.Category)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	communityID, err := id.Generate(id.Community)
	if err != nil {
		return nil, fmt.Errorf("generate community ID: %w", err)
	}
	membershipID, err := id.Generate(id.Membership)
	if err != nil {
		return nil, fmt.Errorf("generate membership ID: %w", err)
	}

	community := &domain.Community{
		Entity:          domain.Entity{ID: communityID},
		Name:            req.Name,
		Description:     req.Description,
		RestrictPosting: *req.RestrictPosting,
	}
	community.InitTimestamps()

	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		taken, err := tx.CommunityNameTaken(ctx, community.Name)
		if err != nil {
			return fmt.Errorf("check community name: %w", err)
		}
		if taken {
			return domainerrors.Conflict(msgCommunityNameTaken)
		}

		visibility, err := tx.GetVisibilityByType(ctx, req.Visibility)
		if err != nil {
			return notFound(err, msgVisibilityNotFound)
		}
		category, err := tx.GetCategoryByType(ctx, req.Category)
		if err != nil {
			return notFound(err, msgCategoryNotFound)
		}
		community.Visibility = *visibility
		community.Category = *category

		creator, err := tx.GetRoleByType(ctx, string(domain.RoleCreator))
		if err != nil {
			return fmt.Errorf("load creator role: %w", err)
		}

		if err := tx.CreateCommunity(ctx, community); err != nil {
			return conflict(err, msgCommunityNameTaken, "create community")
		}

		membership := &domain.Membership{
			Entity:      domain.Entity{ID: membershipID},
			UserID:      creatorID,
			CommunityID: community.ID,
			Role:        *creator,
		}
		membership.InitTimestamps()
		if err := tx.CreateMembership(ctx, membership); err != nil {
			if errors.Is(err, store.ErrReferenceMissing) {
				return domainerrors.NotFound(msgUserNotFound)
			}
			return fmt.Errorf("create creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.index(search.CommunityDocument(community))
	s.Logger.Info("community created", "community_id", community.ID, "user_id", creatorID)

	return s.Details(ctx, community.ID)
}

// Details returns a community with its member roster.
func (s *CommunityService) Details(ctx context.Context, communityID string) (*CommunityDetails, error) {
	community, err := s.Store.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, notFound(err, msgCommunityNotFound)
	}
	members, err := s.Store.ListMembers(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return &CommunityDetails{Community: community, Members: members}, nil
}

// List returns every community.
func (s *CommunityService) List(ctx context.Context) ([]*domain.Community, error) {
	return s.Store.ListCommunities(ctx)
}

// Joined returns the communities userID belongs to.
func (s *CommunityService) Joined(ctx context.Context, userID string) ([]*domain.JoinedCommunity, error) {
	return s.Store.ListJoinedCommunities(ctx, userID)
}

// Members returns the roster of a community.
func (s *CommunityService) Members(ctx context.Context, communityID string) ([]*domain.Membership, error) {
	if _, err := s.Store.GetCommunity(ctx, communityID); err != nil {
		return nil, notFound(err, msgCommunityMissing)
	}
	return s.Store.ListMembers(ctx, communityID)
}

// AddMember gives targetUserID the role req.Role in a community.
func (s *CommunityService) AddMember(ctx context.Context, actorID, communityID string, req AddMemberRequest) (*domain.Membership, error) {
	m, err := s.addMember(ctx, actorID, communityID, req)
	return m, s.observe("add_member", err)
}

func (s *CommunityService) addMember(ctx context.Context, actorID, communityID string, req AddMemberRequest) (*domain.Membership, error) {
	req.UserID = normalize.Text(req.UserID)
	req.Role = normalize.Label(req.Role)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.authorize(ctx, actorID, communityID); err != nil {
		return nil, err
	}
	role, err := s.resolveTarget(ctx, req.UserID, req.Role)
	if err != nil {
		return nil, err
	}

	membershipID, err := id.Generate(id.Membership)
	if err != nil {
		return nil, fmt.Errorf("generate membership ID: %w", err)
	}
	membership := &domain.Membership{
		Entity:      domain.Entity{ID: membershipID},
		UserID:      req.UserID,
		CommunityID: communityID,
		Role:        *role,
	}
	membership.InitTimestamps()

	if err := s.Store.CreateMembership(ctx, membership); err != nil {
		return nil, conflict(err, msgAlreadyMember, "create membership")
	}

	s.Logger.Info("member added",
		"community_id", communityID,
		"user_id", req.UserID,
		"role", role.Type,
		"actor_id", actorID,
	)

	return s.Store.GetMembership(ctx, communityID, req.UserID)
}

// UpdateMemberRole changes the role of targetUserID in a community.
func (s *CommunityService) UpdateMemberRole(ctx context.Context, actorID, communityID, targetUserID string, req UpdateRoleRequest) (*domain.Membership, error) {
	m, err := s.updateMemberRole(ctx, actorID, communityID, targetUserID, req)
	return m, s.observe("update_member_role", err)
}

func (s *CommunityService) updateMemberRole(ctx context.Context, actorID, communityID, targetUserID string, req UpdateRoleRequest) (*domain.Membership, error) {
	req.Role = normalize.Label(req.Role)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.authorize(ctx, actorID, communityID); err != nil {
		return nil, err
	}
	role, err := s.resolveTarget(ctx, targetUserID, req.Role)
	if err != nil {
		return nil, err
	}

	target, err := s.Store.GetMembership(ctx, communityID, targetUserID)
	if err != nil {
		return nil, notFound(err, msgMembershipNotFound)
	}
	if target.IsCreator() {
		return nil, domainerrors.Forbidden(msgCreatorRoleFixed)
	}

	if err := s.Store.UpdateMembershipRole(ctx, target.ID, *role); err != nil {
		return nil, notFound(err, msgMembershipNotFound)
	}

	s.Logger.Info("member role updated",
		"community_id", communityID,
		"user_id", targetUserID,
		"role", role.Type,
		"actor_id", actorID,
	)

	return s.Store.GetMembership(ctx, communityID, targetUserID)
}

// RemoveMember deletes the membership of targetUserID and returns it as it
// was before removal.
func (s *CommunityService) RemoveMember(ctx context.Context, actorID, communityID, targetUserID string) (*domain.Membership, error) {
	m, err := s.removeMember(ctx, actorID, communityID, targetUserID)
	return m, s.observe("remove_member", err)
}

func (s *CommunityService) removeMember(ctx context.Context, actorID, communityID, targetUserID string) (*domain.Membership, error) {
	if _, err := s.authorize(ctx, actorID, communityID); err != nil {
		return nil, err
	}
	if _, err := s.Store.GetUser(ctx, targetUserID); err != nil {
		return nil, notFound(err, msgInvalidUserID)
	}

	target, err := s.Store.GetMembership(ctx, communityID, targetUserID)
	if err != nil {
		return nil, notFound(err, msgMembershipNotFound)
	}
	if target.IsCreator() {
		return nil, domainerrors.Forbidden(msgCreatorNotRemoved)
	}

	if err := s.Store.DeleteMembership(ctx, target.ID); err != nil {
		return nil, notFound(err, msgMembershipNotFound)
	}

	s.Logger.Info("member removed",
		"community_id", communityID,
		"user_id", targetUserID,
		"actor_id", actorID,
	)
	return target, nil
}

// resolveTarget checks that the target user exists and that roleLabel names
// an assignable role.
func (s *CommunityService) resolveTarget(ctx context.Context, targetUserID, roleLabel string) (*domain.Role, error) {
	if _, err := s.Store.GetUser(ctx, targetUserID); err != nil {
		return nil, notFound(err, msgInvalidUserID)
	}

	role, err := s.Store.GetRoleByType(ctx, roleLabel)
	if err != nil {
		return nil, notFound(err, msgInvalidRole)
	}
	if !role.Type.Assignable() {
		return nil, domainerrors.NotFound(msgInvalidRole)
	}
	return role, nil
}

// authorize checks that the community exists and returns the actor's
// membership if it may manage members. It runs before any target lookup, so a
// plain member is refused whatever the target.
func (s *CommunityService) authorize(ctx context.Context, actorID, communityID string) (*domain.Membership, error) {
	if _, err := s.Store.GetCommunity(ctx, communityID); err != nil {
		return nil, notFound(err, msgCommunityMissing)
	}
	actor, err := s.Store.GetMembership(ctx, communityID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Forbidden(msgActorNotMember)
		}
		return nil, fmt.Errorf("load actor membership: %w", err)
	}
	if !actor.Role.Type.CanManageMembers() {
		return nil, domainerrors.Forbidden(msgCannotManage)
	}
	return actor, nil
}

// Lookups returns the legal visibility and category labels.
func (s *CommunityService) Lookups(ctx context.Context) (visibilities, categories []string, err error) {
	vs, err := s.Store.ListVisibilities(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list visibilities: %w", err)
	}
	cs, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	visibilities = lo.Map(vs, func(v *domain.Visibility, _ int) string { return v.Type })
	categories = lo.Map(cs, func(c *domain.Category, _ int) string { return c.Type })
	return visibilities, categories, nil
}
