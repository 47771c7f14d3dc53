package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// memberContext returns the caller and their project access, set by
// RequireAuth and RequireProjectAccess
func memberContext(c *gin.Context) (*models.User, *services.ProjectAccess, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return nil, nil, false
	}
	access, ok := middleware.GetProjectAccess(c)
	if !ok {
		apierrors.InternalError(c, "Project access not found in context")
		return nil, nil, false
	}
	return user, access, true
}

// ListMembers returns the project owner and member rows
func (h *MemberHandler) ListMembers(c *gin.Context) {
	_, access, ok := memberContext(c)
	if !ok {
		return
	}

	list, err := h.memberService.ListMembers(c.Request.Context(), access.ProjectUUID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch members")
		return
	}
	respondData(c, http.StatusOK, dto.ToMemberListResponse(list))
}

// AddMember adds one email to the project
func (h *MemberHandler) AddMember(c *gin.Context) {
	user, access, ok := memberContext(c)
	if !ok {
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	member, err := h.memberService.AddMember(c.Request.Context(), access, user, services.MemberInput{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to add member")
		return
	}
	respondData(c, http.StatusCreated, dto.ToMemberDTO(*member))
}

// BulkAddMembers adds many emails, skipping those already present
func (h *MemberHandler) BulkAddMembers(c *gin.Context) {
	user, access, ok := memberContext(c)
	if !ok {
		return
	}

	type BulkAddRequest struct {
		Members []memberRequest `json:"members" binding:"required,dive"`
	}

	var req BulkAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.memberService.BulkAddMembers(c.Request.Context(), access, user, toMemberInputs(req.Members))
	if err != nil {
		respondServiceError(c, err, "Failed to add members")
		return
	}
	respondData(c, http.StatusCreated, dto.ToBulkAddResponse(result))
}

// InviteMembers is the legacy invite endpoint taking {emails, role}
func (h *MemberHandler) InviteMembers(c *gin.Context) {
	user, access, ok := memberContext(c)
	if !ok {
		return
	}

	type InviteRequest struct {
		Emails []string          `json:"emails" binding:"required"`
		Role   models.MemberRole `json:"role"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.memberService.InviteMembers(c.Request.Context(), access, user, req.Emails, req.Role)
	if err != nil {
		respondServiceError(c, err, "Failed to send invitations")
		return
	}
	respondData(c, http.StatusCreated, dto.ToBulkAddResponse(result))
}

// UpdateMemberRole changes a member's role
func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	_, access, ok := memberContext(c)
	if !ok {
		return
	}
	memberID, ok := parseMemberID(c)
	if !ok {
		return
	}

	type UpdateRoleRequest struct {
		Role models.MemberRole `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	member, err := h.memberService.UpdateMemberRole(c.Request.Context(), access, memberID, req.Role)
	if err != nil {
		respondServiceError(c, err, "Failed to update member")
		return
	}
	respondData(c, http.StatusOK, dto.ToMemberDTO(*member))
}

// RemoveMember removes a member row
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	_, access, ok := memberContext(c)
	if !ok {
		return
	}
	memberID, ok := parseMemberID(c)
	if !ok {
		return
	}

	if err := h.memberService.RemoveMember(c.Request.Context(), access, memberID); err != nil {
		respondServiceError(c, err, "Failed to remove member")
		return
	}
	respondMessage(c, "Member removed successfully")
}

func parseMemberID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("memberId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid member ID")
		return 0, false
	}
	return id, true
}
