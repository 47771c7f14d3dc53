package services

import "errors"

var (
	ErrInvalidCredential   = errors.New("invalid or expired credential")
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrEmailTaken          = errors.New("email is already used by another account")
	ErrNotSelf             = errors.New("users can only modify their own account")
	ErrNameRequired        = errors.New("name is required")

	ErrProjectNotFound      = errors.New("project not found")
	ErrNotProjectMember     = errors.New("you do not have access to this project")
	ErrNotProjectOwner      = errors.New("only the project owner can perform this action")
	ErrInsufficientRole     = errors.New("your project role does not allow this action")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrInvalidStatus        = errors.New("invalid project status")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidDateRange     = errors.New("end date must not be before start date")
	ErrNoProjectIDsProvided = errors.New("at least one project ID is required")
	ErrTooManyProjects      = errors.New("too many projects in one request")

	ErrMemberNotFound    = errors.New("project member not found")
	ErrDuplicateMember   = errors.New("this email is already a member of the project")
	ErrAllMembersExist   = errors.New("all provided emails are already members of the project")
	ErrInvalidEmail      = errors.New("a valid email is required")
	ErrInvalidRole       = errors.New("role must be one of admin, editor, viewer")
	ErrNoMembersProvided = errors.New("at least one member email is required")
	ErrTooManyMembers    = errors.New("too many members in one request")

	ErrTaskNotFound        = errors.New("task not found")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
	ErrTaskDeleteDenied    = errors.New("only the task creator, project owner or an admin can delete this task")
	ErrInvalidTaskAssignee = errors.New("one or more users are not members of the project")
	ErrAlreadyAssigned     = errors.New("user is already assigned to this task")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrNoUserIDsProvided   = errors.New("at least one user ID is required")

	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAIEmptyResponse        = errors.New("AI returned an empty response")
)
