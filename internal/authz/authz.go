// Package authz contains the pure authorization rules for mentorhub.
//
// Every function here is a side-effect-free decision over facts the caller
// has already loaded (ownership, membership, assignment). Services re-query
// those facts on every request before asking for a decision; nothing in this
// package caches state.
package authz

import (
	"fmt"

	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
)

// Decision is the outcome of an authorization check. InvalidRole marks the
// distinguished "unknown role" denial, which callers surface differently
// from an ordinary forbidden.
type Decision struct {
	Allowed     bool
	Reason      string
	InvalidRole bool
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

func DenyInvalidRole(role string) Decision {
	return Decision{Reason: fmt.Sprintf("invalid role: %q", role), InvalidRole: true}
}

// CanCreateProject allows mentors only.
func CanCreateProject(role string) Decision {
	switch role {
	case models.RoleMentor:
		return Allow()
	case models.RoleStudent:
		return Deny("students cannot create projects")
	}
	return DenyInvalidRole(role)
}

// CanViewProject decides project (and project analytics) read access:
// the owning mentor, or a student who is a current member.
func CanViewProject(role string, userID, mentorID uint, isMember bool) Decision {
	switch role {
	case models.RoleMentor:
		if userID == mentorID {
			return Allow()
		}
		return Deny("project is owned by another mentor")
	case models.RoleStudent:
		if isMember {
			return Allow()
		}
		return Deny("not a member of this project")
	}
	return DenyInvalidRole(role)
}

// CanManageProject decides project mutation access: update, delete, member
// add/remove, task create/delete and reassignment. Owning mentor only.
func CanManageProject(role string, userID, mentorID uint) Decision {
	switch role {
	case models.RoleMentor:
		if userID == mentorID {
			return Allow()
		}
		return Deny("project is owned by another mentor")
	case models.RoleStudent:
		return Deny("only the project mentor may do this")
	}
	return DenyInvalidRole(role)
}

// CanViewTask allows the assignee or the owning mentor.
func CanViewTask(role string, userID, mentorID uint, assignedToID *uint) Decision {
	switch role {
	case models.RoleMentor:
		if userID == mentorID {
			return Allow()
		}
		return Deny("task belongs to another mentor's project")
	case models.RoleStudent:
		if assignedToID != nil && *assignedToID == userID {
			return Allow()
		}
		return Deny("task is not assigned to you")
	}
	return DenyInvalidRole(role)
}

// TaskUpdateScope describes which task fields the caller may patch.
type TaskUpdateScope int

const (
	// TaskUpdateNone: no fields may be changed.
	TaskUpdateNone TaskUpdateScope = iota
	// TaskUpdateStatus: status only (the assignee on their own task).
	TaskUpdateStatus
	// TaskUpdateFull: any field (the owning mentor).
	TaskUpdateFull
)

// TaskPatchScope decides how much of a task the caller may patch. A student
// assignee gets status-only scope; touching title or assignment with that
// scope is rejected by the service even when the rest of the patch is legal.
func TaskPatchScope(role string, userID, mentorID uint, assignedToID *uint) (TaskUpdateScope, Decision) {
	switch role {
	case models.RoleMentor:
		if userID == mentorID {
			return TaskUpdateFull, Allow()
		}
		return TaskUpdateNone, Deny("task belongs to another mentor's project")
	case models.RoleStudent:
		if assignedToID != nil && *assignedToID == userID {
			return TaskUpdateStatus, Allow()
		}
		return TaskUpdateNone, Deny("task is not assigned to you")
	}
	return TaskUpdateNone, DenyInvalidRole(role)
}

// CanSubmitFeedback requires both parties to be current members of the
// project. Either role may submit.
func CanSubmitFeedback(role string, fromIsMember, toIsMember bool) Decision {
	if !models.IsValidRole(role) {
		return DenyInvalidRole(role)
	}
	if !fromIsMember {
		return Deny("you are not a member of this project")
	}
	if !toIsMember {
		return Deny("recipient is not a member of this project")
	}
	return Allow()
}

// CanListFeedback decides whether the caller may list any feedback for the
// project at all; row-level filtering for students is applied separately.
func CanListFeedback(role string, userID, mentorID uint, isMember bool) Decision {
	return CanViewProject(role, userID, mentorID, isMember)
}

// FeedbackVisible reports whether a single feedback row may be shown to the
// caller: mentors see every row of projects they own, students only rows
// they sent or received.
func FeedbackVisible(role string, userID, mentorID, fromUserID, toUserID uint) bool {
	switch role {
	case models.RoleMentor:
		return userID == mentorID
	case models.RoleStudent:
		return userID == fromUserID || userID == toUserID
	}
	return false
}
