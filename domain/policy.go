package domain

// Authorization policy. Pure decision functions; callers translate a false
// result into ErrForbidden.

// CanRead reports whether actor may view the task: admins, the creator and
// the current assignee.
func CanRead(actor User, t Task) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	if t.CreatedBy.ID == actor.ID {
		return true
	}
	return t.AssignedTo != nil && t.AssignedTo.ID == actor.ID
}

// CanWrite reports whether actor may edit or delete the task. Narrower than
// CanRead: assignees may view but not modify.
func CanWrite(actor User, t Task) bool {
	return actor.Role == RoleAdmin || t.CreatedBy.ID == actor.ID
}

// CanAddAttachment follows the read rule: anyone who can see a task may
// attach files to it.
func CanAddAttachment(actor User, t Task) bool {
	return CanRead(actor, t)
}

// CanRemoveAttachment follows the write rule: only the creator or an admin
// may remove files, even ones an assignee uploaded.
func CanRemoveAttachment(actor User, t Task) bool {
	return CanWrite(actor, t)
}
