package domain

// Permission predicates are pure functions of principal and, where
// relevant, the case under mutation. The lifecycle engine evaluates
// these before any state change.

// CanCreateCase reports whether the principal may register a new case.
func CanCreateCase(u *AppUser) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleRegistration || u.Role == RoleAdmin
}

// CanAssignCases reports whether the principal may bind cases to
// forensics employees.
func CanAssignCases(u *AppUser) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleForensicsHead || u.Role == RoleAdmin
}

// CanSetPriority reports whether the principal may toggle case priority.
func CanSetPriority(u *AppUser) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleRegistration || u.Role == RoleAdmin
}

// CanCompleteCase reports whether the principal may complete the given
// case. Forensics personnel must own the assignment; admins bypass.
func CanCompleteCase(u *AppUser, c *Case) bool {
	if u == nil || c == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	if u.Role != RoleForensics && u.Role != RoleForensicsHead {
		return false
	}
	return c.AssignedToID != nil && *c.AssignedToID == u.ID
}

// CanViewCase reports whether the principal may read the given case.
// Registration and admin see everything; forensics see their own
// assignments; forensics heads additionally see unassigned cases for
// triage.
func CanViewCase(u *AppUser, c *Case) bool {
	if u == nil || c == nil {
		return false
	}
	switch u.Role {
	case RoleRegistration, RoleAdmin:
		return true
	case RoleForensicsHead:
		if !c.Assigned() {
			return true
		}
		return *c.AssignedToID == u.ID
	case RoleForensics:
		return c.AssignedToID != nil && *c.AssignedToID == u.ID
	}
	return false
}

// CanManageEvidence reports whether the principal may mutate specimens,
// tests, and evidence files.
func CanManageEvidence(u *AppUser) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleForensics || u.Role == RoleForensicsHead || u.Role == RoleAdmin
}
