package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func user(id string, role Role) *AppUser {
	return &AppUser{ID: id, Name: "u-" + id, Role: role, Active: true}
}

func TestCanCreateCase(t *testing.T) {
	assert.True(t, CanCreateCase(user("1", RoleRegistration)))
	assert.True(t, CanCreateCase(user("2", RoleAdmin)))
	assert.False(t, CanCreateCase(user("3", RoleForensics)))
	assert.False(t, CanCreateCase(user("4", RoleForensicsHead)))
	assert.False(t, CanCreateCase(nil))
}

func TestCanAssignCases(t *testing.T) {
	assert.True(t, CanAssignCases(user("1", RoleForensicsHead)))
	assert.True(t, CanAssignCases(user("2", RoleAdmin)))
	assert.False(t, CanAssignCases(user("3", RoleRegistration)))
	assert.False(t, CanAssignCases(user("4", RoleForensics)))
}

func TestCanSetPriority(t *testing.T) {
	assert.True(t, CanSetPriority(user("1", RoleRegistration)))
	assert.True(t, CanSetPriority(user("2", RoleAdmin)))
	assert.False(t, CanSetPriority(user("3", RoleForensics)))
}

func TestCanCompleteCase(t *testing.T) {
	owner := "emp-1"
	c := &Case{ID: "c1", Status: CaseStatusInProgress, AssignedToID: &owner}

	assert.True(t, CanCompleteCase(user("emp-1", RoleForensics), c))
	assert.True(t, CanCompleteCase(user("emp-1", RoleForensicsHead), c))
	assert.True(t, CanCompleteCase(user("someone-else", RoleAdmin), c))

	// forensics staff who do not own the case
	assert.False(t, CanCompleteCase(user("emp-2", RoleForensics), c))
	assert.False(t, CanCompleteCase(user("emp-2", RoleForensicsHead), c))
	assert.False(t, CanCompleteCase(user("emp-1", RoleRegistration), c))

	unassigned := &Case{ID: "c2", Status: CaseStatusNew}
	assert.False(t, CanCompleteCase(user("emp-1", RoleForensics), unassigned))
	assert.True(t, CanCompleteCase(user("emp-1", RoleAdmin), unassigned))
}

func TestCanViewCase(t *testing.T) {
	owner := "emp-1"
	assigned := &Case{ID: "c1", AssignedToID: &owner}
	unassigned := &Case{ID: "c2"}

	assert.True(t, CanViewCase(user("x", RoleRegistration), assigned))
	assert.True(t, CanViewCase(user("x", RoleAdmin), assigned))

	assert.True(t, CanViewCase(user("emp-1", RoleForensics), assigned))
	assert.False(t, CanViewCase(user("emp-2", RoleForensics), assigned))
	assert.False(t, CanViewCase(user("emp-1", RoleForensics), unassigned))

	assert.True(t, CanViewCase(user("emp-2", RoleForensicsHead), unassigned))
	assert.True(t, CanViewCase(user("emp-1", RoleForensicsHead), assigned))
	assert.False(t, CanViewCase(user("emp-2", RoleForensicsHead), assigned))
}

func TestCanManageEvidence(t *testing.T) {
	assert.True(t, CanManageEvidence(user("1", RoleForensics)))
	assert.True(t, CanManageEvidence(user("2", RoleForensicsHead)))
	assert.True(t, CanManageEvidence(user("3", RoleAdmin)))
	assert.False(t, CanManageEvidence(user("4", RoleRegistration)))
}

func TestEvidenceKindForMediaType(t *testing.T) {
	kind, ok := EvidenceKindForMediaType("image/jpeg")
	assert.True(t, ok)
	assert.Equal(t, EvidenceKindImage, kind)

	kind, ok = EvidenceKindForMediaType("application/pdf")
	assert.True(t, ok)
	assert.Equal(t, EvidenceKindReport, kind)

	_, ok = EvidenceKindForMediaType("image/gif")
	assert.False(t, ok)
	_, ok = EvidenceKindForMediaType("video/mp4")
	assert.False(t, ok)
	_, ok = EvidenceKindForMediaType("")
	assert.False(t, ok)
}

func TestKnownDepartment(t *testing.T) {
	assert.True(t, KnownDepartment("Digital Forensics"))
	assert.True(t, KnownDepartment("Biology"))
	assert.True(t, KnownDepartment("Chemistry"))
	assert.False(t, KnownDepartment("Physics"))
	assert.False(t, KnownDepartment(""))
}
