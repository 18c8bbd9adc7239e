package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

func TestAssignRoleScopeRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "ana")
	vm := f.machine(t, "vm-scope")
	sys := f.system(t, "Scope")
	global := f.role(t, "auditor", entity.RoleScopeGlobal)
	machineRole := f.role(t, "sysadmin", entity.RoleScopeMachine)
	systemRole := f.role(t, "owner", entity.RoleScopeSystem)
	missing := uuid.New()

	tests := []struct {
		name  string
		input UserRoleInput
		field string
	}{
		{"global with machine", UserRoleInput{UserID: user.ID, RoleID: global.ID, MachineID: &vm.ID}, "machine_id"},
		{"global with system", UserRoleInput{UserID: user.ID, RoleID: global.ID, SystemID: &sys.ID}, "system_id"},
		{"machine without machine", UserRoleInput{UserID: user.ID, RoleID: machineRole.ID}, "machine_id"},
		{"machine with system", UserRoleInput{UserID: user.ID, RoleID: machineRole.ID, MachineID: &vm.ID, SystemID: &sys.ID}, "system_id"},
		{"system without system", UserRoleInput{UserID: user.ID, RoleID: systemRole.ID}, "system_id"},
		{"system with machine", UserRoleInput{UserID: user.ID, RoleID: systemRole.ID, MachineID: &vm.ID, SystemID: &sys.ID}, "machine_id"},
		{"unknown machine", UserRoleInput{UserID: user.ID, RoleID: machineRole.ID, MachineID: &missing}, "machine_id"},
		{"unknown role", UserRoleInput{UserID: user.ID, RoleID: missing}, "role_id"},
		{"unknown user", UserRoleInput{UserID: missing, RoleID: global.ID}, "user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AssignRole(ctx, tt.input)
			assertCode(t, err, utils.CodeInvalidInput)
			assert.Contains(t, err.Error(), "invalid value for "+tt.field)
		})
	}

	granted, err := f.svc.AssignRole(ctx, UserRoleInput{UserID: user.ID, RoleID: machineRole.ID, MachineID: &vm.ID})
	require.NoError(t, err)
	require.NotNil(t, granted.Role)
	assert.Equal(t, "sysadmin", granted.Role.Name)

	_, err = f.svc.AssignRole(ctx, UserRoleInput{UserID: user.ID, RoleID: machineRole.ID, MachineID: &vm.ID})
	assertCode(t, err, utils.CodeConflict)

	_, err = f.svc.AssignRole(ctx, UserRoleInput{UserID: user.ID, RoleID: global.ID})
	require.NoError(t, err)
	_, err = f.svc.AssignRole(ctx, UserRoleInput{UserID: user.ID, RoleID: systemRole.ID, SystemID: &sys.ID})
	require.NoError(t, err)

	// Scope cannot move while grants exist.
	_, err = f.svc.UpdateRole(ctx, machineRole.ID, RoleInput{Name: "sysadmin", Scope: entity.RoleScopeSystem})
	assertCode(t, err, utils.CodeInUse)
	assertCode(t, f.svc.DeleteRole(ctx, machineRole.ID), utils.CodeInUse)

	require.NoError(t, f.svc.RemoveUserRole(ctx, granted.ID))
	assertCode(t, f.svc.RemoveUserRole(ctx, granted.ID), utils.CodeNotFound)
}

func TestRoleFormSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		scope   string
		machine bool
		system  bool
	}{
		{entity.RoleScopeGlobal, false, false},
		{entity.RoleScopeMachine, true, false},
		{entity.RoleScopeSystem, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			role := f.role(t, "role-"+tt.scope, tt.scope)
			sections, err := f.svc.RoleFormSections(ctx, role.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.machine, sections.Machine)
			assert.Equal(t, tt.system, sections.System)
			assert.Equal(t, role.ID, sections.Role.ID)
		})
	}

	_, err := f.svc.RoleFormSections(ctx, uuid.New())
	assertCode(t, err, utils.CodeNotFound)
}

func TestUsersAreListedOncePerTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vm := f.machine(t, "vm-shared")
	sys := f.system(t, "Shared")
	ana := f.user(t, "ana")
	luis := f.user(t, "luis")
	admin := f.role(t, "admin", entity.RoleScopeMachine)
	operator := f.role(t, "operator", entity.RoleScopeMachine)
	owner := f.role(t, "owner", entity.RoleScopeSystem)
	viewer := f.role(t, "viewer", entity.RoleScopeSystem)

	for _, in := range []UserRoleInput{
		{UserID: ana.ID, RoleID: admin.ID, MachineID: &vm.ID},
		{UserID: ana.ID, RoleID: operator.ID, MachineID: &vm.ID},
		{UserID: luis.ID, RoleID: operator.ID, MachineID: &vm.ID},
		{UserID: ana.ID, RoleID: owner.ID, SystemID: &sys.ID},
		{UserID: ana.ID, RoleID: viewer.ID, SystemID: &sys.ID},
	} {
		_, err := f.svc.AssignRole(ctx, in)
		require.NoError(t, err)
	}

	users, err := f.svc.UsersByMachine(ctx, vm.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = f.svc.UsersBySystem(ctx, sys.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].Username)

	machines, err := f.svc.MachinesByUser(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, machines, 1)

	systems, err := f.svc.SystemsByUser(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, systems, 1)

	data, err := f.svc.SystemReportData(ctx, sys.ID)
	require.NoError(t, err)
	require.Len(t, data.Users, 1)
	assert.ElementsMatch(t, []string{"owner", "viewer"}, data.Users[0].Roles)
}

func TestDeleteUserRemovesGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "temp")
	role := f.role(t, "auditor", entity.RoleScopeGlobal)
	_, err := f.svc.AssignRole(ctx, UserRoleInput{UserID: user.ID, RoleID: role.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUser(ctx, user.ID))

	grants, err := f.svc.UserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
	require.NoError(t, f.svc.DeleteRole(ctx, role.ID))
}

func TestCreateUserActiveFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := f.user(t, "active")
	assert.True(t, active.Active)

	off := false
	inactive, err := f.svc.CreateUser(ctx, UserInput{Username: "inactive", Email: "inactive@example.com", Active: &off})
	require.NoError(t, err)
	assert.False(t, inactive.Active)

	stored, err := f.svc.GetUser(ctx, inactive.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	_, err = f.svc.CreateUser(ctx, UserInput{Username: "ACTIVE", Email: "other@example.com"})
	assertCode(t, err, utils.CodeConflict)

	_, err = f.svc.CreateUser(ctx, UserInput{Username: "bad", Email: "not-an-email"})
	assertCode(t, err, utils.CodeInvalidInput)

	options, err := f.svc.UserOptions(ctx, "")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "active (active)", options[0].Label)

	filter := repository.UserFilter{Active: &off}
	users, err := f.svc.ListUsers(ctx, filter)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "inactive", users[0].Username)
}
