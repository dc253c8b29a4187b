package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

func newCatalogFixture() (*CatalogService, *fakeDepartmentRepo, *fakeUserRepo) {
	departments := newFakeDepartmentRepo()
	users := newFakeUserRepo()
	svc := NewCatalogService(CatalogDependencies{
		DepartmentRepo: departments,
		CategoryRepo:   newFakeCategoryRepo(),
		ServiceRepo:    newFakeServiceCatalogRepo(),
		UserRepo:       users,
		Logger:         zap.NewNop(),
	})
	return svc, departments, users
}

func TestCatalogCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("department lifecycle", func(t *testing.T) {
		svc, _, _ := newCatalogFixture()
		dept, err := svc.CreateDepartment(ctx, DepartmentInput{Name: "IT Support"})
		require.NoError(t, err)
		assert.True(t, dept.IsActive)

		inactive := false
		updated, err := svc.UpdateDepartment(ctx, dept.ID, DepartmentInput{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)

		active, err := svc.ListDepartments(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := svc.ListDepartments(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("blank names rejected", func(t *testing.T) {
		svc, _, _ := newCatalogFixture()
		_, err := svc.CreateDepartment(ctx, DepartmentInput{Name: "  "})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
		_, err = svc.CreateCategory(ctx, CategoryInput{Name: ""})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("service requires an existing category", func(t *testing.T) {
		svc, _, _ := newCatalogFixture()
		_, err := svc.CreateService(ctx, CatalogServiceInput{CategoryID: "ghost", Name: "Laptop"})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

		category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Hardware"})
		require.NoError(t, err)

		created, err := svc.CreateService(ctx, CatalogServiceInput{CategoryID: category.ID, Name: "Laptop"})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityMedium, created.DefaultPriority)
		assert.False(t, created.RequiresApproval)

		fetched, err := svc.GetService(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, fetched.Name)
	})

	t.Run("unknown service is NOT_FOUND", func(t *testing.T) {
		svc, _, _ := newCatalogFixture()
		_, err := svc.GetService(ctx, "nope")
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})
}

func TestListAgents(t *testing.T) {
	ctx := context.Background()
	svc, departments, users := newCatalogFixture()

	departments.departments["it"] = &domain.Department{ID: "it", Name: "IT", IsActive: true}
	deptID := "it"
	users.users["agent-1"] = &domain.User{ID: "agent-1", Role: domain.RoleAgent, DepartmentID: &deptID, Active: true}
	users.users["agent-2"] = &domain.User{ID: "agent-2", Role: domain.RoleAgent, DepartmentID: &deptID, Active: false}
	users.users["staff-1"] = &domain.User{ID: "staff-1", Role: domain.RoleDepartmentStaff, DepartmentID: &deptID, Active: true}

	agents, err := svc.ListAgents(ctx, "it")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "agent-1", agents[0].ID)

	_, err = svc.ListAgents(ctx, "ghost")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
