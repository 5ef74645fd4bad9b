package orderflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/restaurant-platform/models"
)

func TestCheckFollowsLifecycle(t *testing.T) {
	path := []struct {
		from, to, role string
	}{
		{AwaitingApproval, Pending, models.RoleCashier},
		{Pending, Preparing, models.RoleCook},
		{Preparing, Ready, models.RoleCook},
		{Ready, Completed, models.RoleCashier},
	}
	for _, step := range path {
		assert.NoError(t, Check(step.from, step.to, step.role), "%s -> %s", step.from, step.to)
	}
}

func TestCheckRejectsUnknownStatus(t *testing.T) {
	assert.ErrorIs(t, Check(Pending, "delivered", models.RoleManager), ErrUnknownStatus)
	assert.ErrorIs(t, Check("", Pending, models.RoleManager), ErrUnknownStatus)
}

func TestCheckRejectsSkippedSteps(t *testing.T) {
	assert.ErrorIs(t, Check(AwaitingApproval, Ready, models.RoleManager), ErrInvalidTransition)
	assert.ErrorIs(t, Check(Completed, Pending, models.RoleManager), ErrInvalidTransition)
	assert.ErrorIs(t, Check(Ready, Ready, models.RoleManager), ErrInvalidTransition)
}

func TestCheckRoles(t *testing.T) {
	assert.ErrorIs(t, Check(Pending, Preparing, models.RoleCashier), ErrRoleNotAllowed)
	assert.ErrorIs(t, Check(AwaitingApproval, Pending, models.RoleCook), ErrRoleNotAllowed)
	assert.ErrorIs(t, Check(Pending, Cancelled, models.RoleClient), ErrRoleNotAllowed)
	assert.NoError(t, Check(AwaitingApproval, Cancelled, models.RoleClient))
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, s := range []string{Completed, Rejected, Cancelled} {
		assert.True(t, IsTerminal(s))
		assert.Empty(t, Next(s))
	}
	assert.Equal(t, []string{Pending, Rejected, Cancelled}, Next(AwaitingApproval))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, Pending, InitialStatus(models.SourceCounter))
	assert.Equal(t, AwaitingApproval, InitialStatus(models.SourceApp))
	assert.Equal(t, AwaitingApproval, InitialStatus(models.SourceWeb))
}
