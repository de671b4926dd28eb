package common

import (
	"context"
	"testing"

	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	adminRole := int64(601)

	tests := []struct {
		name     string
		settings *models.GuildSettings
		member   *models.Member
		wantErr  bool
	}{
		{
			name:     "admin role holder",
			settings: &models.GuildSettings{GuildID: 111, AdminRoleID: &adminRole},
			member:   &models.Member{UserID: 201, RoleIDs: []int64{601}},
		},
		{
			name:     "manage server without admin role configured",
			settings: &models.GuildSettings{GuildID: 111},
			member:   &models.Member{UserID: 201, Permissions: service.PermissionManageGuild},
		},
		{
			name:     "manage server ignored when admin role configured",
			settings: &models.GuildSettings{GuildID: 111, AdminRoleID: &adminRole},
			member:   &models.Member{UserID: 201, Permissions: service.PermissionManageGuild},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := new(service.MockGuildSettingsService)
			settings.On("GetOrCreateSettings", mock.Anything, int64(111)).Return(tt.settings, nil)

			err := RequireAdmin(context.Background(), settings, &Invocation{GuildID: 111, Member: tt.member})

			if tt.wantErr {
				require.Error(t, err)
				_, ok := service.UserMessage(err)
				assert.True(t, ok)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	const manageMessages int64 = 1 << 13

	assert.NoError(t, RequirePermission(&Invocation{Member: &models.Member{Permissions: manageMessages}}, manageMessages, "Manage Messages"))

	err := RequirePermission(&Invocation{Member: &models.Member{}}, manageMessages, "Manage Messages")
	require.Error(t, err)
	assert.Equal(t, "You are missing Manage Messages permission to run this command.", err.Error())

	assert.Error(t, RequirePermission(&Invocation{}, manageMessages, "Manage Messages"))
}
