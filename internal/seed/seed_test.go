package seed

import (
	"context"
	"testing"
	"time"

	"github.com/climatrix/climatrix/internal/auth"
	"github.com/climatrix/climatrix/internal/models"
	"github.com/climatrix/climatrix/internal/store"
	"github.com/climatrix/climatrix/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sum, err := Run(context.Background(), db, Options{Now: now})
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Users:          3,
		Readings:       72,
		Alerts:         2,
		Groups:         2,
		Posts:          2,
		Pledges:        3,
		SupplyChain:    2,
		ShipmentEvents: 3,
	}, sum)

	st := store.New(db)
	admin, err := st.FindUserByEmail(context.Background(), "admin@climatrix.com")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, DemoPassword))

	latest, err := st.LatestReading(context.Background(), "Mumbai")
	require.NoError(t, err)
	assert.True(t, latest.ReadingTime.Equal(now))
	assert.GreaterOrEqual(t, latest.AQI, 50)
	assert.Less(t, latest.AQI, 200)

	var members int64
	require.NoError(t, db.Model(&models.GroupMember{}).Count(&members).Error)
	assert.EqualValues(t, 4, members)
}

func TestRunResetIsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := Run(context.Background(), db, Options{Hours: 2})
	require.NoError(t, err)

	_, err = Run(context.Background(), db, Options{Hours: 2})
	require.Error(t, err, "seeding twice without reset hits unique emails")

	sum, err := Run(context.Background(), db, Options{Hours: 2, Reset: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, sum.Users)
	assert.EqualValues(t, 6, sum.Readings)
}
