package rbac

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityName(t *testing.T) {
	assert.Equal(t, "team.update", Base(ActionTeamUpdate).Name())
	assert.Equal(t, "team.update.elevated", Elevated(ActionTeamUpdate).Name())
	assert.Equal(t, "reservation.create", Base(ActionReservationCreate).Name())
}

func TestCatalog(t *testing.T) {
	names := Catalog()
	require.NotEmpty(t, names)

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		_, dup := seen[name]
		require.False(t, dup, "duplicate permission %q", name)
		seen[name] = struct{}{}
	}

	// Reservation creation has no elevated tier.
	assert.NotContains(t, names, "reservation.create"+ElevatedSuffix)
	assert.Contains(t, names, "reservation.update"+ElevatedSuffix)

	for _, name := range names {
		assert.False(t, strings.HasSuffix(name, ElevatedSuffix+ElevatedSuffix))
	}
}
