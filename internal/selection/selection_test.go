package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/recruitify/internal/models"
)

func TestReconcile(t *testing.T) {
	acme := models.Organization{ID: "a", Name: "Acme"}
	beta := models.Organization{ID: "b", Name: "Beta"}
	fall := models.RecruitmentCycle{ID: "c1", Name: "Fall", OrganizationID: "a"}

	tests := []struct {
		name          string
		sel           Selection
		organizations []models.Organization
		expectedOrg   string
		expectedCycle string
	}{
		{
			name:          "empty stays empty",
			sel:           Selection{},
			organizations: []models.Organization{acme},
		},
		{
			name:          "present organization kept",
			sel:           Selection{Organization: &acme},
			organizations: []models.Organization{beta, acme},
			expectedOrg:   "a",
		},
		{
			name:          "missing organization cleared",
			sel:           Selection{Organization: &models.Organization{ID: "x"}},
			organizations: []models.Organization{acme},
		},
		{
			name:          "missing organization clears cycle",
			sel:           Selection{Organization: &beta, Cycle: &models.RecruitmentCycle{ID: "c2", OrganizationID: "b"}},
			organizations: []models.Organization{acme},
		},
		{
			name:          "cycle kept with organization",
			sel:           Selection{Organization: &acme, Cycle: &fall},
			organizations: []models.Organization{acme},
			expectedOrg:   "a",
			expectedCycle: "c1",
		},
		{
			name:          "empty list clears",
			sel:           Selection{Organization: &acme, Cycle: &fall},
			organizations: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.sel, tt.organizations)
			assert.Equal(t, tt.expectedOrg, got.OrganizationID())
			assert.Equal(t, tt.expectedCycle, got.CycleID())

			// reconciling twice gives the same result
			again := Reconcile(got, tt.organizations)
			assert.True(t, got.Equal(again))
		})
	}
}

func TestReconcile_usesFreshOrganization(t *testing.T) {
	stale := models.Organization{ID: "a", Name: "Acme"}
	fresh := []models.Organization{{ID: "a", Name: "Acme Corp"}}

	got := Reconcile(Selection{Organization: &stale}, fresh)
	require.NotNil(t, got.Organization)
	assert.Equal(t, "Acme Corp", got.Organization.Name)

	// input not modified
	assert.Equal(t, "Acme", stale.Name)
}

func TestReconcileCycles(t *testing.T) {
	acme := models.Organization{ID: "a", Name: "Acme"}
	fall := models.RecruitmentCycle{ID: "c1", Name: "Fall", OrganizationID: "a"}

	t.Run("keeps cycle that is still present", func(t *testing.T) {
		got := ReconcileCycles(Selection{Organization: &acme, Cycle: &fall},
			[]models.RecruitmentCycle{{ID: "c1", Name: "Fall 2026", OrganizationID: "a"}})
		assert.Equal(t, "c1", got.CycleID())
		assert.Equal(t, "Fall 2026", got.Cycle.Name)
	})

	t.Run("drops cycle that disappeared", func(t *testing.T) {
		got := ReconcileCycles(Selection{Organization: &acme, Cycle: &fall}, nil)
		assert.Equal(t, "a", got.OrganizationID())
		assert.Nil(t, got.Cycle)
	})

	t.Run("drops cycle listed under another organization", func(t *testing.T) {
		got := ReconcileCycles(Selection{Organization: &acme, Cycle: &fall},
			[]models.RecruitmentCycle{{ID: "c1", OrganizationID: "b"}})
		assert.Nil(t, got.Cycle)
	})

	t.Run("no cycle selected", func(t *testing.T) {
		got := ReconcileCycles(Selection{Organization: &acme}, []models.RecruitmentCycle{fall})
		assert.Nil(t, got.Cycle)
	})
}

func TestSelection_Equal(t *testing.T) {
	acme := models.Organization{ID: "a", Name: "Acme"}
	renamed := models.Organization{ID: "a", Name: "Acme Corp"}
	beta := models.Organization{ID: "b", Name: "Beta"}

	assert.True(t, Selection{}.Equal(Selection{}))
	assert.True(t, Selection{Organization: &acme}.Equal(Selection{Organization: &acme}))
	assert.False(t, Selection{Organization: &acme}.Equal(Selection{Organization: &beta}))
	assert.False(t, Selection{Organization: &acme}.Equal(Selection{Organization: &renamed}))
	assert.False(t, Selection{Organization: &acme}.Equal(Selection{}))
}
