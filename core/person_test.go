package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerson_Validate(t *testing.T) {
	p := NewPerson("Jordan Doe")
	p.Roles = []string{"admin"}
	require.NoError(t, p.Validate())

	assert.Error(t, NewPerson("").Validate())
}

func TestPerson_IndicatorsIncludeLocations(t *testing.T) {
	p := NewPerson("Jordan Doe")
	p.Email = "jdoe@example.com"
	p.Locations = append(p.Locations, NewLocation("DE", "Berlin"))

	set := p.Indicators()
	assert.True(t, set.Contains(IndicatorEmail, "jdoe@example.com"))
	assert.True(t, set.Contains(IndicatorCountry, "DE"))
}
