package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidation(KeyVersionRequired)))
	assert.Equal(t, KindConflict, KindOf(NewConflict(KeyVersionConflict)))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("clients: update: %w", NewConflict(KeyVersionConflict))
	assert.True(t, IsKind(err, KindConflict))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAppErrorCarriesCorrelationID(t *testing.T) {
	err := NewNotFound(KeyNotFound)
	assert.NotEmpty(t, err.CorrelationID)

	other := NewNotFound(KeyNotFound)
	assert.NotEqual(t, err.CorrelationID, other.CorrelationID)
}

func TestLocalizeFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "record not found", Localize("", KeyNotFound))
	assert.Equal(t, "registro não encontrado", Localize("pt-BR", KeyNotFound))
	assert.Equal(t, "some.unknown.key", Localize("en", "some.unknown.key"))
}
