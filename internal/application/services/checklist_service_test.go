package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/models"
)

func TestResponseCredit(t *testing.T) {
	assert.Equal(t, 1.0, responseCredit(models.ResponseConformity))
	assert.Equal(t, 1.0, responseCredit(models.ResponseObservation))
	assert.Equal(t, 0.5, responseCredit(models.ResponseMinorNC))
	assert.Equal(t, 0.0, responseCredit(models.ResponseMajorNC))
	assert.Equal(t, 0.0, responseCredit(models.ResponseNotApplicable))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, round2(200.0/3.0))
	assert.Equal(t, 50.0, round2(50))
	assert.Equal(t, 0.0, round2(0))
}

func TestIsValidResponseResult(t *testing.T) {
	for _, r := range []string{
		models.ResponseConformity,
		models.ResponseMinorNC,
		models.ResponseMajorNC,
		models.ResponseObservation,
		models.ResponseNotApplicable,
	} {
		assert.True(t, isValidResponseResult(r), r)
	}
	assert.False(t, isValidResponseResult("partial"))
	assert.False(t, isValidResponseResult(""))
}
