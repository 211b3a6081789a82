package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("acme"))
	assert.ErrorIs(t, ValidateTenantID(""), ErrEmptyTenantID)
	assert.ErrorIs(t, ValidateTenantID("   "), ErrEmptyTenantID)
}

func TestValidateKBName(t *testing.T) {
	assert.NoError(t, ValidateKBName("legal"))
	assert.ErrorIs(t, ValidateKBName(""), ErrEmptyKBName)
	assert.ErrorIs(t, ValidateKBName("\t"), ErrEmptyKBName)
}

func TestValidateJobTransition(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		assert.NoError(t, ValidateJobTransition(JobQueued, JobRunning))
		assert.NoError(t, ValidateJobTransition(JobRunning, JobCompleted))
		assert.NoError(t, ValidateJobTransition(JobRunning, JobFailed))
	})

	t.Run("terminal states have no outgoing transitions", func(t *testing.T) {
		assert.Error(t, ValidateJobTransition(JobCompleted, JobRunning))
		assert.Error(t, ValidateJobTransition(JobFailed, JobQueued))
	})

	t.Run("queued cannot skip running", func(t *testing.T) {
		assert.Error(t, ValidateJobTransition(JobQueued, JobCompleted))
		assert.Error(t, ValidateJobTransition(JobQueued, JobFailed))
	})
}
