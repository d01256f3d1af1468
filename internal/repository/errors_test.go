package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func newUniqueViolation(constraint string) error {
	return &pq.Error{Code: uniqueViolation, Constraint: constraint}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(newUniqueViolation("contacts_email_key")))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", newUniqueViolation("webhook_logs_delivery_id_key"))))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}
