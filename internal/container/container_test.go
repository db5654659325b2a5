package container_test

import (
	"testing"

	"github.com/serroba/linkboard/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() *container.Options {
	return &container.Options{
		Port:        8888,
		DatabaseURL: "postgres://localhost:5432/linkboard",
		JWTSecret:   "test-secret",
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Run("accepts a complete configuration", func(t *testing.T) {
		require.NoError(t, validOptions().Validate())
	})

	t.Run("requires a port", func(t *testing.T) {
		opts := validOptions()
		opts.Port = 0

		assert.EqualError(t, opts.Validate(), "port is required")
	})

	t.Run("requires a database url", func(t *testing.T) {
		opts := validOptions()
		opts.DatabaseURL = ""

		assert.EqualError(t, opts.Validate(), "database-url is required")
	})

	t.Run("requires a jwt secret", func(t *testing.T) {
		opts := validOptions()
		opts.JWTSecret = ""

		assert.EqualError(t, opts.Validate(), "jwt-secret is required")
	})
}
