package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/access"
	"github.com/adminpro/storefront-admin/config"
)

func TestTokenCmd(t *testing.T) {
	logger = zap.NewNop()
	cfg = &config.Config{Auth: config.AuthConfig{JWTSecret: "cli-secret", Issuer: "https://id.example.com"}}
	defer func() { cfg = nil }()

	tokenSubject, tokenEmail, tokenRoles, tokenTTL = "ops", "ops@example.com", []string{"admin"}, time.Hour

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runToken(cmd, nil))

	auth := access.NewAuthenticator("cli-secret", access.WithIssuer("https://id.example.com"))
	id, err := auth.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", id.Subject)
	assert.Equal(t, access.ViewDashboard, access.Decide(id))
}

func TestTokenCmdWithoutSecret(t *testing.T) {
	logger = zap.NewNop()
	cfg = &config.Config{}
	defer func() { cfg = nil }()

	err := runToken(&cobra.Command{}, nil)
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestServeRejectsIncompleteConfig(t *testing.T) {
	logger = zap.NewNop()
	cfg = &config.Config{}
	defer func() { cfg = nil }()

	err := runServe(&cobra.Command{}, nil)
	assert.ErrorContains(t, err, "invalid config")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["token"])
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}
