package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchemaTTLDefault(t *testing.T) {
	var cfg Config
	assert.Equal(t, 60*time.Minute, cfg.schemaTTL())
}

func TestSchemaTTLConfigured(t *testing.T) {
	var cfg Config
	cfg.Cache.SchemaTTLMinutes = 5
	assert.Equal(t, 5*time.Minute, cfg.schemaTTL())
}

func TestRolePrivilegesTTLDefault(t *testing.T) {
	var cfg Config
	assert.Equal(t, 60*time.Minute, cfg.rolePrivilegesTTL())
}

func TestRolePrivilegesTTLConfigured(t *testing.T) {
	var cfg Config
	cfg.Cache.RolePrivilegesTTLMinutes = 15
	assert.Equal(t, 15*time.Minute, cfg.rolePrivilegesTTL())
}

func TestTTLIgnoresNonPositiveValues(t *testing.T) {
	var cfg Config
	cfg.Cache.SchemaTTLMinutes = -1
	assert.Equal(t, 60*time.Minute, cfg.schemaTTL())
}
