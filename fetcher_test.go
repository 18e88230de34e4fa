package edgar_test

import (
	"os"
	"testing"

	edgar "github.com/secfilings/go-edgar-pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSecEmail_MissingEnvVar(t *testing.T) {
	t.Setenv(edgar.SecEmailEnvVar, "")
	os.Unsetenv(edgar.SecEmailEnvVar)

	_, err := edgar.GetSecEmail()
	require.Error(t, err)
}

func TestGetSecEmail_RejectsExampleDotCom(t *testing.T) {
	t.Setenv(edgar.SecEmailEnvVar, "test@example.com")

	_, err := edgar.GetSecEmail()
	require.Error(t, err)
}

func TestGetSecEmail_RejectsMalformed(t *testing.T) {
	t.Setenv(edgar.SecEmailEnvVar, "not-an-email")

	_, err := edgar.GetSecEmail()
	require.Error(t, err)
}

func TestGetSecEmail_Valid(t *testing.T) {
	t.Setenv(edgar.SecEmailEnvVar, "analyst@acme.com")

	email, err := edgar.GetSecEmail()
	require.NoError(t, err)
	assert.Equal(t, "analyst@acme.com", email)
}

func TestBuildUserAgent(t *testing.T) {
	ua := edgar.BuildUserAgent("analyst@acme.com")
	assert.Contains(t, ua, "analyst@acme.com")
	assert.Contains(t, ua, edgar.VERSION)
}
