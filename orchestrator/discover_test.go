package orchestrator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/secfilings/go-edgar-pipeline/orchestrator"
)

func TestDiscoverFilings_UnknownTicker(t *testing.T) {
	_, err := orchestrator.DiscoverFilings("ZZZZ", "10-K", "", "", "test@acme.com")
	require.Error(t, err)
}
