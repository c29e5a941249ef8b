package flagx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	args := []string{"-a", "localhost:5432", "-x", "ignored", "-i", "30"}
	got := FilterArgs(args, []string{"-a", "-i"})
	require.Equal(t, []string{"-a", "localhost:5432", "-i", "30"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	args := []string{"--config=conf.json", "--other=zzz", "-i=5"}
	got := FilterArgs(args, []string{"--config", "-i"})
	require.Equal(t, []string{"--config=conf.json", "-i=5"}, got)
}

func TestFilterArgs_FlagWithoutValue(t *testing.T) {
	args := []string{"-now", "-a", "addr"}
	got := FilterArgs(args, []string{"-now"})
	require.Equal(t, []string{"-now"}, got)
}

func TestFilterArgs_Empty(t *testing.T) {
	got := FilterArgs(nil, []string{"-a"})
	require.NotNil(t, got)
	require.Empty(t, got)
}
