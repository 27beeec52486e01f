package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/RoyceAzure/lab/shop/internal/constants"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	l := New(constants.Prod, &buf)

	l.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	l.Warn().Str("order_id", "o-1").Msg("kept")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "o-1", line["order_id"])
	require.Equal(t, "shop", line["service"])
}

func TestNew_ConsoleInDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(constants.Debug, &buf)

	l.Debug().Msg("state changed")
	require.Contains(t, buf.String(), "state changed")
	require.False(t, json.Valid(buf.Bytes()))
}
