package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 123, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: created, ID: 42})

	got, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.Equal(t, int64(42), got.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	got, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"not base64":   "%%%",
		"no separator": base64.RawURLEncoding.EncodeToString([]byte("2026-01-01T00:00:00Z")),
		"bad time":     base64.RawURLEncoding.EncodeToString([]byte("yesterday|4")),
		"bad id":       base64.RawURLEncoding.EncodeToString([]byte("2026-01-01T00:00:00Z|abc")),
		"zero id":      base64.RawURLEncoding.EncodeToString([]byte("2026-01-01T00:00:00Z|0")),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCursor(value)
			assert.Error(t, err)
		})
	}
}
