package fiql

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalArgument(t *testing.T) {
	d, err := MustConstraint("price", "=lt=", "999.99").DecimalArgument()
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("999.99")))

	_, err = MustConstraint("price", "=lt=", "cheap").DecimalArgument()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "as decimal")
}

func TestUUIDArgument(t *testing.T) {
	want := uuid.NewSHA1(uuid.NameSpaceURL, []byte("fiql"))
	id, err := MustConstraint("id", "==", want.String()).UUIDArgument()
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = MustConstraint("id", "==", "not-a-uuid").UUIDArgument()
	assert.Error(t, err)
}

func TestTimeArgument(t *testing.T) {
	tests := []struct {
		argument string
		want     time.Time
	}{
		{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-03-01T10:30:00.5+02:00", time.Date(2024, 3, 1, 8, 30, 0, 500000000, time.UTC)},
		{"2024-03-01T10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.argument, func(t *testing.T) {
			got, err := MustConstraint("at", "=gt=", tt.argument).TimeArgument()
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}

	_, err := MustConstraint("at", "=gt=", "yesterday").TimeArgument()
	assert.Error(t, err)
}

func TestTimeArgumentFromParse(t *testing.T) {
	expr := MustParse("releasedAt=ge=2024-03-01T10:30:00Z")
	c := expr.Constraints()[0]
	got, err := c.TimeArgument()
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 30, got.Minute())
}

func TestIntAndBoolArgument(t *testing.T) {
	i, err := MustConstraint("stock", "=gt=", "-12").IntArgument()
	require.NoError(t, err)
	assert.Equal(t, int64(-12), i)

	_, err = MustConstraint("stock", "=gt=", "1.5").IntArgument()
	assert.Error(t, err)

	b, err := MustConstraint("inStock", "==", "true").BoolArgument()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = MustConstraint("inStock", "==", "maybe").BoolArgument()
	assert.Error(t, err)
}

func TestArgumentMissing(t *testing.T) {
	c := MustConstraint("active", "", "")

	_, err := c.DecimalArgument()
	assert.True(t, errors.Is(err, ErrNoArgument))
	_, err = c.UUIDArgument()
	assert.True(t, errors.Is(err, ErrNoArgument))
	_, err = c.TimeArgument()
	assert.True(t, errors.Is(err, ErrNoArgument))
	_, err = c.IntArgument()
	assert.True(t, errors.Is(err, ErrNoArgument))
	_, err = c.BoolArgument()
	assert.True(t, errors.Is(err, ErrNoArgument))
}
