package fiql

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNoArgument is returned by the typed argument accessors when the
// constraint is a bare selector.
var ErrNoArgument = errors.New("fiql: constraint has no argument")

// dateLayouts are tried in order by TimeArgument. The first is RFC 3339, which
// FIQL arguments can carry unescaped because ":" is an argument character.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func (c *Constraint) requireArgument() error {
	if c.argument == "" {
		return fmt.Errorf("%w: %q", ErrNoArgument, c.selector)
	}
	return nil
}

// DecimalArgument parses the argument as an arbitrary precision decimal.
func (c *Constraint) DecimalArgument() (decimal.Decimal, error) {
	if err := c.requireArgument(); err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(c.argument)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("cannot parse argument '%s' of %q as decimal: %w", c.argument, c.selector, err)
	}
	return d, nil
}

// UUIDArgument parses the argument as a UUID.
func (c *Constraint) UUIDArgument() (uuid.UUID, error) {
	if err := c.requireArgument(); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(c.argument)
	if err != nil {
		return uuid.Nil, fmt.Errorf("cannot parse argument '%s' of %q as uuid: %w", c.argument, c.selector, err)
	}
	return id, nil
}

// TimeArgument parses the argument as an RFC 3339 timestamp, a timestamp
// without zone (interpreted as UTC) or a plain date.
func (c *Constraint) TimeArgument() (time.Time, error) {
	if err := c.requireArgument(); err != nil {
		return time.Time{}, err
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, c.argument)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("cannot parse argument '%s' of %q as time: %w", c.argument, c.selector, lastErr)
}

// IntArgument parses the argument as a base 10 int64.
func (c *Constraint) IntArgument() (int64, error) {
	if err := c.requireArgument(); err != nil {
		return 0, err
	}
	i, err := strconv.ParseInt(c.argument, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse argument '%s' of %q as integer: %w", c.argument, c.selector, err)
	}
	return i, nil
}

// BoolArgument parses the argument with strconv.ParseBool.
func (c *Constraint) BoolArgument() (bool, error) {
	if err := c.requireArgument(); err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(c.argument)
	if err != nil {
		return false, fmt.Errorf("cannot parse argument '%s' of %q as boolean: %w", c.argument, c.selector, err)
	}
	return b, nil
}
