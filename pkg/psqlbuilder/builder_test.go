package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_DollarPlaceholders(t *testing.T) {
	query, args, err := Select("remote_key", "payload").
		From("remote_records").
		Where(squirrel.Eq{"collection": "bookings"}).
		Where(squirrel.Eq{"business_id": "b-1"}).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT remote_key, payload FROM remote_records WHERE collection = $1 AND business_id = $2", query)
	assert.Equal(t, []interface{}{"bookings", "b-1"}, args)
}
