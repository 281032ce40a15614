package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDateString = "Jan 03 2013 14:26:38 GMT"

var testDate = time.Date(2013, time.January, 3, 14, 26, 38, 0, time.UTC)

func TestDateify(t *testing.T) {
	got, err := Dateify(testDate)
	require.NoError(t, err)
	assert.True(t, got.Equal(testDate))

	got, err = Dateify(testDateString)
	require.NoError(t, err)
	assert.True(t, got.Equal(testDate), "got %v", got)

	got, err = Dateify(&testDate)
	require.NoError(t, err)
	assert.True(t, got.Equal(testDate))

	got, err = Dateify("2013-01-03T14:26:38Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(testDate))
}

func TestDateify_FallsBackToNow(t *testing.T) {
	before := time.Now()
	for _, v := range []any{nil, time.Time{}, "", 42} {
		got, err := Dateify(v)
		require.NoError(t, err)
		assert.False(t, got.Before(before), "value %#v", v)
	}
}

func TestDateify_InvalidString(t *testing.T) {
	_, err := Dateify("not a date")
	assert.Error(t, err)
}

type options struct {
	Name  string
	Level int
	Flag  bool
}

func TestDefaults(t *testing.T) {
	opts := options{Name: "set"}
	require.NoError(t, Defaults(&opts, options{Name: "ignored", Level: 3}, options{Level: 9, Flag: true}))

	assert.Equal(t, options{Name: "set", Level: 3, Flag: true}, opts)
}

func TestDefaults_NilDestination(t *testing.T) {
	assert.Error(t, Defaults(nil, options{}))
}
