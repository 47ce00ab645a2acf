package journal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	j := New(3)
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return clock }

	e := j.Record("4006381333931", "EAN_13")
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, clock, e.SentAt)
	assert.Equal(t, 1, j.Len())

	j.Record("hello", "QR_CODE")
	recent := j.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "hello", recent[0].Text, "newest first")
	assert.Equal(t, "4006381333931", recent[1].Text)
}

func TestEvictsOldest(t *testing.T) {
	j := New(3)
	for i := 0; i < 5; i++ {
		j.Record(fmt.Sprintf("code-%d", i), "CODE_128")
	}
	assert.Equal(t, 3, j.Len())

	recent := j.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "code-4", recent[0].Text)
	assert.Equal(t, "code-3", recent[1].Text)
	assert.Equal(t, "code-2", recent[2].Text)
}

func TestCapacityFloor(t *testing.T) {
	j := New(0)
	j.Record("a", "QR_CODE")
	j.Record("b", "QR_CODE")
	require.Equal(t, 1, j.Len())
	assert.Equal(t, "b", j.Recent()[0].Text)
}

func TestUniqueIDs(t *testing.T) {
	j := New(10)
	a := j.Record("x", "QR_CODE")
	b := j.Record("x", "QR_CODE")
	assert.NotEqual(t, a.ID, b.ID)
}
