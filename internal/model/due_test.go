package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketOf(t *testing.T) {
	today := Date{Year: 2024, Month: time.March, Day: 10}
	yesterday := today.AddDays(-1)
	tomorrow := today.AddDays(1)

	assert.Equal(t, DueNone, BucketOf(nil, today))
	assert.Equal(t, DueOverdue, BucketOf(&yesterday, today))
	assert.Equal(t, DueToday, BucketOf(&today, today))
	assert.Equal(t, DueUpcoming, BucketOf(&tomorrow, today))
}

func TestDueFilterNextWraps(t *testing.T) {
	var f DueFilter
	seen := []DueFilter{}
	for range DueFilters {
		f = f.Next()
		seen = append(seen, f)
	}
	assert.Equal(t, []DueFilter{DueNone, DueOverdue, DueToday, DueUpcoming, DueAll}, seen)
}

func TestDueFilterValidAndLabel(t *testing.T) {
	assert.True(t, DueFilter("").Valid())
	assert.True(t, DueToday.Valid())
	assert.False(t, DueFilter("LATER").Valid())

	assert.Equal(t, "All", DueFilter("").Label())
	assert.Equal(t, "No due date", DueNone.Label())
	assert.Equal(t, "Due today", DueToday.Label())
}
