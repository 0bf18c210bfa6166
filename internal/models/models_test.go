package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotValue(t *testing.T) {
	// Nil snapshots store as SQL NULL
	var nilSnapshot Snapshot
	v, err := nilSnapshot.Value()
	assert.NoError(t, err)
	assert.Nil(t, v)

	snapshot := Snapshot{"amount": "12.50", "is_deleted": false}
	v, err = snapshot.Value()
	assert.NoError(t, err)

	raw, ok := v.([]byte)
	assert.True(t, ok)
	assert.Contains(t, string(raw), `"amount":"12.50"`)
}

func TestSnapshotScan(t *testing.T) {
	var snapshot Snapshot

	// Round trip from both byte slice and string sources
	assert.NoError(t, snapshot.Scan([]byte(`{"description":"snacks","amount":"5"}`)))
	assert.Equal(t, "snacks", snapshot["description"])

	assert.NoError(t, snapshot.Scan(`{"is_deleted":true}`))
	assert.Equal(t, true, snapshot["is_deleted"])

	assert.NoError(t, snapshot.Scan(nil))
	assert.Nil(t, snapshot)

	assert.Error(t, snapshot.Scan(42))
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{"defaults applied", 0, 0, 1, 10},
		{"negative page clamped", -3, 20, 1, 20},
		{"per_page capped", 2, 500, 2, 100},
		{"valid values untouched", 4, 25, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage := normalizePage(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPerPage, perPage)
		})
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(1, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 3, PageCount(25, 10))
	assert.Equal(t, 0, PageCount(5, 0))
}
