package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "build", "vbconv.db"))
	require.NoError(t, err)
	defer s.Close()

	r, err := s.Last("/assets/Hero/Hero.image.json")
	require.NoError(t, err)
	assert.Nil(t, r)

	run := uuid.New()
	first := Record{
		Run:    run,
		Time:   time.Unix(100, 0),
		Config: "/assets/Hero/Hero.image.json",
		Name:   "Hero",
		Summary: Summary{
			Artifact:    "/assets/Hero/Converted/Hero.c",
			Tiles:       12,
			Compression: "RLE",
			Ratio:       -35.5,
			Frames:      1,
			Maps:        1,
		},
	}
	id, err := s.Add(first)
	require.NoError(t, err)
	assert.NotZero(t, id)

	second := Record{
		Run:     run,
		Time:    time.Unix(200, 0),
		Config:  "/assets/Enemy/Enemy.image.json",
		Name:    "Enemy",
		Summary: Summary{Error: "converter failed"},
	}
	_, err = s.Add(second)
	require.NoError(t, err)

	records, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Enemy", records[0].Name)
	assert.Equal(t, "converter failed", records[0].Summary.Error)
	assert.Equal(t, first.Summary, records[1].Summary)
	assert.Equal(t, run, records[1].Run)
	assert.True(t, time.Unix(100, 0).Equal(records[1].Time))

	records, err = s.List(1)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	r, err = s.Last("/assets/Hero/Hero.image.json")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 12, r.Summary.Tiles)
}

func TestReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vbconv.db")

	s, err := Open(file)
	require.NoError(t, err)
	_, err = s.Add(Record{Run: uuid.New(), Time: time.Now(), Config: "a", Name: "A"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(file)
	require.NoError(t, err)
	defer s.Close()

	records, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
