package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestWeekImage(t *testing.T) {
	weekStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC) // понедельник

	slots := []*model.Slot{
		{
			TutorID:   1,
			StartTime: weekStart.Add(10 * time.Hour),
			EndTime:   weekStart.Add(11 * time.Hour),
			State:     model.SlotStateFree,
		},
		{
			TutorID:   1,
			StartTime: weekStart.AddDate(0, 0, 2).Add(15 * time.Hour),
			EndTime:   weekStart.AddDate(0, 0, 2).Add(16 * time.Hour),
			State:     model.SlotStateBooked,
		},
		{
			// Слот за пределами недели молча пропускается
			TutorID:   1,
			StartTime: weekStart.AddDate(0, 0, 9).Add(10 * time.Hour),
			EndTime:   weekStart.AddDate(0, 0, 9).Add(11 * time.Hour),
			State:     model.SlotStateHeld,
		},
	}

	img, err := WeekImage(weekStart, slots)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic), "result must be a PNG")
}

func TestWeekImage_Empty(t *testing.T) {
	weekStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

	img, err := WeekImage(weekStart, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}
