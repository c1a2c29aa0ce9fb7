package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHolidayFixture(t *testing.T, holidayList string) (*HolidayService, *hrFixture) {
	f := newHRFixture(t, map[string]any{"name": "EMP-1", "holiday_list": holidayList})
	svc := NewHolidayService(f.conf, f.rc, f.directory, f.logger)
	svc.now = func() time.Time { return f.now }
	return svc, f
}

var holidayDoc = map[string]any{"data": map[string]any{
	"name":      "HL-2024",
	"from_date": "2024-01-01",
	"to_date":   "2024-12-31",
	"holidays": []map[string]any{
		{"holiday_date": "2024-03-24", "description": "Spring Day"},
		{"holiday_date": "2024-03-04", "description": "Adwa Victory"},
		{"holiday_date": "2023-12-25", "description": "Last Christmas"},
		{"holiday_date": "2024-01-07", "description": "Genna"},
		{"holiday_date": "2024-03-05", "description": "Bridge Day", "weekly_off": 1},
		{"holiday_date": "2024-03-14", "description": "Mid March"},
		{"holiday_date": "not-a-date", "description": "Broken"},
	},
}}

func TestHolidayService_EmployeeList(t *testing.T) {
	svc, f := newHolidayFixture(t, "HL-2024")
	f.site.JSON(http.MethodGet, "/api/resource/Holiday List/HL-2024", http.StatusOK, holidayDoc)

	overview, err := svc.Holidays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HL-2024", overview.ListName)
	assert.Equal(t, 2024, overview.Year)

	require.Len(t, overview.All, 5)
	assert.Equal(t, "Genna", overview.All[0].Description)
	assert.Equal(t, "Past", overview.All[0].Label)

	require.Len(t, overview.Upcoming, 3)
	assert.Equal(t, "Today", overview.Upcoming[0].Label)
	assert.Equal(t, "Tomorrow", overview.Upcoming[1].Label)
	assert.True(t, overview.Upcoming[1].WeeklyOff)
	assert.Equal(t, "In 10 days", overview.Upcoming[2].Label)
	assert.Equal(t, 10, overview.Upcoming[2].DaysUntil)
	assert.Zero(t, f.site.Calls(http.MethodGet, "/api/resource/Holiday List"))
}

func TestHolidayService_FallbackList(t *testing.T) {
	svc, f := newHolidayFixture(t, "")
	f.site.JSON(http.MethodGet, "/api/resource/Holiday List", http.StatusOK, map[string]any{"data": []map[string]any{{"name": "HL-2024"}}})
	f.site.JSON(http.MethodGet, "/api/resource/Holiday List/HL-2024", http.StatusOK, holidayDoc)

	overview, err := svc.Holidays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HL-2024", overview.ListName)

	req, _ := f.site.Last(http.MethodGet, "/api/resource/Holiday List")
	assert.Equal(t, `[["from_date","<=","2024-12-31"],["to_date",">=","2024-01-01"]]`, req.Query["filters"][0])
}

func TestHolidayService_NoList(t *testing.T) {
	svc, f := newHolidayFixture(t, "")
	f.site.JSON(http.MethodGet, "/api/resource/Holiday List", http.StatusOK, map[string]any{"data": []any{}})

	overview, err := svc.Holidays(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overview.All)
	assert.Empty(t, overview.Upcoming)
}

func TestRelativeLabel(t *testing.T) {
	assert.Equal(t, "Today", relativeLabel(0))
	assert.Equal(t, "Tomorrow", relativeLabel(1))
	assert.Equal(t, "In 2 days", relativeLabel(2))
	assert.Equal(t, "Past", relativeLabel(-3))
}
