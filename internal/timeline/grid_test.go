package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/wonny/paygrid/backend/internal/comperr"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyGrid(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantLen   int
		wantFirst time.Time
		wantLast  time.Time
	}{
		{
			name:      "full calendar year from month start",
			start:     date(2024, 1, 1),
			end:       date(2024, 12, 31),
			wantLen:   12,
			wantFirst: date(2024, 1, 1),
			wantLast:  date(2024, 12, 1),
		},
		{
			name:      "mid-month start snaps to next boundary",
			start:     date(2024, 1, 15),
			end:       date(2025, 1, 15),
			wantLen:   12,
			wantFirst: date(2024, 2, 1),
			wantLast:  date(2025, 1, 1),
		},
		{
			name:      "three year span",
			start:     date(2024, 1, 1),
			end:       date(2026, 12, 31),
			wantLen:   36,
			wantFirst: date(2024, 1, 1),
			wantLast:  date(2026, 12, 1),
		},
		{
			name:      "same month degenerates to one point",
			start:     date(2024, 3, 10),
			end:       date(2024, 3, 20),
			wantLen:   1,
			wantFirst: date(2024, 3, 1),
			wantLast:  date(2024, 3, 1),
		},
		{
			name:      "start equals end",
			start:     date(2024, 6, 1),
			end:       date(2024, 6, 1),
			wantLen:   1,
			wantFirst: date(2024, 6, 1),
			wantLast:  date(2024, 6, 1),
		},
		{
			name:      "end exactly on a boundary is included",
			start:     date(2024, 1, 1),
			end:       date(2024, 4, 1),
			wantLen:   4,
			wantFirst: date(2024, 1, 1),
			wantLast:  date(2024, 4, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := MonthlyGrid(tt.start, tt.end)
			if err != nil {
				t.Fatalf("MonthlyGrid() error = %v", err)
			}
			if len(grid) != tt.wantLen {
				t.Fatalf("MonthlyGrid() len = %d, want %d", len(grid), tt.wantLen)
			}
			if !grid[0].Equal(tt.wantFirst) {
				t.Errorf("first = %v, want %v", grid[0], tt.wantFirst)
			}
			if !grid[len(grid)-1].Equal(tt.wantLast) {
				t.Errorf("last = %v, want %v", grid[len(grid)-1], tt.wantLast)
			}

			// Strictly increasing month starts
			for i := range grid {
				if grid[i].Day() != 1 {
					t.Errorf("grid[%d] = %v not on month start", i, grid[i])
				}
				if i > 0 && !grid[i-1].Before(grid[i]) {
					t.Errorf("grid not strictly increasing at %d", i)
				}
			}
		})
	}
}

func TestMonthlyGridInvalidRange(t *testing.T) {
	_, err := MonthlyGrid(date(2024, 6, 1), date(2024, 1, 1))
	if !errors.Is(err, comperr.ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2024, 7, 23, 13, 45, 0, 0, time.UTC))
	want := date(2024, 7, 1)
	if !got.Equal(want) {
		t.Errorf("MonthStart() = %v, want %v", got, want)
	}
}
