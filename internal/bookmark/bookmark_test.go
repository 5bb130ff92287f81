package bookmark

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAddKeepsOrder(t *testing.T) {
	var l List
	for _, b := range []Bookmark{{30, "middle"}, {5, "start"}, {90, "end"}, {30, "middle again"}} {
		if _, err := l.Add(b.Offset, b.Label); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	want := []Bookmark{{5, "start"}, {30, "middle"}, {30, "middle again"}, {90, "end"}}
	got := l.Items()
	if len(got) != len(want) {
		t.Fatalf("Items() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Items()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		offset  float64
		label   string
		wantErr error
	}{
		{name: "negativeOffset", offset: -1, label: "x", wantErr: ErrNegativeOffset},
		{name: "emptyLabel", offset: 3, label: "   ", wantErr: ErrEmptyLabel},
		{name: "hugeOffset", offset: 1e300, label: "x", wantErr: ErrOffsetTooLarge},
		{name: "justOverADay", offset: MaxOffset + 1, label: "x", wantErr: ErrOffsetTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l List
			if _, err := l.Add(tt.offset, tt.label); !errors.Is(err, tt.wantErr) {
				t.Errorf("Add() error = %v, want %v", err, tt.wantErr)
			}
			if l.Len() != 0 {
				t.Error("invalid bookmark was stored")
			}
		})
	}
}

func TestAddRandomOrderStaysSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var l List

	for i := 0; i < 200; i++ {
		offset := float64(rng.Intn(120))
		if _, err := l.Add(offset, "b"); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		items := l.Items()
		for j := 1; j < len(items); j++ {
			if items[j-1].Offset > items[j].Offset {
				t.Fatalf("after %d adds, items[%d]=%v > items[%d]=%v", i+1, j-1, items[j-1].Offset, j, items[j].Offset)
			}
		}
	}
}

func TestRemove(t *testing.T) {
	var l List
	_, _ = l.Add(10, "a")
	_, _ = l.Add(20, "b")
	_, _ = l.Add(30, "c")

	if err := l.Remove(1); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	items := l.Items()
	if len(items) != 2 || items[0].Label != "a" || items[1].Label != "c" {
		t.Errorf("Items() = %+v", items)
	}

	for _, idx := range []int{-1, 2} {
		if err := l.Remove(idx); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Remove(%d) error = %v, want ErrOutOfRange", idx, err)
		}
	}
}

func TestClear(t *testing.T) {
	var l List
	_, _ = l.Add(1, "a")
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() = %d after Clear()", l.Len())
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{5.9, "00:05"},
		{65, "01:05"},
		{600, "10:00"},
		{3725, "62:05"},
		{-3, "00:00"},
		{MaxOffset, "1440:00"},
		{1e300, "1440:00"},
	}

	for _, tt := range tests {
		if got := FormatOffset(tt.seconds); got != tt.want {
			t.Errorf("FormatOffset(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "75", want: 75},
		{in: "7.5", want: 7.5},
		{in: "1:15", want: 75},
		{in: "00:09", want: 9},
		{in: "", wantErr: true},
		{in: "-4", wantErr: true},
		{in: "1:75", wantErr: true},
		{in: "1x:10", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "86400", want: MaxOffset},
		{in: "1440:00", want: MaxOffset},
		{in: "1440:01", wantErr: true},
		{in: "1e300", wantErr: true},
		{in: "99999999999999:00", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseOffset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOffset(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseOffset(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBookmarkString(t *testing.T) {
	b := Bookmark{Offset: 83, Label: "Key formula"}
	if got := b.String(); got != "01:23  Key formula" {
		t.Errorf("String() = %q", got)
	}
}
