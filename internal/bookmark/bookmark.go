package bookmark

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MaxOffset bounds bookmark offsets to 24 hours.
const MaxOffset = 24 * 60 * 60

var (
	ErrNegativeOffset = errors.New("bookmark offset must be a non-negative number")
	ErrOffsetTooLarge = fmt.Errorf("bookmark offset must be at most %d seconds", MaxOffset)
	ErrEmptyLabel     = errors.New("bookmark label must not be empty")
	ErrOutOfRange     = errors.New("bookmark index out of range")
)

type Bookmark struct {
	Offset float64
	Label  string
}

func (b Bookmark) String() string {
	return fmt.Sprintf("%s  %s", FormatOffset(b.Offset), b.Label)
}

// List keeps bookmarks ordered by offset. Equal offsets keep insertion order.
type List struct {
	mu    sync.Mutex
	items []Bookmark
}

func (l *List) Add(offset float64, label string) (Bookmark, error) {
	label = strings.TrimSpace(label)
	if offset < 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return Bookmark{}, ErrNegativeOffset
	}
	if offset > MaxOffset {
		return Bookmark{}, ErrOffsetTooLarge
	}
	if label == "" {
		return Bookmark{}, ErrEmptyLabel
	}

	b := Bookmark{Offset: offset, Label: label}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := sort.Search(len(l.items), func(i int) bool { return l.items[i].Offset > offset })
	l.items = append(l.items, Bookmark{})
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = b

	return b, nil
}

func (l *List) Remove(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return nil
}

func (l *List) Items() []Bookmark {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Bookmark, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// FormatOffset renders seconds as mm:ss. Minutes are not capped at 59;
// offsets are clamped to [0, MaxOffset].
func FormatOffset(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	if seconds > MaxOffset {
		seconds = MaxOffset
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseOffset accepts either plain seconds ("75", "75.5") or mm:ss ("1:15").
func ParseOffset(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty time")
	}

	if minutes, secs, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(minutes)
		if err != nil || m < 0 {
			return 0, fmt.Errorf("invalid minutes in %q", s)
		}
		if m > MaxOffset/60 {
			return 0, fmt.Errorf("%w: %q", ErrOffsetTooLarge, s)
		}
		sec, err := strconv.Atoi(secs)
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
		v := m*60 + sec
		if v > MaxOffset {
			return 0, fmt.Errorf("%w: %q", ErrOffsetTooLarge, s)
		}
		return float64(v), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if v > MaxOffset {
		return 0, fmt.Errorf("%w: %q", ErrOffsetTooLarge, s)
	}
	return v, nil
}
