package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PrimaryCount is the number of primary (red) numbers in a draw.
const PrimaryCount = 6

// DrawRecord is one lottery draw as stored locally.
// A record is immutable once the draw has occurred; re-storing the same
// SequenceID replaces it with identical content.
type DrawRecord struct {
	// SequenceID is the numeric form of IssueLabel and the primary key.
	// It increases strictly with real-world draw order.
	SequenceID int64

	// IssueLabel is the human-readable issue identifier, e.g. "2024030".
	IssueLabel string

	// DrawTimestamp is when the draw opened, as reported by the source.
	DrawTimestamp string

	// WeekdayLabel is the draw weekday. May be empty.
	WeekdayLabel string

	// PrimaryNumbers are the main balls in draw-slot order.
	PrimaryNumbers [PrimaryCount]int

	// SecondaryNumber is the bonus ball.
	SecondaryNumber int
}

// RawDraw is one draw entry exactly as returned by the remote source.
// All fields are kept as strings; conversion happens in NewDrawRecord.
type RawDraw struct {
	Issue       string `json:"issue"`
	OpenTime    string `json:"openTime"`
	Week        string `json:"week"`
	FrontNumber string `json:"frontNumber"`
	BackNumber  string `json:"backNumber"`
}

// ParseSequenceID derives a sequence ID from an issue label.
func ParseSequenceID(issue string) (int64, error) {
	issue = strings.TrimSpace(issue)
	if issue == "" {
		return 0, fmt.Errorf("%w: empty issue", ErrInvalidInput)
	}
	id, err := strconv.ParseInt(issue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: issue %q is not numeric", ErrInvalidInput, issue)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: issue %q must be positive", ErrInvalidInput, issue)
	}
	return id, nil
}

// SequenceID returns the sequence ID of the raw entry.
func (r RawDraw) SequenceID() (int64, error) {
	return ParseSequenceID(r.Issue)
}

// NewDrawRecord validates a raw entry and converts it to a DrawRecord.
func NewDrawRecord(raw RawDraw) (DrawRecord, error) {
	id, err := raw.SequenceID()
	if err != nil {
		return DrawRecord{}, err
	}

	if strings.TrimSpace(raw.OpenTime) == "" {
		return DrawRecord{}, fmt.Errorf("%w: issue %s has no open time", ErrInvalidInput, raw.Issue)
	}

	primaries, err := ParsePrimaryNumbers(raw.FrontNumber)
	if err != nil {
		return DrawRecord{}, fmt.Errorf("issue %s: %w", raw.Issue, err)
	}

	secondary, err := strconv.Atoi(strings.TrimSpace(raw.BackNumber))
	if err != nil {
		return DrawRecord{}, fmt.Errorf("%w: issue %s back number %q", ErrInvalidInput, raw.Issue, raw.BackNumber)
	}

	return DrawRecord{
		SequenceID:      id,
		IssueLabel:      strings.TrimSpace(raw.Issue),
		DrawTimestamp:   strings.TrimSpace(raw.OpenTime),
		WeekdayLabel:    strings.TrimSpace(raw.Week),
		PrimaryNumbers:  primaries,
		SecondaryNumber: secondary,
	}, nil
}

// ParsePrimaryNumbers parses a comma-separated list of exactly six integers.
// The source occasionally pads with spaces, e.g. "01, 05,12,20,28,33".
func ParsePrimaryNumbers(s string) ([PrimaryCount]int, error) {
	var out [PrimaryCount]int

	parts := strings.Split(s, ",")
	if len(parts) != PrimaryCount {
		return out, fmt.Errorf("%w: expected %d primary numbers, got %d", ErrInvalidInput, PrimaryCount, len(parts))
	}

	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return out, fmt.Errorf("%w: primary number %q", ErrInvalidInput, part)
		}
		out[i] = n
	}
	return out, nil
}

// Validate checks the record invariants.
func (d DrawRecord) Validate() error {
	if d.SequenceID <= 0 {
		return fmt.Errorf("%w: sequence id must be positive", ErrInvalidInput)
	}
	id, err := ParseSequenceID(d.IssueLabel)
	if err != nil {
		return err
	}
	if id != d.SequenceID {
		return fmt.Errorf("%w: sequence id %d does not match issue %s", ErrInvalidInput, d.SequenceID, d.IssueLabel)
	}
	return nil
}

// PrimaryString renders the primary numbers as a comma-separated list,
// the same shape the source uses for frontNumber.
func (d DrawRecord) PrimaryString() string {
	parts := make([]string, len(d.PrimaryNumbers))
	for i, n := range d.PrimaryNumbers {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, ",")
}
