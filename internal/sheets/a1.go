package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// QuoteSheet quotes a sheet title for use in A1 notation.
func QuoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// SheetRange prefixes an A1 range (or nothing, for the whole sheet) with the
// quoted sheet title.
func SheetRange(title, rng string) string {
	if rng == "" {
		return QuoteSheet(title)
	}
	return QuoteSheet(title) + "!" + rng
}

// ColumnName converts a 1-based column index to its letters: 1 -> A, 27 -> AA.
func ColumnName(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// BlockRange addresses a rows x cols block whose top-left cell is A{row}.
func BlockRange(title string, row, rows, cols int) string {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return SheetRange(title, fmt.Sprintf("A%d:%s%d", row, ColumnName(cols), row+rows-1))
}

// StartRow is the row number of the top-left cell of an A1 range. Ranges
// without a row ("Sheet1", "A:G") start at row 1.
func StartRow(a1 string) int {
	rng := a1
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		rng = a1[i+1:]
	}
	if j := strings.Index(rng, ":"); j >= 0 {
		rng = rng[:j]
	}
	rng = strings.ReplaceAll(rng, "$", "")
	letters := 0
	for letters < len(rng) && isLetter(rng[letters]) {
		letters++
	}
	// a cell reference has at most three column letters
	if letters == 0 || letters > 3 {
		return 1
	}
	n, err := strconv.Atoi(rng[letters:])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func isLetter(b byte) bool {
	return ('A' <= b && b <= 'Z') || ('a' <= b && b <= 'z')
}
