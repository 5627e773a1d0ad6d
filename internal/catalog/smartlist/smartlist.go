// Package smartlist parses and evaluates the saved-query definition
// attached to smart playlists. The format is the XML blob Rekordbox
// stores alongside the playlist row: a NODE element carrying a logical
// operator and a list of CONDITION elements.
package smartlist

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nvialar/rekordfin/internal/catalog"
)

// Logical operators on the condition list.
const (
	logicalAll = 1 // every condition must match
	logicalAny = 2 // at least one condition must match
)

// Condition operators as stored in the query definition.
const (
	opEqual       = 1
	opNotEqual    = 2
	opGreater     = 3
	opLess        = 4
	opInRange     = 5
	opContains    = 8
	opNotContains = 9
	opStartsWith  = 10
	opEndsWith    = 11
)

type xmlQuery struct {
	XMLName         xml.Name       `xml:"NODE"`
	LogicalOperator int            `xml:"LogicalOperator,attr"`
	Conditions      []xmlCondition `xml:"CONDITION"`
}

type xmlCondition struct {
	Property   string `xml:"PropertyName,attr"`
	Operator   int    `xml:"Operator,attr"`
	ValueLeft  string `xml:"ValueLeft,attr"`
	ValueRight string `xml:"ValueRight,attr"`
}

// Rules is a parsed smart playlist query.
type Rules struct {
	matchAll   bool
	conditions []condition
}

type condition struct {
	property string
	operator int
	left     string
	right    string
}

// Parse parses a saved query definition. An empty or malformed
// definition is an error; callers degrade to zero tracks.
func Parse(query string) (*Rules, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty query definition")
	}

	var q xmlQuery
	if err := xml.Unmarshal([]byte(query), &q); err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if len(q.Conditions) == 0 {
		return nil, errors.New("query has no conditions")
	}

	r := &Rules{matchAll: q.LogicalOperator != logicalAny}
	for _, c := range q.Conditions {
		r.conditions = append(r.conditions, condition{
			property: strings.ToLower(c.Property),
			operator: c.Operator,
			left:     c.ValueLeft,
			right:    c.ValueRight,
		})
	}
	return r, nil
}

// Match reports whether a track satisfies the query.
func (r *Rules) Match(t catalog.Track) bool {
	for _, c := range r.conditions {
		ok := c.match(t)
		if r.matchAll && !ok {
			return false
		}
		if !r.matchAll && ok {
			return true
		}
	}
	return r.matchAll
}

func (c condition) match(t catalog.Track) bool {
	switch c.property {
	case "artist":
		return matchString(t.Artist, c)
	case "name", "title":
		return matchString(t.Title, c)
	case "album":
		return matchString(t.Album, c)
	case "genre":
		return matchString(t.Genre, c)
	case "bpm":
		return matchNumber(t.BPM, c)
	case "rating":
		return matchNumber(float64(t.Rating), c)
	}
	// Unknown property: condition never matches, the rest of the query
	// still applies.
	return false
}

func matchString(value string, c condition) bool {
	v := strings.ToLower(value)
	want := strings.ToLower(c.left)

	switch c.operator {
	case opEqual:
		return v == want
	case opNotEqual:
		return v != want
	case opContains:
		return strings.Contains(v, want)
	case opNotContains:
		return !strings.Contains(v, want)
	case opStartsWith:
		return strings.HasPrefix(v, want)
	case opEndsWith:
		return strings.HasSuffix(v, want)
	}
	return false
}

func matchNumber(value float64, c condition) bool {
	left, err := strconv.ParseFloat(c.left, 64)
	if err != nil {
		return false
	}

	switch c.operator {
	case opEqual:
		return value == left
	case opNotEqual:
		return value != left
	case opGreater:
		return value > left
	case opLess:
		return value < left
	case opInRange:
		right, err := strconv.ParseFloat(c.right, 64)
		if err != nil {
			return false
		}
		return value >= left && value <= right
	}
	return false
}
