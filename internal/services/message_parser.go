package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BookingIntent is the structured result of parsing a customer message
type BookingIntent struct {
	Source      string
	Destination string
	Date        time.Time
	Time        string // normalized "15:04"
	SeatCount   int
}

// ParseError describes why a message could not be parsed into an intent.
// Recognized distinguishes a message that matched a booking shape but had a
// bad field (reported back to the customer) from free text that matched
// nothing (silently dropped).
type ParseError struct {
	Field      string
	Reason     string
	Recognized bool
}

func (e *ParseError) Error() string {
	return e.Reason
}

// dateLayouts are the accepted calendar date formats. Each is unambiguous;
// anything else is rejected rather than guessed at.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"2 January 2006",
}

// timeLayouts are the accepted departure time formats
var timeLayouts = []string{
	"15:04",
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
}

// MessageParser turns free-text customer input into a booking intent.
// Three shapes are accepted:
//
//	Route: Mumbai to Pune, Date: 2024-01-15, Time: 08:00, Seats: 2
//	Mumbai, Pune, 2024-01-15, 08:00, 2
//	BOOK Mumbai Pune 2024-01-15 08:00 2
//
// Parsing is case-insensitive and whitespace-tolerant. Seat count defaults
// to 1 when omitted.
type MessageParser struct{}

// NewMessageParser creates a new MessageParser
func NewMessageParser() *MessageParser {
	return &MessageParser{}
}

// Parse attempts each documented shape in order
func (p *MessageParser) Parse(text string) (*BookingIntent, *ParseError) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ParseError{Reason: "empty message"}
	}

	if looksLabeled(text) {
		return p.parseLabeled(text)
	}

	fields := strings.Fields(text)
	if len(fields) > 0 && strings.EqualFold(fields[0], "book") {
		return p.parseCommand(fields[1:])
	}

	if strings.Contains(text, ",") {
		return p.parsePositional(text)
	}

	return nil, &ParseError{Reason: "message does not match any booking format"}
}

func looksLabeled(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "route:") || (strings.Contains(lower, "date:") && strings.Contains(lower, "time:"))
}

// parseLabeled handles "Route: X to Y, Date: D, Time: T, Seats: N"
func (p *MessageParser) parseLabeled(text string) (*BookingIntent, *ParseError) {
	intent := &BookingIntent{SeatCount: 1}
	var haveRoute, haveDate, haveTime bool

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		// Cut splits at the first colon, so time values keep theirs
		value = strings.TrimSpace(value)
		key = strings.ToLower(strings.TrimSpace(key))

		switch key {
		case "route":
			source, destination, perr := splitRoute(value)
			if perr != nil {
				return nil, perr
			}
			intent.Source, intent.Destination = source, destination
			haveRoute = true
		case "date":
			date, perr := parseDate(value)
			if perr != nil {
				return nil, perr
			}
			intent.Date = date
			haveDate = true
		case "time":
			departure, perr := parseTime(value)
			if perr != nil {
				return nil, perr
			}
			intent.Time = departure
			haveTime = true
		case "seats", "seat":
			count, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || count < 1 {
				return nil, &ParseError{Field: "seats", Recognized: true,
					Reason: fmt.Sprintf("could not read seat count %q, please send a number like 'Seats: 2'", value)}
			}
			intent.SeatCount = count
		}
	}

	if !haveRoute {
		return nil, &ParseError{Field: "route", Recognized: true,
			Reason: "missing route, please include 'Route: <from> to <to>'"}
	}
	if !haveDate {
		return nil, &ParseError{Field: "date", Recognized: true,
			Reason: "missing travel date, please include 'Date: 2024-01-15'"}
	}
	if !haveTime {
		return nil, &ParseError{Field: "time", Recognized: true,
			Reason: "missing departure time, please include 'Time: 08:00'"}
	}
	return intent, nil
}

// parsePositional handles "Source, Destination, Date, Time[, Seats]"
func (p *MessageParser) parsePositional(text string) (*BookingIntent, *ParseError) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 {
		return nil, &ParseError{Field: "format", Recognized: true,
			Reason: "please send: <from>, <to>, <date>, <time>, <seats>"}
	}

	intent := &BookingIntent{Source: parts[0], Destination: parts[1], SeatCount: 1}
	if intent.Source == "" || intent.Destination == "" {
		return nil, &ParseError{Field: "route", Recognized: true,
			Reason: "missing source or destination, please send: <from>, <to>, <date>, <time>, <seats>"}
	}

	date, perr := parseDate(parts[2])
	if perr != nil {
		return nil, perr
	}
	intent.Date = date

	departure, perr := parseTime(parts[3])
	if perr != nil {
		return nil, perr
	}
	intent.Time = departure

	if len(parts) >= 5 && parts[4] != "" {
		count, err := strconv.Atoi(parts[4])
		if err != nil || count < 1 {
			return nil, &ParseError{Field: "seats", Recognized: true,
				Reason: fmt.Sprintf("could not read seat count %q, please send a number", parts[4])}
		}
		intent.SeatCount = count
	}
	return intent, nil
}

// parseCommand handles "BOOK <from> <to> <date> <time> [seats]"
func (p *MessageParser) parseCommand(args []string) (*BookingIntent, *ParseError) {
	if len(args) < 4 {
		return nil, &ParseError{Field: "format", Recognized: true,
			Reason: "please send: BOOK <from> <to> <date> <time> <seats>"}
	}

	intent := &BookingIntent{Source: args[0], Destination: args[1], SeatCount: 1}

	date, perr := parseDate(args[2])
	if perr != nil {
		return nil, perr
	}
	intent.Date = date

	// Time may be split across two tokens ("8:00 PM")
	timeTokens := args[3:]
	seatToken := ""
	if len(timeTokens) > 0 {
		if _, err := strconv.Atoi(timeTokens[len(timeTokens)-1]); err == nil && len(timeTokens) > 1 {
			seatToken = timeTokens[len(timeTokens)-1]
			timeTokens = timeTokens[:len(timeTokens)-1]
		}
	}

	departure, perr := parseTime(strings.Join(timeTokens, " "))
	if perr != nil {
		return nil, perr
	}
	intent.Time = departure

	if seatToken != "" {
		count, err := strconv.Atoi(seatToken)
		if err != nil || count < 1 {
			return nil, &ParseError{Field: "seats", Recognized: true,
				Reason: fmt.Sprintf("could not read seat count %q, please send a number", seatToken)}
		}
		intent.SeatCount = count
	}
	return intent, nil
}

func splitRoute(value string) (string, string, *ParseError) {
	lower := strings.ToLower(value)
	idx := strings.Index(lower, " to ")
	if idx < 0 {
		return "", "", &ParseError{Field: "route", Recognized: true,
			Reason: fmt.Sprintf("could not read route %q, please write it as '<from> to <to>'", value)}
	}
	source := strings.TrimSpace(value[:idx])
	destination := strings.TrimSpace(value[idx+4:])
	if source == "" || destination == "" {
		return "", "", &ParseError{Field: "route", Recognized: true,
			Reason: "missing source or destination in route"}
	}
	return source, destination, nil
}

func parseDate(value string) (time.Time, *ParseError) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &ParseError{Field: "date", Recognized: true,
		Reason: fmt.Sprintf("could not understand the date %q, please use a format like 2024-01-15", value)}
}

func parseTime(value string) (string, *ParseError) {
	value = strings.TrimSpace(strings.ToUpper(value))
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("15:04"), nil
		}
	}
	return "", &ParseError{Field: "time", Recognized: true,
		Reason: fmt.Sprintf("could not understand the time %q, please use a format like 08:00", value)}
}
