package converter

import (
	"encoding/json"
	"fmt"
	"time"
)

// localLayouts форматы ISO-8601 без смещения, интерпретируются в локальной зоне сервера
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseDateTime разбирает ISO-8601 дату-время со смещением или без него
func ParseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q, expected ISO-8601 like 2006-01-02T15:04:05", raw)
}

// DateTime время в JSON: читается в любом формате ParseDateTime, пишется как RFC 3339
type DateTime struct {
	time.Time
}

// UnmarshalJSON принимает ISO-8601 строку со смещением или без
func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date-time must be a string: %w", err)
	}
	t, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
