package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// looseObject is a JSON object whose fields are decoded on demand, so that a
// model sending "description" instead of "desc", or "12.50" instead of 12.5,
// still produces a usable value.
type looseObject map[string]json.RawMessage

func (o looseObject) has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := o[k]; ok {
			return true
		}
	}
	return false
}

func (o looseObject) text(keys ...string) string {
	for _, k := range keys {
		if s, ok := rawText(o[k]); ok {
			return s
		}
	}
	return ""
}

func (o looseObject) amount(keys ...string) (decimal.Decimal, bool) {
	for _, k := range keys {
		if d, ok := rawAmount(o[k]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// rawText renders a field as text. Strings are unquoted, lists of strings are
// joined one per line, anything else keeps its JSON form.
func rawText(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	case '[':
		var lines []string
		if err := json.Unmarshal(trimmed, &lines); err == nil {
			return strings.Join(lines, "\n"), true
		}
	}
	return string(trimmed), true
}

// rawAmount accepts a JSON number or a numeric string such as "1,250.00".
func rawAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if isNull(raw) {
		return decimal.Zero, false
	}
	trimmed := bytes.TrimSpace(raw)
	s := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return decimal.Zero, false
		}
		s = strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(s))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func rawList(raw json.RawMessage) []json.RawMessage {
	if isNull(raw) {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// UnmarshalJSON decodes the model's analysis object. It fails only when the
// document is not an object; missing lists decode as empty and missing text
// as "".
func (p *Payload) UnmarshalJSON(data []byte) error {
	var obj looseObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Summary = obj.text("summary")
	p.Advice = obj.text("advice")

	p.Anomalies = []Anomaly{}
	for _, raw := range rawList(obj["anomalies"]) {
		var a Anomaly
		if err := json.Unmarshal(raw, &a); err != nil {
			// A bare string is still worth showing.
			if s, ok := rawText(raw); ok && s != "" {
				p.Anomalies = append(p.Anomalies, Anomaly{Description: s})
			}
			continue
		}
		p.Anomalies = append(p.Anomalies, a)
	}

	p.Duplicates = [][]DuplicateEntry{}
	for _, rawGroup := range rawList(obj["duplicates"]) {
		group := []DuplicateEntry{}
		for _, raw := range rawList(rawGroup) {
			var e DuplicateEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				continue
			}
			group = append(group, e)
		}
		if len(group) > 0 {
			p.Duplicates = append(p.Duplicates, group)
		}
	}
	return nil
}

// UnmarshalJSON accepts the short keys the prompt uses as well as the long
// ones models tend to fall back to.
func (a *Anomaly) UnmarshalJSON(data []byte) error {
	var obj looseObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("anomaly is null")
	}

	*a = Anomaly{
		Date:        obj.text("date"),
		Description: obj.text("desc", "description"),
		Category:    obj.text("cat", "category"),
		Platform:    obj.text("platform"),
		Reason:      obj.text("reason", "why"),
	}
	if d, ok := obj.amount("amount"); ok {
		a.Amount = d.InexactFloat64()
	}
	if d, ok := obj.amount("id"); ok && d.IsInteger() {
		id := d.IntPart()
		a.ID = &id
	}
	return nil
}

// UnmarshalJSON accepts desc or description and numeric or string amounts.
func (e *DuplicateEntry) UnmarshalJSON(data []byte) error {
	var obj looseObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("duplicate entry is null")
	}

	d, ok := obj.amount("amount")
	*e = DuplicateEntry{
		Description: obj.text("desc", "description"),
		Date:        obj.text("date"),
		Amount:      d.InexactFloat64(),
		amount:      d,
		amountValid: ok,
	}
	return nil
}

// NewDuplicateEntry builds an entry from already-typed values.
func NewDuplicateEntry(description, date string, amount float64) DuplicateEntry {
	return DuplicateEntry{
		Description: description,
		Date:        date,
		Amount:      amount,
		amount:      decimal.NewFromFloat(amount),
		amountValid: true,
	}
}
