package qc

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"itad/bizerror"
	"strings"
)

type TestID string

const (
	Display     TestID = "display"
	Touch       TestID = "touch"
	CameraFront TestID = "camera_front"
	CameraBack  TestID = "camera_back"
	Speaker     TestID = "speaker"
	Microphone  TestID = "microphone"
	WiFi        TestID = "wifi"
	Bluetooth   TestID = "bluetooth"
	Battery     TestID = "battery"
	Charging    TestID = "charging"
	GPS         TestID = "gps"
	Buttons     TestID = "buttons"
)

// Tests is the fixed MMI battery in display order.
var Tests = []TestID{Display, Touch, CameraFront, CameraBack, Speaker, Microphone,
	WiFi, Bluetooth, Battery, Charging, GPS, Buttons}

func ParseTestID(s string) (TestID, error) {
	id := TestID(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range Tests {
		if t == id {
			return id, nil
		}
	}
	return "", bizerror.NewValidationError("testId", fmt.Sprintf("unknown test '%s'", s))
}

// Results maps a test to pass (true) or fail (false). A test absent from the map is unset.
type Results map[TestID]bool

type Entry struct {
	TestID TestID `json:"testId"`
	Passed *bool  `json:"passed"`
}

type Summary struct {
	Passed    bool `json:"passed"`
	PassCount int  `json:"passCount"`
	FailCount int  `json:"failCount"`
}

// Set returns a copy of r with the result of id recorded.
func (r Results) Set(id TestID, passed bool) Results {
	c := r.clone()
	c[id] = passed
	return c
}

// Reset returns a copy of r with id unset; changed is false when id was already unset.
func (r Results) Reset(id TestID) (Results, bool) {
	if _, found := r[id]; !found {
		return r, false
	}
	c := r.clone()
	delete(c, id)
	return c, true
}

func (r Results) Unresolved() []TestID {
	unresolved := []TestID{}
	for _, t := range Tests {
		if _, found := r[t]; !found {
			unresolved = append(unresolved, t)
		}
	}
	return unresolved
}

// Summarize requires every test of the battery to be resolved.
func (r Results) Summarize() (*Summary, error) {
	unresolved := r.Unresolved()
	if len(unresolved) > 0 {
		names := make([]string, 0, len(unresolved))
		for _, t := range unresolved {
			names = append(names, string(t))
		}
		return nil, bizerror.NewValidationError("qcTests",
			fmt.Sprintf("%d of %d tests unresolved: %s", len(unresolved), len(Tests), strings.Join(names, ", ")))
	}
	s := &Summary{}
	for _, t := range Tests {
		if r[t] {
			s.PassCount++
		} else {
			s.FailCount++
		}
	}
	s.Passed = s.FailCount == 0
	return s, nil
}

// Matrix lists all tests in display order, unset ones with a nil result.
func (r Results) Matrix() []Entry {
	entries := make([]Entry, 0, len(Tests))
	for _, t := range Tests {
		e := Entry{TestID: t}
		if passed, found := r[t]; found {
			p := passed
			e.Passed = &p
		}
		entries = append(entries, e)
	}
	return entries
}

func (r Results) clone() Results {
	c := make(Results, len(r)+1)
	for k, v := range r {
		c[k] = v
	}
	return c
}

func (r Results) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	jsonBytes, err := json.Marshal(map[TestID]bool(r))
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (r *Results) Scan(v interface{}) error {
	if v == nil {
		*r = Results{}
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	m := map[TestID]bool{}
	if err := json.Unmarshal([]byte(jsonString), &m); err != nil {
		return err
	}
	*r = m
	return nil
}
