package qc_test

import (
	"errors"
	"itad/bizerror"
	"itad/domain/qc"
	"testing"

	. "github.com/onsi/gomega"
)

func allPassed() qc.Results {
	r := qc.Results{}
	for _, t := range qc.Tests {
		r = r.Set(t, true)
	}
	return r
}

func TestParseTestID(t *testing.T) {
	RegisterTestingT(t)

	Expect(len(qc.Tests)).To(Equal(12))
	id, err := qc.ParseTestID(" Camera_Back ")
	Expect(err).To(BeNil())
	Expect(id).To(Equal(qc.CameraBack))

	_, err = qc.ParseTestID("nfc")
	var validationErr *bizerror.ValidationError
	Expect(errors.As(err, &validationErr)).To(BeTrue())
	Expect(validationErr.Field).To(Equal("testId"))
}

func TestSetAndReset(t *testing.T) {
	RegisterTestingT(t)

	t.Run("set should not mutate the receiver", func(t *testing.T) {
		r := qc.Results{}
		r2 := r.Set(qc.Display, false)
		Expect(r).To(BeEmpty())
		Expect(r2).To(Equal(qc.Results{qc.Display: false}))
	})

	t.Run("reset of an unset test is a no-op", func(t *testing.T) {
		r := qc.Results{qc.Touch: true}
		r2, changed := r.Reset(qc.Display)
		Expect(changed).To(BeFalse())
		Expect(r2).To(Equal(r))

		r3, changed := r.Reset(qc.Touch)
		Expect(changed).To(BeTrue())
		Expect(r3).To(BeEmpty())
		Expect(r).To(HaveKey(qc.Touch))
	})
}

func TestSummarize(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should fail when fewer than 12 tests are resolved", func(t *testing.T) {
		r := allPassed()
		r, _ = r.Reset(qc.GPS)
		s, err := r.Summarize()
		Expect(s).To(BeNil())
		Expect(err).To(Equal(bizerror.NewValidationError("qcTests", "1 of 12 tests unresolved: gps")))
	})

	t.Run("should fail qc when exactly one test failed", func(t *testing.T) {
		r := allPassed().Set(qc.Speaker, false)
		s, err := r.Summarize()
		Expect(err).To(BeNil())
		Expect(*s).To(Equal(qc.Summary{Passed: false, PassCount: 11, FailCount: 1}))
	})

	t.Run("should pass qc when all tests passed", func(t *testing.T) {
		s, err := allPassed().Summarize()
		Expect(err).To(BeNil())
		Expect(*s).To(Equal(qc.Summary{Passed: true, PassCount: 12, FailCount: 0}))
	})
}

func TestMatrix(t *testing.T) {
	RegisterTestingT(t)

	m := qc.Results{qc.Touch: false}.Matrix()
	Expect(len(m)).To(Equal(12))
	Expect(m[0]).To(Equal(qc.Entry{TestID: qc.Display}))
	Expect(m[1].TestID).To(Equal(qc.Touch))
	Expect(*m[1].Passed).To(BeFalse())
}

func TestResultsPersistence(t *testing.T) {
	RegisterTestingT(t)

	v, err := qc.Results(nil).Value()
	Expect(err).To(BeNil())
	Expect(v).To(Equal("{}"))

	v, err = qc.Results{qc.WiFi: true}.Value()
	Expect(err).To(BeNil())
	Expect(v).To(Equal(`{"wifi":true}`))

	var r qc.Results
	Expect(r.Scan([]byte(`{"wifi":true,"gps":false}`))).To(BeNil())
	Expect(r).To(Equal(qc.Results{qc.WiFi: true, qc.GPS: false}))
	Expect(r.Scan(nil)).To(BeNil())
	Expect(r).To(Equal(qc.Results{}))
	Expect(r.Scan(3)).ToNot(BeNil())
}
