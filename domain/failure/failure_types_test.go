package failure_test

import (
	"itad/domain/failure"
	"testing"

	. "github.com/onsi/gomega"
)

func TestDefaultTaxonomy(t *testing.T) {
	RegisterTestingT(t)

	Expect(len(failure.Default.FailureTypes)).To(Equal(18))

	ft, found := failure.Default.Lookup("no_power")
	Expect(found).To(BeTrue())
	Expect(ft).To(Equal(failure.Type{ID: "no_power", Name: "No power", Category: "power"}))

	_, found = failure.Default.Lookup("scratched_by_customer")
	Expect(found).To(BeFalse())
}

func TestParse(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should reject duplicated ids", func(t *testing.T) {
		_, err := failure.Parse([]byte("failureTypes:\n  - {id: a, name: A, category: c}\n  - {id: a, name: B, category: c}\n"))
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal(`duplicated failure type "a"`))
	})

	t.Run("should reject types without category", func(t *testing.T) {
		_, err := failure.Parse([]byte("failureTypes:\n  - {id: a, name: A}\n"))
		Expect(err).ToNot(BeNil())
	})

	t.Run("should reject malformed yaml", func(t *testing.T) {
		_, err := failure.Parse([]byte("failureTypes: [\n"))
		Expect(err).ToNot(BeNil())
	})
}
