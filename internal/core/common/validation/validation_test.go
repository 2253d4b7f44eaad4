package validation_test

import (
	"testing"

	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
	reservationDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/reservation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

func codes(err *errors.AppError) []string {
	details, ok := err.Details.(errors.ValidationErrors)
	Expect(ok).To(BeTrue())
	out := make([]string, 0, len(details.Errors))
	for _, e := range details.Errors {
		out = append(out, e.Code)
	}
	return out
}

var _ = Describe("Validation", func() {
	Describe("ValidateQuantity", func() {
		It("should accept the whole remaining stock", func() {
			Expect(validation.ValidateQuantity(3, 3)).To(BeNil())
			Expect(validation.ValidateQuantity(1, 3)).To(BeNil())
		})

		It("should reject one unit past the remaining stock", func() {
			err := validation.ValidateQuantity(4, 3)
			Expect(err).NotTo(BeNil())
			Expect(codes(err)).To(ConsistOf(string(errors.ErrCodeInsufficientStock)))
		})

		It("should reject non positive quantities", func() {
			err := validation.ValidateQuantity(0, 10)
			Expect(err).NotTo(BeNil())
			Expect(codes(err)).To(ConsistOf(string(errors.ErrCodeInvalidQuantity)))
		})

		It("should reject everything when stock is exhausted", func() {
			err := validation.ValidateQuantity(1, 0)
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(ContainSubstring("only 0 units"))
		})
	})

	Describe("ValidateReservation", func() {
		It("should accept a complete reservation", func() {
			Expect(validation.ValidateReservation(reservationDatamodel.Reservation{
				Date: "2024-05-06", UserID: "u1", ProductID: "p1", Quantity: 2,
			})).To(BeNil())
		})

		It("should collect every failing field", func() {
			err := validation.ValidateReservation(reservationDatamodel.Reservation{Date: "06.05.2024"})
			Expect(err).NotTo(BeNil())
			Expect(errors.IsValidation(err)).To(BeTrue())
			Expect(codes(err)).To(ContainElements(
				string(errors.ErrCodeInvalidDate),
				string(errors.ErrCodeInvalidQuantity),
			))
		})
	})

	Describe("ValidateProduct", func() {
		It("should require an image", func() {
			err := validation.ValidateProduct("Sandalye", "", 4)
			Expect(err).NotTo(BeNil())
			Expect(codes(err)).To(ConsistOf(string(errors.ErrCodeMissingImage)))
		})

		It("should reject negative stock", func() {
			err := validation.ValidateProduct("Sandalye", "https://cdn.test/a.png", -1)
			Expect(codes(err)).To(ConsistOf(string(errors.ErrCodeInvalidStock)))
		})

		It("should accept zero stock", func() {
			Expect(validation.ValidateProduct("Sandalye", "https://cdn.test/a.png", 0)).To(BeNil())
		})
	})

	Describe("Password strength", func() {
		DescribeTable("PasswordScore",
			func(password string, score int) {
				Expect(validation.PasswordScore(password)).To(Equal(score))
			},
			Entry("empty", "", 0),
			Entry("short lower case", "abc", 0),
			Entry("long lower case", "abcdefgh", 1),
			Entry("long with upper", "Abcdefgh", 2),
			Entry("long with upper and digit", "Abcdefg1", 3),
			Entry("every rule", "Abcdef1!", 4),
			Entry("short but mixed", "A1!", 3),
		)

		It("should reject short passwords regardless of score", func() {
			err := validation.ValidatePasswordStrength("A1!a")
			Expect(err).NotTo(BeNil())
			Expect(codes(err)).To(ContainElement(string(errors.ErrCodeWeakPassword)))
		})

		It("should reject long passwords with a low score", func() {
			Expect(validation.ValidatePasswordStrength("abcdefghij")).NotTo(BeNil())
		})

		It("should accept strong passwords", func() {
			Expect(validation.ValidatePasswordStrength("Supla2024")).To(BeNil())
		})
	})
})
