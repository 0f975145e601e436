package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Score", func() {
	When("the value is missing", func() {
		It("should score zero", func() {
			Expect(Score(nil, 3, 1)).To(BeZero())
			Expect(Score((*float64)(nil), 3, 1)).To(BeZero())
			Expect(Score(strPtr(""), 3, 1)).To(BeZero())
			Expect(Score([]LineItem{}, 2, QualityItems)).To(BeZero())
			Expect(Score(&BankingInfo{}, 0, QualityStructured)).To(BeZero())
			Expect(Score((*BankingInfo)(nil), 0, QualityStructured)).To(BeZero())
		})
	})

	When("a positive amount was matched by two patterns", func() {
		It("should weight the base by the quality and add the plausibility bonus", func() {
			Expect(Score(floatPtr(100), 2, QualityAmount)).To(BeNumerically("~", 0.86, 1e-9))
		})
	})

	When("the amount is not positive", func() {
		It("should not add the bonus", func() {
			Expect(Score(floatPtr(-5), 0, 1)).To(BeNumerically("~", 0.7, 1e-9))
		})
	})

	When("the string is too short to be plausible", func() {
		It("should not add the bonus", func() {
			Expect(Score("ab", 0, 1)).To(BeNumerically("~", 0.7, 1e-9))
			Expect(Score("abc", 0, 1)).To(BeNumerically("~", 0.75, 1e-9))
		})
	})

	When("many patterns corroborate the value", func() {
		It("should cap the base and never exceed one", func() {
			Expect(Score("ACME", 10, 1)).To(BeNumerically("~", 1.0, 1e-9))
			Expect(Score(floatPtr(1), 10, QualityDate)).To(BeNumerically("<=", 1.0))
		})
	})

	It("should round to two decimals", func() {
		s := Score(strPtr("FAC-001"), 1, QualityBareNumber)
		Expect(s * 100).To(BeNumerically("~", float64(int(s*100+0.5)), 1e-9))
	})

	It("should be deterministic", func() {
		Expect(Score(strPtr("Dupont SARL"), 1, QualityLabeledParty)).To(Equal(Score(strPtr("Dupont SARL"), 1, QualityLabeledParty)))
	})
})
