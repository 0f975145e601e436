package compliance

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/facture-ocr/internal/extraction"
)

var _ = Describe("DecodeRecord", func() {
	var (
		data []byte
		inv  *extraction.Invoice
		err  error
	)

	JustBeforeEach(func() {
		inv, err = DecodeRecord(data)
	})

	When("the record follows the field-name contract", func() {
		BeforeEach(func() {
			data = []byte(`{
				"total_ht": 100,
				"total_ttc": 120,
				"tva": null,
				"date": "15/03/2024",
				"invoice_number": "FAC-1",
				"vendor": "Dupont SARL",
				"items": [{"description": "Audit", "quantity": 1, "unit_price": null, "total": 100}],
				"text": "Dupont SARL\n12 rue de la Paix"
			}`)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should decode the fields", func() {
			Expect(*inv.TotalHT).To(Equal(100.0))
			Expect(*inv.InvoiceNumber).To(Equal("FAC-1"))
			Expect(inv.Items).To(HaveLen(1))
		})

		It("should default the currency and split the text", func() {
			Expect(inv.Currency).To(Equal("EUR"))
			Expect(inv.Lines).To(Equal(extraction.Lines{"Dupont SARL", "12 rue de la Paix"}))
		})
	})

	When("an amount has the wrong type", func() {
		BeforeEach(func() {
			data = []byte(`{"total_ttc": "120,00"}`)
		})

		It("should return ErrInvalidRecord", func() {
			Expect(err).To(MatchError(ErrInvalidRecord))
			Expect(inv).To(BeNil())
		})
	})

	When("the payload is not JSON", func() {
		BeforeEach(func() {
			data = []byte(`total: 12`)
		})

		It("should return ErrInvalidRecord", func() {
			Expect(err).To(MatchError(ErrInvalidRecord))
		})
	})

	When("the payload is not an object", func() {
		BeforeEach(func() {
			data = []byte(`[1, 2]`)
		})

		It("should return ErrInvalidRecord", func() {
			Expect(err).To(MatchError(ErrInvalidRecord))
		})
	})
})
