package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const sampleInvoice = `DUPONT SERVICES SARL
12 rue de la République
69002 Lyon
Facture N°: FAC-2024-001
Date: 15/03/2024

Client :
Société Martin

Désignation              Qté   Prix unitaire   Total
Audit informatique       2     400,00          800,00
Formation équipe         1     242,08          242,08
Total HT: 1 042,08 €
TVA 20%: 208,42 €
Total TTC: 1 250,50 €

Banque : BNP Paribas
IBAN : FR76 3000 4000 0312 3456 7890 143
BIC : BNPAFRPPXXX`

// fieldValues exposes the record fields under their confidence keys.
func fieldValues(inv *Invoice) map[string]any {
	return map[string]any{
		FieldTotal:         inv.Total,
		FieldTotalHT:       inv.TotalHT,
		FieldTotalTTC:      inv.TotalTTC,
		FieldTVA:           inv.TVA,
		FieldDate:          inv.Date,
		FieldInvoiceNumber: inv.InvoiceNumber,
		FieldVendor:        inv.Vendor,
		FieldClient:        inv.Client,
		FieldItems:         inv.Items,
		FieldTables:        inv.Tables,
		FieldBankingInfo:   inv.BankingInfo,
	}
}

var _ = Describe("Extractor", func() {
	var (
		extractor *Extractor
		text      string
		inv       *Invoice
		conf      ConfidenceMap
	)

	BeforeEach(func() {
		extractor = NewExtractor(nil)
	})

	JustBeforeEach(func() {
		inv, conf = extractor.Extract(Input{Text: text})
	})

	When("the invoice carries HT and TTC totals", func() {
		BeforeEach(func() {
			text = "Total TTC: 1 250,50 €\nTotal HT: 1 042,08 €"
		})

		It("should read both totals", func() {
			Expect(*inv.TotalTTC).To(Equal(1250.5))
			Expect(*inv.TotalHT).To(Equal(1042.08))
		})

		It("should derive the VAT amount", func() {
			Expect(*inv.TVA).To(Equal(208.42))
			Expect(conf[FieldTVA]).To(BeNumerically(">", 0))
		})

		It("should default the currency to EUR", func() {
			Expect(inv.Currency).To(Equal("EUR"))
		})
	})

	When("the invoice number is labeled", func() {
		BeforeEach(func() {
			text = "Facture N°: FAC-2024-001"
		})

		It("should extract it with a high confidence", func() {
			Expect(*inv.InvoiceNumber).To(Equal("FAC-2024-001"))
			Expect(conf[FieldInvoiceNumber]).To(BeNumerically(">", 0.7))
		})
	})

	When("the text has no date", func() {
		BeforeEach(func() {
			text = "Facture N°: FAC-001\nTotal: 10 €"
		})

		It("should leave the date empty with a zero confidence", func() {
			Expect(inv.Date).To(BeNil())
			Expect(conf[FieldDate]).To(BeZero())
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			text = ""
		})

		It("should return an empty record", func() {
			Expect(inv.Currency).To(Equal("EUR"))
			Expect(inv.Total).To(BeNil())
			Expect(inv.TVA).To(BeNil())
			Expect(inv.Items).To(BeEmpty())
			Expect(inv.BankingInfo).To(BeNil())
		})

		It("should score every field zero", func() {
			Expect(conf).To(HaveLen(11))
			for field, score := range conf {
				Expect(score).To(BeZero(), field)
			}
		})
	})

	When("a full invoice is extracted", func() {
		BeforeEach(func() {
			text = sampleInvoice
		})

		It("should extract the header fields", func() {
			Expect(*inv.InvoiceNumber).To(Equal("FAC-2024-001"))
			Expect(*inv.Date).To(Equal("15/03/2024"))
			Expect(*inv.Vendor).To(Equal("DUPONT SERVICES SARL"))
			Expect(*inv.Client).To(Equal("Société Martin"))
		})

		It("should extract the line items", func() {
			Expect(inv.Items).To(HaveLen(2))
			Expect(inv.Items[0].Description).To(Equal("Audit informatique"))
			Expect(*inv.Items[0].Total).To(Equal(800.0))
		})

		It("should detect the item table", func() {
			Expect(inv.Tables).To(HaveLen(1))
			Expect(inv.Tables[0].Header).To(HaveLen(4))
		})

		It("should extract the banking details", func() {
			Expect(*inv.BankingInfo.IBAN).To(Equal("FR7630004000031234567890143"))
			Expect(*inv.BankingInfo.BIC).To(Equal("BNPAFRPPXXX"))
			Expect(*inv.BankingInfo.BankName).To(Equal("BNP Paribas"))
		})

		It("should keep the raw text and lines", func() {
			Expect(inv.Text).To(Equal(sampleInvoice))
			Expect(inv.Lines[0]).To(Equal("DUPONT SERVICES SARL"))
		})

		It("should be idempotent", func() {
			again, againConf := extractor.Extract(Input{Text: text})
			Expect(again).To(Equal(inv))
			Expect(againConf).To(Equal(conf))
		})
	})

	Describe("invariants", func() {
		fixtures := []string{
			"",
			"Total TTC: 1 250,50 €\nTotal HT: 1 042,08 €",
			"Montant HT : 100,00\nMontant TTC : 105,50",
			"Facture N°: FAC-001\nTotal: 10 €",
			sampleInvoice,
			"Bonjour\nVendeur:\nA\nMerci",
		}

		It("should keep tva equal to ttc minus ht", func() {
			for _, f := range fixtures {
				inv, _ := extractor.Extract(Input{Text: f})
				if inv.TotalHT == nil || inv.TotalTTC == nil {
					Expect(inv.TVA).To(BeNil(), f)
					continue
				}
				Expect(*inv.TVA).To(Equal(subtract(*inv.TotalTTC, *inv.TotalHT)), f)
			}
		})

		It("should score zero exactly when a field is missing", func() {
			for _, f := range fixtures {
				inv, conf := extractor.Extract(Input{Text: f})
				for field, value := range fieldValues(inv) {
					Expect(conf[field]).To(BeNumerically(">=", 0), field)
					Expect(conf[field]).To(BeNumerically("<=", 1), field)
					Expect(conf[field] == 0).To(Equal(isEmpty(value)), field)
				}
			}
		})
	})
})
