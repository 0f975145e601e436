package extraction

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Field extractors", func() {
	var lib *PatternLibrary

	BeforeEach(func() {
		lib = NewPatternLibrary()
	})

	Describe("extractTotals", func() {
		var (
			text string
			t    totals
		)

		JustBeforeEach(func() {
			t = lib.extractTotals(strings.ToLower(text))
		})

		When("both HT and TTC are labeled", func() {
			BeforeEach(func() {
				text = "Total HT: 1 042,08 €\nTVA 20%: 208,42 €\nTotal TTC: 1 250,50 €"
			})

			It("should read both amounts", func() {
				Expect(*t.ht).To(Equal(1042.08))
				Expect(*t.ttc).To(Equal(1250.5))
			})

			It("should take the grand total from the TTC line", func() {
				Expect(*t.total).To(Equal(1250.5))
				Expect(t.currency).To(Equal("EUR"))
			})

			It("should count corroborating patterns", func() {
				Expect(t.hitsHT).To(Equal(2))
				Expect(t.hitsTTC).To(Equal(2))
			})
		})

		When("only a montant total is present", func() {
			BeforeEach(func() {
				text = "Montant total : 89,90 $"
			})

			It("should read the grand total and its currency", func() {
				Expect(*t.total).To(Equal(89.9))
				Expect(t.currency).To(Equal("USD"))
				Expect(t.ht).To(BeNil())
				Expect(t.ttc).To(BeNil())
			})
		})

		When("a sub-total precedes the total", func() {
			BeforeEach(func() {
				text = "Sous-total: 900,00\nTotal: 1 080,00"
			})

			It("should not read the sub-total as the grand total", func() {
				Expect(*t.total).To(Equal(1080.0))
			})
		})
	})

	Describe("deriveTVA", func() {
		It("should subtract HT from TTC", func() {
			Expect(*deriveTVA(floatPtr(100), floatPtr(120))).To(Equal(20.0))
		})

		It("should not derive anything when one side is missing", func() {
			Expect(deriveTVA(floatPtr(100), nil)).To(BeNil())
			Expect(deriveTVA(nil, floatPtr(120))).To(BeNil())
		})
	})

	Describe("extractDate", func() {
		var (
			text string
			date *string
		)

		JustBeforeEach(func() {
			date, _ = lib.extractDate(text)
		})

		When("the date is numeric", func() {
			BeforeEach(func() {
				text = "Date de facture : 15.03.2024"
			})

			It("should keep it verbatim", func() {
				Expect(*date).To(Equal("15.03.2024"))
			})
		})

		When("the date is ISO formatted", func() {
			BeforeEach(func() {
				text = "Issued 2024-03-15"
			})

			It("should find it", func() {
				Expect(*date).To(Equal("2024-03-15"))
			})
		})

		When("the month is written in French", func() {
			BeforeEach(func() {
				text = "Paris, le 1er mars 2024"
			})

			It("should find it", func() {
				Expect(*date).To(Equal("1er mars 2024"))
			})
		})

		When("the month is written in English", func() {
			BeforeEach(func() {
				text = "Invoice date: March 15, 2024"
			})

			It("should find it", func() {
				Expect(*date).To(Equal("March 15, 2024"))
			})
		})

		When("no date is present", func() {
			BeforeEach(func() {
				text = "Total: 10 €"
			})

			It("should return nil", func() {
				Expect(date).To(BeNil())
			})
		})
	})

	Describe("extractInvoiceNumber", func() {
		var (
			text string
			num  invoiceNumber
		)

		JustBeforeEach(func() {
			num = lib.extractInvoiceNumber(SplitLines(text), text)
		})

		When("the number follows an invoice label", func() {
			BeforeEach(func() {
				text = "Invoice #INV-2024-0042\nDate: 01/02/2024"
			})

			It("should return the labeled number", func() {
				Expect(*num.value).To(Equal("INV-2024-0042"))
				Expect(num.labeled).To(BeTrue())
			})
		})

		When("the label and number are lowercase", func() {
			BeforeEach(func() {
				text = "facture n° fa-123"
			})

			It("should uppercase the number", func() {
				Expect(*num.value).To(Equal("FA-123"))
			})
		})

		When("only a bare code is present", func() {
			BeforeEach(func() {
				text = "Document ABC-2024-001\nMerci de votre confiance"
			})

			It("should fall back to the unlabeled pattern", func() {
				Expect(*num.value).To(Equal("ABC-2024-001"))
				Expect(num.labeled).To(BeFalse())
			})
		})

		When("a labeled number and a bare code disagree", func() {
			BeforeEach(func() {
				text = "INV-2024-0001\nFacture N°: 778899"
			})

			It("should prefer the labeled number", func() {
				Expect(*num.value).To(Equal("778899"))
			})
		})

		When("the labeled candidate is too short", func() {
			BeforeEach(func() {
				text = "Facture N°: 12"
			})

			It("should return nil", func() {
				Expect(num.value).To(BeNil())
			})
		})
	})

	Describe("extractVendor", func() {
		var (
			text   string
			vendor party
		)

		JustBeforeEach(func() {
			vendor = lib.extractVendor(SplitLines(text))
		})

		When("the name follows a vendor label", func() {
			BeforeEach(func() {
				text = "Vendeur :\nBoulangerie Martin\n12 rue de la Paix"
			})

			It("should take the next line", func() {
				Expect(*vendor.value).To(Equal("Boulangerie Martin"))
				Expect(vendor.quality).To(Equal(QualityLabeledParty))
			})
		})

		When("an address sits between the label and the company", func() {
			BeforeEach(func() {
				text = "Fournisseur\n15 avenue Victor Hugo\nDurand SAS"
			})

			It("should skip the address and keep the legal entity", func() {
				Expect(*vendor.value).To(Equal("Durand SAS"))
			})
		})

		When("there is no label", func() {
			BeforeEach(func() {
				text = "FACTURE\nACME Conseil SARL\n3 rue Lafayette"
			})

			It("should fall back to a line with a legal suffix", func() {
				Expect(*vendor.value).To(Equal("ACME Conseil SARL"))
				Expect(vendor.quality).To(Equal(QualityFallbackParty))
			})
		})
	})

	Describe("extractClient", func() {
		var (
			text   string
			client party
		)

		JustBeforeEach(func() {
			client = lib.extractClient(SplitLines(text), text)
		})

		When("the name follows a client label", func() {
			BeforeEach(func() {
				text = "Client :\nMarie Curie\n8 rue Cuvier"
			})

			It("should take the next line", func() {
				Expect(*client.value).To(Equal("Marie Curie"))
			})
		})

		When("the name is on the label line", func() {
			BeforeEach(func() {
				text = "Facturé au client Jean Dupont\nTotal: 10"
			})

			It("should use the inline fallback", func() {
				Expect(*client.value).To(Equal("Jean Dupont"))
				Expect(client.quality).To(Equal(QualityFallbackParty))
			})
		})

		When("the line after the label is an address", func() {
			BeforeEach(func() {
				text = "Client:\n12 rue Victor Hugo"
			})

			It("should return nil", func() {
				Expect(client.value).To(BeNil())
			})
		})
	})

	Describe("extractItems", func() {
		var items []LineItem

		JustBeforeEach(func() {
			items = lib.extractItems(SplitLines(strings.Join([]string{
				"Désignation              Qté   Prix unitaire   Total",
				"Développement site web   2     500,00          1000,00",
				"Hébergement annuel       120,00   120,00",
				"Licence logiciel   3   300,00",
				"Maintenance   150,00",
				"Sous-total: 1570,00",
				"Remarque 99",
			}, "\n")))
		})

		It("should stop at the sub-total line", func() {
			Expect(items).To(HaveLen(4))
		})

		It("should read three numbers as quantity, unit price and total", func() {
			Expect(items[0].Description).To(Equal("Développement site web"))
			Expect(*items[0].Quantity).To(Equal(2.0))
			Expect(*items[0].UnitPrice).To(Equal(500.0))
			Expect(*items[0].Total).To(Equal(1000.0))
		})

		It("should read a large first number as the unit price", func() {
			Expect(*items[1].Quantity).To(Equal(1.0))
			Expect(*items[1].UnitPrice).To(Equal(120.0))
			Expect(*items[1].Total).To(Equal(120.0))
		})

		It("should derive the unit price from a small integral quantity", func() {
			Expect(*items[2].Quantity).To(Equal(3.0))
			Expect(*items[2].UnitPrice).To(Equal(100.0))
			Expect(*items[2].Total).To(Equal(300.0))
		})

		It("should read a single number as the total", func() {
			Expect(items[3].Description).To(Equal("Maintenance"))
			Expect(*items[3].Quantity).To(Equal(1.0))
			Expect(items[3].UnitPrice).To(BeNil())
			Expect(*items[3].Total).To(Equal(150.0))
		})
	})

	Describe("detectTables", func() {
		var (
			text   string
			tables []DetectedTable
		)

		JustBeforeEach(func() {
			tables = lib.detectTables(text, nil)
		})

		When("columns are separated by pipes", func() {
			BeforeEach(func() {
				text = "Description | Quantité | Montant\nAudit sécurité | 1 | 900,00\nFormation | 2 | 600,00\nTotal | | 1500,00"
			})

			It("should capture the rows up to the total line", func() {
				Expect(tables).To(HaveLen(1))
				Expect(tables[0].Header).To(Equal([]string{"Description", "Quantité", "Montant"}))
				Expect(tables[0].Rows).To(HaveLen(2))
				Expect(tables[0].Rows[0]).To(Equal(map[string]string{
					"Description": "Audit sécurité",
					"Quantité":    "1",
					"Montant":     "900,00",
				}))
			})
		})

		When("columns are separated by runs of spaces", func() {
			BeforeEach(func() {
				text = "Article   Qty   Amount\nStylo bleu   10   5,00\n\nMerci"
			})

			It("should stop at the blank line", func() {
				Expect(tables).To(HaveLen(1))
				Expect(tables[0].Rows).To(ConsistOf(map[string]string{
					"Article": "Stylo bleu",
					"Qty":     "10",
					"Amount":  "5,00",
				}))
			})
		})

		When("no header is present", func() {
			BeforeEach(func() {
				text = "Bonjour\nMerci"
			})

			It("should return nothing", func() {
				Expect(tables).To(BeEmpty())
			})
		})
	})

	Describe("tableRow", func() {
		It("should fold surplus cells into the last column", func() {
			Expect(tableRow([]string{"a", "b"}, []string{"x", "y", "z"})).To(Equal(map[string]string{"a": "x", "b": "y z"}))
		})
	})

	Describe("extractBanking", func() {
		var (
			text string
			bank *BankingInfo
		)

		JustBeforeEach(func() {
			bank = lib.extractBanking(SplitLines(text), text)
		})

		When("IBAN, BIC and bank are printed", func() {
			BeforeEach(func() {
				text = "Coordonnées bancaires\nBanque : Crédit Agricole\nIBAN : FR76 3000 6000 0112 3456 7890 189\nBIC : AGRIFRPP882"
			})

			It("should strip spaces from the IBAN", func() {
				Expect(*bank.IBAN).To(Equal("FR7630006000011234567890189"))
			})

			It("should set SWIFT and BIC to the same code", func() {
				Expect(*bank.BIC).To(Equal("AGRIFRPP882"))
				Expect(*bank.Swift).To(Equal(*bank.BIC))
			})

			It("should read the bank name after the label", func() {
				Expect(*bank.BankName).To(Equal("Crédit Agricole"))
			})

			It("should count the sub-fields found", func() {
				Expect(bank.Found()).To(Equal(3))
			})
		})

		When("a French RIB is printed", func() {
			BeforeEach(func() {
				text = "RIB : 30006 00001 12345678901 89"
			})

			It("should keep the 23 digits", func() {
				Expect(*bank.RIB).To(Equal("30006000011234567890189"))
			})
		})

		When("an account number is labeled", func() {
			BeforeEach(func() {
				text = "Numéro de compte : 00012345678"
			})

			It("should read it", func() {
				Expect(*bank.AccountNumber).To(Equal("00012345678"))
			})
		})

		When("nothing is present", func() {
			BeforeEach(func() {
				text = "Merci pour votre achat"
			})

			It("should return nil", func() {
				Expect(bank).To(BeNil())
			})
		})
	})
})
