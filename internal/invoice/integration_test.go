package invoice_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/facture-ocr/internal/compliance"
	"github.com/zombor/facture-ocr/internal/extraction"
	"github.com/zombor/facture-ocr/internal/invoice"
	"github.com/zombor/facture-ocr/internal/scanning"
)

const integrationText = `SERVICES DUPONT SARL
12 rue de la Paix 75002 Paris
SIRET: 47945319300043
TVA intracommunautaire : FR47479453193

FACTURE N° FA-2024-001
Date : 15/03/2024
Client : Martin Conseil

Désignation  Qté  Prix unitaire  Total
Audit sécurité  1  842,08  842,08
Formation  2  100,00  200,00

Total HT : 1 042,08 €
TVA 20% : 208,42 €
Total TTC : 1 250,50 €

IBAN : FR76 3000 6000 0112 3456 7890 189
BIC : BNPAFRPPXXX`

// fixedScanner returns the same text for every document
type fixedScanner struct {
	text string
}

func (f *fixedScanner) Scan(ctx context.Context, data []byte, contentType, language string) (*scanning.Result, error) {
	return &scanning.Result{Text: f.text, Language: language}, nil
}

func (f *fixedScanner) Close() error {
	return nil
}

var _ = Describe("Integration", func() {
	var (
		db       *invoice.BoltDB
		store    *invoice.LocalStorage
		vies     *ghttp.Server
		ghServer *ghttp.Server
	)

	BeforeEach(func() {
		tempDir := GinkgoT().TempDir()

		var err error
		db, err = invoice.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = invoice.NewLocalStorage(filepath.Join(tempDir, "invoices"))
		Expect(err).NotTo(HaveOccurred())

		vies = ghttp.NewServer()
		vies.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodPost, "/"),
			ghttp.RespondWith(http.StatusOK, `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><checkVatResponse><countryCode>FR</countryCode><vatNumber>47479453193</vatNumber><valid>true</valid><name>SERVICES DUPONT</name><address>PARIS</address></checkVatResponse></soap:Body></soap:Envelope>`),
		))

		checker := compliance.NewChecker(nil, compliance.NewVIESClient(vies.URL()), time.Second)
		service := invoice.NewService(db, &fixedScanner{text: integrationText}, store, extraction.NewExtractor(nil), checker)
		server := invoice.NewServer(service, invoice.BasicAuth{})

		ghServer = ghttp.NewServer()
		ghServer.AppendHandlers(
			server.ServeHTTP, // upload
			server.ServeHTTP, // list
			server.ServeHTTP, // file
			server.ServeHTTP, // delete
		)
	})

	AfterEach(func() {
		ghServer.Close()
		vies.Close()
		db.Close()
	})

	It("should analyze, list, serve and delete an uploaded invoice", func() {
		// --- Upload ---
		fileContent := []byte("%PDF-1.4 fake invoice")
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "facture.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(fileContent)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.WriteField("language", "fra")).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghServer.URL()+"/api/invoices", writer.FormDataContentType(), body)
		Expect(err).NotTo(HaveOccurred())
		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var a invoice.Analysis
		Expect(json.Unmarshal(respBody, &a)).To(Succeed())
		Expect(a.ID).NotTo(BeEmpty())

		inv := a.Invoice
		Expect(*inv.InvoiceNumber).To(Equal("FA-2024-001"))
		Expect(*inv.Date).To(Equal("15/03/2024"))
		Expect(*inv.TotalHT).To(Equal(1042.08))
		Expect(*inv.TotalTTC).To(Equal(1250.50))
		Expect(*inv.TVA).To(Equal(208.42))
		Expect(*inv.BankingInfo.BIC).To(Equal("BNPAFRPPXXX"))

		report := a.Compliance
		Expect(report.ComplianceCheck.Compliant).To(BeTrue())
		Expect(*report.VATValidation.VATRate).To(Equal(20.0))
		Expect(*report.SirenSiret.SIREN).To(Equal("479453193"))
		Expect(*report.VATIntracom.Detected).To(Equal("FR47479453193"))
		Expect(*report.VATIntracom.Validated.Valid).To(BeTrue())
		Expect(report.Enrichment.SirenSiret.Success).To(BeFalse())

		// --- List ---
		resp, err = http.Get(ghServer.URL() + "/api/invoices")
		Expect(err).NotTo(HaveOccurred())
		var listed []*invoice.Analysis
		Expect(json.NewDecoder(resp.Body).Decode(&listed)).To(Succeed())
		resp.Body.Close()
		Expect(listed).To(HaveLen(1))
		Expect(listed[0].ID).To(Equal(a.ID))

		// --- File ---
		resp, err = http.Get(ghServer.URL() + "/api/invoices/" + a.ID + "/file")
		Expect(err).NotTo(HaveOccurred())
		stored, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.Header.Get("Content-Type")).To(Equal("application/pdf"))
		Expect(stored).To(Equal(fileContent))

		// --- Delete ---
		req, err := http.NewRequest(http.MethodDelete, ghServer.URL()+"/api/invoices/"+a.ID, nil)
		Expect(err).NotTo(HaveOccurred())
		resp, err = http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		_, err = db.GetAnalysis(a.ID)
		Expect(err).To(MatchError(invoice.ErrNotFound))
		_, err = store.Get(a.Filename)
		Expect(err).To(HaveOccurred())
	})
})
