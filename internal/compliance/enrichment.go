package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultSireneURL is the INSEE Sirene API base URL.
	DefaultSireneURL = "https://api.insee.fr/entreprises/sirene/V3.11"
	// DefaultVIESURL is the EU VIES checkVat SOAP endpoint.
	DefaultVIESURL = "http://ec.europa.eu/taxation_customs/vies/services/checkVatService"

	viesSOAPAction = "urn:ec.europa.eu:taxud:vies:services:checkVat/checkVat"
	viesTypesNS    = "urn:ec.europa.eu:taxud:vies:services:checkVat:types"
	soapEnvNS      = "http://schemas.xmlsoap.org/soap/envelope/"
)

// Result is the outcome of an external lookup. Success is false whenever the
// lookup could not be completed; Valid reports the VIES verdict.
type Result struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Valid       *bool  `json:"valid,omitempty"`
	SIRET       string `json:"siret,omitempty"`
	SIREN       string `json:"siren,omitempty"`
	VATNumber   string `json:"vat_number,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
	Activity    string `json:"activity,omitempty"`
}

// Registry looks up a company in the national business registry.
type Registry interface {
	LookupSIRET(ctx context.Context, siret string) (*Result, error)
}

// VATValidator checks an intra-community VAT number.
type VATValidator interface {
	ValidateVAT(ctx context.Context, vat string) (*Result, error)
}

// SireneClient implements Registry against the INSEE Sirene API.
type SireneClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewSireneClient creates a Sirene client authenticating with a bearer token.
func NewSireneClient(baseURL, token string) *SireneClient {
	if baseURL == "" {
		baseURL = DefaultSireneURL
	}
	return &SireneClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type sireneResponse struct {
	Etablissement struct {
		SIREN       string `json:"siren"`
		SIRET       string `json:"siret"`
		UniteLegale struct {
			Denomination string `json:"denominationUniteLegale"`
			Nom          string `json:"nomUniteLegale"`
			Prenom       string `json:"prenom1UniteLegale"`
			Activite     string `json:"activitePrincipaleUniteLegale"`
		} `json:"uniteLegale"`
		Adresse struct {
			Numero     string `json:"numeroVoieEtablissement"`
			TypeVoie   string `json:"typeVoieEtablissement"`
			Voie       string `json:"libelleVoieEtablissement"`
			CodePostal string `json:"codePostalEtablissement"`
			Commune    string `json:"libelleCommuneEtablissement"`
		} `json:"adresseEtablissement"`
	} `json:"etablissement"`
}

// LookupSIRET fetches the establishment registered under siret.
func (c *SireneClient) LookupSIRET(ctx context.Context, siret string) (*Result, error) {
	url := fmt.Sprintf("%s/siret/%s", c.baseURL, siret)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling sirene API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sirene API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr sireneResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	e := sr.Etablissement
	name := e.UniteLegale.Denomination
	if name == "" {
		name = strings.TrimSpace(e.UniteLegale.Prenom + " " + e.UniteLegale.Nom)
	}
	a := e.Adresse
	street := strings.Join(strings.Fields(strings.Join([]string{a.Numero, a.TypeVoie, a.Voie}, " ")), " ")
	city := strings.TrimSpace(a.CodePostal + " " + a.Commune)
	address := strings.Trim(street+", "+city, ", ")

	return &Result{
		Success:  true,
		SIRET:    e.SIRET,
		SIREN:    e.SIREN,
		Name:     name,
		Address:  address,
		Activity: e.UniteLegale.Activite,
	}, nil
}

// VIESClient implements VATValidator with the VIES checkVat SOAP service.
type VIESClient struct {
	url    string
	client *http.Client
}

// NewVIESClient creates a VIES client posting to url.
func NewVIESClient(url string) *VIESClient {
	if url == "" {
		url = DefaultVIESURL
	}
	return &VIESClient{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type viesEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	SoapNS  string   `xml:"xmlns:soap,attr"`
	Body    struct {
		CheckVat viesCheckVat `xml:"checkVat"`
	} `xml:"soap:Body"`
}

type viesCheckVat struct {
	XMLNS       string `xml:"xmlns,attr"`
	CountryCode string `xml:"countryCode"`
	VATNumber   string `xml:"vatNumber"`
}

type viesResponse struct {
	Body struct {
		CheckVat struct {
			CountryCode string `xml:"countryCode"`
			VATNumber   string `xml:"vatNumber"`
			Valid       bool   `xml:"valid"`
			Name        string `xml:"name"`
			Address     string `xml:"address"`
		} `xml:"checkVatResponse"`
		Fault *struct {
			Message string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// ValidateVAT asks VIES whether vat is a registered intra-community number.
func (c *VIESClient) ValidateVAT(ctx context.Context, vat string) (*Result, error) {
	clean := strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(vat))
	if len(clean) < 3 {
		return nil, fmt.Errorf("invalid VAT number %q", vat)
	}

	env := viesEnvelope{SoapNS: soapEnvNS}
	env.Body.CheckVat = viesCheckVat{XMLNS: viesTypesNS, CountryCode: clean[:2], VATNumber: clean[2:]}
	payload, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", viesSOAPAction)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling VIES: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var vr viesResponse
	if err := xml.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if vr.Body.Fault != nil {
		return nil, fmt.Errorf("VIES fault: %s", vr.Body.Fault.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VIES error (status %d)", resp.StatusCode)
	}

	valid := vr.Body.CheckVat.Valid
	res := &Result{
		Success:     true,
		Valid:       &valid,
		VATNumber:   vat,
		CountryCode: clean[:2],
	}
	if !valid {
		res.Error = "VAT number is not valid according to VIES"
		return res, nil
	}
	res.Name = viesField(vr.Body.CheckVat.Name)
	res.Address = viesField(vr.Body.CheckVat.Address)
	return res, nil
}

// viesField normalises VIES text fields; "---" means the member state does
// not disclose the value.
func viesField(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "---" {
		return ""
	}
	return s
}
