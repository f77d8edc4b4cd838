// Package soap builds and submits the TOTVS FinLAN SaveRecord SOAP
// envelope that carries an extracted payment code downstream. It
// chooses between the CODIGOBARRA and IPTE tag names based on the
// code's extractor provenance (spec §6).
package soap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/leitorclaro/boleto-pipeline/internal/config"
	"github.com/leitorclaro/boleto-pipeline/internal/digitstring"
)

// Request is everything the submitter needs to build one SaveRecord
// call.
type Request struct {
	FlowID        string
	Code          digitstring.DigitString
	Source        digitstring.Source
	IDPgto        *int
	SupplierTaxID string
}

// Client posts SaveRecord envelopes to a TOTVS FinLAN endpoint over
// HTTP Basic Auth.
type Client struct {
	endpoint string
	username string
	password string
	http     *http.Client
}

// New builds a Client from cfg.
func New(cfg config.SOAPConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// barcodeTagName picks CODIGOBARRA when the code is a raw decoded
// barcode payload and IPTE when it was harvested as a linha
// digitável from text (spec §6).
func barcodeTagName(source digitstring.Source) string {
	if source == digitstring.SourceOpticalBarcode {
		return "CODIGOBARRA"
	}
	return "IPTE"
}

func buildEnvelope(req Request) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	envelope := doc.CreateElement("soapenv:Envelope")
	envelope.CreateAttr("xmlns:soapenv", "http://schemas.xmlsoap.org/soap/envelope/")
	envelope.CreateAttr("xmlns:fin", "http://www.totvs.com/FinLAN")

	body := envelope.CreateElement("soapenv:Body")
	saveRecord := body.CreateElement("fin:SaveRecord")

	record := saveRecord.CreateElement("fin:Record")
	record.CreateElement("IDFLUXUS").SetText(req.FlowID)
	record.CreateElement(barcodeTagName(req.Source)).SetText(string(req.Code))
	if req.IDPgto != nil {
		record.CreateElement("IDPGTO").SetText(fmt.Sprintf("%d", *req.IDPgto))
	}
	if req.SupplierTaxID != "" {
		record.CreateElement("CGCFOR").SetText(req.SupplierTaxID)
	}

	return doc
}

// Submit builds and posts the SaveRecord envelope for req, returning
// the raw response body. A response body containing a recognized
// TOTVS error marker is surfaced as a non-nil error even on HTTP 200,
// matching how the downstream service reports SOAP faults.
func (c *Client) Submit(ctx context.Context, req Request) (string, error) {
	doc := buildEnvelope(req)
	payload, err := doc.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("soap: serialize envelope: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("soap: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", "SaveRecord")
	httpReq.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("soap: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("soap: read response: %w", err)
	}
	responseText := string(body)

	if resp.StatusCode >= http.StatusBadRequest {
		return responseText, fmt.Errorf("soap: submitter returned status %d", resp.StatusCode)
	}
	if faultMessage, isFault := classifyTOTVSFault(responseText); isFault {
		return responseText, fmt.Errorf("soap: totvs fault: %s", faultMessage)
	}
	return responseText, nil
}

// classifyTOTVSFault looks for the substrings TOTVS uses to report a
// business-rule rejection inside an otherwise-200 SOAP response.
func classifyTOTVSFault(responseText string) (string, bool) {
	markers := []string{"<faultstring>", "ERRO:", "Falha ao gravar"}
	for _, marker := range markers {
		if idx := strings.Index(responseText, marker); idx != -1 {
			end := idx + len(marker) + 200
			if end > len(responseText) {
				end = len(responseText)
			}
			return responseText[idx:end], true
		}
	}
	return "", false
}
