// requests.go - Request bodies and their validation
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/mickey-water/billing/internal/models"
)

// phonePattern matches Tanzanian numbers in international form.
var phonePattern = regexp.MustCompile(`^255\d{9}$`)

const maxSMSLength = 1000

// jsonValue keeps a field exactly as sent so presence, text and numeric form
// can be checked separately. Clients send numbers both as JSON numbers and as
// numeric strings.
type jsonValue struct {
	raw json.RawMessage
}

func (v *jsonValue) UnmarshalJSON(b []byte) error {
	v.raw = append(v.raw[:0], b...)
	return nil
}

func (v jsonValue) present() bool {
	return len(v.raw) > 0 && string(v.raw) != "null"
}

// blank reports whether the value is absent or falsy: null, false, 0 or a
// blank string.
func (v jsonValue) blank() bool {
	if !v.present() {
		return true
	}
	switch string(v.raw) {
	case "false", "0":
		return true
	}
	return strings.TrimSpace(v.text()) == ""
}

// text returns string values unquoted and any other value as written.
func (v jsonValue) text() string {
	var s string
	if err := json.Unmarshal(v.raw, &s); err == nil {
		return s
	}
	return string(v.raw)
}

// number parses the value as a finite float. Blank strings count as zero.
func (v jsonValue) number() (float64, bool) {
	var f float64
	if err := json.Unmarshal(v.raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(v.raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

type saveToMegaRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Filename string          `json:"filename"`
	Content  json.RawMessage `json:"content"`
	IsBase64 bool            `json:"isBase64"`
}

// toUploadRequest converts the body into a relay request. A JSON string is
// uploaded as its text (base64-decoded when isBase64 is set); any other JSON
// value is uploaded as indented JSON. A missing content field yields a nil
// payload so the relay reports it.
func (r *saveToMegaRequest) toUploadRequest() (models.UploadRequest, error) {
	req := models.UploadRequest{
		AccountEmail:  r.Email,
		AccountSecret: r.Password,
		FileName:      r.Filename,
	}

	if len(r.Content) == 0 || string(r.Content) == "null" {
		return req, nil
	}

	var text string
	if err := json.Unmarshal(r.Content, &text); err != nil {
		var indented bytes.Buffer
		if err := json.Indent(&indented, r.Content, "", "  "); err != nil {
			return req, NewBadRequestError("invalid content", err)
		}
		req.Payload = indented.Bytes()
		return req, nil
	}

	if r.IsBase64 {
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return req, NewBadRequestError("invalid base64 data", err)
		}
		req.Payload = decoded
		return req, nil
	}

	req.Payload = []byte(text)
	return req, nil
}

var billingRequiredFields = []string{"name", "phone", "prev", "curr", "rate", "fixed", "total"}
var billingNumericFields = []string{"prev", "curr", "rate", "fixed", "total"}

type saveRecordRequest struct {
	Name  jsonValue `json:"name"`
	Phone jsonValue `json:"phone"`
	Prev  jsonValue `json:"prev"`
	Curr  jsonValue `json:"curr"`
	Rate  jsonValue `json:"rate"`
	Fixed jsonValue `json:"fixed"`
	Total jsonValue `json:"total"`
	Date  string    `json:"date"`
}

func (r *saveRecordRequest) field(name string) jsonValue {
	switch name {
	case "name":
		return r.Name
	case "phone":
		return r.Phone
	case "prev":
		return r.Prev
	case "curr":
		return r.Curr
	case "rate":
		return r.Rate
	case "fixed":
		return r.Fixed
	case "total":
		return r.Total
	}
	return jsonValue{}
}

// validate checks the record fields in order and returns the parsed numbers
// keyed by field name.
func (r *saveRecordRequest) validate() (map[string]float64, error) {
	for _, name := range billingRequiredFields {
		if !r.field(name).present() {
			return nil, NewValidationError(fmt.Sprintf("Missing required field: %s", name))
		}
	}

	values := make(map[string]float64, len(billingNumericFields))
	for _, name := range billingNumericFields {
		f, ok := r.field(name).number()
		if !ok || f < 0 {
			return nil, NewValidationError(fmt.Sprintf("Invalid value for %s: must be a non-negative number", name))
		}
		values[name] = f
	}

	phone := strings.TrimSpace(r.Phone.text())
	phoneErr := "Invalid phone number format"
	if err := validation.Validate(phone,
		validation.Required.Error(phoneErr),
		validation.Match(phonePattern).Error(phoneErr),
	); err != nil {
		return nil, NewValidationError(err.Error())
	}

	if values["curr"] < values["prev"] {
		return nil, NewValidationError("Current reading must be greater than or equal to previous reading")
	}

	return values, nil
}

type sendSMSRequest struct {
	To      jsonValue `json:"to"`
	Message string    `json:"message"`
}

func (r *sendSMSRequest) validate() error {
	if r.To.blank() || r.Message == "" {
		return NewValidationError("Missing required fields: to, message")
	}

	to := strings.TrimSpace(r.To.text())
	phoneErr := "Invalid phone number format. Expected: 255XXXXXXXXX"
	if err := validation.Validate(to,
		validation.Required.Error(phoneErr),
		validation.Match(phonePattern).Error(phoneErr),
	); err != nil {
		return NewValidationError(err.Error())
	}

	lengthErr := "Message must be between 1 and 1000 characters"
	if err := validation.Validate(strings.TrimSpace(r.Message), validation.Required.Error(lengthErr)); err != nil {
		return NewValidationError(err.Error())
	}
	if err := validation.Validate(r.Message, validation.RuneLength(1, maxSMSLength).Error(lengthErr)); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}
