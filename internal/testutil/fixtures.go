package testutil

import "github.com/mickey-water/billing/internal/models"

// Fixed test-only account credentials. They never reach a real provider.
const (
	TestAccountEmail  = "a@x.com"
	TestAccountSecret = "p"
)

// NewUploadRequest returns a valid relay request using the test credentials.
func NewUploadRequest(fileName string, payload []byte) models.UploadRequest {
	return models.UploadRequest{
		AccountEmail:  TestAccountEmail,
		AccountSecret: TestAccountSecret,
		FileName:      fileName,
		Payload:       payload,
	}
}
