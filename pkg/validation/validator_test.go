package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Mobile   string `json:"mobile" binding:"required,mobile"`
	OTP      string `json:"otp" binding:"omitempty,otp"`
	Password string `json:"password" binding:"omitempty,pwd"`
}

func validate(t *testing.T, v sampleRequest) error {
	t.Helper()
	Init()
	return binding.Validator.ValidateStruct(&v)
}

func TestAliasesAcceptValidInput(t *testing.T) {
	err := validate(t, sampleRequest{Mobile: "9999999999", OTP: "042917", Password: "longenough"})
	assert.NoError(t, err)
}

func TestAliasesRejectInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		req   sampleRequest
		field string
	}{
		{"short mobile", sampleRequest{Mobile: "12345"}, "mobile"},
		{"short otp", sampleRequest{Mobile: "9999999999", OTP: "123"}, "otp"},
		{"alpha otp", sampleRequest{Mobile: "9999999999", OTP: "abcdef"}, "otp"},
		{"short password", sampleRequest{Mobile: "9999999999", Password: "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.req)
			require.Error(t, err)
			details := ToDetails(err)
			// Field names come from JSON tags, not struct fields.
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestToDetailsHandlesMalformedJSONErrors(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}
