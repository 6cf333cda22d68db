package retell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

func TestValidatePhoneNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		number string
		valid  bool
	}{
		{number: "+14157774444", valid: true},
		{number: "+4420794", valid: true},
		{number: "14157774444", valid: false},
		{number: "+1", valid: false},
		{number: "+123456", valid: false},
		{number: "", valid: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.number, func(t *testing.T) {
			t.Parallel()

			result := retell.ValidatePhoneNumber("from_number", testCase.number)
			assert.Equal(t, testCase.valid, result.IsSuccess())

			if testCase.valid {
				assert.Equal(t, retell.TagValidPhoneNumber, result.Tag())

				return
			}

			assert.Equal(t, retell.TagInvalidPhoneNumber, result.Tag())

			phoneErr, ok := result.Problem().(*retell.PhoneNumberError)
			require.True(t, ok)
			assert.Equal(t, "from_number", phoneErr.Param)
			assert.Equal(t, testCase.number, phoneErr.Number)
		})
	}
}

func TestCreatePhoneCallRequest_Payload(t *testing.T) {
	t.Parallel()

	full := &retell.CreatePhoneCallRequest{
		FromNumber:       "+14157774444",
		ToNumber:         "+12137774445",
		AgentID:          "agent-1",
		Metadata:         map[string]interface{}{"customer": "c-1"},
		DynamicVariables: map[string]string{"name": "Ada"},
	}

	assert.Equal(t, map[string]interface{}{
		"from_number":                  "+14157774444",
		"to_number":                    "+12137774445",
		"override_agent_id":            "agent-1",
		"metadata":                     map[string]interface{}{"customer": "c-1"},
		"retell_llm_dynamic_variables": map[string]string{"name": "Ada"},
	}, full.Payload())

	sparse := &retell.CreatePhoneCallRequest{
		FromNumber:       "+14157774444",
		ToNumber:         " ",
		Metadata:         map[string]interface{}{},
		DynamicVariables: nil,
	}

	assert.Equal(t, map[string]interface{}{"from_number": "+14157774444"}, sparse.Payload())
}
