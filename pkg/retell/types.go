package retell

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// CreatePhoneCallRequest holds the parameters of a phone call creation.
type CreatePhoneCallRequest struct {
	// FromNumber is the E.164 caller number. Required.
	FromNumber string `json:"from_number"`
	// ToNumber is the E.164 callee number. Required.
	ToNumber string `json:"to_number"`
	// AgentID overrides the agent bound to FromNumber.
	AgentID string `json:"override_agent_id,omitempty"`
	// Metadata is stored with the call and returned untouched.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	// DynamicVariables are injected into the agent prompt.
	DynamicVariables map[string]string `json:"retell_llm_dynamic_variables,omitempty"`
}

// Payload returns the request body, leaving out every blank field.
func (r *CreatePhoneCallRequest) Payload() map[string]interface{} {
	payload := make(map[string]interface{})

	putString := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			payload[key] = value
		}
	}

	putString("from_number", r.FromNumber)
	putString("to_number", r.ToNumber)
	putString("override_agent_id", r.AgentID)

	if len(r.Metadata) > 0 {
		payload["metadata"] = r.Metadata
	}

	if len(r.DynamicVariables) > 0 {
		payload["retell_llm_dynamic_variables"] = r.DynamicVariables
	}

	return payload
}

// PhoneCall is the typed view of a created call.
type PhoneCall struct {
	CallID     string                 `json:"call_id"     yaml:"call_id"`
	CallStatus string                 `json:"call_status" yaml:"call_status"`
	AgentID    string                 `json:"agent_id"    yaml:"agent_id"`
	Metadata   map[string]interface{} `json:"metadata"    yaml:"metadata"`
	CallCost   map[string]interface{} `json:"call_cost"   yaml:"call_cost"`
}

// NewPhoneCall builds a PhoneCall from a normalized response document.
func NewPhoneCall(doc Document) *PhoneCall {
	call := &PhoneCall{
		CallID:     doc.String("call_id"),
		CallStatus: doc.String("call_status"),
		AgentID:    doc.String("agent_id"),
	}

	if metadata := doc.Doc("metadata"); metadata != nil {
		call.Metadata = metadata
	}

	if cost := doc.Doc("call_cost"); cost != nil {
		call.CallCost = cost
	}

	return call
}

// phoneNumberTag is the validator rule for E.164-shaped numbers.
const phoneNumberTag = "e164_shape"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func phoneValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterAlias(phoneNumberTag, "required,startswith=+,min=8")
	})

	return validate
}

// ValidatePhoneNumber checks that number starts with "+" and has at least
// eight characters. param names the offending parameter in the returned error.
func ValidatePhoneNumber(param, number string) Result[string] {
	err := phoneValidator().Var(number, phoneNumberTag)
	if err != nil {
		return Failure[string](TagInvalidPhoneNumber, NewPhoneNumberError(param, number))
	}

	return Success(TagValidPhoneNumber, number)
}
