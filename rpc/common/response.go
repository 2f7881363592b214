package common

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// --------------------------------------------------------------------------
// Response Envelope
// --------------------------------------------------------------------------

// Response is the envelope the store returns for a single command.
// It carries either a result (Failed == false) or an error message (Failed == true).
type Response struct {
	Result  Value
	Message string
	Failed  bool
}

// NewResultResponse creates a successful envelope
func NewResultResponse(v Value) Response {
	return Response{Result: v}
}

// NewErrorResponse creates a failed envelope
func NewErrorResponse(msg string) Response {
	return Response{Message: msg, Failed: true}
}

// Err returns a *RemoteError for failed envelopes and nil otherwise
func (r Response) Err() error {
	if r.Failed {
		return &RemoteError{Message: r.Message}
	}
	return nil
}

// Decode decodes the result into out (see Decode). Failed envelopes return their *RemoteError.
func (r Response) Decode(out any) error {
	if err := r.Err(); err != nil {
		return err
	}
	return Decode(r.Result, out)
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Failed {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Message})
	}
	return json.Marshal(struct {
		Result Value `json:"result"`
	}{r.Result})
}

func (r *Response) UnmarshalJSON(b []byte) error {
	resp, err := ParseResponse(b)
	if err != nil {
		return err
	}
	*r = resp
	return nil
}

// ParseResponse parses a single {"result": ...} or {"error": "..."} envelope.
// Exactly one of the two keys must be present.
func ParseResponse(raw []byte) (Response, error) {
	if !gjson.ValidBytes(raw) {
		return Response{}, fmt.Errorf("envelope is not valid json")
	}
	return ParseEnvelope(gjson.ParseBytes(raw))
}

// ParseEnvelope parses an envelope from an already parsed gjson result
func ParseEnvelope(res gjson.Result) (Response, error) {
	if !res.IsObject() {
		return Response{}, fmt.Errorf("envelope must be an object, got %s", res.Type)
	}

	errField := res.Get("error")
	resultField := res.Get("result")

	switch {
	case errField.Exists() && resultField.Exists():
		return Response{}, fmt.Errorf("envelope carries both result and error")
	case errField.Exists():
		if errField.Type != gjson.String {
			return Response{}, fmt.Errorf("envelope error must be a string, got %s", errField.Type)
		}
		return NewErrorResponse(errField.String()), nil
	case resultField.Exists():
		var v Value
		if err := v.UnmarshalJSON([]byte(resultField.Raw)); err != nil {
			return Response{}, fmt.Errorf("invalid envelope result: %w", err)
		}
		return NewResultResponse(v), nil
	default:
		return Response{}, fmt.Errorf("envelope carries neither result nor error")
	}
}

// --------------------------------------------------------------------------
// Transaction Response
// --------------------------------------------------------------------------

// TransactionResponse is the outer envelope of a transaction. When Failed is
// true the transaction was rejected as a whole and Results is nil.
// Otherwise Results holds one envelope per queued command, in submission order.
type TransactionResponse struct {
	Results []Response
	Message string
	Failed  bool
}

// Err returns a *RemoteError if the transaction was rejected
func (t TransactionResponse) Err() error {
	if t.Failed {
		return &RemoteError{Message: t.Message}
	}
	return nil
}

func (t TransactionResponse) MarshalJSON() ([]byte, error) {
	if t.Failed {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{t.Message})
	}
	results := t.Results
	if results == nil {
		results = []Response{}
	}
	return json.Marshal(struct {
		Result []Response `json:"result"`
	}{results})
}
